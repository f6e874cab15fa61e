package runtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMembershipIndex_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex(0, 0)

	// When a connection joins the same room twice
	joined, err := index.Join("r1", "c1")
	req.NoError(err)
	req.True(joined)
	joined, err = index.Join("r1", "c1")
	req.NoError(err)

	// Then it is a member only once
	req.False(joined)
	req.Equal([]domain.ConnectionID{"c1"}, index.MembersOf("r1"))
	req.Equal([]domain.RoomName{"r1"}, index.RoomsOf("c1"))
}

func TestMembershipIndex_Members_In_Join_Order(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex(0, 0)

	for _, id := range []domain.ConnectionID{"c3", "c1", "c2"} {
		_, err := index.Join("r1", id)
		req.NoError(err)
	}

	req.Equal([]domain.ConnectionID{"c3", "c1", "c2"}, index.MembersOf("r1"))
}

func TestMembershipIndex_Room_Names_Are_Case_Sensitive(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex(0, 0)

	_, err := index.Join("Lobby", "c1")
	req.NoError(err)

	req.Empty(index.MembersOf("lobby"))
	req.Len(index.MembersOf("Lobby"), 1)
}

func TestMembershipIndex_Unknown_Room_Is_Empty(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex(0, 0)

	members := index.MembersOf("nowhere")

	req.NotNil(members)
	req.Empty(members)
}

func TestMembershipIndex_Leave_Removes_Empty_Room(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex(0, 0)
	_, err := index.Join("r1", "c1")
	req.NoError(err)

	// When the last member leaves
	req.True(index.Leave("r1", "c1"))
	req.False(index.Leave("r1", "c1"))

	// Then the room is garbage collected
	req.Empty(index.RoomSizes())
	req.Empty(index.RoomsOf("c1"))
}

func TestMembershipIndex_LeaveAll(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex(0, 0)

	// Given a connection in two rooms, sharing one with another connection
	for _, room := range []domain.RoomName{"r2", "r1"} {
		_, err := index.Join(room, "c1")
		req.NoError(err)
	}
	_, err := index.Join("r1", "c2")
	req.NoError(err)

	// When it leaves everything
	left := index.LeaveAll("c1")

	// Then it is in no room and the other member stays
	req.Equal([]domain.RoomName{"r1", "r2"}, left)
	req.Empty(index.RoomsOf("c1"))
	req.Equal([]domain.ConnectionID{"c2"}, index.MembersOf("r1"))
	req.Equal(map[domain.RoomName]int{"r1": 1}, index.RoomSizes())
}

func TestMembershipIndex_Limits(t *testing.T) {
	req := require.New(t)
	index := NewMembershipIndex(1, 2)

	// Given a full room
	_, err := index.Join("r1", "c1")
	req.NoError(err)
	_, err = index.Join("r1", "c2")
	req.NoError(err)

	// When a third member joins
	_, err = index.Join("r1", "c3")
	req.ErrorIs(err, errors.ErrRoomFull)

	// When a second room is created
	_, err = index.Join("r2", "c1")
	req.ErrorIs(err, errors.ErrRoomLimitReached)

	// Then an existing member rejoining is still a no-op
	joined, err := index.Join("r1", "c1")
	req.NoError(err)
	req.False(joined)
	req.Equal([]domain.ConnectionID{"c1", "c2"}, index.MembersOf("r1"))
}
