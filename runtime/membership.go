package runtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"github.com/samber/lo"
	"slices"
)

// roomMembers keeps both a set for O(1) membership checks and the join order
// used to fan out deliveries deterministically.
type roomMembers struct {
	set   Set[domain.ConnectionID]
	order []domain.ConnectionID
}

// MembershipIndex maps room names to the connections currently joined, with a
// reverse index from connection to rooms used at disconnect.
// Empty rooms are removed as soon as their last member leaves.
//
// A limit of zero or less disables the corresponding bound.
// MembershipIndex is not safe for concurrent use: it is owned by a Relay.
type MembershipIndex struct {
	maxRooms          int
	maxMembersPerRoom int
	rooms             map[domain.RoomName]*roomMembers
	byConnection      map[domain.ConnectionID]Set[domain.RoomName]
}

func NewMembershipIndex(maxRooms, maxMembersPerRoom int) *MembershipIndex {
	return &MembershipIndex{
		maxRooms:          maxRooms,
		maxMembersPerRoom: maxMembersPerRoom,
		rooms:             make(map[domain.RoomName]*roomMembers),
		byConnection:      make(map[domain.ConnectionID]Set[domain.RoomName]),
	}
}

// Join adds the connection to the room, creating the room on first use.
// Joining a room twice is a no-op and returns false.
func (m *MembershipIndex) Join(room domain.RoomName, id domain.ConnectionID) (bool, error) {
	members, ok := m.rooms[room]
	if !ok {
		if m.maxRooms > 0 && len(m.rooms) >= m.maxRooms {
			return false, fmt.Errorf("%w: %d rooms", errors.ErrRoomLimitReached, m.maxRooms)
		}
		members = &roomMembers{set: make(Set[domain.ConnectionID])}
		m.rooms[room] = members
	}

	if _, exists := members.set[id]; exists {
		return false, nil
	}
	if m.maxMembersPerRoom > 0 && len(members.order) >= m.maxMembersPerRoom {
		return false, fmt.Errorf("%w: %s has %d members", errors.ErrRoomFull, room, m.maxMembersPerRoom)
	}

	members.set[id] = struct{}{}
	members.order = append(members.order, id)

	rooms, ok := m.byConnection[id]
	if !ok {
		rooms = make(Set[domain.RoomName])
		m.byConnection[id] = rooms
	}
	rooms[room] = struct{}{}
	return true, nil
}

// Leave removes the connection from the room. It returns false when the
// connection was not a member.
func (m *MembershipIndex) Leave(room domain.RoomName, id domain.ConnectionID) bool {
	members, ok := m.rooms[room]
	if !ok {
		return false
	}
	if _, exists := members.set[id]; !exists {
		return false
	}

	delete(members.set, id)
	members.order = lo.Without(members.order, id)
	if len(members.order) == 0 {
		delete(m.rooms, room)
	}

	if rooms, ok := m.byConnection[id]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(m.byConnection, id)
		}
	}
	return true
}

// LeaveAll removes the connection from every room it joined and returns those
// rooms sorted by name.
func (m *MembershipIndex) LeaveAll(id domain.ConnectionID) []domain.RoomName {
	left := m.RoomsOf(id)
	for _, room := range left {
		m.Leave(room, id)
	}
	return left
}

// MembersOf returns the members of the room in join order.
// Unknown and empty rooms both yield an empty slice.
func (m *MembershipIndex) MembersOf(room domain.RoomName) []domain.ConnectionID {
	members, ok := m.rooms[room]
	if !ok {
		return []domain.ConnectionID{}
	}
	return append([]domain.ConnectionID(nil), members.order...)
}

// RoomsOf returns the rooms joined by the connection, sorted by name.
func (m *MembershipIndex) RoomsOf(id domain.ConnectionID) []domain.RoomName {
	rooms := lo.Keys(m.byConnection[id])
	slices.Sort(rooms)
	return rooms
}

// RoomSizes returns the member count of every non-empty room.
func (m *MembershipIndex) RoomSizes() map[domain.RoomName]int {
	return lo.MapValues(m.rooms, func(members *roomMembers, _ domain.RoomName) int {
		return len(members.order)
	})
}
