package domain

// RoomName is a case-sensitive room key. Rooms are created implicitly on first join.
type RoomName string
