package domain

// RelayStats is a consistent snapshot of the relay state.
type RelayStats struct {
	Connections int `json:"connections"`
	Identified  int `json:"identified"`
	Rooms       int `json:"rooms"`
	Memberships int `json:"memberships"`
}
