package entity

// Player binds a connection to the mark it plays with inside one room.
type Player struct {
	ID   string `json:"id"`
	Mark Mark   `json:"mark"`
}
