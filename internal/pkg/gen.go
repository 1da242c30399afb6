package pkg

import "github.com/google/uuid"

const (
	roomIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	roomIDLength   = 8
)

// GenerateConnectionID - generates a unique identifier for a websocket connection.
func GenerateConnectionID() string {
	return uuid.NewString()
}

// GenerateRoomID - generates a short random room identifier from the bytes of a v4 uuid.
func GenerateRoomID() string {
	random := uuid.New()
	source := random[len(random)-roomIDLength:]

	id := make([]byte, roomIDLength)
	for i, b := range source {
		id[i] = roomIDAlphabet[int(b)%len(roomIDAlphabet)]
	}

	return string(id)
}
