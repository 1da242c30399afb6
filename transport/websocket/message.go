package websocket

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	actionConnected = "connected"
	actionJoin      = "join"
	actionMove      = "move"
	actionRestart   = "restart"
	actionError     = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type MovePayload struct {
	RoomID string `json:"roomId"`
	Index  *int   `json:"index"`
}

func newMessage(action string, payload any) ([]byte, error) {
	message := Message{Action: action}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		message.Payload = raw
	}

	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

// decodeRoomID accepts both `"room"` and `{"roomId": "room"}` payloads.
func decodeRoomID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	var roomID string
	if err := json.Unmarshal(raw, &roomID); err == nil {
		return strings.TrimSpace(roomID), nil
	}

	var payload RoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return strings.TrimSpace(payload.RoomID), nil
}
