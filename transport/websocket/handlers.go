package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
)

func (that *Server) handleJoin(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleJoin", "connectionID", c.id)

	roomID, err := decodeRoomID(msg.Payload)
	if err != nil {
		that.sendError(c, "invalid join payload")
		return nil
	}

	if roomID == "" {
		roomID = pkg.GenerateRoomID()
		log.Info("generated room id", "roomID", roomID)
	}

	if _, err = that.registry.Join(ctx, roomID, c.id); err != nil {
		// the registry already told the player the room is full
		if errors.Is(err, apperror.ErrRoomFull) {
			return nil
		}

		return fmt.Errorf("failed to join room %s: %w", roomID, err)
	}

	return nil
}

func (that *Server) handleMove(ctx context.Context, c *client, msg *Message) error {
	var payload MovePayload

	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Index == nil {
		that.sendError(c, "invalid move payload")
		return nil
	}

	that.dispatch(ctx, c, payload.RoomID, usecase.Event{Name: usecase.EventMove, Index: *payload.Index})

	return nil
}

func (that *Server) handleRestart(ctx context.Context, c *client, msg *Message) error {
	roomID, err := decodeRoomID(msg.Payload)
	if err != nil {
		that.sendError(c, "invalid restart payload")
		return nil
	}

	that.dispatch(ctx, c, roomID, usecase.Event{Name: usecase.EventRestart})

	return nil
}

// dispatch forwards a room event; rule violations and unknown rooms are dropped silently.
func (that *Server) dispatch(ctx context.Context, c *client, roomID string, event usecase.Event) {
	if err := that.registry.Dispatch(ctx, roomID, c.id, event); err != nil {
		that.logger.Debug("event rejected",
			"connectionID", c.id,
			"roomID", roomID,
			"event", event.Name,
			"error", err,
		)
	}
}
