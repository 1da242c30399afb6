package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.GameResult) error
	ListByRoomID(ctx context.Context, roomID string) ([]*entity.GameResult, error)
}

type dbResult struct {
	client *redis.Client
	ttl    time.Duration
	limit  int64
}

// NewResultRepository keeps the latest limit results per room for ttl.
// A limit below one keeps every result.
func NewResultRepository(client *redis.Client, ttl time.Duration, limit int) ResultRepository {
	return &dbResult{
		client: client,
		ttl:    ttl,
		limit:  int64(limit),
	}
}

func resultsKey(roomID string) string {
	return "results:" + roomID
}

func (that *dbResult) Save(ctx context.Context, result *entity.GameResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal game result: %w", err)
	}

	key := resultsKey(result.RoomID)

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, resultJSON)
		if that.limit > 0 {
			pipe.LTrim(ctx, key, 0, that.limit-1)
		}
		if that.ttl > 0 {
			pipe.Expire(ctx, key, that.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save game result: %w", err)
	}

	return nil
}

// ListByRoomID returns results newest first; an unknown room yields an empty list.
func (that *dbResult) ListByRoomID(ctx context.Context, roomID string) ([]*entity.GameResult, error) {
	response, err := that.client.LRange(ctx, resultsKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game results: %w", err)
	}

	results := make([]*entity.GameResult, 0, len(response))
	for _, item := range response {
		var result entity.GameResult
		if err = json.Unmarshal([]byte(item), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game result: %w", err)
		}

		results = append(results, &result)
	}

	return results, nil
}
