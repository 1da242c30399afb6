package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/testing/suite"
)

func newResult(roomID string, winner entity.Mark, finishedAt time.Time) *entity.GameResult {
	return &entity.GameResult{
		RoomID:        roomID,
		Board:         entity.Board{winner, winner, winner},
		Winner:        winner,
		WinningPlayer: "p1",
		Players: []entity.Player{
			{ID: "p1", Mark: entity.PlayerX},
			{ID: "p2", Mark: entity.PlayerO},
		},
		FinishedAt: finishedAt,
	}
}

func TestResultRepository_Save(t *testing.T) {
	ctx, st := suite.New(t)

	resultRepo := NewResultRepository(st.Storage, time.Hour, 10)

	// Given: a finished game
	result := newResult("room1", entity.PlayerX, time.Now().UTC())

	// When: Save is called
	err := resultRepo.Save(ctx, result)

	// Then: no error is returned and the key expires
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "results:room1").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}

func TestResultRepository_ListByRoomID(t *testing.T) {
	t.Run("ListByRoomID_NewestFirst", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, time.Hour, 10)

		// Given: two results saved in order
		first := newResult("room1", entity.PlayerX, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
		second := newResult("room1", entity.PlayerO, time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC))
		require.NoError(t, resultRepo.Save(ctx, first))
		require.NoError(t, resultRepo.Save(ctx, second))

		// When: listing the room results
		results, err := resultRepo.ListByRoomID(ctx, "room1")

		// Then: the latest result comes first
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, second, results[0])
		assert.Equal(t, first, results[1])
	})

	t.Run("ListByRoomID_Trimmed", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, 0, 2)

		// Given: three results for a repository that keeps two
		for range 3 {
			require.NoError(t, resultRepo.Save(ctx, newResult("room1", entity.PlayerX, time.Now().UTC())))
		}

		// When: listing the room results
		results, err := resultRepo.ListByRoomID(ctx, "room1")

		// Then: only two are kept
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("ListByRoomID_Unlimited", func(t *testing.T) {
		ctx, st := suite.New(t)

		// Given: repositories without a positive limit
		for _, limit := range []int{0, -1} {
			roomID := fmt.Sprintf("room%d", limit)
			resultRepo := NewResultRepository(st.Storage, time.Hour, limit)

			// When: three results are saved
			for range 3 {
				require.NoError(t, resultRepo.Save(ctx, newResult(roomID, entity.PlayerX, time.Now().UTC())))
			}

			// Then: all of them are kept
			results, err := resultRepo.ListByRoomID(ctx, roomID)
			require.NoError(t, err)
			assert.Len(t, results, 3, "limit %d", limit)
		}
	})

	t.Run("ListByRoomID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		resultRepo := NewResultRepository(st.Storage, time.Hour, 10)

		// When: listing a room without results
		results, err := resultRepo.ListByRoomID(ctx, "9999999")

		// Then: an empty list is returned
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
