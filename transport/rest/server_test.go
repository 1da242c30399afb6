package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/monitor"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
)

type mockRoomReader struct {
	mock.Mock
}

func (that *mockRoomReader) Snapshot(roomID string) (*usecase.RoomSnapshot, error) {
	args := that.Called(roomID)
	snapshot, _ := args.Get(0).(*usecase.RoomSnapshot)
	return snapshot, args.Error(1)
}

type mockResultReader struct {
	mock.Mock
}

func (that *mockResultReader) ListByRoomID(ctx context.Context, roomID string) ([]*entity.GameResult, error) {
	args := that.Called(ctx, roomID)
	results, _ := args.Get(0).([]*entity.GameResult)
	return results, args.Error(1)
}

func newTestServer(t *testing.T) (*httptest.Server, *mockRoomReader, *mockResultReader, *monitor.Metrics) {
	t.Helper()

	rooms := &mockRoomReader{}
	results := &mockResultReader{}
	metrics := monitor.NewMetrics()

	server := New(slog.New(slog.DiscardHandler), rooms, results, metrics.Handler())
	httpServer := httptest.NewServer(server.Handler())

	t.Cleanup(func() {
		httpServer.Close()
		rooms.AssertExpectations(t)
		results.AssertExpectations(t)
	})

	return httpServer, rooms, results, metrics
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func TestServer_Ping(t *testing.T) {
	httpServer, _, _, _ := newTestServer(t)

	resp, body := get(t, httpServer.URL+"/ping")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestServer_Metrics(t *testing.T) {
	httpServer, _, _, metrics := newTestServer(t)

	metrics.SetActiveRooms(3)

	resp, body := get(t, httpServer.URL+"/metrics")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "tictactoe_active_rooms 3")
}

func TestServer_GetRoom(t *testing.T) {
	t.Run("Existing room", func(t *testing.T) {
		httpServer, rooms, _, _ := newTestServer(t)

		// Given: a room with one player waiting
		turn := "conn-1"
		rooms.On("Snapshot", "room1").Return(&usecase.RoomSnapshot{
			RoomID:      "room1",
			Status:      entity.StatusWaiting,
			CurrentTurn: &turn,
			Players:     []entity.Player{{ID: "conn-1", Mark: entity.PlayerX}},
		}, nil)

		// When: the room is requested
		resp, body := get(t, httpServer.URL+"/rooms/room1")

		// Then: the snapshot is returned as JSON
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var snapshot usecase.RoomSnapshot
		require.NoError(t, json.Unmarshal(body, &snapshot))
		assert.Equal(t, "room1", snapshot.RoomID)
		assert.Equal(t, entity.StatusWaiting, snapshot.Status)
		assert.Equal(t, []entity.Player{{ID: "conn-1", Mark: entity.PlayerX}}, snapshot.Players)
	})

	t.Run("Unknown room", func(t *testing.T) {
		httpServer, rooms, _, _ := newTestServer(t)

		rooms.On("Snapshot", "missing").Return(nil, fmt.Errorf("%w: missing", apperror.ErrRoomNotFound))

		resp, _ := get(t, httpServer.URL+"/rooms/missing")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServer_GetResults(t *testing.T) {
	t.Run("Archived results", func(t *testing.T) {
		httpServer, _, results, _ := newTestServer(t)

		// Given: one archived win
		result := &entity.GameResult{
			RoomID:        "room1",
			Winner:        entity.PlayerX,
			WinningPlayer: "conn-1",
			Players:       []entity.Player{{ID: "conn-1", Mark: entity.PlayerX}, {ID: "conn-2", Mark: entity.PlayerO}},
			FinishedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		}
		results.On("ListByRoomID", mock.Anything, "room1").Return([]*entity.GameResult{result}, nil)

		// When: the results are requested
		resp, body := get(t, httpServer.URL+"/rooms/room1/results")

		// Then: they are returned as a JSON list
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got []*entity.GameResult
		require.NoError(t, json.Unmarshal(body, &got))
		require.Len(t, got, 1)
		assert.Equal(t, result, got[0])
	})

	t.Run("Storage failure", func(t *testing.T) {
		httpServer, _, results, _ := newTestServer(t)

		results.On("ListByRoomID", mock.Anything, "room1").Return(nil, errors.New("connection refused"))

		resp, _ := get(t, httpServer.URL+"/rooms/room1/results")

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}
