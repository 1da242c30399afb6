package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const saveTimeout = 2 * time.Second

// notifier delivers an event to a single connection. It must not block.
type notifier interface {
	Send(connectionID, event string, payload any)
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.GameResult) error
}

type registryMetrics interface {
	SetActiveRooms(count int)
	IncGamesFinished(outcome string)
}

// JoinResult describes the seat a connection received.
type JoinResult struct {
	Mark         entity.Mark
	PlayersCount int
}

type room struct {
	mutex        sync.Mutex
	game         *entity.Game
	lastActivity time.Time
	closed       bool
}

// RoomRegistry maps room identifiers to game sessions and routes connection events.
// Lock order is registry first, then room.
type RoomRegistry struct {
	logger     *slog.Logger
	notifier   notifier
	resultRepo resultRepo
	metrics    registryMetrics
	now        func() time.Time

	mutex       sync.RWMutex
	rooms       map[string]*room
	memberships map[string]map[string]struct{} // connectionID -> roomIDs
}

func NewRoomRegistry(logger *slog.Logger, notifier notifier, resultRepo resultRepo, metrics registryMetrics) *RoomRegistry {
	return &RoomRegistry{
		logger:     logger.With("component", "room_registry"),
		notifier:   notifier,
		resultRepo: resultRepo,
		metrics:    metrics,
		now:        time.Now,

		rooms:       make(map[string]*room),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Join attaches a connection to a room, creating the room on first join.
func (that *RoomRegistry) Join(_ context.Context, roomID, connectionID string) (*JoinResult, error) {
	log := that.logger.With("method", "Join", "roomID", roomID, "connectionID", connectionID)

	that.mutex.Lock()
	defer that.mutex.Unlock()

	existing, ok := that.rooms[roomID]
	if !ok {
		existing = &room{game: entity.NewGame(roomID)}
		that.rooms[roomID] = existing
		log.Info("room created")
	}

	existing.mutex.Lock()
	defer existing.mutex.Unlock()

	game := existing.game
	rejoined := game.HasPlayer(connectionID)

	player, err := game.AddPlayer(connectionID)
	if err != nil {
		if errors.Is(err, apperror.ErrRoomFull) {
			that.notifier.Send(connectionID, EventRoomFull, nil)
			log.Info("room is full")
		}

		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	existing.lastActivity = that.now()
	that.addMembership(connectionID, roomID)
	that.metrics.SetActiveRooms(len(that.rooms))

	that.notifier.Send(connectionID, EventPlayerAssigned, player.Mark)

	if !rejoined && len(game.Players) == entity.MaxPlayers {
		that.broadcast(game, EventGameStart, newGameStatePayload(game))
		log.Info("game started")
	}

	that.notifier.Send(connectionID, EventRoomStatus, RoomStatusPayload{
		RoomID:       roomID,
		PlayersCount: len(game.Players),
	})

	log.Info("player joined", "mark", player.Mark, "playersCount", len(game.Players))

	return &JoinResult{Mark: player.Mark, PlayersCount: len(game.Players)}, nil
}

// Dispatch routes a room event from a connection to the room's game session.
func (that *RoomRegistry) Dispatch(ctx context.Context, roomID, connectionID string, event Event) error {
	switch event.Name {
	case EventMove:
		return that.Move(ctx, roomID, connectionID, event.Index)
	case EventRestart:
		return that.Restart(ctx, roomID, connectionID)
	default:
		return fmt.Errorf("%w: %s", apperror.ErrUnknownAction, event.Name)
	}
}

// Move applies a move and broadcasts either the new board or the game result.
// A finished game is archived after the room lock is released.
func (that *RoomRegistry) Move(ctx context.Context, roomID, connectionID string, cell int) error {
	log := that.logger.With("method", "Move", "roomID", roomID, "connectionID", connectionID)

	result, err := that.applyMove(roomID, connectionID, cell)
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}

	saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	if err = that.resultRepo.Save(saveCtx, result); err != nil {
		log.Error("failed to save game result", "error", err)
	}

	return nil
}

// applyMove runs the move under the room lock and returns the result when it ends the game.
func (that *RoomRegistry) applyMove(roomID, connectionID string, cell int) (*entity.GameResult, error) {
	log := that.logger.With("method", "applyMove", "roomID", roomID, "connectionID", connectionID)

	existing, err := that.getRoom(roomID)
	if err != nil {
		return nil, err
	}

	existing.mutex.Lock()
	defer existing.mutex.Unlock()

	if existing.closed {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	game := existing.game
	if err = game.MakeTurn(connectionID, cell); err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	existing.lastActivity = that.now()

	if !game.IsFinished() {
		that.broadcast(game, EventBoardUpdate, newGameStatePayload(game))
		return nil, nil
	}

	that.broadcast(game, EventGameOver, newGameOverPayload(game))

	result := entity.NewGameResult(game, existing.lastActivity)
	if result.IsDraw() {
		that.metrics.IncGamesFinished("draw")
	} else {
		that.metrics.IncGamesFinished("win")
	}

	log.Info("game over", "winner", game.Winner)

	return result, nil
}

// Restart resets the room's game; the earliest remaining joiner moves first.
func (that *RoomRegistry) Restart(_ context.Context, roomID, connectionID string) error {
	log := that.logger.With("method", "Restart", "roomID", roomID, "connectionID", connectionID)

	existing, err := that.getRoom(roomID)
	if err != nil {
		return err
	}

	existing.mutex.Lock()
	defer existing.mutex.Unlock()

	if existing.closed {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	game := existing.game
	if err = game.Restart(); err != nil {
		return fmt.Errorf("failed to restart game: %w", err)
	}

	existing.lastActivity = that.now()
	that.broadcast(game, EventGameRestart, newGameStatePayload(game))

	log.Info("game restarted")

	return nil
}

// Disconnect removes a connection from every room it occupies.
func (that *RoomRegistry) Disconnect(_ context.Context, connectionID string) {
	log := that.logger.With("method", "Disconnect", "connectionID", connectionID)

	that.mutex.Lock()
	defer that.mutex.Unlock()

	for roomID := range that.memberships[connectionID] {
		existing, ok := that.rooms[roomID]
		if !ok {
			continue
		}

		existing.mutex.Lock()

		existing.game.RemovePlayer(connectionID)

		if existing.game.IsEmpty() {
			existing.closed = true
			delete(that.rooms, roomID)
			log.Info("room deleted", "roomID", roomID)
		} else {
			existing.lastActivity = that.now()
			that.broadcast(existing.game, EventOpponentLeft, nil)
			log.Info("player left room", "roomID", roomID)
		}

		existing.mutex.Unlock()
	}

	delete(that.memberships, connectionID)
	that.metrics.SetActiveRooms(len(that.rooms))
}

// Reap deletes rooms idle for longer than idleTimeout and returns how many were removed.
func (that *RoomRegistry) Reap(idleTimeout time.Duration) int {
	log := that.logger.With("method", "Reap")

	that.mutex.Lock()
	defer that.mutex.Unlock()

	now := that.now()
	reaped := 0

	for roomID, existing := range that.rooms {
		existing.mutex.Lock()

		if now.Sub(existing.lastActivity) > idleTimeout {
			that.broadcast(existing.game, EventRoomClosed, RoomClosedPayload{RoomID: roomID})

			for _, player := range existing.game.Players {
				that.removeMembership(player.ID, roomID)
			}

			existing.closed = true
			delete(that.rooms, roomID)
			reaped++

			log.Info("idle room reaped", "roomID", roomID)
		}

		existing.mutex.Unlock()
	}

	if reaped > 0 {
		that.metrics.SetActiveRooms(len(that.rooms))
	}

	return reaped
}

// RunReaper reaps idle rooms every interval until ctx is done.
func (that *RoomRegistry) RunReaper(ctx context.Context, interval, idleTimeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.Reap(idleTimeout)
		}
	}
}

// Snapshot returns a copy of the room state.
func (that *RoomRegistry) Snapshot(roomID string) (*RoomSnapshot, error) {
	existing, err := that.getRoom(roomID)
	if err != nil {
		return nil, err
	}

	existing.mutex.Lock()
	defer existing.mutex.Unlock()

	return newRoomSnapshot(existing.game), nil
}

func (that *RoomRegistry) RoomsCount() int {
	that.mutex.RLock()
	defer that.mutex.RUnlock()

	return len(that.rooms)
}

func (that *RoomRegistry) getRoom(roomID string) (*room, error) {
	that.mutex.RLock()
	defer that.mutex.RUnlock()

	existing, ok := that.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return existing, nil
}

// broadcast sends an event to every player of the game; callers hold the room lock.
func (that *RoomRegistry) broadcast(game *entity.Game, event string, payload any) {
	for _, player := range game.Players {
		that.notifier.Send(player.ID, event, payload)
	}
}

func (that *RoomRegistry) addMembership(connectionID, roomID string) {
	rooms, ok := that.memberships[connectionID]
	if !ok {
		rooms = make(map[string]struct{})
		that.memberships[connectionID] = rooms
	}

	rooms[roomID] = struct{}{}
}

func (that *RoomRegistry) removeMembership(connectionID, roomID string) {
	rooms, ok := that.memberships[connectionID]
	if !ok {
		return
	}

	delete(rooms, roomID)
	if len(rooms) == 0 {
		delete(that.memberships, connectionID)
	}
}
