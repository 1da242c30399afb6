package usecase

import "github.com/rocketscienceinc/tictactoe-rooms/internal/entity"

// Outbound events.
const (
	EventPlayerAssigned = "playerAssigned"
	EventRoomStatus     = "roomStatus"
	EventRoomFull       = "roomFull"
	EventGameStart      = "gameStart"
	EventBoardUpdate    = "boardUpdate"
	EventGameOver       = "gameOver"
	EventGameRestart    = "gameRestart"
	EventOpponentLeft   = "opponentLeft"
	EventRoomClosed     = "roomClosed"
)

// Inbound events routed through Dispatch.
const (
	EventMove    = "move"
	EventRestart = "restart"
)

// Event is an inbound room event from one connection.
type Event struct {
	Name  string
	Index int
}

type RoomStatusPayload struct {
	RoomID       string `json:"roomId"`
	PlayersCount int    `json:"playersCount"`
}

type GameStatePayload struct {
	Board       entity.Board `json:"board"`
	CurrentTurn *string      `json:"currentTurn"`
}

type GameOverPayload struct {
	Board             entity.Board `json:"board"`
	Winner            *entity.Mark `json:"winner"`
	WinningConnection *string      `json:"winningConnection"`
}

type RoomClosedPayload struct {
	RoomID string `json:"roomId"`
}

// RoomSnapshot is a read-only view of a room.
type RoomSnapshot struct {
	RoomID      string          `json:"roomId"`
	Status      string          `json:"status"`
	Board       entity.Board    `json:"board"`
	CurrentTurn *string         `json:"currentTurn"`
	Players     []entity.Player `json:"players"`
}

func newGameStatePayload(game *entity.Game) GameStatePayload {
	return GameStatePayload{
		Board:       game.Board,
		CurrentTurn: optional(game.Turn),
	}
}

func newGameOverPayload(game *entity.Game) GameOverPayload {
	payload := GameOverPayload{
		Board:             game.Board,
		WinningConnection: optional(game.WinningPlayer),
	}

	if game.Winner != entity.EmptyCell {
		winner := game.Winner
		payload.Winner = &winner
	}

	return payload
}

func newRoomSnapshot(game *entity.Game) *RoomSnapshot {
	players := make([]entity.Player, 0, len(game.Players))
	for _, player := range game.Players {
		players = append(players, *player)
	}

	return &RoomSnapshot{
		RoomID:      game.ID,
		Status:      game.Status(),
		Board:       game.Board,
		CurrentTurn: optional(game.Turn),
		Players:     players,
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
