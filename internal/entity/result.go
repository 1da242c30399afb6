package entity

import "time"

// GameResult is the archived outcome of one finished game.
type GameResult struct {
	RoomID        string    `json:"room_id"`
	Board         Board     `json:"board"`
	Winner        Mark      `json:"winner"`
	WinningPlayer string    `json:"winning_player,omitempty"`
	Players       []Player  `json:"players"`
	FinishedAt    time.Time `json:"finished_at"`
}

func NewGameResult(game *Game, finishedAt time.Time) *GameResult {
	players := make([]Player, 0, len(game.Players))
	for _, player := range game.Players {
		players = append(players, *player)
	}

	return &GameResult{
		RoomID:        game.ID,
		Board:         game.Board,
		Winner:        game.Winner,
		WinningPlayer: game.WinningPlayer,
		Players:       players,
		FinishedAt:    finishedAt,
	}
}

func (that *GameResult) IsDraw() bool {
	return that.Winner == EmptyCell
}
