package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

// MaxPlayers is the capacity of a room.
const MaxPlayers = 2

// Game is the authoritative state of one room.
type Game struct {
	ID      string    `json:"id"`
	Board   Board     `json:"board"`
	Players []*Player `json:"players"`
	Turn    string    `json:"turn"`

	// Winner and WinningPlayer are set once the game is finished; both stay empty on a draw.
	Winner        Mark   `json:"winner"`
	WinningPlayer string `json:"winning_player"`
	Finished      bool   `json:"finished"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:      id,
		Players: make([]*Player, 0, MaxPlayers),
	}
}

// AddPlayer attaches a connection to the game. Joining twice returns the existing seat.
func (that *Game) AddPlayer(playerID string) (*Player, error) {
	if player, ok := that.Player(playerID); ok {
		return player, nil
	}

	if len(that.Players) >= MaxPlayers {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrRoomFull, that.ID)
	}

	// first joiner plays X, second joiner plays O
	mark := PlayerX
	if len(that.Players) == 1 {
		mark = PlayerO
	}

	player := &Player{ID: playerID, Mark: mark}
	that.Players = append(that.Players, player)

	// the seat of a departed player comes with its turn
	if !that.HasPlayer(that.Turn) {
		that.Turn = playerID
	}

	return player, nil
}

// RemovePlayer detaches a connection, leaving board and turn untouched.
func (that *Game) RemovePlayer(playerID string) bool {
	for i, player := range that.Players {
		if player.ID == playerID {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return true
		}
	}

	return false
}

func (that *Game) Player(playerID string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID == playerID {
			return player, true
		}
	}

	return nil, false
}

func (that *Game) HasPlayer(playerID string) bool {
	_, ok := that.Player(playerID)
	return ok
}

// Opponent returns the other attached player, if any.
func (that *Game) Opponent(playerID string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID != playerID {
			return player, true
		}
	}

	return nil, false
}

func (that *Game) IsEmpty() bool {
	return len(that.Players) == 0
}

// MakeTurn validates and applies a move by the given connection.
func (that *Game) MakeTurn(playerID string, cell int) error {
	if that.Finished {
		return apperror.ErrGameFinished
	}

	player, ok := that.Player(playerID)
	if !ok {
		return fmt.Errorf("%w: player %s", apperror.ErrNotInRoom, playerID)
	}

	if len(that.Players) < MaxPlayers {
		return apperror.ErrGameIsNotStarted
	}

	if that.Turn != playerID {
		return apperror.ErrNotYourTurn
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = player.Mark
	that.UpdateGameState(player)

	return nil
}

// DetermineGameResult reports the winning mark and whether the game is over.
// A winner is checked before a draw, so a full board with a triple is a win.
func (that *Game) DetermineGameResult() (Mark, bool) {
	if winner := that.Board.Winner(); winner != EmptyCell {
		return winner, true
	}

	return EmptyCell, that.Board.IsFull()
}

// UpdateGameState finishes the game or passes the turn after a move by mover.
func (that *Game) UpdateGameState(mover *Player) {
	winner, over := that.DetermineGameResult()
	if over {
		that.Finished = true
		that.Winner = winner
		if winner != EmptyCell {
			that.WinningPlayer = mover.ID
		}
		return
	}

	if opponent, ok := that.Opponent(mover.ID); ok {
		that.Turn = opponent.ID
	}
}

// Restart clears the board and gives the turn back to the earliest remaining joiner.
func (that *Game) Restart() error {
	if that.IsEmpty() {
		return apperror.ErrGameIsNotStarted
	}

	that.Board = Board{}
	that.Finished = false
	that.Winner = EmptyCell
	that.WinningPlayer = ""
	that.Turn = that.Players[0].ID

	return nil
}

func (that *Game) Status() string {
	switch {
	case that.Finished:
		return StatusFinished
	case len(that.Players) < MaxPlayers:
		return StatusWaiting
	default:
		return StatusOngoing
	}
}

func (that *Game) IsFinished() bool {
	return that.Status() == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status() == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status() == StatusWaiting
}
