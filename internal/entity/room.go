package entity

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

// Player binds one playing color to one connection within a room.
type Player struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Room is one match between exactly two seats. Every mutation goes
// through a method holding the room mutex, so at most one mutation is
// in flight per room regardless of how many connections act on it.
type Room struct {
	Code    string    `json:"code"`
	Board   Board     `json:"board"`
	Turn    string    `json:"player_turn,omitempty"`
	Winner  string    `json:"winner,omitempty"`
	Status  string    `json:"status"`
	Players []*Player `json:"players"`

	mu sync.Mutex
}

func NewRoom(code string) *Room {
	return &Room{
		Code:   code,
		Board:  NewBoard(),
		Turn:   PlayerRed,
		Status: StatusWaiting,
	}
}

// Seat assigns a color to connID: red for the first seat, yellow for the
// second. Seating the same connection twice returns its existing color.
func (that *Room) Seat(connID, name string) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, player := range that.Players {
		if player.ID == connID {
			return player.Color, nil
		}
	}

	if len(that.Players) >= 2 {
		return "", fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.Code)
	}

	color := PlayerRed
	if len(that.Players) == 1 {
		color = PlayerYellow
	}

	that.Players = append(that.Players, &Player{ID: connID, Name: name, Color: color})

	if len(that.Players) == 2 && that.Status == StatusWaiting {
		that.Status = StatusOngoing
	}

	return color, nil
}

// ApplyMove validates the move fully before touching any state: a
// rejected move is a complete no-op on the room.
func (that *Room) ApplyMove(connID string, column int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.playerByConn(connID)
	if player == nil {
		return apperror.ErrNotSeated
	}

	switch that.Status {
	case StatusFinished:
		return apperror.ErrGameAlreadyDecided
	case StatusWaiting:
		return apperror.ErrGameNotStarted
	}

	if that.Turn != player.Color {
		return apperror.ErrNotYourTurn
	}

	row, err := that.Board.Drop(column, player.Color)
	if err != nil {
		return err
	}

	switch {
	// a winning move that also fills the board is a win, not a draw
	case that.Board.CheckWin(row, column):
		that.Winner = player.Color
		that.Status = StatusFinished
		that.Turn = EmptyCell
	case that.Board.IsFull():
		that.Winner = PlayerDraw
		that.Status = StatusFinished
		that.Turn = EmptyCell
	default:
		that.Turn = toggleColor(player.Color)
	}

	return nil
}

// Reset reinitializes the board and hands the first move back to red.
// Seats and names are preserved. A room still waiting for an opponent
// has nothing to reset.
func (that *Room) Reset() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.Status == StatusWaiting {
		return apperror.ErrGameNotStarted
	}

	that.Board = NewBoard()
	that.Turn = PlayerRed
	that.Winner = EmptyCell

	if len(that.Players) == 2 {
		that.Status = StatusOngoing
	} else {
		that.Status = StatusWaiting
	}

	return nil
}

// Unseat releases the seat held by connID and reports whether any seats
// remain. The board is kept as it is.
func (that *Room) Unseat(connID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i, player := range that.Players {
		if player.ID == connID {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			break
		}
	}

	if len(that.Players) < 2 && that.Status == StatusOngoing {
		that.Status = StatusWaiting
	}

	return len(that.Players) > 0
}

// Connections returns the connection ids of every seated player.
func (that *Room) Connections() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	ids := make([]string, 0, len(that.Players))
	for _, player := range that.Players {
		ids = append(ids, player.ID)
	}

	return ids
}

// Snapshot returns an immutable copy of the room safe to hand to the
// transport layer, with connection ids masked out.
func (that *Room) Snapshot() *Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	snapshot := &Room{
		Code:   that.Code,
		Board:  that.Board,
		Turn:   that.Turn,
		Winner: that.Winner,
		Status: that.Status,
	}

	for _, player := range that.Players {
		snapshot.Players = append(snapshot.Players, &Player{Name: player.Name, Color: player.Color})
	}

	return snapshot
}

func (that *Room) playerByConn(connID string) *Player {
	for _, player := range that.Players {
		if player.ID == connID {
			return player
		}
	}

	return nil
}

func toggleColor(color string) string {
	if color == PlayerRed {
		return PlayerYellow
	}
	return PlayerRed
}
