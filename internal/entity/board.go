package entity

import (
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

const (
	BoardRows = 6
	BoardCols = 7

	winLength = 4
)

const (
	PlayerRed    = "red"
	PlayerYellow = "yellow"
	PlayerDraw   = "draw"

	EmptyCell = ""
)

// The four axes a winning line can lie on. Each pair is a row/column step.
var winDirections = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal down-right
	{1, -1}, // diagonal down-left
}

// Board is a fixed grid of cells. Row 0 is the top row, row 5 the bottom.
// Within any column the empty cells are always contiguous from the top:
// a disc settles on the lowest empty cell and filled cells never move
// except by a full reset.
type Board [BoardRows][BoardCols]string

func NewBoard() Board {
	return Board{}
}

// CanDrop reports whether a disc can still be dropped into column.
func (that *Board) CanDrop(column int) bool {
	if column < 0 || column >= BoardCols {
		return false
	}
	return that[0][column] == EmptyCell
}

// Drop places player's disc into column, letting it settle on the lowest
// empty cell, and returns the row it landed in. The board is untouched
// when an error is returned.
func (that *Board) Drop(column int, player string) (int, error) {
	if column < 0 || column >= BoardCols {
		return 0, fmt.Errorf("%w: column %d", apperror.ErrInvalidColumn, column)
	}

	for row := BoardRows - 1; row >= 0; row-- {
		if that[row][column] == EmptyCell {
			that[row][column] = player
			return row, nil
		}
	}

	return 0, fmt.Errorf("%w: column %d", apperror.ErrColumnFull, column)
}

// CheckWin reports whether the cell at (row, column) completes a line of
// four. It is anchored at the cell just written by Drop - a win can only
// be created by the piece just placed, so no full-board scan is needed.
func (that *Board) CheckWin(row, column int) bool {
	player := that[row][column]
	if player == EmptyCell {
		return false
	}

	for _, dir := range winDirections {
		count := 1

		// extend the run from the anchor in both directions along the axis,
		// stopping at the first cell that breaks it
		for _, sign := range [2]int{1, -1} {
			for i := 1; i < winLength; i++ {
				r := row + i*dir[0]*sign
				c := column + i*dir[1]*sign

				if r < 0 || r >= BoardRows || c < 0 || c >= BoardCols {
					break
				}
				if that[r][c] != player {
					break
				}

				count++
			}
		}

		if count >= winLength {
			return true
		}
	}

	return false
}

// IsFull reports whether no column has room left. Given the gravity
// invariant it is enough to look at the top row.
func (that *Board) IsFull() bool {
	for _, cell := range that[0] {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}
