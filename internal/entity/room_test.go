package entity

import (
	"testing"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOngoingRoom(t *testing.T) *Room {
	t.Helper()

	room := NewRoom("room-1")

	color, err := room.Seat("conn-red", "alice")
	require.NoError(t, err)
	require.Equal(t, PlayerRed, color)

	color, err = room.Seat("conn-yellow", "bob")
	require.NoError(t, err)
	require.Equal(t, PlayerYellow, color)

	return room
}

func TestRoom_Seat(t *testing.T) {
	t.Run("First seat is red and the room keeps waiting", func(t *testing.T) {
		// Given: a fresh room
		room := NewRoom("room-1")

		// When: the creator takes a seat
		color, err := room.Seat("conn-1", "alice")

		// Then: the creator plays red and the room waits for an opponent
		require.NoError(t, err)
		assert.Equal(t, PlayerRed, color)
		assert.Equal(t, StatusWaiting, room.Status)
	})

	t.Run("Second seat is yellow and the game starts", func(t *testing.T) {
		// Given: a room with one seat filled
		room := NewRoom("room-1")
		_, err := room.Seat("conn-1", "alice")
		require.NoError(t, err)

		// When: a second connection takes a seat
		color, err := room.Seat("conn-2", "bob")

		// Then: it plays yellow and the game is on
		require.NoError(t, err)
		assert.Equal(t, PlayerYellow, color)
		assert.Equal(t, StatusOngoing, room.Status)
	})

	t.Run("Third seat fails with ErrRoomFull", func(t *testing.T) {
		// Given: a room with both seats filled
		room := newOngoingRoom(t)

		// When: a third connection tries to sit down
		_, err := room.Seat("conn-3", "carol")

		// Then: the seat is refused and the room is unaffected
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Len(t, room.Players, 2)
	})

	t.Run("Seating the same connection twice returns its color", func(t *testing.T) {
		// Given: a room where conn-1 is already seated
		room := NewRoom("room-1")
		_, err := room.Seat("conn-1", "alice")
		require.NoError(t, err)

		// When: conn-1 asks for a seat again
		color, err := room.Seat("conn-1", "alice")

		// Then: it keeps red and no second seat is created
		require.NoError(t, err)
		assert.Equal(t, PlayerRed, color)
		assert.Len(t, room.Players, 1)
	})
}

func TestRoom_ApplyMove(t *testing.T) {
	t.Run("Rejects a move from an unseated connection", func(t *testing.T) {
		room := newOngoingRoom(t)

		err := room.ApplyMove("conn-stranger", 3)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrNotSeated)
	})

	t.Run("Rejects a move while the room waits for an opponent", func(t *testing.T) {
		// Given: a room with only the creator seated
		room := NewRoom("room-1")
		_, err := room.Seat("conn-red", "alice")
		require.NoError(t, err)

		// When: the creator tries to move alone
		err = room.ApplyMove("conn-red", 3)

		// Then: the move is rejected and the board stays empty
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrGameNotStarted)
		assert.Equal(t, NewBoard(), room.Board)
	})

	t.Run("Rejects a move out of turn without mutating anything", func(t *testing.T) {
		// Given: an ongoing game where red is to move
		room := newOngoingRoom(t)

		// When: yellow moves first
		err := room.ApplyMove("conn-yellow", 3)

		// Then: the move fails with ErrNotYourTurn and the room is untouched
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, NewBoard(), room.Board)
		assert.Equal(t, PlayerRed, room.Turn)
		assert.Empty(t, room.Winner)
	})

	t.Run("Accepted moves alternate strictly between colors", func(t *testing.T) {
		// Given: an ongoing game
		room := newOngoingRoom(t)

		// When: both players drop into separate columns in turn
		moves := []struct {
			connID string
			column int
		}{
			{"conn-red", 0}, {"conn-yellow", 1}, {"conn-red", 2}, {"conn-yellow", 3},
		}

		// Then: every move is accepted and the turn flips each time
		for i, move := range moves {
			require.NoError(t, room.ApplyMove(move.connID, move.column), "move %d", i)
		}
		assert.Equal(t, PlayerRed, room.Turn)
		assert.Equal(t, PlayerRed, room.Board[5][0])
		assert.Equal(t, PlayerYellow, room.Board[5][1])
	})

	t.Run("A drop into a full column is a complete no-op", func(t *testing.T) {
		// Given: column 0 filled by six alternating accepted moves
		room := newOngoingRoom(t)
		for i := 0; i < BoardRows; i++ {
			connID := "conn-red"
			if i%2 == 1 {
				connID = "conn-yellow"
			}
			require.NoError(t, room.ApplyMove(connID, 0))
		}
		boardBefore := room.Board
		turnBefore := room.Turn

		// When: the current player drops into column 0 again
		err := room.ApplyMove("conn-red", 0)

		// Then: the move fails with ErrColumnFull and no state changed
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrColumnFull)
		assert.Equal(t, boardBefore, room.Board)
		assert.Equal(t, turnBefore, room.Turn)
		assert.Empty(t, room.Winner)
		assert.Equal(t, StatusOngoing, room.Status)
	})

	t.Run("An out-of-range column is a complete no-op", func(t *testing.T) {
		room := newOngoingRoom(t)

		err := room.ApplyMove("conn-red", BoardCols)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrInvalidColumn)
		assert.Equal(t, NewBoard(), room.Board)
		assert.Equal(t, PlayerRed, room.Turn)
	})

	t.Run("Red wins with four on the bottom row", func(t *testing.T) {
		// Given: alternating drops where red fills (5,0)..(5,3) and yellow
		// stacks on top of red's discs
		room := newOngoingRoom(t)
		moves := []struct {
			connID string
			column int
		}{
			{"conn-red", 0}, {"conn-yellow", 0},
			{"conn-red", 1}, {"conn-yellow", 1},
			{"conn-red", 2}, {"conn-yellow", 2},
		}
		for _, move := range moves {
			require.NoError(t, room.ApplyMove(move.connID, move.column))
		}

		// When: red drops the fourth disc at (5,3)
		require.NoError(t, room.ApplyMove("conn-red", 3))

		// Then: red wins and the game is decided
		assert.Equal(t, PlayerRed, room.Winner)
		assert.Equal(t, StatusFinished, room.Status)
		assert.Empty(t, room.Turn)

		// And: no further drop is accepted until a reset
		err := room.ApplyMove("conn-yellow", 4)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrGameAlreadyDecided)
	})

	t.Run("A full board without a line is a draw", func(t *testing.T) {
		// Given: an ongoing game one drop away from a full, line-free board
		room := newOngoingRoom(t)
		room.Board = buildBoard(t, [BoardRows]string{
			"yyrryy.",
			"rryyrry",
			"yyrryyr",
			"rryyrry",
			"yyrryyr",
			"rryyrry",
		})
		room.Turn = PlayerRed

		// When: red fills the last cell without completing a line
		require.NoError(t, room.ApplyMove("conn-red", 6))

		// Then: the game is decided as a draw
		assert.Equal(t, PlayerDraw, room.Winner)
		assert.Equal(t, StatusFinished, room.Status)
	})

	t.Run("A winning move that fills the board is a win, not a draw", func(t *testing.T) {
		// Given: a board where the last empty cell completes a vertical line
		room := newOngoingRoom(t)
		room.Board = buildBoard(t, [BoardRows]string{
			"yyrryy.",
			"rryyrrr",
			"yyrryyr",
			"rryyrrr",
			"yyrryyy",
			"rryyrry",
		})
		room.Turn = PlayerRed

		// When: red drops the filling, winning disc into column 6
		require.NoError(t, room.ApplyMove("conn-red", 6))

		// Then: win takes precedence over draw
		assert.Equal(t, PlayerRed, room.Winner)
		assert.Equal(t, StatusFinished, room.Status)
	})
}

func TestRoom_Reset(t *testing.T) {
	t.Run("Nothing to reset while waiting for an opponent", func(t *testing.T) {
		room := NewRoom("room-1")
		_, err := room.Seat("conn-red", "alice")
		require.NoError(t, err)

		err = room.Reset()

		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrGameNotStarted)
	})

	t.Run("Reset after moves restores the freshly created state", func(t *testing.T) {
		// Given: an ongoing game with a few accepted moves
		room := newOngoingRoom(t)
		require.NoError(t, room.ApplyMove("conn-red", 3))
		require.NoError(t, room.ApplyMove("conn-yellow", 3))

		// When: the game is reset
		require.NoError(t, room.Reset())

		// Then: the board and turn match a just-created room, seats intact
		assert.Equal(t, NewBoard(), room.Board)
		assert.Equal(t, PlayerRed, room.Turn)
		assert.Empty(t, room.Winner)
		assert.Equal(t, StatusOngoing, room.Status)
		assert.Len(t, room.Players, 2)
	})

	t.Run("Reset revives a decided game", func(t *testing.T) {
		// Given: a decided game
		room := newOngoingRoom(t)
		room.Board = buildBoard(t, [BoardRows]string{
			".......",
			".......",
			".......",
			".......",
			".......",
			"rrr....",
		})
		room.Turn = PlayerRed
		require.NoError(t, room.ApplyMove("conn-red", 3))
		require.Equal(t, StatusFinished, room.Status)

		// When: the game is reset
		require.NoError(t, room.Reset())

		// Then: the winner is cleared and play can resume
		assert.Empty(t, room.Winner)
		assert.Equal(t, StatusOngoing, room.Status)
		require.NoError(t, room.ApplyMove("conn-red", 0))
	})
}

func TestRoom_Unseat(t *testing.T) {
	t.Run("Releasing one seat keeps the room alive and the board intact", func(t *testing.T) {
		// Given: an ongoing game with one disc played
		room := newOngoingRoom(t)
		require.NoError(t, room.ApplyMove("conn-red", 3))

		// When: yellow's connection drops
		remaining := room.Unseat("conn-yellow")

		// Then: a seat remains, the board is kept, and the room waits again
		assert.True(t, remaining)
		assert.Equal(t, PlayerRed, room.Board[5][3])
		assert.Equal(t, StatusWaiting, room.Status)
		assert.Len(t, room.Players, 1)
	})

	t.Run("Releasing the last seat empties the room", func(t *testing.T) {
		room := newOngoingRoom(t)

		require.True(t, room.Unseat("conn-yellow"))
		assert.False(t, room.Unseat("conn-red"))
		assert.Empty(t, room.Players)
	})
}

func TestRoom_Snapshot(t *testing.T) {
	t.Run("Snapshot masks connection ids and copies the board", func(t *testing.T) {
		// Given: an ongoing game with one disc played
		room := newOngoingRoom(t)
		require.NoError(t, room.ApplyMove("conn-red", 0))

		// When: a snapshot is taken and then scribbled on
		snapshot := room.Snapshot()
		snapshot.Board[5][6] = PlayerYellow

		// Then: the snapshot mirrors the room without connection ids and
		// mutating it does not touch the room
		require.Len(t, snapshot.Players, 2)
		for _, player := range snapshot.Players {
			assert.Empty(t, player.ID)
			assert.NotEmpty(t, player.Name)
		}
		assert.Equal(t, PlayerRed, snapshot.Board[5][0])
		assert.Equal(t, EmptyCell, room.Board[5][6])
		assert.Equal(t, room.Turn, snapshot.Turn)
		assert.Equal(t, room.Status, snapshot.Status)
	})
}
