package apperror

import "errors"

var (
	ErrInvalidColumn      = errors.New("column index out of range")
	ErrColumnFull         = errors.New("column is already full")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrGameAlreadyDecided = errors.New("game is already decided")
	ErrGameNotStarted     = errors.New("game is not started")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is already full")
	ErrNotSeated          = errors.New("connection is not seated in any room")
)
