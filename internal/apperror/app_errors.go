package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrRoomFull         = errors.New("room is full")
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotSeated        = errors.New("player is not seated in the room")
	ErrAlreadySeated    = errors.New("player is already seated in a room")
	ErrMalformedPayload = errors.New("malformed payload")
)
