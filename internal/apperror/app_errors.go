package apperror

import "errors"

var (
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrInvalidMark       = errors.New("invalid player mark")
	ErrRoleNotBound      = errors.New("session is not bound to the claimed role")
	ErrHistoryOutOfRange = errors.New("history index out of range")

	ErrUnknownMessageType = errors.New("unknown message type")
	ErrMalformedMessage   = errors.New("malformed message")

	ErrSessionClosed  = errors.New("session is closed")
	ErrSendBufferFull = errors.New("session send buffer is full")

	ErrStateNotFound = errors.New("room state not found")
)
