package apperror

import "errors"

var (
	ErrGameFinished  = errors.New("game is already finished")
	ErrColumnFull    = errors.New("column is full")
	ErrPeerGone      = errors.New("peer disconnected")
	ErrMatchNotFound = errors.New("match not found")
	ErrLineTooLong   = errors.New("line exceeds maximum length")
)
