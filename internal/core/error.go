package core

import (
	"errors"
	"fmt"
)

// Rule violations raised by the board and reserve model.
var (
	ErrInvalidPiece     = errors.New("invalid piece")
	ErrInvalidSlot      = errors.New("reserve slot out of range")
	ErrEmptySlot        = errors.New("reserve slot is empty")
	ErrIllegalReplenish = errors.New("reserve slot already holds a piece")
	ErrOutOfBounds      = errors.New("coordinate out of bounds")
	ErrIllegalCapture   = errors.New("destination holds a piece of equal or larger size")
	ErrEmptyCell        = errors.New("cell is empty")
	ErrNotYourPiece     = errors.New("piece belongs to the opponent")
	ErrMalformedBoard   = errors.New("malformed board")
)

// ValidationError reports a malformed snapshot or move argument.
// It is caller-fixable and never retried.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Err.Error()
	}
	return fmt.Sprintf("validation: %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IllegalMoveError reports a move rejected by the legality rules.
type IllegalMoveError struct {
	Owner Owner
	Move  Move
	Err   error
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s for %s: %v", e.Move, e.Owner, e.Err)
}

func (e *IllegalMoveError) Unwrap() error { return e.Err }

// Error codes carried in ErrorResponse.Code
const (
	CodeGameNotFound   = "GAME_NOT_FOUND"
	CodeInvalidMove    = "INVALID_MOVE"
	CodeGameOver       = "GAME_OVER"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodeInvalidContent = "INVALID_CONTENT_TYPE"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
)
