package errors

import "errors"

var (
	ErrBoardNotFound    = errors.New("board not found")
	ErrInvalidBoardSize = errors.New("invalid board size")
	ErrInvalidColor     = errors.New("invalid color")
	ErrInvalidOrder     = errors.New("invalid coordinate order")
	ErrInvalidHash      = errors.New("invalid position hash")
	ErrPositionRepeated = errors.New("position repeats an earlier one")
	ErrInternal         = errors.New("internal error")
)
