package board

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is the root of every move rejection. ApplyMove and friends never
// mutate the position when they return an error wrapping it.
var ErrIllegalMove = errors.New("illegal move")

var (
	ErrNoPiece          = fmt.Errorf("%w: no piece on source square", ErrIllegalMove)
	ErrKingCapture      = fmt.Errorf("%w: destination holds a king", ErrIllegalMove)
	ErrPromotionPending = fmt.Errorf("%w: a pawn is waiting for promotion", ErrIllegalMove)
	ErrInvalidPromotion = fmt.Errorf("%w: invalid promotion", ErrIllegalMove)
)

var (
	ErrNotPromotable = errors.New("no pawn awaiting promotion on square")
	ErrInvalidSquare = errors.New("invalid square")
	ErrInvalidFEN    = errors.New("invalid FEN")
)
