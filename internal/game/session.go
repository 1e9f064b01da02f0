// Package game runs a two-player game on top of the rules engine: whose turn it
// is, the promotion handshake, game end detection and the move history.
package game

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hailam/chessrules/internal/board"
)

var (
	ErrGameOver          = errors.New("game is over")
	ErrNotYourTurn       = errors.New("piece does not belong to the side to move")
	ErrPromotionRequired = errors.New("a pawn must be promoted first")
	ErrNoPromotion       = errors.New("no promotion pending")
)

// Status is the state of the game as a whole.
type Status int

const (
	Active Status = iota
	AwaitingPromotion
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case AwaitingPromotion:
		return "awaiting_promotion"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	}
	return "unknown"
}

// IsOver returns true for checkmate and stalemate.
func (s Status) IsOver() bool {
	return s == Checkmate || s == Stalemate
}

// Result describes a finished game.
type Result struct {
	Status   Status
	Winner   board.Color // NoColor for a stalemate
	Plies    int
	Duration time.Duration
	FinalFEN string
}

// Recorder is notified once when a game ends.
type Recorder interface {
	RecordGame(Result) error
}

// Session is a game between two players sharing one position.
// It is not safe for concurrent use.
type Session struct {
	pos      *board.Position
	current  board.Color
	status   Status
	winner   board.Color
	history  []board.MoveRecord
	pending  board.MoveRecord // Move waiting for its promotion piece
	started  time.Time
	recorder Recorder

	now func() time.Time
}

// NewSession starts a game from the standard position. rec may be nil.
func NewSession(rec Recorder) *Session {
	s := &Session{recorder: rec, now: time.Now}
	s.Reset()
	return s
}

// Reset starts a new game from the standard position.
func (s *Session) Reset() {
	s.start(board.NewPosition())
}

// LoadFEN starts a new game from a FEN position. The session is unchanged on error.
func (s *Session) LoadFEN(fen string) error {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	s.start(pos)
	return nil
}

func (s *Session) start(pos *board.Position) {
	s.pos = pos
	s.current = pos.Turn()
	s.status = Active
	s.winner = board.NoColor
	s.history = nil
	s.pending = board.MoveRecord{}
	s.started = s.now()
	s.updateStatus()
	if s.status.IsOver() {
		log.Printf("game: loaded a finished position (%v)", s.status)
	}
}

// Current returns the side to move.
func (s *Session) Current() board.Color { return s.current }

// Status returns the game status.
func (s *Session) Status() Status { return s.status }

// Winner returns the winning color after a checkmate.
func (s *Session) Winner() (board.Color, bool) {
	return s.winner, s.status == Checkmate
}

// Position returns a copy of the current position.
func (s *Session) Position() *board.Position { return s.pos.Clone() }

// FEN returns the current position in FEN.
func (s *Session) FEN() string { return s.pos.FEN() }

// InCheck returns true if the side to move is in check.
func (s *Session) InCheck() bool { return s.pos.InCheck(s.current) }

// PendingPromotion returns the square of the pawn waiting for promotion, or NoSquare.
func (s *Session) PendingPromotion() board.Square { return s.pos.PendingPromotion() }

// History returns the completed moves in order.
func (s *Session) History() []board.MoveRecord {
	out := make([]board.MoveRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Destinations returns the legal destinations of the piece on sq, which must
// belong to the side to move.
func (s *Session) Destinations(sq board.Square) (board.Bitboard, error) {
	if err := s.checkPlayable(); err != nil {
		return board.Empty, err
	}
	if err := s.checkOwner(sq); err != nil {
		return board.Empty, err
	}
	return s.pos.LegalDestinations(sq), nil
}

// Move plays from -> to for the side to move. A pawn reaching its last rank
// leaves the game in AwaitingPromotion until Promote is called.
func (s *Session) Move(from, to board.Square) (board.MoveRecord, error) {
	if err := s.checkPlayable(); err != nil {
		return board.MoveRecord{}, err
	}
	if err := s.checkOwner(from); err != nil {
		return board.MoveRecord{}, err
	}

	rec, err := s.pos.ApplyMove(from, to)
	if err != nil {
		return board.MoveRecord{}, err
	}
	if s.pos.PendingPromotion() != board.NoSquare {
		s.pending = rec
		s.status = AwaitingPromotion
		return rec, nil
	}
	s.complete(rec)
	return rec, nil
}

// MovePromote plays a pawn move to the last rank together with its promotion.
func (s *Session) MovePromote(from, to board.Square, pt board.PieceType) (board.MoveRecord, error) {
	if err := s.checkPlayable(); err != nil {
		return board.MoveRecord{}, err
	}
	if err := s.checkOwner(from); err != nil {
		return board.MoveRecord{}, err
	}

	rec, err := s.pos.ApplyPromotion(from, to, pt)
	if err != nil {
		return board.MoveRecord{}, err
	}
	s.complete(rec)
	return rec, nil
}

// Promote finishes a pending promotion.
func (s *Session) Promote(pt board.PieceType) (board.MoveRecord, error) {
	if s.status != AwaitingPromotion {
		return board.MoveRecord{}, ErrNoPromotion
	}
	sq := s.pos.PendingPromotion()
	if err := s.pos.Promote(sq, pt); err != nil {
		return board.MoveRecord{}, err
	}

	rec := s.pending
	rec.Move = board.NewPromotion(rec.Move.From(), rec.Move.To(), pt)
	them := rec.Piece.Color.Other()
	rec.Check = s.pos.InCheck(them)
	rec.Checkmate = s.pos.IsCheckmate(them)
	rec.Stalemate = s.pos.IsStalemate(them)

	s.pending = board.MoveRecord{}
	s.status = Active
	s.complete(rec)
	return rec, nil
}

// complete records a finished move and hands the turn over.
func (s *Session) complete(rec board.MoveRecord) {
	s.history = append(s.history, rec)
	s.current = s.current.Other()

	switch {
	case rec.Checkmate:
		s.status = Checkmate
		s.winner = rec.Piece.Color
	case rec.Stalemate:
		s.status = Stalemate
	}
	if s.status.IsOver() {
		s.finish()
	}
}

// updateStatus derives the status of a freshly loaded position.
func (s *Session) updateStatus() {
	switch {
	case s.pos.IsCheckmate(s.current):
		s.status = Checkmate
		s.winner = s.current.Other()
	case s.pos.IsStalemate(s.current):
		s.status = Stalemate
	}
}

func (s *Session) finish() {
	if s.recorder == nil {
		return
	}
	res := Result{
		Status:   s.status,
		Winner:   s.winner,
		Plies:    len(s.history),
		Duration: s.now().Sub(s.started),
		FinalFEN: s.pos.FEN(),
	}
	if err := s.recorder.RecordGame(res); err != nil {
		log.Printf("game: failed to record result: %v", err)
	}
}

func (s *Session) checkPlayable() error {
	switch s.status {
	case AwaitingPromotion:
		return ErrPromotionRequired
	case Checkmate, Stalemate:
		return ErrGameOver
	}
	return nil
}

func (s *Session) checkOwner(sq board.Square) error {
	pc, ok := s.pos.PieceAt(sq)
	if !ok {
		return fmt.Errorf("%w: %v", board.ErrNoPiece, sq)
	}
	if pc.Color != s.current {
		return fmt.Errorf("%w: %v on %v", ErrNotYourTurn, pc, sq)
	}
	return nil
}
