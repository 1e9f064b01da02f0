package board

import (
	"fmt"
	"log"
)

// MoveRecord describes a committed move.
type MoveRecord struct {
	Move           Move
	Piece          Piece  // The mover as it stood before the move
	Captured       Piece  // Valid only when CapturedSquare != NoSquare
	CapturedSquare Square // Differs from Move.To() for en passant
	DoublePush     bool

	// State of the opponent after the move. Left false while a promotion is pending.
	Check     bool
	Checkmate bool
	Stalemate bool
}

// IsCapture returns true if the move removed an enemy piece.
func (r MoveRecord) IsCapture() bool {
	return r.CapturedSquare != NoSquare
}

// String returns the move in coordinate form.
func (r MoveRecord) String() string {
	return r.Move.String()
}

// ApplyMove plays the piece on from to to. A pawn reaching its last rank stays a
// pawn until Promote is called. On error the position is left untouched.
func (p *Position) ApplyMove(from, to Square) (MoveRecord, error) {
	return p.apply(from, to, NoPieceType)
}

// ApplyPromotion plays a pawn move to the last rank and promotes it in one step.
func (p *Position) ApplyPromotion(from, to Square, promo PieceType) (MoveRecord, error) {
	if !promo.IsPromotable() {
		return MoveRecord{}, fmt.Errorf("%w: cannot promote to %v", ErrInvalidPromotion, promo)
	}
	return p.apply(from, to, promo)
}

// apply validates the move completely before the first mutation.
func (p *Position) apply(from, to Square, promo PieceType) (MoveRecord, error) {
	if !from.IsValid() || !to.IsValid() {
		return MoveRecord{}, fmt.Errorf("%w: %d -> %d", ErrInvalidSquare, from, to)
	}
	pc, ok := p.squares[from]
	if !ok {
		return MoveRecord{}, fmt.Errorf("%w: %v", ErrNoPiece, from)
	}
	if p.promotion != NoSquare {
		return MoveRecord{}, fmt.Errorf("%w: on %v", ErrPromotionPending, p.promotion)
	}
	if target, ok := p.squares[to]; ok && target.Type == King {
		return MoveRecord{}, fmt.Errorf("%w: %v", ErrKingCapture, to)
	}
	if !p.LegalDestinations(from).IsSet(to) {
		return MoveRecord{}, fmt.Errorf("%w: %v%v", ErrIllegalMove, from, to)
	}

	reachesLastRank := pc.Type == Pawn && to.RelativeRank(pc.Color) == 7
	if promo != NoPieceType && !reachesLastRank {
		return MoveRecord{}, fmt.Errorf("%w: %v%v does not reach the last rank", ErrInvalidPromotion, from, to)
	}

	rec := p.applyUnchecked(from, to)
	if reachesLastRank {
		p.promotion = to
		if promo != NoPieceType {
			p.promote(to, promo)
			rec.Move = NewPromotion(from, to, promo)
		}
	}
	if p.promotion == NoSquare {
		p.fillStatus(&rec)
	}

	if DebugMoveValidation {
		p.verify("ApplyMove " + rec.Move.String())
		if p.InCheck(pc.Color) {
			log.Printf("ApplyMove: %v left its own king in check with %v", pc.Color, rec.Move)
		}
	}
	return rec, nil
}

// Promote replaces the pawn waiting on sq with a piece of type pt.
// It only succeeds right after ApplyMove brought a pawn to its last rank.
func (p *Position) Promote(sq Square, pt PieceType) error {
	if p.promotion == NoSquare || sq != p.promotion {
		return fmt.Errorf("%w: %v", ErrNotPromotable, sq)
	}
	if !pt.IsPromotable() {
		return fmt.Errorf("%w: cannot promote to %v", ErrInvalidPromotion, pt)
	}
	p.promote(sq, pt)
	p.verify("Promote")
	return nil
}

// promote swaps the pending pawn for pt and clears the pending state.
func (p *Position) promote(sq Square, pt PieceType) {
	pawn := p.squares[sq]
	p.remove(sq)
	p.put(sq, Piece{Color: pawn.Color, Type: pt, HasMoved: true})
	p.updateOccupied()
	p.promotion = NoSquare
}

// fillStatus records the opponent's check, checkmate and stalemate state.
func (p *Position) fillStatus(rec *MoveRecord) {
	them := rec.Piece.Color.Other()
	rec.Check = p.InCheck(them)
	hasMove := p.HasLegalMove(them)
	rec.Checkmate = rec.Check && !hasMove
	rec.Stalemate = !rec.Check && !hasMove
}

// applyUnchecked performs the move without any legality test. It is the single
// path used both for committing moves and for simulating them on a clone.
func (p *Position) applyUnchecked(from, to Square) MoveRecord {
	pc := p.squares[from]
	us := pc.Color
	rec := MoveRecord{
		Move:           NewMove(from, to),
		Piece:          pc,
		CapturedSquare: NoSquare,
	}
	if captured, ok := p.squares[to]; ok {
		rec.Captured, rec.CapturedSquare = captured, to
	}

	// Side effects of castling and en passant
	switch {
	case pc.Type == King && abs(int(to)-int(from)) == 2:
		rookFrom, rookTo := castlingRookSquares(from, to)
		p.relocate(rookFrom, rookTo)
		rec.Move = NewCastling(from, to)
	case pc.Type == Pawn && to == p.enPassant && from.File() != to.File():
		capturedSq := to - 8
		if us == Black {
			capturedSq = to + 8
		}
		if captured, ok := p.remove(capturedSq); ok {
			rec.Captured, rec.CapturedSquare = captured, capturedSq
		}
		rec.Move = NewEnPassant(from, to)
	}

	// The en passant target only survives one ply
	p.enPassant = NoSquare
	if pc.Type == Pawn && abs(int(to)-int(from)) == 16 {
		p.enPassant = Square((int(from) + int(to)) / 2)
		rec.DoublePush = true
	}

	p.relocate(from, to)
	p.updateCastlingRights(rec)

	if pc.Type == Pawn || rec.IsCapture() {
		p.halfMoveClock = 0
	} else {
		p.halfMoveClock++
	}
	if us == Black {
		p.fullMoveNumber++
	}
	p.turn = us.Other()

	return rec
}

// relocate moves a piece and marks it as moved.
func (p *Position) relocate(from, to Square) {
	pc, ok := p.remove(from)
	if !ok {
		return
	}
	p.remove(to)
	pc.HasMoved = true
	p.put(to, pc)
	p.updateOccupied()
}

// updateCastlingRights clears rights lost by the move. Rights are never restored.
func (p *Position) updateCastlingRights(rec MoveRecord) {
	pc := rec.Piece
	switch pc.Type {
	case King:
		p.castling &^= colorRights(pc.Color)
	case Rook:
		p.castling &^= cornerRight(rec.Move.From(), pc.Color)
	}
	if rec.IsCapture() && rec.Captured.Type == Rook {
		p.castling &^= cornerRight(rec.CapturedSquare, rec.Captured.Color)
	}
}

// play commits a move already known to be legal, promotion included.
func (p *Position) play(m Move) {
	p.applyUnchecked(m.From(), m.To())
	if m.IsPromotion() {
		p.promote(m.To(), m.Promotion())
	}
}
