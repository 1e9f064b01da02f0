package board

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DebugMoveValidation enables a full consistency check after every mutation.
// Violations are logged, never returned: they are programming errors.
var DebugMoveValidation = false

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side still holds the right to castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castlingRight(c, kingSide) != 0
}

func castlingRight(c Color, kingSide bool) CastlingRights {
	if c == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// colorRights returns both rights of a color.
func colorRights(c Color) CastlingRights {
	return castlingRight(c, true) | castlingRight(c, false)
}

// cornerRight returns the right tied to a rook of color c standing on its home corner sq.
func cornerRight(sq Square, c Color) CastlingRights {
	switch {
	case c == White && sq == H1:
		return WhiteKingSideCastle
	case c == White && sq == A1:
		return WhiteQueenSideCastle
	case c == Black && sq == H8:
		return BlackKingSideCastle
	case c == Black && sq == A8:
		return BlackQueenSideCastle
	}
	return NoCastling
}

// Position represents a complete chess position.
//
// Every piece is recorded in two places: the piece bitboards and the squares map.
// Only the mutation methods below touch either, and they always update both.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	pieces [2][6]Bitboard

	// Derived occupancy, recomputed after every mutation
	occupied [2]Bitboard
	all      Bitboard

	squares map[Square]Piece

	castling       CastlingRights
	enPassant      Square // Square skipped by the last double push, NoSquare if none
	promotion      Square // Pawn waiting for Promote, NoSquare if none
	turn           Color  // Informational only, never enforced
	halfMoveClock  int
	fullMoveNumber int
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	p := &Position{}
	p.Reset()
	return p
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Reset discards all state and sets up the standard starting position.
func (p *Position) Reset() {
	p.clear()
	for file := 0; file < 8; file++ {
		p.put(NewSquare(file, 0), NewPiece(backRank[file], White))
		p.put(NewSquare(file, 1), NewPiece(Pawn, White))
		p.put(NewSquare(file, 6), NewPiece(Pawn, Black))
		p.put(NewSquare(file, 7), NewPiece(backRank[file], Black))
	}
	p.castling = AllCastling
	p.updateOccupied()
	p.verify("Reset")
}

// clear empties the board.
func (p *Position) clear() {
	*p = Position{
		squares:        make(map[Square]Piece, 32),
		enPassant:      NoSquare,
		promotion:      NoSquare,
		fullMoveNumber: 1,
	}
}

// Clone returns a fully independent copy of the position.
func (p *Position) Clone() *Position {
	c := *p
	c.squares = maps.Clone(p.squares)
	return &c
}

// PieceAt returns the piece on sq. The second result is false for an empty square.
func (p *Position) PieceAt(sq Square) (Piece, bool) {
	pc, ok := p.squares[sq]
	return pc, ok
}

// IsOccupied returns true if any piece stands on sq.
func (p *Position) IsOccupied(sq Square) bool {
	return p.all.IsSet(sq)
}

// IsOccupiedBy returns true if a piece of color c stands on sq.
func (p *Position) IsOccupiedBy(sq Square, c Color) bool {
	return c < NoColor && p.occupied[c].IsSet(sq)
}

// Pieces returns the bitboard of pieces of the given color and type.
func (p *Position) Pieces(c Color, pt PieceType) Bitboard {
	if c >= NoColor || pt >= NoPieceType {
		return Empty
	}
	return p.pieces[c][pt]
}

// Occupied returns all squares holding a piece of color c.
func (p *Position) Occupied(c Color) Bitboard {
	if c >= NoColor {
		return Empty
	}
	return p.occupied[c]
}

// AllOccupied returns all occupied squares.
func (p *Position) AllOccupied() Bitboard {
	return p.all
}

// KingSquare returns the square of the king of color c, or NoSquare if there is none.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces(c, King).LSB()
}

// CastlingRights returns the remaining castling rights.
func (p *Position) CastlingRights() CastlingRights {
	return p.castling
}

// EnPassant returns the en passant target square, or NoSquare.
func (p *Position) EnPassant() Square {
	return p.enPassant
}

// PendingPromotion returns the square of a pawn that reached its last rank and
// still waits for Promote, or NoSquare.
func (p *Position) PendingPromotion() Square {
	return p.promotion
}

// Turn returns the color expected to move next. The engine itself never checks it.
func (p *Position) Turn() Color {
	return p.turn
}

// HalfMoveClock returns the number of plies since the last pawn move or capture.
func (p *Position) HalfMoveClock() int {
	return p.halfMoveClock
}

// FullMoveNumber returns the full move counter, starting at 1.
func (p *Position) FullMoveNumber() int {
	return p.fullMoveNumber
}

// OccupiedSquares returns every occupied square in ascending order.
func (p *Position) OccupiedSquares() []Square {
	squares := maps.Keys(p.squares)
	slices.Sort(squares)
	return squares
}

// SetPiece places pc on sq, replacing any occupant.
func (p *Position) SetPiece(sq Square, pc Piece) {
	if !sq.IsValid() || !pc.IsValid() {
		return
	}
	p.remove(sq)
	p.put(sq, pc)
	p.updateOccupied()
	p.verify("SetPiece")
}

// ClearSquare removes and returns the piece on sq.
func (p *Position) ClearSquare(sq Square) (Piece, bool) {
	pc, ok := p.remove(sq)
	if ok {
		p.updateOccupied()
		p.verify("ClearSquare")
	}
	return pc, ok
}

// MovePiece moves the piece on from to to, overwriting any occupant of to.
// It returns false and changes nothing when from is empty.
func (p *Position) MovePiece(from, to Square) bool {
	if !to.IsValid() {
		return false
	}
	pc, ok := p.remove(from)
	if !ok {
		return false
	}
	p.remove(to)
	p.put(to, pc)
	p.updateOccupied()
	p.verify("MovePiece")
	return true
}

// put writes pc into both representations. The square must be empty.
// Derived occupancy is left for the caller to refresh.
func (p *Position) put(sq Square, pc Piece) {
	p.pieces[pc.Color][pc.Type] |= SquareBB(sq)
	p.squares[sq] = pc
}

// remove deletes the piece on sq from both representations.
func (p *Position) remove(sq Square) (Piece, bool) {
	pc, ok := p.squares[sq]
	if !ok {
		return Piece{}, false
	}
	p.pieces[pc.Color][pc.Type] &^= SquareBB(sq)
	delete(p.squares, sq)
	return pc, true
}

// updateOccupied recalculates occupancy bitboards from piece bitboards.
func (p *Position) updateOccupied() {
	p.occupied[White] = Empty
	p.occupied[Black] = Empty

	for pt := Pawn; pt <= King; pt++ {
		p.occupied[White] |= p.pieces[White][pt]
		p.occupied[Black] |= p.pieces[Black][pt]
	}

	p.all = p.occupied[White] | p.occupied[Black]
}

// CheckConsistency verifies that the piece bitboards, the derived occupancy and the
// squares map describe the same board.
func (p *Position) CheckConsistency() error {
	var occ [2]Bitboard
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			if overlap := occ[c] & p.pieces[c][pt]; overlap != 0 {
				return fmt.Errorf("%v %v bitboard overlaps another type on %v", c, pt, overlap.LSB())
			}
			occ[c] |= p.pieces[c][pt]
		}
	}
	if both := occ[White] & occ[Black]; both != 0 {
		return fmt.Errorf("square %v occupied by both colors", both.LSB())
	}
	if occ != p.occupied || occ[White]|occ[Black] != p.all {
		return fmt.Errorf("derived occupancy out of date")
	}

	for sq := A1; sq <= H8; sq++ {
		pc, inMap := p.squares[sq]
		if inMap != p.all.IsSet(sq) {
			return fmt.Errorf("square %v: map has piece=%v, bitboards have piece=%v", sq, inMap, p.all.IsSet(sq))
		}
		if inMap && !p.pieces[pc.Color][pc.Type].IsSet(sq) {
			return fmt.Errorf("square %v: map holds %v but bitboards disagree", sq, pc)
		}
	}
	if len(p.squares) != p.all.PopCount() {
		return fmt.Errorf("map holds %d pieces, bitboards hold %d", len(p.squares), p.all.PopCount())
	}
	return nil
}

// verify logs a consistency violation when DebugMoveValidation is enabled.
func (p *Position) verify(op string) {
	if !DebugMoveValidation {
		return
	}
	if err := p.CheckConsistency(); err != nil {
		log.Printf("%s: position inconsistent: %v", op, err)
	}
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			if pc, ok := p.squares[NewSquare(file, rank)]; ok {
				sb.WriteString(pc.String() + " ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Turn: %s\n", p.turn)
	fmt.Fprintf(&sb, "Castling: %s\n", p.castling)
	fmt.Fprintf(&sb, "En passant: %s\n", p.enPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.halfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.fullMoveNumber)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash())
	return sb.String()
}

// Validate checks that the position could arise in a game.
func (p *Position) Validate() error {
	if p.pieces[White][King].PopCount() != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if p.pieces[Black][King].PopCount() != 1 {
		return fmt.Errorf("black must have exactly one king")
	}

	if (p.pieces[White][Pawn]|p.pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("pawns cannot be on rank 1 or 8")
	}

	if p.InCheck(p.turn.Other()) {
		return fmt.Errorf("%v is in check but it is %v's turn", p.turn.Other(), p.turn)
	}

	return p.CheckConsistency()
}
