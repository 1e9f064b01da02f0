package board

// Pre-computed attack tables for non-sliding pieces
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard

	// Squares strictly between two aligned squares
	betweenBB [64][64]Bitboard
)

var (
	knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingOffsets   = [8][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
)

func init() {
	initStepAttacks()
	initBetweenBB()
}

func initStepAttacks() {
	for sq := A1; sq <= H8; sq++ {
		knightAttacks[sq] = offsetTargets(sq, knightOffsets)
		kingAttacks[sq] = offsetTargets(sq, kingOffsets)
	}
}

// offsetTargets applies each (file, rank) offset that stays on the board.
func offsetTargets(sq Square, offsets [8][2]int) Bitboard {
	var targets Bitboard
	for _, off := range offsets {
		if to, ok := sq.Offset(off[0], off[1]); ok {
			targets = targets.Set(to)
		}
	}
	return targets
}

func initBetweenBB() {
	for sq1 := A1; sq1 <= H8; sq1++ {
		for sq2 := A1; sq2 <= H8; sq2++ {
			if !aligned(sq1, sq2) {
				continue
			}

			df := sign(sq2.File() - sq1.File())
			dr := sign(sq2.Rank() - sq1.Rank())

			var between Bitboard
			for sq, _ := sq1.Offset(df, dr); sq != sq2; sq, _ = sq.Offset(df, dr) {
				between = between.Set(sq)
			}
			betweenBB[sq1][sq2] = between
		}
	}
}

// orthogonal reports whether two distinct squares share a rank or file.
func orthogonal(a, b Square) bool {
	return a != b && (a.File() == b.File() || a.Rank() == b.Rank())
}

// diagonal reports whether two distinct squares share a diagonal.
func diagonal(a, b Square) bool {
	return a != b && abs(a.File()-b.File()) == abs(a.Rank()-b.Rank())
}

func aligned(a, b Square) bool {
	return orthogonal(a, b) || diagonal(a, b)
}

func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// KnightAttacks returns the knight attack bitboard for a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack bitboard for a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// pawnAttackSet returns every square attacked by the pawns in bb moving as color c.
// The shifts mask out file wraparound.
func pawnAttackSet(bb Bitboard, c Color) Bitboard {
	if c == White {
		return bb.NorthEast() | bb.NorthWest()
	}
	return bb.SouthEast() | bb.SouthWest()
}

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttackSet(SquareBB(sq), c)
}

// Between returns the bitboard of squares strictly between two squares.
// Returns empty if squares are not aligned (not on same rank, file, or diagonal).
func Between(sq1, sq2 Square) Bitboard {
	return betweenBB[sq1][sq2]
}

// clearPath reports whether nothing stands strictly between from and to.
func (p *Position) clearPath(from, to Square) bool {
	return betweenBB[from][to]&p.all == 0
}

// SquareAttacked returns true if a piece of color by attacks sq.
// Each piece kind is tested on its own; the first hit wins.
func (p *Position) SquareAttacked(sq Square, by Color) bool {
	if !sq.IsValid() || by >= NoColor {
		return false
	}
	if pawnAttackSet(p.pieces[by][Pawn], by).IsSet(sq) {
		return true
	}
	if knightAttacks[sq]&p.pieces[by][Knight] != 0 {
		return true
	}
	if kingAttacks[sq]&p.pieces[by][King] != 0 {
		return true
	}
	return p.sliderAttackers(sq, by) != 0
}

// Attackers returns every piece of color by attacking sq.
func (p *Position) Attackers(sq Square, by Color) Bitboard {
	if !sq.IsValid() || by >= NoColor {
		return Empty
	}
	return PawnAttacks(sq, by.Other())&p.pieces[by][Pawn] |
		knightAttacks[sq]&p.pieces[by][Knight] |
		kingAttacks[sq]&p.pieces[by][King] |
		p.sliderAttackers(sq, by)
}

// sliderAttackers finds rooks, bishops and queens of color by that share a line
// with sq and see it over an empty path.
func (p *Position) sliderAttackers(sq Square, by Color) Bitboard {
	var attackers Bitboard

	straight := p.pieces[by][Rook] | p.pieces[by][Queen]
	for straight != 0 {
		from := straight.PopLSB()
		if orthogonal(from, sq) && p.clearPath(from, sq) {
			attackers = attackers.Set(from)
		}
	}

	diagonals := p.pieces[by][Bishop] | p.pieces[by][Queen]
	for diagonals != 0 {
		from := diagonals.PopLSB()
		if diagonal(from, sq) && p.clearPath(from, sq) {
			attackers = attackers.Set(from)
		}
	}

	return attackers
}

// InCheck returns true if the king of color c is attacked.
// A side without a king is never in check.
func (p *Position) InCheck(c Color) bool {
	ksq := p.KingSquare(c)
	if ksq == NoSquare {
		return false
	}
	return p.SquareAttacked(ksq, c.Other())
}

// Checkers returns the pieces giving check to the king of color c.
func (p *Position) Checkers(c Color) Bitboard {
	ksq := p.KingSquare(c)
	if ksq == NoSquare {
		return Empty
	}
	return p.Attackers(ksq, c.Other())
}
