package board

// generatorFunc returns the pseudo-legal destinations of pc standing on from.
type generatorFunc func(p *Position, from Square, pc Piece) Bitboard

// generators holds one move generator per piece type.
var generators = [NoPieceType]generatorFunc{
	Pawn:   pawnDestinations,
	Knight: knightDestinations,
	Bishop: bishopDestinations,
	Rook:   rookDestinations,
	Queen:  queenDestinations,
	King:   kingDestinations,
}

func init() {
	for pt, gen := range generators {
		if gen == nil {
			panic("board: no move generator for " + PieceType(pt).String())
		}
	}
}

var (
	rookDirections   = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirections = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// PseudoLegalDestinations returns the squares the piece on sq could move to by its
// movement rules alone, without regard to the safety of its own king.
func (p *Position) PseudoLegalDestinations(sq Square) Bitboard {
	pc, ok := p.squares[sq]
	if !ok {
		return Empty
	}
	return generators[pc.Type](p, sq, pc)
}

func pawnDestinations(p *Position, from Square, pc Piece) Bitboard {
	us := pc.Color
	dir, startRank, epRank := 1, 1, 4
	if us == Black {
		dir, startRank, epRank = -1, 6, 3
	}

	var dests Bitboard

	// Pushes
	if one, ok := from.Offset(0, dir); ok && !p.all.IsSet(one) {
		dests = dests.Set(one)
		if from.Rank() == startRank {
			if two, ok := one.Offset(0, dir); ok && !p.all.IsSet(two) {
				dests = dests.Set(two)
			}
		}
	}

	// Captures
	attacks := PawnAttacks(from, us)
	dests |= attacks & p.occupied[us.Other()]

	// En passant
	if p.enPassant != NoSquare && from.Rank() == epRank && attacks.IsSet(p.enPassant) {
		dests = dests.Set(p.enPassant)
	}

	return dests
}

func knightDestinations(p *Position, from Square, pc Piece) Bitboard {
	return knightAttacks[from] &^ p.occupied[pc.Color]
}

func bishopDestinations(p *Position, from Square, pc Piece) Bitboard {
	return p.rayDestinations(from, pc.Color, bishopDirections)
}

func rookDestinations(p *Position, from Square, pc Piece) Bitboard {
	return p.rayDestinations(from, pc.Color, rookDirections)
}

func queenDestinations(p *Position, from Square, pc Piece) Bitboard {
	return rookDestinations(p, from, pc) | bishopDestinations(p, from, pc)
}

// rayDestinations walks each direction until the edge or the first blocker.
// An enemy blocker is included, a friendly one is not.
func (p *Position) rayDestinations(from Square, us Color, dirs [4][2]int) Bitboard {
	var dests Bitboard
	for _, d := range dirs {
		sq := from
		for step := 0; step < 7; step++ {
			next, ok := sq.Offset(d[0], d[1])
			if !ok {
				break
			}
			sq = next
			if p.all.IsSet(sq) {
				if !p.occupied[us].IsSet(sq) {
					dests = dests.Set(sq)
				}
				break
			}
			dests = dests.Set(sq)
		}
	}
	return dests
}

func kingDestinations(p *Position, from Square, pc Piece) Bitboard {
	return kingAttacks[from]&^p.occupied[pc.Color] | p.castlingDestinations(from, pc)
}

// castleSide describes one castling option.
type castleSide struct {
	right   CastlingRights
	king    Square   // King home square
	rook    Square   // Rook home corner
	dest    Square   // King destination
	transit Square   // Square the king crosses
	empty   Bitboard // Squares between king and rook
}

var castleSides = [2][2]castleSide{
	White: {
		{WhiteKingSideCastle, E1, H1, G1, F1, SquareBB(F1) | SquareBB(G1)},
		{WhiteQueenSideCastle, E1, A1, C1, D1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1)},
	},
	Black: {
		{BlackKingSideCastle, E8, H8, G8, F8, SquareBB(F8) | SquareBB(G8)},
		{BlackQueenSideCastle, E8, A8, C8, D8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8)},
	},
}

// castlingDestinations returns the king destinations of every castling option
// still open to pc. The king may not start on, cross or land on an attacked square.
func (p *Position) castlingDestinations(from Square, pc Piece) Bitboard {
	if pc.HasMoved {
		return Empty
	}
	them := pc.Color.Other()

	var dests Bitboard
	for _, cs := range castleSides[pc.Color] {
		if from != cs.king || p.castling&cs.right == 0 || p.all&cs.empty != 0 {
			continue
		}
		rook, ok := p.squares[cs.rook]
		if !ok || rook.Type != Rook || rook.Color != pc.Color || rook.HasMoved {
			continue
		}
		if p.SquareAttacked(cs.king, them) || p.SquareAttacked(cs.transit, them) || p.SquareAttacked(cs.dest, them) {
			continue
		}
		dests = dests.Set(cs.dest)
	}
	return dests
}

// castlingRookSquares returns the rook relocation for a king moving from -> to.
func castlingRookSquares(from, to Square) (rookFrom, rookTo Square) {
	if to > from {
		return NewSquare(7, from.Rank()), NewSquare(5, from.Rank())
	}
	return NewSquare(0, from.Rank()), NewSquare(3, from.Rank())
}
