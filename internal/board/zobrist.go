package board

// Zobrist keys for position hashing.
// Generated from a fixed seed so hashes are stable between runs.
var (
	zobristPiece     [2][6][64]uint64 // [Color][PieceType][Square]
	zobristEnPassant [8]uint64        // One per file
	zobristCastling  [16]uint64       // All 16 castling combinations
	zobristBlack     uint64           // XOR when black is to move
	zobristPending   [64]uint64       // Pawn waiting for promotion
)

func init() {
	initZobrist()
}

type prng struct {
	state uint64
}

// xorshift64* algorithm
func (r *prng) next() uint64 {
	r.state ^= r.state >> 12
	r.state ^= r.state << 25
	r.state ^= r.state >> 27
	return r.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := &prng{state: 0x98F107A2BEEF1234}

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristBlack = rng.next()
	for sq := A1; sq <= H8; sq++ {
		zobristPending[sq] = rng.next()
	}
}

// Hash computes the Zobrist hash of the position from scratch.
// Moved flags and the move counters are not part of the hash.
func (p *Position) Hash() uint64 {
	var hash uint64

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.pieces[c][pt]
			for bb != 0 {
				hash ^= zobristPiece[c][pt][bb.PopLSB()]
			}
		}
	}

	if p.turn == Black {
		hash ^= zobristBlack
	}
	hash ^= zobristCastling[p.castling]
	if p.enPassant != NoSquare {
		hash ^= zobristEnPassant[p.enPassant.File()]
	}
	if p.promotion != NoSquare {
		hash ^= zobristPending[p.promotion]
	}

	return hash
}
