package board

// Perft counts the leaf nodes of the legal move tree at the given depth, with
// the side to move alternating from Turn. Promotions count once per piece.
// This is the standard way to verify move generation correctness.
func (p *Position) Perft(depth int) int64 {
	if depth <= 0 {
		return 1
	}

	moves := p.LegalMoves(p.turn)
	if depth == 1 {
		return int64(len(moves))
	}

	var nodes int64
	for _, m := range moves {
		child := p.Clone()
		child.play(m)
		nodes += child.Perft(depth - 1)
	}
	return nodes
}

// Divide returns the perft count below each root move.
func (p *Position) Divide(depth int) map[Move]int64 {
	counts := make(map[Move]int64)
	if depth <= 0 {
		return counts
	}
	for _, m := range p.LegalMoves(p.turn) {
		child := p.Clone()
		child.play(m)
		counts[m] = child.Perft(depth - 1)
	}
	return counts
}
