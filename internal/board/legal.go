package board

// LegalDestinations returns the squares the piece on sq may legally move to.
// The result is empty for an empty square. Whose turn it is plays no part.
func (p *Position) LegalDestinations(sq Square) Bitboard {
	pc, ok := p.squares[sq]
	if !ok {
		return Empty
	}

	// Kings are never captured
	candidates := p.PseudoLegalDestinations(sq) &^ (p.pieces[White][King] | p.pieces[Black][King])

	var legal Bitboard
	for candidates != 0 {
		to := candidates.PopLSB()
		if !p.leavesKingInCheck(sq, to, pc.Color) {
			legal = legal.Set(to)
		}
	}
	return legal
}

// IsLegal returns true if moving the piece on from to to is legal.
func (p *Position) IsLegal(from, to Square) bool {
	return p.LegalDestinations(from).IsSet(to)
}

// leavesKingInCheck plays the move on a throwaway copy and asks whether the
// mover's king is attacked afterwards.
func (p *Position) leavesKingInCheck(from, to Square, us Color) bool {
	sim := p.Clone()
	sim.applyUnchecked(from, to)
	return sim.InCheck(us)
}

// LegalMoves returns every legal move of color c. A pawn move to the last rank
// appears once per promotion piece.
func (p *Position) LegalMoves(c Color) []Move {
	var moves []Move
	own := p.Occupied(c)
	for own != 0 {
		from := own.PopLSB()
		pc := p.squares[from]
		dests := p.LegalDestinations(from)
		for dests != 0 {
			to := dests.PopLSB()
			if pc.Type == Pawn && to.RelativeRank(pc.Color) == 7 {
				for _, promo := range promotionOrder {
					moves = append(moves, NewPromotion(from, to, promo))
				}
				continue
			}
			moves = append(moves, p.classify(from, to, pc))
		}
	}
	return moves
}

var promotionOrder = [4]PieceType{Queen, Rook, Bishop, Knight}

// HasLegalMove returns true if any piece of color c has a legal destination.
func (p *Position) HasLegalMove(c Color) bool {
	own := p.Occupied(c)
	for own != 0 {
		if p.LegalDestinations(own.PopLSB()) != 0 {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if c is in check and has no legal move.
func (p *Position) IsCheckmate(c Color) bool {
	return p.InCheck(c) && !p.HasLegalMove(c)
}

// IsStalemate returns true if c is not in check and has no legal move.
func (p *Position) IsStalemate(c Color) bool {
	return !p.InCheck(c) && !p.HasLegalMove(c)
}
