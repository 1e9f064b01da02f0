package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position.
//
// FEN carries no moved flags, so they are derived: a king or rook counts as
// unmoved only on a home square backed by a castling right, a pawn only on its
// start rank. Castling rights without a matching king and rook are dropped.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, fmt.Errorf("%w: need 4 to 6 fields, got %d", ErrInvalidFEN, len(parts))
	}

	pos := &Position{}
	pos.clear()

	// Field 0: piece placement
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}
	pos.updateOccupied()

	// Field 1: side to move
	switch parts[1] {
	case "w":
		pos.turn = White
	case "b":
		pos.turn = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, parts[1])
	}

	// Field 2: castling rights
	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	// Field 3: en passant square
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en passant square: %v", ErrInvalidFEN, err)
		}
		if want := epRankFor(pos.turn); sq.Rank() != want {
			return nil, fmt.Errorf("%w: en passant square %v must be on rank %d", ErrInvalidFEN, sq, want+1)
		}
		pos.enPassant = sq
	}
	pos.sanitizeEnPassant()

	// Fields 4 and 5: counters, optional
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, fmt.Errorf("%w: half-move clock %q", ErrInvalidFEN, parts[4])
		}
		pos.halfMoveClock = hmc
	}
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, fmt.Errorf("%w: full-move number %q", ErrInvalidFEN, parts[5])
		}
		pos.fullMoveNumber = fmn
	}

	pos.sanitizeCastling()
	pos.deriveMoved()

	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return pos, nil
}

// MustParseFEN is like ParseFEN but panics on error. Intended for fixtures.
func MustParseFEN(fen string) *Position {
	pos, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return pos
}

// epRankFor returns the rank index of a legal en passant target when c is to move.
func epRankFor(c Color) int {
	if c == White {
		return 5
	}
	return 2
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			pc, ok := PieceFromChar(byte(c))
			if !ok {
				return fmt.Errorf("%w: piece character %q", ErrInvalidFEN, c)
			}
			pos.put(NewSquare(file, rank), pc)
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		pos.castling = NoCastling
		return nil
	}

	for _, c := range castling {
		switch c {
		case 'K':
			pos.castling |= WhiteKingSideCastle
		case 'Q':
			pos.castling |= WhiteQueenSideCastle
		case 'k':
			pos.castling |= BlackKingSideCastle
		case 'q':
			pos.castling |= BlackQueenSideCastle
		default:
			return fmt.Errorf("%w: castling character %q", ErrInvalidFEN, c)
		}
	}

	return nil
}

// sanitizeCastling drops every right whose king or rook is not on its home square.
func (p *Position) sanitizeCastling() {
	for c := White; c <= Black; c++ {
		for _, cs := range castleSides[c] {
			if p.castling&cs.right == 0 {
				continue
			}
			king, kok := p.squares[cs.king]
			rook, rok := p.squares[cs.rook]
			if !kok || king.Type != King || king.Color != c || !rok || rook.Type != Rook || rook.Color != c {
				p.castling &^= cs.right
			}
		}
	}
}

// sanitizeEnPassant drops a target square that no double push could have left:
// the square and the one behind it must be empty and the pushed pawn in front.
func (p *Position) sanitizeEnPassant() {
	if p.enPassant == NoSquare {
		return
	}
	mover := p.turn.Other()
	dir := 1
	if mover == Black {
		dir = -1
	}
	origin, _ := p.enPassant.Offset(0, -dir)
	pawnSq, _ := p.enPassant.Offset(0, dir)
	pawn, ok := p.squares[pawnSq]
	if p.all.IsSet(p.enPassant) || p.all.IsSet(origin) || !ok || pawn.Type != Pawn || pawn.Color != mover {
		p.enPassant = NoSquare
	}
}

// deriveMoved sets HasMoved on every piece that cannot be on its original square
// with its original rights intact.
func (p *Position) deriveMoved() {
	for sq, pc := range p.squares {
		switch pc.Type {
		case Pawn:
			pc.HasMoved = sq.RelativeRank(pc.Color) != 1
		case King:
			pc.HasMoved = p.castling&colorRights(pc.Color) == 0
		case Rook:
			pc.HasMoved = p.castling&cornerRight(sq, pc.Color) == 0
		default:
			pc.HasMoved = true
		}
		p.squares[sq] = pc
	}
}

// FEN returns the FEN representation of the position.
// A pending promotion is written as the pawn still standing on the last rank.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc, ok := p.squares[NewSquare(file, rank)]
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.turn == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.castling.String())

	sb.WriteByte(' ')
	sb.WriteString(p.enPassant.String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.halfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.fullMoveNumber))

	return sb.String()
}
