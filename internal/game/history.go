package game

import (
	"fmt"

	"github.com/hailam/chessrules/internal/board"
)

// MovePair is one numbered row of the move list.
type MovePair struct {
	Number int    `json:"number"`
	White  string `json:"white,omitempty"`
	Black  string `json:"black,omitempty"`
}

// MovePairs groups the history into (white, black) rows. A game that starts
// with Black to move gets a first row with an empty white move.
func (s *Session) MovePairs() []MovePair {
	var pairs []MovePair
	number := s.firstMoveNumber()
	for _, rec := range s.history {
		text := rec.String()
		if rec.Piece.Color == board.White || len(pairs) == 0 || pairs[len(pairs)-1].Black != "" {
			pairs = append(pairs, MovePair{Number: number})
			number++
		}
		last := &pairs[len(pairs)-1]
		if rec.Piece.Color == board.White {
			last.White = text
		} else {
			last.Black = text
		}
	}
	return pairs
}

// firstMoveNumber recovers the full move number the history started from.
func (s *Session) firstMoveNumber() int {
	n := s.pos.FullMoveNumber()
	for _, rec := range s.history {
		if rec.Piece.Color == board.Black {
			n--
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Snapshot is a serializable view of the session.
type Snapshot struct {
	FEN       string     `json:"fen"`
	Turn      string     `json:"turn"`
	Status    string     `json:"status"`
	Winner    string     `json:"winner,omitempty"`
	Check     bool       `json:"check"`
	Promotion string     `json:"promotion,omitempty"`
	Moves     []MovePair `json:"moves"`
	Hash      string     `json:"hash"`
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		FEN:    s.pos.FEN(),
		Turn:   s.current.String(),
		Status: s.status.String(),
		Check:  s.InCheck(),
		Moves:  s.MovePairs(),
		Hash:   fmt.Sprintf("%016x", s.pos.Hash()),
	}
	if snap.Moves == nil {
		snap.Moves = []MovePair{}
	}
	if winner, ok := s.Winner(); ok {
		snap.Winner = winner.String()
	}
	if sq := s.pos.PendingPromotion(); sq != board.NoSquare {
		snap.Promotion = sq.String()
	}
	return snap
}
