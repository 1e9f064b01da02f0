package board

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/notnil/chess"
)

// TestRandomPlayoutsMatchReference plays random games and compares the legal
// move list, the board and the game status with notnil/chess after every ply.
func TestRandomPlayoutsMatchReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for game := 0; game < 8; game++ {
		pos := NewPosition()
		ref := chess.NewGame()

		for ply := 0; ply < 120; ply++ {
			if ref.Outcome() != chess.NoOutcome {
				break
			}

			got := moveStrings(pos.LegalMoves(pos.Turn()))
			refMoves := ref.ValidMoves()
			want := make([]string, 0, len(refMoves))
			byString := make(map[string]*chess.Move, len(refMoves))
			for _, m := range refMoves {
				s := m.String()
				want = append(want, s)
				byString[s] = m
			}
			sort.Strings(want)

			if strings.Join(got, " ") != strings.Join(want, " ") {
				t.Fatalf("game %d ply %d (%s): move lists differ\n got: %v\nwant: %v",
					game, ply, pos.FEN(), got, want)
			}
			if len(got) == 0 {
				break
			}

			pick := got[rng.Intn(len(got))]
			m, err := ParseMove(pick, pos)
			if err != nil {
				t.Fatal(err)
			}
			if m.IsPromotion() {
				_, err = pos.ApplyPromotion(m.From(), m.To(), m.Promotion())
			} else {
				_, err = pos.ApplyMove(m.From(), m.To())
			}
			if err != nil {
				t.Fatalf("game %d ply %d: %s rejected: %v", game, ply, pick, err)
			}
			if err := ref.Move(byString[pick]); err != nil {
				t.Fatalf("reference rejected %s: %v", pick, err)
			}

			gotBoard := strings.Fields(pos.FEN())[0]
			wantBoard := strings.Fields(ref.Position().String())[0]
			if gotBoard != wantBoard {
				t.Fatalf("game %d ply %d: boards differ after %s\n got: %s\nwant: %s",
					game, ply, pick, gotBoard, wantBoard)
			}
			if err := pos.CheckConsistency(); err != nil {
				t.Fatalf("game %d ply %d: %v", game, ply, err)
			}
		}

		if ref.Method() == chess.Checkmate && !pos.IsCheckmate(pos.Turn()) {
			t.Errorf("game %d: reference reports checkmate, engine does not", game)
		}
		if ref.Method() == chess.Stalemate && !pos.IsStalemate(pos.Turn()) {
			t.Errorf("game %d: reference reports stalemate, engine does not", game)
		}
	}
}
