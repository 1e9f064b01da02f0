package board

import (
	"sort"
	"testing"
)

func countDestinations(pos *Position, c Color) int {
	total := 0
	own := pos.Occupied(c)
	for own != 0 {
		total += pos.LegalDestinations(own.PopLSB()).PopCount()
	}
	return total
}

func TestStartingDestinations(t *testing.T) {
	pos := NewPosition()
	if got := countDestinations(pos, White); got != 20 {
		t.Errorf("white destinations = %d, want 20", got)
	}
	if got := countDestinations(pos, Black); got != 20 {
		t.Errorf("black destinations = %d, want 20", got)
	}
	if got := len(pos.LegalMoves(White)); got != 20 {
		t.Errorf("LegalMoves(white) = %d, want 20", got)
	}
	if got := pos.LegalDestinations(E4); got != Empty {
		t.Errorf("empty square has destinations\n%v", got)
	}
}

func TestNoKingDestinations(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"6Rk/8/8/8/8/8/8/K7 b - - 0 1",
		"4k3/8/8/8/8/8/3q4/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		pos := MustParseFEN(fen)
		kings := pos.Pieces(White, King) | pos.Pieces(Black, King)
		for _, sq := range pos.OccupiedSquares() {
			if hit := pos.LegalDestinations(sq) & kings; hit != 0 {
				t.Errorf("%s: piece on %v may move onto king square %v", fen, sq, hit.LSB())
			}
		}
	}
}

func TestPinnedPiece(t *testing.T) {
	// Bishop on e2 is pinned by the rook on e8
	pos := MustParseFEN("4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1")
	if got := pos.LegalDestinations(E2); got != Empty {
		t.Errorf("pinned bishop has destinations\n%v", got)
	}

	// A rook pinned on the file may still slide along it
	pos = MustParseFEN("4r1k1/8/8/8/8/8/4R3/4K3 w - - 0 1")
	want := []Square{E3, E4, E5, E6, E7, E8}
	if got := pos.LegalDestinations(E2).Squares(); !equalSquares(got, want) {
		t.Errorf("pinned rook destinations = %v, want %v", got, want)
	}
}

func TestCheckEvasion(t *testing.T) {
	// Only blocking, capturing or moving the king answers the check
	pos := MustParseFEN("4k3/8/8/8/8/8/3q4/R3K3 w - - 0 1")
	if !pos.InCheck(White) {
		t.Fatal("white should be in check")
	}
	if got := pos.LegalDestinations(A1); got != Empty {
		t.Errorf("rook a1 cannot answer the check, got\n%v", got)
	}
	if got := pos.LegalDestinations(E1).Squares(); !equalSquares(got, []Square{F1, D2}) {
		t.Errorf("king destinations = %v, want [f1 d2]", got)
	}
}

func TestEnPassantNotAvailableWithoutDoublePush(t *testing.T) {
	pos := NewPosition()
	if _, err := pos.ApplyMove(E2, E4); err != nil {
		t.Fatal(err)
	}
	if pos.EnPassant() != E3 {
		t.Fatalf("en passant target = %v, want e3", pos.EnPassant())
	}
	for _, sq := range []Square{D7, F7} {
		if pos.LegalDestinations(sq).IsSet(E3) {
			t.Errorf("black pawn on %v may capture en passant without being adjacent", sq)
		}
	}

	// A black pawn on d4 adjacent to the pushed pawn can
	pos = MustParseFEN("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3")
	if !pos.LegalDestinations(D4).IsSet(E3) {
		t.Error("d4 pawn should capture en passant on e3")
	}
}

func TestEnPassantCapture(t *testing.T) {
	pos := NewPosition()
	for _, m := range []struct{ from, to Square }{
		{A2, A3}, {D7, D5}, {A3, A4}, {D5, D4}, {E2, E4},
	} {
		if _, err := pos.ApplyMove(m.from, m.to); err != nil {
			t.Fatalf("ApplyMove(%v, %v): %v", m.from, m.to, err)
		}
	}

	if !pos.LegalDestinations(D4).IsSet(E3) {
		t.Fatal("en passant capture d4xe3 missing")
	}

	rec, err := pos.ApplyMove(D4, E3)
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Move.IsEnPassant() || rec.CapturedSquare != E4 || rec.Captured.Type != Pawn {
		t.Errorf("record = %+v, want en passant capture of e4", rec)
	}
	if pos.IsOccupied(E4) {
		t.Error("captured pawn still on e4")
	}
	if pc, ok := pos.PieceAt(E3); !ok || pc.Color != Black || pc.Type != Pawn {
		t.Errorf("e3 holds %+v", pc)
	}
	if pos.EnPassant() != NoSquare {
		t.Errorf("en passant target survived the capture: %v", pos.EnPassant())
	}
	if err := pos.CheckConsistency(); err != nil {
		t.Error(err)
	}
}

func TestEnPassantExpires(t *testing.T) {
	pos := MustParseFEN("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3")
	if _, err := pos.ApplyMove(G8, F6); err != nil {
		t.Fatal(err)
	}
	if _, err := pos.ApplyMove(G1, F3); err != nil {
		t.Fatal(err)
	}
	if pos.LegalDestinations(D4).IsSet(E3) {
		t.Error("en passant still available one move later")
	}
}

func TestEnPassantHorizontalPin(t *testing.T) {
	pos := MustParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if pos.LegalDestinations(E4).IsSet(D3) {
		t.Error("e4xd3 would expose the king on a4 to the rook on h4")
	}
	if !pos.LegalDestinations(E4).IsSet(E3) {
		t.Error("e4-e3 should stay legal")
	}
}

func TestCastlingDeniedThroughAttack(t *testing.T) {
	pos := MustParseFEN("4kr2/8/8/8/8/8/8/4K2R w K - 0 1")
	if pos.LegalDestinations(E1).IsSet(G1) {
		t.Error("castling allowed through the attacked f1 square")
	}

	pos.ClearSquare(F8)
	if !pos.LegalDestinations(E1).IsSet(G1) {
		t.Error("castling denied after the attacker was removed")
	}
}

func TestCastlingConditions(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		king  Square
		dest  Square
		legal bool
	}{
		{"white kingside", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", E1, G1, true},
		{"white queenside", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", E1, C1, true},
		{"black kingside", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", E8, G8, true},
		{"black queenside", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", E8, C8, true},
		{"no right", "r3k2r/8/8/8/8/8/8/R3K2R w Qkq - 0 1", E1, G1, false},
		{"blocked by knight", "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1", E1, C1, false},
		{"in check", "r3k2r/8/8/8/8/8/4r3/R3K2R w KQkq - 0 1", E1, G1, false},
		{"destination attacked by bishop", "r3k2r/8/8/8/8/8/7b/R3K2R w KQkq - 0 1", E1, G1, false},
		{"blocked by enemy rook", "r3k2r/8/8/8/8/8/8/Rr2K2R w KQk - 0 1", E1, C1, false},
		{"attacked b1 does not matter", "1r2k2r/8/8/8/8/8/8/R3K2R w KQk - 0 1", E1, C1, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := MustParseFEN(tc.fen)
			if got := pos.LegalDestinations(tc.king).IsSet(tc.dest); got != tc.legal {
				t.Errorf("castling to %v legal = %v, want %v", tc.dest, got, tc.legal)
			}
		})
	}
}

func TestCastlingRequiresUnmovedRook(t *testing.T) {
	pos := MustParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	// Rook leaves and comes back: the right is gone for good
	for _, m := range []struct{ from, to Square }{
		{H1, H2}, {A8, A7}, {H2, H1}, {A7, A8},
	} {
		if _, err := pos.ApplyMove(m.from, m.to); err != nil {
			t.Fatalf("ApplyMove(%v, %v): %v", m.from, m.to, err)
		}
	}
	if pos.LegalDestinations(E1).IsSet(G1) {
		t.Error("castling kingside after the rook moved")
	}
	if !pos.LegalDestinations(E1).IsSet(C1) {
		t.Error("queenside castling should be unaffected")
	}
	if pos.LegalDestinations(E8).IsSet(C8) {
		t.Error("black castling queenside after the a8 rook moved")
	}
}

func TestLegalMovesPromotions(t *testing.T) {
	pos := MustParseFEN("8/4P3/8/8/8/8/k7/4K3 w - - 0 1")
	var promos []string
	for _, m := range pos.LegalMoves(White) {
		if m.IsPromotion() {
			promos = append(promos, m.String())
		}
	}
	sort.Strings(promos)
	want := []string{"e7e8b", "e7e8n", "e7e8q", "e7e8r"}
	if len(promos) != len(want) {
		t.Fatalf("promotions = %v, want %v", promos, want)
	}
	for i := range want {
		if promos[i] != want[i] {
			t.Errorf("promotions = %v, want %v", promos, want)
			break
		}
	}
}

func equalSquares(a, b []Square) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
