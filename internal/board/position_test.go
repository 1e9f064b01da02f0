package board

import (
	"testing"
)

func TestStartingPosition(t *testing.T) {
	pos := NewPosition()

	if err := pos.CheckConsistency(); err != nil {
		t.Fatalf("start position inconsistent: %v", err)
	}
	if got := len(pos.OccupiedSquares()); got != 32 {
		t.Errorf("occupied squares = %d, want 32", got)
	}
	if pos.CastlingRights() != AllCastling {
		t.Errorf("castling = %v, want KQkq", pos.CastlingRights())
	}
	if pos.EnPassant() != NoSquare {
		t.Errorf("en passant = %v, want none", pos.EnPassant())
	}
	if pos.KingSquare(White) != E1 || pos.KingSquare(Black) != E8 {
		t.Errorf("kings on %v/%v, want e1/e8", pos.KingSquare(White), pos.KingSquare(Black))
	}
	if got := pos.FEN(); got != StartFEN {
		t.Errorf("FEN() = %q, want %q", got, StartFEN)
	}

	pc, ok := pos.PieceAt(D8)
	if !ok || pc.Type != Queen || pc.Color != Black || pc.HasMoved {
		t.Errorf("PieceAt(d8) = %+v, %v", pc, ok)
	}
	if _, ok := pos.PieceAt(E4); ok {
		t.Error("PieceAt(e4) should be empty")
	}
	if !pos.IsOccupiedBy(A2, White) || pos.IsOccupiedBy(A2, Black) || pos.IsOccupied(A3) {
		t.Error("occupancy queries disagree with the start position")
	}
}

func TestMutationPrimitives(t *testing.T) {
	pos := NewPosition()

	pos.SetPiece(E4, NewPiece(Knight, Black))
	if pc, ok := pos.PieceAt(E4); !ok || pc.Type != Knight || pc.Color != Black {
		t.Fatalf("SetPiece(e4) not visible: %+v", pc)
	}
	if !pos.Pieces(Black, Knight).IsSet(E4) {
		t.Error("SetPiece did not update the knight bitboard")
	}

	// Overwrite replaces the occupant in both representations
	pos.SetPiece(E4, NewPiece(Rook, White))
	if pos.Pieces(Black, Knight).IsSet(E4) || !pos.Pieces(White, Rook).IsSet(E4) {
		t.Error("SetPiece overwrite left stale bitboards")
	}

	if !pos.MovePiece(E4, E7) {
		t.Fatal("MovePiece(e4, e7) failed")
	}
	if pc, _ := pos.PieceAt(E7); pc.Type != Rook || pc.Color != White {
		t.Errorf("e7 holds %+v after capture by overwrite", pc)
	}
	if pos.Pieces(Black, Pawn).IsSet(E7) {
		t.Error("captured pawn still in black pawn bitboard")
	}

	if pos.MovePiece(E4, E5) {
		t.Error("MovePiece from an empty square should fail")
	}

	pc, ok := pos.ClearSquare(E7)
	if !ok || pc.Type != Rook {
		t.Errorf("ClearSquare(e7) = %+v, %v", pc, ok)
	}
	if _, ok := pos.ClearSquare(E7); ok {
		t.Error("ClearSquare on an empty square should report false")
	}

	if err := pos.CheckConsistency(); err != nil {
		t.Errorf("inconsistent after primitives: %v", err)
	}
}

func TestCloneIndependence(t *testing.T) {
	pos := NewPosition()
	clone := pos.Clone()

	if _, err := clone.ApplyMove(E2, E4); err != nil {
		t.Fatalf("ApplyMove on clone: %v", err)
	}
	clone.ClearSquare(D8)

	if got := pos.FEN(); got != StartFEN {
		t.Errorf("original changed through clone: %s", got)
	}
	if pc, ok := pos.PieceAt(E2); !ok || pc.HasMoved {
		t.Errorf("original e2 pawn = %+v, %v", pc, ok)
	}
	if !pos.IsOccupied(D8) {
		t.Error("original lost the d8 queen")
	}
}

func TestCheckConsistencyDetectsDivergence(t *testing.T) {
	pos := NewPosition()
	delete(pos.squares, E2)
	if err := pos.CheckConsistency(); err == nil {
		t.Error("expected an error for a map entry missing from the bitboards")
	}

	pos = NewPosition()
	pos.pieces[White][Knight] |= SquareBB(E4)
	if err := pos.CheckConsistency(); err == nil {
		t.Error("expected an error for stale derived occupancy")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		ok   bool
	}{
		{"start", StartFEN, true},
		{"missing black king", "8/8/8/8/8/8/8/4K3 w - - 0 1", false},
		{"two white kings", "4k3/8/8/8/8/8/8/3KK3 w - - 0 1", false},
		{"pawn on first rank", "4k3/8/8/8/8/8/8/P3K3 w - - 0 1", false},
		{"opponent in check", "4k3/8/8/8/8/8/8/4RK2 w - - 0 1", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFEN(tc.fen)
			if (err == nil) != tc.ok {
				t.Errorf("ParseFEN(%q) error = %v, want ok=%v", tc.fen, err, tc.ok)
			}
		})
	}
}

func TestAttackOracle(t *testing.T) {
	pos := MustParseFEN("4k3/8/8/3p4/8/2N5/8/R3K3 w Q - 0 1")

	tests := []struct {
		sq   Square
		by   Color
		want bool
	}{
		{E4, Black, true},  // pawn d5
		{C4, Black, true},  // pawn d5
		{D4, Black, false}, // pawns do not attack forward
		{D5, White, true},  // knight c3
		{A8, White, true},  // rook a1 up the open file
		{H1, White, false}, // king e1 blocks the rank
		{D1, White, true},  // rook, king and knight
		{D7, Black, true},  // king e8
		{H5, White, false},
	}
	for _, tc := range tests {
		if got := pos.SquareAttacked(tc.sq, tc.by); got != tc.want {
			t.Errorf("SquareAttacked(%v, %v) = %v, want %v", tc.sq, tc.by, got, tc.want)
		}
	}

	if got := pos.Attackers(D1, White); got != SquareBB(A1)|SquareBB(E1)|SquareBB(C3) {
		t.Errorf("Attackers(d1, white) =\n%v", got)
	}
}

func TestPawnAttacksDoNotWrap(t *testing.T) {
	if got := PawnAttacks(A4, White); got != SquareBB(B5) {
		t.Errorf("white pawn a4 attacks\n%v", got)
	}
	if got := PawnAttacks(H4, White); got != SquareBB(G5) {
		t.Errorf("white pawn h4 attacks\n%v", got)
	}
	if got := PawnAttacks(A5, Black); got != SquareBB(B4) {
		t.Errorf("black pawn a5 attacks\n%v", got)
	}
	if got := PawnAttacks(H5, Black); got != SquareBB(G4) {
		t.Errorf("black pawn h5 attacks\n%v", got)
	}
}

func TestStepTablesStayOnBoard(t *testing.T) {
	tests := []struct {
		sq     Square
		knight int
		king   int
	}{
		{A1, 2, 3},
		{H8, 2, 3},
		{H4, 4, 5},
		{D4, 8, 8},
		{B7, 4, 8},
	}
	for _, tc := range tests {
		if got := KnightAttacks(tc.sq).PopCount(); got != tc.knight {
			t.Errorf("knight on %v attacks %d squares, want %d", tc.sq, got, tc.knight)
		}
		if got := KingAttacks(tc.sq).PopCount(); got != tc.king {
			t.Errorf("king on %v attacks %d squares, want %d", tc.sq, got, tc.king)
		}
	}
}

func TestBetween(t *testing.T) {
	if got := Between(A1, D4); got != SquareBB(B2)|SquareBB(C3) {
		t.Errorf("Between(a1, d4) =\n%v", got)
	}
	if got := Between(E1, E8).PopCount(); got != 6 {
		t.Errorf("Between(e1, e8) has %d squares, want 6", got)
	}
	if got := Between(A1, B3); got != Empty {
		t.Errorf("Between(a1, b3) should be empty for unaligned squares")
	}
	if got := Between(H1, A8).PopCount(); got != 6 {
		t.Errorf("Between(h1, a8) has %d squares, want 6", got)
	}
}
