package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the type of a chess piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the FEN character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return "pnbrqk"[pt]
}

// PieceTypeFromChar maps a lowercase or uppercase piece letter to its type.
func PieceTypeFromChar(c byte) PieceType {
	switch c {
	case 'p', 'P':
		return Pawn
	case 'n', 'N':
		return Knight
	case 'b', 'B':
		return Bishop
	case 'r', 'R':
		return Rook
	case 'q', 'Q':
		return Queen
	case 'k', 'K':
		return King
	default:
		return NoPieceType
	}
}

// IsPromotable reports whether a pawn may promote to pt.
func (pt PieceType) IsPromotable() bool {
	return pt == Knight || pt == Bishop || pt == Rook || pt == Queen
}

// Piece is a piece standing on a square.
// HasMoved matters for kings and rooks (castling); pawns carry it for uniformity.
type Piece struct {
	Color    Color
	Type     PieceType
	HasMoved bool
}

// NewPiece creates an unmoved piece.
func NewPiece(pt PieceType, c Color) Piece {
	return Piece{Color: c, Type: pt}
}

// IsValid reports whether the piece has a real color and type.
func (p Piece) IsValid() bool {
	return p.Color < NoColor && p.Type < NoPieceType
}

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black.
func (p Piece) String() string {
	if !p.IsValid() {
		return " "
	}
	c := p.Type.Char()
	if p.Color == White {
		c -= 'a' - 'A'
	}
	return string(c)
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) (Piece, bool) {
	pt := PieceTypeFromChar(c)
	if pt == NoPieceType {
		return Piece{}, false
	}
	if c >= 'a' && c <= 'z' {
		return NewPiece(pt, Black), true
	}
	return NewPiece(pt, White), true
}
