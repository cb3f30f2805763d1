// path: evochess/internal/engine/types.go
package engine

import (
	"fmt"
	"strings"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Index() int { return int(c) }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return White, false
	}
}

type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 255
)

func (p PieceType) String() string {
	switch p {
	case Pawn:
		return "P"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	case NoPieceType:
		return "-"
	default:
		return fmt.Sprintf("piece(%d)", uint8(p))
	}
}

func (p PieceType) Name() string {
	switch p {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

func ParsePieceType(s string) (PieceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "pawn":
		return Pawn, true
	case "n", "knight":
		return Knight, true
	case "b", "bishop":
		return Bishop, true
	case "r", "rook":
		return Rook, true
	case "q", "queen":
		return Queen, true
	case "k", "king":
		return King, true
	default:
		return NoPieceType, false
	}
}

// fenLetter returns the FEN piece letter for the given color.
func (p PieceType) fenLetter(c Color) byte {
	var letter byte
	switch p {
	case Pawn:
		letter = 'p'
	case Knight:
		letter = 'n'
	case Bishop:
		letter = 'b'
	case Rook:
		letter = 'r'
	case Queen:
		letter = 'q'
	case King:
		letter = 'k'
	default:
		return '?'
	}
	if c == White {
		letter -= 'a' - 'A'
	}
	return letter
}

func pieceFromFENLetter(letter byte) (Piece, bool) {
	color := Black
	if letter >= 'A' && letter <= 'Z' {
		color = White
		letter += 'a' - 'A'
	}
	var pt PieceType
	switch letter {
	case 'p':
		pt = Pawn
	case 'n':
		pt = Knight
	case 'b':
		pt = Bishop
	case 'r':
		pt = Rook
	case 'q':
		pt = Queen
	case 'k':
		pt = King
	default:
		return Piece{}, false
	}
	return Piece{Color: color, Type: pt}, true
}

// Piece is a board occupant. The square is implied by the board index.
type Piece struct {
	Color Color
	Type  PieceType
}

type Square uint8

func (s Square) Rank() int { return int(s) >> 3 }
func (s Square) File() int { return int(s) & 7 }

func (s Square) String() string {
	file := byte('a' + s.File())
	rank := byte('1' + s.Rank())
	return string([]byte{file, rank})
}

func CoordToSquare(coord string) (Square, bool) {
	if len(coord) != 2 {
		return 0, false
	}
	file := coord[0]
	rank := coord[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, false
	}
	r := int(rank - '1')
	c := int(file - 'a')
	return Square(r*8 + c), true
}

func SquareFromCoords(rank, file int) (Square, bool) {
	if rank < 0 || rank > 7 || file < 0 || file > 7 {
		return 0, false
	}
	return Square(rank*8 + file), true
}

// ChebyshevDistance is the king-move distance between two squares.
func ChebyshevDistance(a, b Square) int {
	dr := abs(a.Rank() - b.Rank())
	df := abs(a.File() - b.File())
	return max(dr, df)
}

// forwardDelta is the rank direction a pawn of the given color advances in.
func forwardDelta(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

func backRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

func promotionRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// BoardRegion names a positional area used by trigger conditions.
type BoardRegion uint8

const (
	RegionNone BoardRegion = iota
	RegionCenter
	RegionEdge
	RegionBackRank
)

func (r BoardRegion) String() string {
	switch r {
	case RegionCenter:
		return "center"
	case RegionEdge:
		return "edge"
	case RegionBackRank:
		return "back_rank"
	default:
		return "none"
	}
}

func ParseBoardRegion(s string) (BoardRegion, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "center", "centre":
		return RegionCenter, true
	case "edge":
		return RegionEdge, true
	case "back_rank", "backrank", "back rank":
		return RegionBackRank, true
	case "none", "":
		return RegionNone, true
	default:
		return RegionNone, false
	}
}

func (r BoardRegion) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *BoardRegion) UnmarshalText(text []byte) error {
	parsed, ok := ParseBoardRegion(string(text))
	if !ok {
		return fmt.Errorf("invalid board region %q", string(text))
	}
	*r = parsed
	return nil
}

// InRegion reports whether the square lies inside the region from the
// point of view of the given color. Color only matters for back_rank.
func (s Square) InRegion(region BoardRegion, c Color) bool {
	rank, file := s.Rank(), s.File()
	switch region {
	case RegionCenter:
		return rank >= 2 && rank <= 5 && file >= 2 && file <= 5
	case RegionEdge:
		return rank == 0 || rank == 7 || file == 0 || file == 7
	case RegionBackRank:
		return rank == backRank(c)
	default:
		return false
	}
}

type CastlingRights uint8

const (
	CastlingNone          CastlingRights = 0
	CastlingWhiteKingside CastlingRights = 1 << iota
	CastlingWhiteQueenside
	CastlingBlackKingside
	CastlingBlackQueenside
	CastlingAll = CastlingWhiteKingside | CastlingWhiteQueenside | CastlingBlackKingside | CastlingBlackQueenside
)

func (cr CastlingRights) Has(right CastlingRights) bool { return cr&right != 0 }

func (cr CastlingRights) Without(right CastlingRights) CastlingRights { return cr &^ right }

func (cr CastlingRights) String() string {
	if cr == CastlingNone {
		return "-"
	}
	var b strings.Builder
	if cr.Has(CastlingWhiteKingside) {
		b.WriteByte('K')
	}
	if cr.Has(CastlingWhiteQueenside) {
		b.WriteByte('Q')
	}
	if cr.Has(CastlingBlackKingside) {
		b.WriteByte('k')
	}
	if cr.Has(CastlingBlackQueenside) {
		b.WriteByte('q')
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func ParseCastlingRights(s string) (CastlingRights, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "-" {
		return CastlingNone, nil
	}
	var rights CastlingRights
	for _, r := range trimmed {
		switch r {
		case 'K':
			rights |= CastlingWhiteKingside
		case 'Q':
			rights |= CastlingWhiteQueenside
		case 'k':
			rights |= CastlingBlackKingside
		case 'q':
			rights |= CastlingBlackQueenside
		default:
			return CastlingNone, fmt.Errorf("invalid castling flag %q", string(r))
		}
	}
	return rights, nil
}

func (cr CastlingRights) MarshalText() ([]byte, error) { return []byte(cr.String()), nil }

func (cr *CastlingRights) UnmarshalText(text []byte) error {
	parsed, err := ParseCastlingRights(string(text))
	if err != nil {
		return err
	}
	*cr = parsed
	return nil
}

type EnPassantTarget struct {
	square Square
	valid  bool
}

func NewEnPassantTarget(sq Square) EnPassantTarget { return EnPassantTarget{square: sq, valid: true} }

func NoEnPassantTarget() EnPassantTarget { return EnPassantTarget{} }

func (e EnPassantTarget) Valid() bool { return e.valid }

func (e EnPassantTarget) Square() (Square, bool) {
	if !e.valid {
		return 0, false
	}
	return e.square, true
}

func (e EnPassantTarget) String() string {
	if !e.valid {
		return "-"
	}
	return e.square.String()
}

func ParseEnPassantTarget(s string) (EnPassantTarget, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "-" {
		return EnPassantTarget{}, nil
	}
	sq, ok := CoordToSquare(strings.ToLower(trimmed))
	if !ok {
		return EnPassantTarget{}, fmt.Errorf("invalid en-passant square %q", s)
	}
	return NewEnPassantTarget(sq), nil
}

type MoveFlag uint8

const (
	MoveFlagCapture MoveFlag = 1 << iota
	MoveFlagPromotion
	MoveFlagEnPassant
	MoveFlagCastle
	MoveFlagEnhanced
	MoveFlagDashContinuation
	MoveFlagCached
)

// MoveRequest is the caller-facing move input.
type MoveRequest struct {
	From         Square
	To           Square
	Promotion    PieceType
	HasPromotion bool
}

// Move describes a generated or applied move. Enhanced moves carry the
// ability that produced them; applied moves additionally carry the ability
// results fired by the move.
type Move struct {
	From      Square
	To        Square
	Piece     PieceType
	Color     Color
	Promotion PieceType
	Captured  PieceType
	Flags     MoveFlag
	Ability   Ability
	SAN       string
	Results   []AbilityResult
}

func (m Move) Is(flag MoveFlag) bool { return m.Flags&flag != 0 }

func (m Move) Enhanced() bool { return m.Flags&MoveFlagEnhanced != 0 }

func (m Move) String() string {
	var b strings.Builder
	b.WriteString(m.From.String())
	b.WriteString(m.To.String())
	if m.Is(MoveFlagPromotion) {
		b.WriteString(strings.ToLower(m.Promotion.String()))
	}
	if m.Enhanced() {
		b.WriteByte('*')
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
