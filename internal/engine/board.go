// path: evochess/internal/engine/board.go
package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Board is the engine's own 8x8 mirror of the position. The rules oracle
// stays authoritative for standard legality; the mirror exists so that
// ability-derived moves can be applied and verified on positions the
// oracle cannot reach through its own move list.
type Board struct {
	squares   [64]Piece
	pieces    [2][6]Bitboard
	occupancy [2]Bitboard
	allOcc    Bitboard

	turn      Color
	castling  CastlingRights
	enPassant EnPassantTarget
	halfmove  int
	fullmove  int
}

// NewBoard returns an empty board, white to move.
func NewBoard() Board {
	return Board{turn: White, fullmove: 1}
}

// startingBoard returns the parsed standard position.
func startingBoard() Board {
	b, err := ParseFEN(StartingFEN)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Board) Turn() Color { return b.turn }

func (b *Board) Castling() CastlingRights { return b.castling }

func (b *Board) EnPassant() EnPassantTarget { return b.enPassant }

func (b *Board) HalfmoveClock() int { return b.halfmove }

func (b *Board) FullmoveNumber() int { return b.fullmove }

func (b *Board) Occupied(sq Square) bool { return b.allOcc.Has(sq) }

func (b *Board) PieceAt(sq Square) (Piece, bool) {
	if !b.allOcc.Has(sq) {
		return Piece{}, false
	}
	return b.squares[sq], true
}

func (b *Board) PieceCount() int { return b.allOcc.Count() }

func (b *Board) ColorCount(c Color) int { return b.occupancy[c].Count() }

func (b *Board) OccupiedSquares() Bitboard { return b.allOcc }

func (b *Board) setPiece(sq Square, pc Piece) {
	b.clearSquare(sq)
	b.squares[sq] = pc
	b.pieces[pc.Color][pc.Type] = b.pieces[pc.Color][pc.Type].Add(sq)
	b.occupancy[pc.Color] = b.occupancy[pc.Color].Add(sq)
	b.allOcc = b.allOcc.Add(sq)
}

func (b *Board) clearSquare(sq Square) {
	if !b.allOcc.Has(sq) {
		return
	}
	pc := b.squares[sq]
	b.pieces[pc.Color][pc.Type] = b.pieces[pc.Color][pc.Type].Remove(sq)
	b.occupancy[pc.Color] = b.occupancy[pc.Color].Remove(sq)
	b.allOcc = b.allOcc.Remove(sq)
	b.squares[sq] = Piece{}
}

// movePiece relocates the occupant of from to to, returning any captured
// piece. The caller owns clock, turn and castling bookkeeping.
func (b *Board) movePiece(from, to Square) (Piece, bool) {
	pc, ok := b.PieceAt(from)
	if !ok {
		return Piece{}, false
	}
	captured, hadCapture := b.PieceAt(to)
	b.clearSquare(from)
	b.setPiece(to, pc)
	return captured, hadCapture
}

func (b *Board) findKing(c Color) (Square, bool) {
	bb := b.pieces[c][King]
	if bb.Empty() {
		return 0, false
	}
	sq, _ := bb.PopLSB()
	return sq, true
}

// ---------------------------------------------------------------------
// Attack geometry. Standard chess attacks only: ability-extended reach
// never delivers check, matching the oracle's own legality recheck.
// ---------------------------------------------------------------------

type offset struct{ dr, df int }

var (
	knightOffsets = []offset{
		{1, 2}, {2, 1}, {2, -1}, {1, -2},
		{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
	kingOffsets = []offset{
		{1, 0}, {1, 1}, {0, 1}, {-1, 1},
		{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	}
	rookDirections   = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirections = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirections  = []offset{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
)

func (b *Board) isSquareAttackedBy(attacker Color, target Square) bool {
	tr, tf := target.Rank(), target.File()

	// Pawns attack diagonally forward, so look one rank back from the
	// target along the attacker's advance direction.
	pawnRank := tr - forwardDelta(attacker)
	for _, df := range []int{-1, 1} {
		if sq, ok := SquareFromCoords(pawnRank, tf+df); ok {
			if pc, occupied := b.PieceAt(sq); occupied && pc.Color == attacker && pc.Type == Pawn {
				return true
			}
		}
	}

	for _, d := range knightOffsets {
		if sq, ok := SquareFromCoords(tr+d.dr, tf+d.df); ok {
			if pc, occupied := b.PieceAt(sq); occupied && pc.Color == attacker && pc.Type == Knight {
				return true
			}
		}
	}

	for _, d := range kingOffsets {
		if sq, ok := SquareFromCoords(tr+d.dr, tf+d.df); ok {
			if pc, occupied := b.PieceAt(sq); occupied && pc.Color == attacker && pc.Type == King {
				return true
			}
		}
	}

	if b.slidingAttack(attacker, target, rookDirections, Rook) {
		return true
	}
	return b.slidingAttack(attacker, target, bishopDirections, Bishop)
}

func (b *Board) slidingAttack(attacker Color, target Square, dirs []offset, slider PieceType) bool {
	tr, tf := target.Rank(), target.File()
	for _, d := range dirs {
		rank, file := tr+d.dr, tf+d.df
		for {
			sq, ok := SquareFromCoords(rank, file)
			if !ok {
				break
			}
			if pc, occupied := b.PieceAt(sq); occupied {
				if pc.Color == attacker && (pc.Type == slider || pc.Type == Queen) {
					return true
				}
				break
			}
			rank += d.dr
			file += d.df
		}
	}
	return false
}

func (b *Board) isKingInCheck(c Color) bool {
	kingSq, ok := b.findKing(c)
	if !ok {
		return false
	}
	return b.isSquareAttackedBy(c.Opposite(), kingSq)
}

// wouldLeaveKingInCheck simulates the move on a copy and reports whether
// the mover's own king ends up attacked. The board is never mutated.
func (b *Board) wouldLeaveKingInCheck(from, to Square) bool {
	pc, ok := b.PieceAt(from)
	if !ok {
		return true
	}
	sim := *b
	sim.clearSquare(from)
	sim.setPiece(to, pc)
	return sim.isKingInCheck(pc.Color)
}

// attackedByPiece enumerates the squares a piece standing on sq attacks
// with standard geometry, ignoring whose turn it is.
func (b *Board) attackedByPiece(sq Square) Bitboard {
	pc, ok := b.PieceAt(sq)
	if !ok {
		return 0
	}
	var out Bitboard
	rank, file := sq.Rank(), sq.File()
	switch pc.Type {
	case Pawn:
		forward := forwardDelta(pc.Color)
		for _, df := range []int{-1, 1} {
			if s, ok := SquareFromCoords(rank+forward, file+df); ok {
				out = out.Add(s)
			}
		}
	case Knight:
		for _, d := range knightOffsets {
			if s, ok := SquareFromCoords(rank+d.dr, file+d.df); ok {
				out = out.Add(s)
			}
		}
	case King:
		for _, d := range kingOffsets {
			if s, ok := SquareFromCoords(rank+d.dr, file+d.df); ok {
				out = out.Add(s)
			}
		}
	case Rook:
		out = b.slideFrom(sq, rookDirections)
	case Bishop:
		out = b.slideFrom(sq, bishopDirections)
	case Queen:
		out = b.slideFrom(sq, queenDirections)
	}
	return out
}

// quietTargets enumerates the standard non-capturing destinations for
// the occupant of sq, regardless of whose turn it is. Used to derive the
// shrunk move set of a dominated piece.
func (b *Board) quietTargets(sq Square) Bitboard {
	pc, ok := b.PieceAt(sq)
	if !ok {
		return 0
	}
	if pc.Type == Pawn {
		var out Bitboard
		forward := forwardDelta(pc.Color)
		rank, file := sq.Rank(), sq.File()
		one, ok := SquareFromCoords(rank+forward, file)
		if !ok || b.Occupied(one) {
			return 0
		}
		out = out.Add(one)
		if rank == backRank(pc.Color)+forward {
			if two, ok := SquareFromCoords(rank+2*forward, file); ok && !b.Occupied(two) {
				out = out.Add(two)
			}
		}
		return out
	}
	return b.attackedByPiece(sq) &^ b.allOcc
}

func (b *Board) slideFrom(sq Square, dirs []offset) Bitboard {
	var out Bitboard
	for _, d := range dirs {
		rank, file := sq.Rank()+d.dr, sq.File()+d.df
		for {
			s, ok := SquareFromCoords(rank, file)
			if !ok {
				break
			}
			out = out.Add(s)
			if b.Occupied(s) {
				break
			}
			rank += d.dr
			file += d.df
		}
	}
	return out
}

// ---------------------------------------------------------------------
// FEN codec. The mirror serializes to FEN only at the oracle boundary
// and for the public surface; no string surgery happens mid-move.
// ---------------------------------------------------------------------

func (b *Board) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := Square(rank*8 + file)
			pc, ok := b.PieceAt(sq)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.Type.fenLetter(pc.Color))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if b.turn == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(b.castling.String())
	sb.WriteByte(' ')
	sb.WriteString(b.enPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.halfmove))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.fullmove))
	return sb.String()
}

func ParseFEN(fen string) (Board, error) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) != 6 {
		return Board{}, fmt.Errorf("%w: expected 6 fields, got %d", ErrInvalidFEN, len(fields))
	}

	board := NewBoard()

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return Board{}, fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for i, rankField := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankField); j++ {
			ch := rankField[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			pc, ok := pieceFromFENLetter(ch)
			if !ok {
				return Board{}, fmt.Errorf("%w: bad piece letter %q", ErrInvalidFEN, string(ch))
			}
			sq, ok := SquareFromCoords(rank, file)
			if !ok {
				return Board{}, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, rank+1)
			}
			board.setPiece(sq, pc)
			file++
		}
		if file != 8 {
			return Board{}, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, rank+1, file)
		}
	}

	switch fields[1] {
	case "w":
		board.turn = White
	case "b":
		board.turn = Black
	default:
		return Board{}, fmt.Errorf("%w: bad side to move %q", ErrInvalidFEN, fields[1])
	}

	castling, err := ParseCastlingRights(fields[2])
	if err != nil {
		return Board{}, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	board.castling = castling

	enPassant, err := ParseEnPassantTarget(fields[3])
	if err != nil {
		return Board{}, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	board.enPassant = enPassant

	halfmove, err := strconv.Atoi(fields[4])
	if err != nil || halfmove < 0 {
		return Board{}, fmt.Errorf("%w: bad halfmove clock %q", ErrInvalidFEN, fields[4])
	}
	board.halfmove = halfmove

	fullmove, err := strconv.Atoi(fields[5])
	if err != nil || fullmove < 1 {
		return Board{}, fmt.Errorf("%w: bad fullmove number %q", ErrInvalidFEN, fields[5])
	}
	board.fullmove = fullmove

	return board, nil
}
