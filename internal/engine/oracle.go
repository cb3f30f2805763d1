// path: evochess/internal/engine/oracle.go
package engine

import (
	"fmt"

	"github.com/notnil/chess"
)

// oracle wraps the standard-rules library. It owns base-move legality,
// SAN, FEN validation and game status; everything ability-related lives
// outside it. The engine reloads it from the mirror's FEN whenever a
// move the oracle cannot express has been applied manually.
type oracle struct {
	game *chess.Game
}

func newOracle() *oracle {
	return &oracle{game: chess.NewGame()}
}

func newOracleFromFEN(fen string) (*oracle, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return &oracle{game: chess.NewGame(opt)}, nil
}

func (o *oracle) fen() string {
	return o.game.Position().String()
}

func (o *oracle) position() *chess.Position {
	return o.game.Position()
}

func (o *oracle) validMoves() []*chess.Move {
	return o.game.ValidMoves()
}

// findMove locates the oracle move matching the request, if any.
func (o *oracle) findMove(from, to Square, promo PieceType, hasPromo bool) *chess.Move {
	for _, m := range o.validMoves() {
		if fromOracleSquare(m.S1()) != from || fromOracleSquare(m.S2()) != to {
			continue
		}
		if m.Promo() != chess.NoPieceType {
			if !hasPromo {
				// A bare request against a promotion move promotes to
				// the default queen.
				if m.Promo() == chess.Queen {
					return m
				}
				continue
			}
			if m.Promo() != toOraclePieceType(promo) {
				continue
			}
		} else if hasPromo {
			continue
		}
		return m
	}
	return nil
}

func (o *oracle) apply(m *chess.Move) error {
	return o.game.Move(m)
}

// decodeSAN resolves a SAN string against the current position.
func (o *oracle) decodeSAN(san string) (*chess.Move, error) {
	m, err := chess.AlgebraicNotation{}.Decode(o.position(), san)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return m, nil
}

func (o *oracle) encodeSAN(m *chess.Move) string {
	return chess.AlgebraicNotation{}.Encode(o.position(), m)
}

// ---------------------------------------------------------------------
// Type conversions. The square encoding matches the library's (a1=0,
// rank-major), so squares cast directly.
// ---------------------------------------------------------------------

func toOracleSquare(sq Square) chess.Square { return chess.Square(sq) }

func fromOracleSquare(sq chess.Square) Square { return Square(sq) }

func toOraclePieceType(pt PieceType) chess.PieceType {
	switch pt {
	case Pawn:
		return chess.Pawn
	case Knight:
		return chess.Knight
	case Bishop:
		return chess.Bishop
	case Rook:
		return chess.Rook
	case Queen:
		return chess.Queen
	case King:
		return chess.King
	default:
		return chess.NoPieceType
	}
}

func fromOraclePieceType(pt chess.PieceType) PieceType {
	switch pt {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	default:
		return NoPieceType
	}
}

