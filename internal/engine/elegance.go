// path: evochess/internal/engine/elegance.go
package engine

// Elegance weights. The score is a derived rating of the move just
// applied, deterministic for a given position and move.
const (
	eleganceBase      = 1.0
	eleganceCheck     = 0.5
	eleganceCheckmate = 5.0
	eleganceFork      = 1.5
	eleganceSacrifice = 1.0
	eleganceEnhanced  = 0.75
)

func pieceValue(pt PieceType) float64 {
	switch pt {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	default:
		return 0
	}
}

// EleganceScore rates an applied move: material swing, check and mate,
// promotion, forks against heavy pieces, sacrifices, and enhanced moves
// scaled by the mover's evolution level.
func (e *Engine) EleganceScore(m Move) float64 {
	score := eleganceBase

	if m.Is(MoveFlagCapture) {
		score += pieceValue(m.Captured)
	}
	if m.Is(MoveFlagPromotion) {
		score += pieceValue(m.Promotion)
	}

	switch {
	case e.status == "checkmate":
		score += eleganceCheckmate
	case e.inCheck:
		score += eleganceCheck
	}

	if e.forksHeavyPieces(m.To, m.Color) {
		score += eleganceFork
	}
	if e.enPriseToCheaper(m.To, m.Color) {
		score += eleganceSacrifice
	}

	if m.Enhanced() {
		level := 1
		if state := e.evolutionAt(m.To); state != nil {
			level = state.Level
		}
		score += eleganceEnhanced * float64(level)
	}

	return score
}

// forksHeavyPieces reports whether the piece on sq attacks two or more
// enemy pieces of rook value or better, king included.
func (e *Engine) forksHeavyPieces(sq Square, c Color) bool {
	attacks := e.board.attackedByPiece(sq)
	heavy := 0
	attacks.Iter(func(target Square) {
		pc, ok := e.board.PieceAt(target)
		if !ok || pc.Color == c {
			return
		}
		if pc.Type == King || pieceValue(pc.Type) >= pieceValue(Rook) {
			heavy++
		}
	})
	return heavy >= 2
}

// enPriseToCheaper reports whether the piece on sq can be taken by a
// cheaper enemy piece, the mark of a deliberate sacrifice.
func (e *Engine) enPriseToCheaper(sq Square, c Color) bool {
	pc, ok := e.board.PieceAt(sq)
	if !ok {
		return false
	}
	own := pieceValue(pc.Type)
	cheapest := -1.0
	e.board.occupancy[c.Opposite()].Iter(func(attacker Square) {
		if !e.board.attackedByPiece(attacker).Has(sq) {
			return
		}
		value := pieceValue(e.board.squares[attacker].Type)
		if cheapest < 0 || value < cheapest {
			cheapest = value
		}
	})
	return cheapest >= 0 && cheapest < own
}
