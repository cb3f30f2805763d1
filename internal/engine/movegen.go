// path: evochess/internal/engine/movegen.go
package engine

import "github.com/notnil/chess"

// dashWindow is the one-move override opened by a fired knight dash: the
// piece that just landed may move once more before the turn truly passes.
type dashWindow struct {
	active bool
	square Square
	color  Color
}

// LegalMoves returns every move available to the side to move, plus any
// open dash continuation. Base moves come first in oracle order, then
// ability-derived moves in square/attachment order, so generation is
// deterministic for a fixed position and predicate.
func (e *Engine) LegalMoves() []Move {
	return e.generate(nil)
}

// LegalMovesFrom returns the moves available from one square. Off-turn
// squares yield nothing unless a dash window covers them.
func (e *Engine) LegalMovesFrom(sq Square) []Move {
	return e.generate(&sq)
}

// IsEnhancedMoveLegal reports whether from-to is playable in the
// augmented move set, through any source: base, ability or cache.
func (e *Engine) IsEnhancedMoveLegal(from, to Square) bool {
	for _, m := range e.generate(&from) {
		if m.From == from && m.To == to {
			return true
		}
	}
	return false
}

func (e *Engine) generate(only *Square) []Move {
	e.genDepth++
	defer func() { e.genDepth-- }()

	var moves []Move

	if e.dash.active {
		moves = append(moves, e.dashContinuations(only)...)
	}

	restricted := e.restrictedSquares()

	moves = append(moves, e.baseMoves(only, restricted)...)
	moves = append(moves, e.abilityMoves(only, restricted)...)
	moves = append(moves, e.cachedMoves(only, restricted)...)
	return moves
}

// restrictedSquares collects the move-restricted pieces of the side to
// move. Their base and ability moves are suppressed; only the cached
// shrunk set remains.
func (e *Engine) restrictedSquares() Bitboard {
	var out Bitboard
	for sq, state := range e.evolutions {
		if state.IsMoveRestricted {
			out = out.Add(sq)
		}
	}
	return out
}

// baseMoves converts the oracle's legal moves, dropping any candidate
// whose destination holds a king. Kings are never capturable here, no
// matter what position the mirror reconstruction produced.
func (e *Engine) baseMoves(only *Square, restricted Bitboard) []Move {
	out := make([]Move, 0, 32)
	for _, om := range e.oracle.validMoves() {
		from := fromOracleSquare(om.S1())
		if only != nil && from != *only {
			continue
		}
		if restricted.Has(from) {
			continue
		}
		to := fromOracleSquare(om.S2())
		if e.kingAt(to) {
			continue
		}
		out = append(out, e.convertOracleMove(om))
	}
	return out
}

func (e *Engine) convertOracleMove(om *chess.Move) Move {
	from := fromOracleSquare(om.S1())
	to := fromOracleSquare(om.S2())
	pc, _ := e.board.PieceAt(from)
	m := Move{
		From:     from,
		To:       to,
		Piece:    pc.Type,
		Color:    pc.Color,
		Captured: NoPieceType,
		SAN:      e.oracle.encodeSAN(om),
	}
	if target, ok := e.board.PieceAt(to); ok {
		m.Flags |= MoveFlagCapture
		m.Captured = target.Type
	}
	if om.HasTag(chess.EnPassant) {
		m.Flags |= MoveFlagCapture | MoveFlagEnPassant
		m.Captured = Pawn
	}
	if om.HasTag(chess.KingSideCastle) || om.HasTag(chess.QueenSideCastle) {
		m.Flags |= MoveFlagCastle
	}
	if om.Promo() != chess.NoPieceType {
		m.Flags |= MoveFlagPromotion
		m.Promotion = fromOraclePieceType(om.Promo())
	}
	return m
}

// abilityMoves runs the per-piece pattern generators for every usable
// ability of the side to move. Candidates landing on a friendly piece or
// any king are rejected, and each survivor is simulated for king safety
// before being tagged with its ability.
func (e *Engine) abilityMoves(only *Square, restricted Bitboard) []Move {
	var out []Move
	turn := e.board.Turn()
	for idx := 0; idx < 64; idx++ {
		sq := Square(idx)
		if only != nil && sq != *only {
			continue
		}
		if restricted.Has(sq) {
			continue
		}
		state := e.evolutions[sq]
		if state == nil {
			continue
		}
		pc, ok := e.board.PieceAt(sq)
		if !ok || pc.Color != turn {
			continue
		}
		for _, ability := range state.Abilities {
			if !e.canTrigger(ability, sq, pc.Color) {
				continue
			}
			targets := e.patternDestinations(ability, state, sq, pc)
			if targets.Empty() {
				continue
			}
			var seen Bitboard
			targets.Iter(func(to Square) {
				if seen.Has(to) || e.kingAt(to) {
					return
				}
				if e.board.wouldLeaveKingInCheck(sq, to) {
					return
				}
				seen = seen.Add(to)
				out = append(out, e.enhancedMove(sq, to, pc, ability.ID))
			})
		}
	}
	return out
}

// cachedMoves surfaces the standing options stored on each overlay
// entry. For a move-restricted piece this is the only source of moves.
func (e *Engine) cachedMoves(only *Square, restricted Bitboard) []Move {
	var out []Move
	turn := e.board.Turn()
	for idx := 0; idx < 64; idx++ {
		sq := Square(idx)
		if only != nil && sq != *only {
			continue
		}
		state := e.evolutions[sq]
		if state == nil || state.CachedMoves.Empty() {
			continue
		}
		pc, ok := e.board.PieceAt(sq)
		if !ok || pc.Color != turn {
			continue
		}
		if !state.IsMoveRestricted && state.CachedBy == AbilityNone {
			continue
		}
		tag := state.CachedBy
		state.CachedMoves.Iter(func(to Square) {
			if e.kingAt(to) {
				return
			}
			if target, occupied := e.board.PieceAt(to); occupied && target.Color == pc.Color {
				return
			}
			if e.board.wouldLeaveKingInCheck(sq, to) {
				return
			}
			m := e.enhancedMove(sq, to, pc, tag)
			m.Flags |= MoveFlagCached
			out = append(out, m)
		})
	}
	return out
}

func (e *Engine) enhancedMove(from, to Square, pc Piece, id Ability) Move {
	m := Move{
		From:     from,
		To:       to,
		Piece:    pc.Type,
		Color:    pc.Color,
		Captured: NoPieceType,
		Flags:    MoveFlagEnhanced,
		Ability:  id,
	}
	if target, ok := e.board.PieceAt(to); ok {
		m.Flags |= MoveFlagCapture
		m.Captured = target.Type
	}
	if pc.Type == Pawn && to.Rank() == promotionRank(pc.Color) && patternAllowsPromotion(id) {
		m.Flags |= MoveFlagPromotion
		m.Promotion = Queen
	}
	return m
}

// dashContinuations yields the follow-up leaps while a dash window is
// open. The window belongs to the piece that just moved, so these are
// offered even though the side to move has flipped.
func (e *Engine) dashContinuations(only *Square) []Move {
	if only != nil && *only != e.dash.square {
		return nil
	}
	sq := e.dash.square
	pc, ok := e.board.PieceAt(sq)
	if !ok || pc.Color != e.dash.color || pc.Type != Knight {
		return nil
	}
	var out []Move
	e.board.baseKnightTargets(sq, pc.Color).Iter(func(to Square) {
		if e.kingAt(to) {
			return
		}
		if e.board.wouldLeaveKingInCheck(sq, to) {
			return
		}
		m := e.enhancedMove(sq, to, pc, AbilityKnightDash)
		m.Flags |= MoveFlagDashContinuation
		out = append(out, m)
	})
	return out
}

func (e *Engine) kingAt(sq Square) bool {
	pc, ok := e.board.PieceAt(sq)
	return ok && pc.Type == King
}
