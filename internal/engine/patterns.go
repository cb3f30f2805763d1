// path: evochess/internal/engine/patterns.go
package engine

// Extended L-shapes for the knight dash: arm pairs (3,1), (3,2) and
// (4,1) with all reflections, beyond the base (2,1) leap.
var extendedKnightOffsets = []offset{
	{3, 1}, {1, 3}, {3, -1}, {1, -3},
	{-3, 1}, {-1, 3}, {-3, -1}, {-1, -3},
	{3, 2}, {2, 3}, {3, -2}, {2, -3},
	{-3, 2}, {-2, 3}, {-3, -2}, {-2, -3},
	{4, 1}, {1, 4}, {4, -1}, {1, -4},
	{-4, 1}, {-1, 4}, {-4, -1}, {-1, -4},
}

// patternAllowsPromotion reports whether a pawn reaching the last rank
// through this pattern promotes. The diagonal drift explicitly carries
// no promotion semantics.
func patternAllowsPromotion(id Ability) bool {
	switch id {
	case AbilityDiagonalMove:
		return false
	default:
		return true
	}
}

// patternDestinations enumerates the candidate destinations an ability's
// movement face offers. Friendly-occupied squares are already excluded;
// king targets and king safety are rejected by the generation pipeline.
// Off-board candidates are clipped silently.
func (e *Engine) patternDestinations(ai *AbilityInstance, state *PieceEvolutionState, from Square, pc Piece) Bitboard {
	switch ai.ID {
	case AbilityEnhancedMarch:
		if pc.Type != Pawn {
			return 0
		}
		return e.board.marchTargets(from, pc.Color)
	case AbilityDiagonalMove:
		if pc.Type != Pawn {
			return 0
		}
		return e.board.diagonalDriftTargets(from, pc.Color)
	case AbilityBreakthrough:
		if pc.Type != Pawn {
			return 0
		}
		return e.board.breakthroughTargets(from, pc.Color)
	case AbilityKnightDash:
		if pc.Type != Knight {
			return 0
		}
		return e.board.offsetTargets(from, pc.Color, extendedKnightOffsets)
	case AbilityRookEntrench:
		if pc.Type != Rook || state == nil || !state.IsEntrenched {
			return 0
		}
		return e.board.throughSlideTargets(from, pc.Color, rookDirections)
	case AbilityBishopConsecrate:
		if pc.Type != Bishop || state == nil || !state.IsConsecratedSource {
			return 0
		}
		return e.board.throughSlideTargets(from, pc.Color, bishopDirections)
	case AbilityQueenDominance:
		// The extended reach opens only once dominance has fired.
		if pc.Type != Queen || ai.Uses == 0 {
			return 0
		}
		return e.board.throughSlideTargets(from, pc.Color, queenDirections)
	case AbilityPhaseStep:
		if state == nil || !state.CanMoveThrough {
			return 0
		}
		switch pc.Type {
		case Rook:
			return e.board.throughSlideTargets(from, pc.Color, rookDirections)
		case Bishop:
			return e.board.throughSlideTargets(from, pc.Color, bishopDirections)
		case Queen:
			return e.board.throughSlideTargets(from, pc.Color, queenDirections)
		default:
			return 0
		}
	default:
		return 0
	}
}

// marchTargets is the pawn's extra straight push: two ranks forward with
// a clear path, from any rank.
func (b *Board) marchTargets(from Square, c Color) Bitboard {
	forward := forwardDelta(c)
	rank, file := from.Rank(), from.File()
	mid, ok := SquareFromCoords(rank+forward, file)
	if !ok || b.Occupied(mid) {
		return 0
	}
	dest, ok := SquareFromCoords(rank+2*forward, file)
	if !ok || b.Occupied(dest) {
		return 0
	}
	return BB(dest)
}

// diagonalDriftTargets is a single forward-diagonal step onto an empty
// square.
func (b *Board) diagonalDriftTargets(from Square, c Color) Bitboard {
	forward := forwardDelta(c)
	rank, file := from.Rank(), from.File()
	var out Bitboard
	for _, df := range []int{-1, 1} {
		if sq, ok := SquareFromCoords(rank+forward, file+df); ok && !b.Occupied(sq) {
			out = out.Add(sq)
		}
	}
	return out
}

// breakthroughTargets combines the non-capturing diagonal sidestep with
// a straight-forward capture onto an enemy-held square.
func (b *Board) breakthroughTargets(from Square, c Color) Bitboard {
	out := b.diagonalDriftTargets(from, c)
	forward := forwardDelta(c)
	if sq, ok := SquareFromCoords(from.Rank()+forward, from.File()); ok {
		if pc, occupied := b.PieceAt(sq); occupied && pc.Color != c {
			out = out.Add(sq)
		}
	}
	return out
}

// offsetTargets lands on any in-board offset square not held by an ally.
func (b *Board) offsetTargets(from Square, c Color, offsets []offset) Bitboard {
	rank, file := from.Rank(), from.File()
	var out Bitboard
	for _, d := range offsets {
		sq, ok := SquareFromCoords(rank+d.dr, file+d.df)
		if !ok {
			continue
		}
		pc, occupied := b.PieceAt(sq)
		if occupied && pc.Color == c {
			continue
		}
		out = out.Add(sq)
	}
	return out
}

// throughSlideTargets walks every direction to the board edge, ignoring
// blockers. Friendly squares cannot be landed on but do not stop the
// walk; enemy squares are capture landings.
func (b *Board) throughSlideTargets(from Square, c Color, dirs []offset) Bitboard {
	var out Bitboard
	for _, d := range dirs {
		rank, file := from.Rank()+d.dr, from.File()+d.df
		for {
			sq, ok := SquareFromCoords(rank, file)
			if !ok {
				break
			}
			if pc, occupied := b.PieceAt(sq); !occupied || pc.Color != c {
				out = out.Add(sq)
			}
			rank += d.dr
			file += d.df
		}
	}
	return out
}

// baseKnightTargets is the standard leap set, used by the dash window
// for the follow-up move.
func (b *Board) baseKnightTargets(from Square, c Color) Bitboard {
	return b.offsetTargets(from, c, knightOffsets)
}
