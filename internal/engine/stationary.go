// path: evochess/internal/engine/stationary.go
package engine

// stationaryThreshold is the default number of full turns a piece must
// hold its square before stationary abilities arm.
const stationaryThreshold = 3

// stationaryEligible reports whether an ability arms by standing still
// rather than by moving.
func stationaryEligible(id Ability) bool {
	switch id {
	case AbilityRookEntrench, AbilityBishopConsecrate, AbilityQueenDominance:
		return true
	default:
		return false
	}
}

// CheckStationaryTriggers fires stationary abilities for pieces that
// have held their square long enough. The caller owns the per-square
// counters; the engine only reads them. Each stay fires at most once:
// the latch resets when the piece moves off the square.
func (e *Engine) CheckStationaryTriggers(counters map[Square]int) []AbilityResult {
	var results []AbilityResult
	anyFired := false

	for sq := Square(0); sq < 64; sq++ {
		turns, tracked := counters[sq]
		if !tracked || turns < e.stationaryAfter {
			continue
		}
		state := e.evolutionAt(sq)
		if state == nil || state.stationaryFired {
			continue
		}
		pc, ok := e.board.PieceAt(sq)
		if !ok {
			continue
		}

		fired := false
		m := Move{From: sq, To: sq, Piece: pc.Type, Color: pc.Color}
		for _, ability := range state.Abilities {
			if !stationaryEligible(ability.ID) {
				continue
			}
			if !e.canTrigger(ability, sq, pc.Color) {
				continue
			}
			e.markTriggered(ability)
			results = append(results, e.executeSpecial(ability, state, sq, &m))
			fired = true
		}
		if fired {
			state.stationaryFired = true
			anyFired = true
		}
	}

	if anyFired {
		e.refreshCachedMoves()
		e.updateStatus()
	}
	return results
}
