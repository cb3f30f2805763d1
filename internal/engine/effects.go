// path: evochess/internal/engine/effects.go
package engine

import "fmt"

// captureMultipliers maps each capture-category ability to the factor it
// compounds onto the owner's capture bonus per trigger.
var captureMultipliers = map[Ability]float64{
	AbilityBerserkerRage:    2.0,
	AbilityBloodlust:        1.5,
	AbilityExecutionersEdge: 1.25,
}

// passiveMultipliers maps each passive ability to the always-on factor it
// applies when it first comes online.
var passiveMultipliers = map[Ability]float64{
	AbilityVeteranInstinct: 1.25,
	AbilityPredatorsEye:    1.15,
	AbilityImmovableObject: 1.5,
}

// executeTriggeredAbilities runs the post-move pass for the piece that
// just landed on sq. The ability that produced the move already fired at
// apply time and is skipped here, as are movement abilities (their whole
// effect is the move itself). Capture abilities only fire on captures.
func (e *Engine) executeTriggeredAbilities(sq Square, m *Move) []AbilityResult {
	state := e.evolutionAt(sq)
	if state == nil {
		return nil
	}

	var results []AbilityResult
	for _, ability := range state.Abilities {
		if ability.ID == m.Ability {
			continue
		}
		switch ability.Category {
		case CategoryMovement:
			continue
		case CategoryCapture:
			if !m.Is(MoveFlagCapture) {
				continue
			}
		}
		if !e.canTrigger(ability, sq, m.Color) {
			continue
		}
		e.markTriggered(ability)
		results = append(results, e.executeAbility(ability, state, sq, m))
	}
	return results
}

// executeAbility routes one triggered ability by category.
func (e *Engine) executeAbility(ai *AbilityInstance, state *PieceEvolutionState, sq Square, m *Move) AbilityResult {
	switch ai.Category {
	case CategoryCapture:
		return e.executeCapture(ai, state)
	case CategoryPassive:
		return e.executePassive(ai, state)
	case CategorySpecial:
		return e.executeSpecial(ai, state, sq, m)
	}
	return AbilityResult{
		Ability: ai.ID,
		Effect:  "none",
		Detail:  fmt.Sprintf("category %s has no post-move effect", ai.Category),
	}
}

// executeCapture compounds the owner's capture bonus. Two berserker-rage
// triggers yield x4, not x2.
func (e *Engine) executeCapture(ai *AbilityInstance, state *PieceEvolutionState) AbilityResult {
	factor, ok := captureMultipliers[ai.ID]
	if !ok {
		return AbilityResult{
			Ability: ai.ID,
			Effect:  "capture_bonus",
			Detail:  "no capture multiplier registered",
		}
	}
	state.Modifiers.CaptureBonus *= factor
	return AbilityResult{
		Ability: ai.ID,
		Effect:  "capture_bonus",
		Success: true,
		Detail:  fmt.Sprintf("capture bonus x%.2f, now %.2f", factor, state.Modifiers.CaptureBonus),
	}
}

// executePassive applies an always-on multiplier. Passives carry a single
// use in the catalog, so the factor lands once per attachment.
func (e *Engine) executePassive(ai *AbilityInstance, state *PieceEvolutionState) AbilityResult {
	factor, ok := passiveMultipliers[ai.ID]
	if !ok {
		return AbilityResult{
			Ability: ai.ID,
			Effect:  "passive",
			Detail:  "no passive multiplier registered",
		}
	}
	switch ai.ID {
	case AbilityPredatorsEye:
		state.Modifiers.CaptureBonus *= factor
	default:
		state.Modifiers.DefensiveBonus *= factor
	}
	return AbilityResult{
		Ability: ai.ID,
		Effect:  "passive",
		Success: true,
		Detail:  fmt.Sprintf("passive multiplier x%.2f applied", factor),
	}
}

// --------------------------------------------------------------------
// Radius iteration and cached-move refresh.
// --------------------------------------------------------------------

// forEachRadiusSquare visits every board square within Chebyshev distance
// radius of center, excluding center itself.
func forEachRadiusSquare(center Square, radius int, fn func(Square)) {
	cr, cf := center.Rank(), center.File()
	for dr := -radius; dr <= radius; dr++ {
		for df := -radius; df <= radius; df++ {
			if dr == 0 && df == 0 {
				continue
			}
			sq, ok := SquareFromCoords(cr+dr, cf+df)
			if !ok {
				continue
			}
			fn(sq)
		}
	}
}

// forEachAllyInRadius visits allied occupants around the source square.
func (e *Engine) forEachAllyInRadius(center Square, radius int, c Color, fn func(Square, *PieceEvolutionState)) {
	forEachRadiusSquare(center, radius, func(sq Square) {
		pc, ok := e.board.PieceAt(sq)
		if !ok || pc.Color != c {
			return
		}
		if state := e.ensureEvolution(sq); state != nil {
			fn(sq, state)
		}
	})
}

// forEachEnemyInRadius visits enemy occupants around the source square.
// Kings are visited too; callers that must not touch the king filter it.
func (e *Engine) forEachEnemyInRadius(center Square, radius int, c Color, fn func(Square, Piece, *PieceEvolutionState)) {
	forEachRadiusSquare(center, radius, func(sq Square) {
		pc, ok := e.board.PieceAt(sq)
		if !ok || pc.Color == c {
			return
		}
		if state := e.ensureEvolution(sq); state != nil {
			fn(sq, pc, state)
		}
	})
}

// refreshCachedMoves recomputes every cached destination set from current
// board geometry. Restricted pieces shrink to their quiet moves; standing
// grants re-derive from the granting ability; everything else clears.
func (e *Engine) refreshCachedMoves() {
	for sq, state := range e.evolutions {
		switch {
		case state.IsMoveRestricted:
			state.CachedMoves = e.board.quietTargets(sq)
		case state.CachedBy != AbilityNone:
			state.CachedMoves = e.cachedGrant(state.CachedBy, sq)
		default:
			state.CachedMoves = 0
		}
	}
}

// cachedGrant derives the standing destination set for a grant-style
// ability from the owner's current square.
func (e *Engine) cachedGrant(id Ability, from Square) Bitboard {
	var bb Bitboard
	switch id {
	case AbilityTeleportBlink:
		forEachRadiusSquare(from, blinkRadius, func(sq Square) {
			if !e.board.Occupied(sq) {
				bb = bb.Add(sq)
			}
		})
	case AbilityBlinkStrike:
		mover, ok := e.board.PieceAt(from)
		if !ok {
			return 0
		}
		forEachRadiusSquare(from, blinkRadius, func(sq Square) {
			pc, occupied := e.board.PieceAt(sq)
			if occupied && pc.Color != mover.Color && pc.Type != King {
				bb = bb.Add(sq)
			}
		})
	}
	return bb
}
