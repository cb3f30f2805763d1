// path: evochess/internal/engine/effects_special.go
package engine

import "fmt"

// Multipliers and radii for the special ability handlers. Entrenchment
// sets the defensive bonus outright; everything else compounds.
const (
	entrenchedDefense   = 2.5
	consecrationFactor  = 1.5
	dominanceFactor     = 0.75
	auraRadius          = 1
	commandRadius       = 2
	blinkRadius         = 2
	lastStandFactor     = 2.0
	breakthroughFactor  = 1.5
	guardianAllyFactor  = 1.25
	presenceAllyFactor  = 1.15
	bannerCaptureFactor = 1.1
	holdLineFactor      = 1.2
	fortressFactor      = 1.5
	groundConsecration  = 1.25
	intimidationFactor  = 0.9
	roarFactor          = 0.85
	suppressionFactor   = 0.9
	vanguardFactor      = 1.2
	sanctuaryOwnFactor  = 2.0
	sanctuaryAllyFactor = 1.2
	decreeAuthority     = 1.25
)

// executeSpecial dispatches one special-category trigger. Handlers mutate
// the acting piece's state and neighbours within their radius; an unknown
// id reports a failed result and touches nothing.
func (e *Engine) executeSpecial(ai *AbilityInstance, state *PieceEvolutionState, sq Square, m *Move) AbilityResult {
	res := AbilityResult{Ability: ai.ID, Success: true}

	switch ai.ID {
	case AbilityKnightDash:
		e.dash = dashWindow{active: true, square: sq, color: m.Color}
		res.Effect = "dash_window"
		res.Detail = fmt.Sprintf("second leap available from %s", sq)

	case AbilityRookEntrench:
		state.IsEntrenched = true
		state.Modifiers.DefensiveBonus = entrenchedDefense
		res.Effect = "entrench"
		res.Detail = fmt.Sprintf("entrenched, defensive bonus %.1f", entrenchedDefense)

	case AbilityBishopConsecrate:
		state.IsConsecratedSource = true
		blessed := 0
		e.forEachAllyInRadius(sq, auraRadius, m.Color, func(_ Square, ally *PieceEvolutionState) {
			ally.IsReceivingConsecration = true
			ally.Modifiers.ConsecrationBonus *= consecrationFactor
			blessed++
		})
		res.Effect = "consecrate"
		res.Detail = fmt.Sprintf("consecrating %d allies", blessed)

	case AbilityQueenDominance:
		dominated := 0
		e.forEachEnemyInRadius(sq, commandRadius, m.Color, func(_ Square, pc Piece, enemy *PieceEvolutionState) {
			if pc.Type == King {
				return
			}
			enemy.IsDominated = true
			enemy.IsMoveRestricted = true
			enemy.Modifiers.DominancePenalty *= dominanceFactor
			dominated++
		})
		res.Effect = "dominance"
		res.Detail = fmt.Sprintf("dominating %d enemies", dominated)

	case AbilityRoyalDecree:
		rallied := 0
		e.forEachAllyInRadius(sq, commandRadius, m.Color, func(_ Square, ally *PieceEvolutionState) {
			ally.Modifiers.AuthorityBonus *= decreeAuthority
			rallied++
		})
		res.Effect = "authority"
		res.Detail = fmt.Sprintf("decree reaches %d allies", rallied)

	case AbilityLastStand:
		if e.board.ColorCount(m.Color) >= e.board.ColorCount(m.Color.Opposite()) {
			res.Success = false
			res.Effect = "last_stand"
			res.Detail = "requires a material deficit"
			break
		}
		state.Modifiers.DefensiveBonus *= lastStandFactor
		res.Effect = "last_stand"
		res.Detail = fmt.Sprintf("defensive bonus x%.1f", lastStandFactor)

	case AbilityTeleportBlink:
		state.CachedBy = AbilityTeleportBlink
		state.CachedMoves = e.cachedGrant(AbilityTeleportBlink, sq)
		res.Effect = "blink_grant"
		res.Detail = fmt.Sprintf("%d blink destinations cached", state.CachedMoves.Count())

	case AbilityBreakthrough:
		state.Modifiers.BreakthroughBonus *= breakthroughFactor
		res.Effect = "breakthrough"
		res.Detail = fmt.Sprintf("breakthrough bonus x%.1f", breakthroughFactor)

	case AbilityGuardianAura:
		guarded := 0
		e.forEachAllyInRadius(sq, auraRadius, m.Color, func(_ Square, ally *PieceEvolutionState) {
			ally.Modifiers.AllyBonus *= guardianAllyFactor
			guarded++
		})
		res.Effect = "guardian_aura"
		res.Detail = fmt.Sprintf("guarding %d allies", guarded)

	case AbilityCommandersPresence:
		inspired := 0
		e.forEachAllyInRadius(sq, commandRadius, m.Color, func(_ Square, ally *PieceEvolutionState) {
			ally.Modifiers.AllyBonus *= presenceAllyFactor
			inspired++
		})
		res.Effect = "presence"
		res.Detail = fmt.Sprintf("inspiring %d allies", inspired)

	case AbilityRallyingBanner:
		rallied := 0
		e.forEachAllyInRadius(sq, commandRadius, m.Color, func(_ Square, ally *PieceEvolutionState) {
			ally.Modifiers.CaptureBonus *= bannerCaptureFactor
			rallied++
		})
		res.Effect = "banner"
		res.Detail = fmt.Sprintf("rallying %d allies", rallied)

	case AbilitySentinelWatch:
		state.TerritoryControl = e.board.attackedByPiece(sq)
		res.Effect = "territory"
		res.Detail = fmt.Sprintf("watching %d squares", state.TerritoryControl.Count())

	case AbilityTerritoryClaim:
		var claim Bitboard
		forEachRadiusSquare(sq, auraRadius, func(target Square) {
			claim = claim.Add(target)
		})
		state.TerritoryControl = claim
		res.Effect = "territory"
		res.Detail = fmt.Sprintf("claimed %d squares", claim.Count())

	case AbilityHoldTheLine:
		held := 0
		e.forEachAllyInRadius(sq, auraRadius, m.Color, func(_ Square, ally *PieceEvolutionState) {
			ally.Modifiers.DefensiveBonus *= holdLineFactor
			held++
		})
		res.Effect = "hold_line"
		res.Detail = fmt.Sprintf("bracing %d allies", held)

	case AbilityFortressWall:
		state.IsEntrenched = true
		state.Modifiers.DefensiveBonus *= fortressFactor
		res.Effect = "fortress"
		res.Detail = fmt.Sprintf("fortified, defensive bonus x%.1f", fortressFactor)

	case AbilityConsecratedGround:
		var ground Bitboard
		blessed := 0
		forEachRadiusSquare(sq, auraRadius, func(target Square) {
			ground = ground.Add(target)
		})
		state.TerritoryControl = ground
		e.forEachAllyInRadius(sq, auraRadius, m.Color, func(_ Square, ally *PieceEvolutionState) {
			ally.IsReceivingConsecration = true
			ally.Modifiers.ConsecrationBonus *= groundConsecration
			blessed++
		})
		res.Effect = "consecrated_ground"
		res.Detail = fmt.Sprintf("%d squares hallowed, %d allies blessed", ground.Count(), blessed)

	case AbilityIntimidatingPresence:
		cowed := 0
		e.forEachEnemyInRadius(sq, auraRadius, m.Color, func(_ Square, pc Piece, enemy *PieceEvolutionState) {
			if pc.Type == King {
				return
			}
			enemy.Modifiers.DominancePenalty *= intimidationFactor
			cowed++
		})
		res.Effect = "intimidation"
		res.Detail = fmt.Sprintf("intimidating %d enemies", cowed)

	case AbilityTerrifyingRoar:
		shaken := 0
		e.forEachEnemyInRadius(sq, commandRadius, m.Color, func(_ Square, pc Piece, enemy *PieceEvolutionState) {
			if pc.Type == King {
				return
			}
			enemy.Modifiers.DominancePenalty *= roarFactor
			shaken++
		})
		res.Effect = "roar"
		res.Detail = fmt.Sprintf("shaking %d enemies", shaken)

	case AbilitySuppressingField:
		suppressed := 0
		e.forEachEnemyInRadius(sq, auraRadius, m.Color, func(_ Square, pc Piece, enemy *PieceEvolutionState) {
			if pc.Type == King {
				return
			}
			enemy.IsMoveRestricted = true
			enemy.Modifiers.DominancePenalty *= suppressionFactor
			suppressed++
		})
		res.Effect = "suppression"
		res.Detail = fmt.Sprintf("suppressing %d enemies", suppressed)

	case AbilityPhaseStep:
		state.CanMoveThrough = true
		res.Effect = "phase"
		res.Detail = "can move through occupied squares"

	case AbilityBlinkStrike:
		state.CachedBy = AbilityBlinkStrike
		state.CachedMoves = e.cachedGrant(AbilityBlinkStrike, sq)
		res.Effect = "blink_grant"
		res.Detail = fmt.Sprintf("%d strike destinations cached", state.CachedMoves.Count())

	case AbilityVanguardCharge:
		state.Modifiers.CaptureBonus *= vanguardFactor
		res.Effect = "vanguard"
		res.Detail = fmt.Sprintf("capture bonus x%.1f", vanguardFactor)

	case AbilityHealingRadiance:
		cleansed := 0
		e.forEachAllyInRadius(sq, auraRadius, m.Color, func(_ Square, ally *PieceEvolutionState) {
			if !ally.IsDominated && !ally.IsMoveRestricted {
				return
			}
			ally.IsDominated = false
			ally.IsMoveRestricted = false
			ally.Modifiers.DominancePenalty = 1.0
			cleansed++
		})
		res.Effect = "cleanse"
		res.Detail = fmt.Sprintf("cleansed %d allies", cleansed)

	case AbilityIronDiscipline:
		state.IsDominated = false
		state.IsMoveRestricted = false
		state.Modifiers.DominancePenalty = 1.0
		res.Effect = "discipline"
		res.Detail = "shrugged off domination"

	case AbilityRoyalSanctuary:
		state.Modifiers.DefensiveBonus *= sanctuaryOwnFactor
		sheltered := 0
		e.forEachAllyInRadius(sq, auraRadius, m.Color, func(_ Square, ally *PieceEvolutionState) {
			ally.Modifiers.DefensiveBonus *= sanctuaryAllyFactor
			sheltered++
		})
		res.Effect = "sanctuary"
		res.Detail = fmt.Sprintf("sheltering %d allies", sheltered)

	default:
		res.Success = false
		res.Effect = "unknown"
		res.Detail = fmt.Sprintf("no special handler for %s", ai.ID)
	}

	return res
}
