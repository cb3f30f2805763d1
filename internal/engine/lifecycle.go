// path: evochess/internal/engine/lifecycle.go
package engine

// ActivityProvider is the injected predicate deciding whether an ability
// participates in generation at all. Implementations must be side-effect
// free; any probabilistic activation is decided by the caller before the
// call, never inside the engine.
type ActivityProvider interface {
	IsAbilityActive(id Ability, piece PieceType) bool
}

// ActivityFunc adapts a plain function to the provider interface.
type ActivityFunc func(id Ability, piece PieceType) bool

func (f ActivityFunc) IsAbilityActive(id Ability, piece PieceType) bool {
	return f(id, piece)
}

// abilityActive consults the provider. During a nested generation call
// (a provider that called back into the engine) the predicate is skipped
// and attachment alone decides, so generation terminates on engine-owned
// data.
func (e *Engine) abilityActive(ai *AbilityInstance, piece PieceType) bool {
	if e.genDepth > 1 || e.provider == nil {
		return true
	}
	return e.provider.IsAbilityActive(ai.ID, piece)
}

// gatesOpen checks the usage cap, the wall-clock cooldown and the ply
// cooldown. A nil error means every gate passes.
func (e *Engine) gatesOpen(ai *AbilityInstance) error {
	if ai.Exhausted() {
		return ErrAbilityExhausted
	}
	if ai.CooldownSeconds > 0 && !ai.LastUsedAt.IsZero() {
		elapsed := e.clock.Now().Sub(ai.LastUsedAt).Seconds()
		if elapsed < ai.CooldownSeconds {
			return ErrAbilityOnCooldown
		}
	}
	if ai.MoveCooldown > 0 && ai.LastUsedAtPly != plyNever {
		if e.ply-ai.LastUsedAtPly < ai.MoveCooldown {
			return ErrAbilityOnCooldown
		}
	}
	return nil
}

// conditionsMet evaluates every declared trigger condition for a piece
// of the given color standing on sq. Abilities with no conditions are
// always eligible once the gates pass.
func (e *Engine) conditionsMet(ai *AbilityInstance, sq Square, c Color) bool {
	for _, cond := range ai.Conditions {
		if !e.conditionHolds(cond, sq, c) {
			return false
		}
	}
	return true
}

func (e *Engine) conditionHolds(cond Condition, sq Square, c Color) bool {
	switch cond.Kind {
	case ConditionMoveCount:
		return cond.Compare.Holds(float64(e.ply), cond.Threshold)
	case ConditionPieceCount:
		return cond.Compare.Holds(float64(e.board.PieceCount()), cond.Threshold)
	case ConditionBoardPosition:
		return sq.InRegion(cond.Region, c)
	case ConditionTimeElapsed:
		elapsed := e.clock.Now().Sub(e.startedAt).Seconds()
		return cond.Compare.Holds(elapsed, cond.Threshold)
	case ConditionNone:
		return true
	default:
		return false
	}
}

// canTrigger is the full usability check: provider, gates, conditions.
func (e *Engine) canTrigger(ai *AbilityInstance, sq Square, c Color) bool {
	if !e.abilityActive(ai, e.pieceTypeAt(sq)) {
		return false
	}
	if e.gatesOpen(ai) != nil {
		return false
	}
	return e.conditionsMet(ai, sq, c)
}

// markTriggered stamps the instance. Exactly one stamp per trigger, also
// for abilities with no cooldown or cap configured.
func (e *Engine) markTriggered(ai *AbilityInstance) {
	ai.LastUsedAt = e.clock.Now()
	ai.LastUsedAtPly = e.ply
	ai.Uses++
}

func (e *Engine) pieceTypeAt(sq Square) PieceType {
	pc, ok := e.board.PieceAt(sq)
	if !ok {
		return NoPieceType
	}
	return pc.Type
}
