// path: evochess/internal/engine/evolution.go
package engine

// Modifiers is the multiplier block carried by an evolved piece. Every
// field defaults to 1.0; repeated triggers compound multiplicatively.
type Modifiers struct {
	CaptureBonus      float64 `json:"captureBonus"`
	DefensiveBonus    float64 `json:"defensiveBonus"`
	ConsecrationBonus float64 `json:"consecrationBonus"`
	BreakthroughBonus float64 `json:"breakthroughBonus"`
	AllyBonus         float64 `json:"allyBonus"`
	AuthorityBonus    float64 `json:"authorityBonus"`
	DominancePenalty  float64 `json:"dominancePenalty"`
}

func NewModifiers() Modifiers {
	return Modifiers{
		CaptureBonus:      1.0,
		DefensiveBonus:    1.0,
		ConsecrationBonus: 1.0,
		BreakthroughBonus: 1.0,
		AllyBonus:         1.0,
		AuthorityBonus:    1.0,
		DominancePenalty:  1.0,
	}
}

// normalized replaces unset (zero) multipliers with the neutral 1.0 so
// externally supplied payloads cannot zero a bonus by omission.
func (m Modifiers) normalized() Modifiers {
	fix := func(v float64) float64 {
		if v <= 0 {
			return 1.0
		}
		return v
	}
	return Modifiers{
		CaptureBonus:      fix(m.CaptureBonus),
		DefensiveBonus:    fix(m.DefensiveBonus),
		ConsecrationBonus: fix(m.ConsecrationBonus),
		BreakthroughBonus: fix(m.BreakthroughBonus),
		AllyBonus:         fix(m.AllyBonus),
		AuthorityBonus:    fix(m.AuthorityBonus),
		DominancePenalty:  fix(m.DominancePenalty),
	}
}

// PieceEvolutionState is the evolution overlay entry for one piece. The
// entry is keyed by the occupant's square and migrates with the piece on
// every accepted move.
type PieceEvolutionState struct {
	PieceType PieceType          `json:"pieceType"`
	Level     int                `json:"evolutionLevel"`
	Abilities []*AbilityInstance `json:"abilities"`
	Modifiers Modifiers          `json:"modifiers"`

	IsEntrenched            bool `json:"isEntrenched"`
	IsConsecratedSource     bool `json:"isConsecratedSource"`
	IsReceivingConsecration bool `json:"isReceivingConsecration"`
	IsDominated             bool `json:"isDominated"`
	IsMoveRestricted        bool `json:"isMoveRestricted"`
	CanMoveThrough          bool `json:"canMoveThrough"`

	TerritoryControl Bitboard `json:"territoryControl"`
	CachedMoves      Bitboard `json:"cachedModifiedMoves"`
	CachedBy         Ability  `json:"cachedBy,omitempty"`

	stationaryFired bool
}

func NewPieceEvolutionState(pt PieceType) *PieceEvolutionState {
	return &PieceEvolutionState{
		PieceType: pt,
		Level:     1,
		Modifiers: NewModifiers(),
	}
}

func (s *PieceEvolutionState) Clone() *PieceEvolutionState {
	if s == nil {
		return nil
	}
	clone := *s
	if len(s.Abilities) > 0 {
		clone.Abilities = make([]*AbilityInstance, len(s.Abilities))
		for i, ability := range s.Abilities {
			clone.Abilities[i] = ability.Clone()
		}
	}
	return &clone
}

// FindAbility returns the attached instance for the id, or nil.
func (s *PieceEvolutionState) FindAbility(id Ability) *AbilityInstance {
	if s == nil {
		return nil
	}
	for _, ability := range s.Abilities {
		if ability.ID == id {
			return ability
		}
	}
	return nil
}

func (s *PieceEvolutionState) HasAbility(id Ability) bool {
	return s.FindAbility(id) != nil
}

// AttachAbility appends the instance, keeping attachment order. A second
// instance with the same id replaces the first.
func (s *PieceEvolutionState) AttachAbility(ai *AbilityInstance) {
	if ai == nil {
		return
	}
	for i, existing := range s.Abilities {
		if existing.ID == ai.ID {
			s.Abilities[i] = ai
			return
		}
	}
	s.Abilities = append(s.Abilities, ai)
}

// normalize clamps externally supplied state into engine invariants.
func (s *PieceEvolutionState) normalize() {
	if s.Level < 1 {
		s.Level = 1
	}
	s.Modifiers = s.Modifiers.normalized()
	for _, ability := range s.Abilities {
		if ability.LastUsedAtPly == 0 && ability.Uses == 0 && ability.LastUsedAt.IsZero() {
			ability.LastUsedAtPly = plyNever
		}
	}
}

// --------------------------------------------------------------------
// Overlay operations on the engine.
// --------------------------------------------------------------------

// EvolutionAt returns the live overlay entry, or nil. Internal use only;
// the public accessor returns a copy.
func (e *Engine) evolutionAt(sq Square) *PieceEvolutionState {
	return e.evolutions[sq]
}

// migrateEvolution moves the overlay entry from one square to another.
// Any entry at the destination belongs to a captured piece and is
// discarded first. The stationary latch resets: the piece has moved.
func (e *Engine) migrateEvolution(from, to Square) {
	delete(e.evolutions, to)
	state, ok := e.evolutions[from]
	if !ok {
		return
	}
	delete(e.evolutions, from)
	state.stationaryFired = false
	e.evolutions[to] = state
}

// discardEvolution drops the entry for a captured piece.
func (e *Engine) discardEvolution(sq Square) {
	delete(e.evolutions, sq)
}

// ensureEvolution returns the overlay entry for an occupied square,
// creating a default one when an aura reaches a piece that has not
// evolved on its own. Empty squares get no entry.
func (e *Engine) ensureEvolution(sq Square) *PieceEvolutionState {
	if state, ok := e.evolutions[sq]; ok {
		return state
	}
	pc, ok := e.board.PieceAt(sq)
	if !ok {
		return nil
	}
	state := NewPieceEvolutionState(pc.Type)
	e.evolutions[sq] = state
	return state
}

// promoteEvolution updates the entry after a pawn changes type. Abilities
// bound to the pawn form no longer apply and are removed.
func (e *Engine) promoteEvolution(sq Square, newType PieceType) {
	state, ok := e.evolutions[sq]
	if !ok {
		return
	}
	state.PieceType = newType
	kept := state.Abilities[:0]
	for _, ability := range state.Abilities {
		if abilityBoundToPawn(ability.ID) {
			continue
		}
		kept = append(kept, ability)
	}
	state.Abilities = kept
	state.CachedMoves = 0
	state.CachedBy = AbilityNone
}

func abilityBoundToPawn(id Ability) bool {
	switch id {
	case AbilityEnhancedMarch, AbilityDiagonalMove, AbilityBreakthrough:
		return true
	default:
		return false
	}
}

// syncEvolutionsWithBoard prunes overlay entries whose square is empty or
// whose recorded piece type no longer matches the occupant.
func (e *Engine) syncEvolutionsWithBoard() int {
	removed := 0
	for sq, state := range e.evolutions {
		pc, ok := e.board.PieceAt(sq)
		if !ok || pc.Type != state.PieceType {
			delete(e.evolutions, sq)
			removed++
		}
	}
	return removed
}

// cloneEvolutions deep-copies the overlay, for snapshots.
func (e *Engine) cloneEvolutions() map[Square]*PieceEvolutionState {
	out := make(map[Square]*PieceEvolutionState, len(e.evolutions))
	for sq, state := range e.evolutions {
		out[sq] = state.Clone()
	}
	return out
}
