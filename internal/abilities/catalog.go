// path: evochess/internal/abilities/catalog.go
// Package abilities holds the built-in ability catalog: the category,
// piece binding, gates and trigger conditions every ability ships with.
// The engine itself is catalog-agnostic; sessions instantiate from here.
package abilities

import (
	"fmt"
	"strings"

	"evochess/internal/engine"
)

// Definition is one catalog entry. Zero-valued gate fields mean the gate
// is not configured; an empty piece list binds to every piece type.
type Definition struct {
	ID              engine.Ability
	Category        engine.AbilityCategory
	Pieces          []engine.PieceType
	CooldownSeconds float64
	MoveCooldown    int
	MaxUses         int
	Conditions      []engine.Condition
}

// Instantiate builds a fresh runtime instance carrying the definition's
// gates and conditions.
func (d Definition) Instantiate() *engine.AbilityInstance {
	ai := engine.NewAbilityInstance(d.ID, d.Category)
	ai.CooldownSeconds = d.CooldownSeconds
	ai.MoveCooldown = d.MoveCooldown
	ai.MaxUses = d.MaxUses
	if len(d.Conditions) > 0 {
		ai.Conditions = append([]engine.Condition(nil), d.Conditions...)
	}
	return ai
}

// AppliesTo reports whether the definition binds to the piece type.
func (d Definition) AppliesTo(pt engine.PieceType) bool {
	if len(d.Pieces) == 0 {
		return true
	}
	for _, p := range d.Pieces {
		if p == pt {
			return true
		}
	}
	return false
}

func anyPiece() []engine.PieceType { return nil }

func pieces(pts ...engine.PieceType) []engine.PieceType { return pts }

// catalog is the built-in roster. Passives carry a single use so their
// always-on multiplier lands once per attachment; the capped and timed
// gates elsewhere mirror how each ability is meant to pace a game.
var catalog = []Definition{
	{ID: engine.AbilityEnhancedMarch, Category: engine.CategoryMovement, Pieces: pieces(engine.Pawn), MaxUses: 1, MoveCooldown: 4},
	{ID: engine.AbilityDiagonalMove, Category: engine.CategoryMovement, Pieces: pieces(engine.Pawn), MoveCooldown: 2},

	{ID: engine.AbilityKnightDash, Category: engine.CategorySpecial, Pieces: pieces(engine.Knight), MoveCooldown: 2},
	{ID: engine.AbilityRookEntrench, Category: engine.CategorySpecial, Pieces: pieces(engine.Rook), MoveCooldown: 6},
	{ID: engine.AbilityBishopConsecrate, Category: engine.CategorySpecial, Pieces: pieces(engine.Bishop), MoveCooldown: 6},
	{ID: engine.AbilityQueenDominance, Category: engine.CategorySpecial, Pieces: pieces(engine.Queen), MoveCooldown: 8, MaxUses: 3},
	{ID: engine.AbilityRoyalDecree, Category: engine.CategorySpecial, Pieces: pieces(engine.King, engine.Queen), MoveCooldown: 10},
	{ID: engine.AbilityLastStand, Category: engine.CategorySpecial, Pieces: anyPiece(), MoveCooldown: 6,
		Conditions: []engine.Condition{{Kind: engine.ConditionPieceCount, Compare: engine.CompareLT, Threshold: 16}}},
	{ID: engine.AbilityTeleportBlink, Category: engine.CategorySpecial, Pieces: pieces(engine.Knight, engine.Bishop), CooldownSeconds: 30, MaxUses: 2},
	{ID: engine.AbilityBreakthrough, Category: engine.CategorySpecial, Pieces: pieces(engine.Pawn), MoveCooldown: 3},
	{ID: engine.AbilityGuardianAura, Category: engine.CategorySpecial, Pieces: anyPiece(), MoveCooldown: 5},
	{ID: engine.AbilityCommandersPresence, Category: engine.CategorySpecial, Pieces: pieces(engine.King), MoveCooldown: 6},
	{ID: engine.AbilityRallyingBanner, Category: engine.CategorySpecial, Pieces: pieces(engine.Rook), MoveCooldown: 6},
	{ID: engine.AbilitySentinelWatch, Category: engine.CategorySpecial, Pieces: pieces(engine.Rook, engine.Bishop), MoveCooldown: 4},
	{ID: engine.AbilityTerritoryClaim, Category: engine.CategorySpecial, Pieces: anyPiece(), MoveCooldown: 5},
	{ID: engine.AbilityHoldTheLine, Category: engine.CategorySpecial, Pieces: pieces(engine.Pawn, engine.Rook), MoveCooldown: 5},
	{ID: engine.AbilityFortressWall, Category: engine.CategorySpecial, Pieces: pieces(engine.Rook), MoveCooldown: 8, MaxUses: 2},
	{ID: engine.AbilityConsecratedGround, Category: engine.CategorySpecial, Pieces: pieces(engine.Bishop), MoveCooldown: 8},
	{ID: engine.AbilityIntimidatingPresence, Category: engine.CategorySpecial, Pieces: pieces(engine.Queen, engine.Rook), MoveCooldown: 5},
	{ID: engine.AbilityTerrifyingRoar, Category: engine.CategorySpecial, Pieces: pieces(engine.Knight), MoveCooldown: 7},
	{ID: engine.AbilitySuppressingField, Category: engine.CategorySpecial, Pieces: pieces(engine.Queen), MoveCooldown: 8, MaxUses: 2},
	{ID: engine.AbilityPhaseStep, Category: engine.CategorySpecial, Pieces: pieces(engine.Rook, engine.Bishop, engine.Queen), MaxUses: 1},
	{ID: engine.AbilityBlinkStrike, Category: engine.CategorySpecial, Pieces: pieces(engine.Knight), CooldownSeconds: 45, MaxUses: 1},
	{ID: engine.AbilityVanguardCharge, Category: engine.CategorySpecial, Pieces: pieces(engine.Pawn, engine.Knight), MoveCooldown: 4,
		Conditions: []engine.Condition{{Kind: engine.ConditionBoardPosition, Region: engine.RegionCenter}}},
	{ID: engine.AbilityHealingRadiance, Category: engine.CategorySpecial, Pieces: pieces(engine.Bishop, engine.King), MoveCooldown: 6},
	{ID: engine.AbilityIronDiscipline, Category: engine.CategorySpecial, Pieces: anyPiece(), MoveCooldown: 4},
	{ID: engine.AbilityRoyalSanctuary, Category: engine.CategorySpecial, Pieces: pieces(engine.King), MaxUses: 1,
		Conditions: []engine.Condition{{Kind: engine.ConditionBoardPosition, Region: engine.RegionBackRank}}},

	{ID: engine.AbilityBerserkerRage, Category: engine.CategoryCapture, Pieces: anyPiece(), MoveCooldown: 2},
	{ID: engine.AbilityBloodlust, Category: engine.CategoryCapture, Pieces: anyPiece()},
	{ID: engine.AbilityExecutionersEdge, Category: engine.CategoryCapture, Pieces: pieces(engine.Queen, engine.Rook), MoveCooldown: 3},

	{ID: engine.AbilityVeteranInstinct, Category: engine.CategoryPassive, Pieces: anyPiece(), MaxUses: 1},
	{ID: engine.AbilityPredatorsEye, Category: engine.CategoryPassive, Pieces: anyPiece(), MaxUses: 1},
	{ID: engine.AbilityImmovableObject, Category: engine.CategoryPassive, Pieces: pieces(engine.Rook, engine.King), MaxUses: 1},
}

var catalogByID = func() map[engine.Ability]Definition {
	m := make(map[engine.Ability]Definition, len(catalog))
	for _, d := range catalog {
		m[d.ID] = d
	}
	return m
}()

// Lookup returns the catalog entry for an ability id.
func Lookup(id engine.Ability) (Definition, bool) {
	d, ok := catalogByID[id]
	return d, ok
}

// All returns the full catalog in declaration order.
func All() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// ForPiece returns the catalog entries usable by the piece type.
func ForPiece(pt engine.PieceType) []Definition {
	var out []Definition
	for _, d := range catalog {
		if d.AppliesTo(pt) {
			out = append(out, d)
		}
	}
	return out
}

// NewState assembles an evolution state for a piece from catalog ids,
// rejecting ids the piece cannot carry.
func NewState(pt engine.PieceType, ids ...engine.Ability) (*engine.PieceEvolutionState, error) {
	state := engine.NewPieceEvolutionState(pt)
	for _, id := range ids {
		d, ok := Lookup(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", engine.ErrUnknownAbility, id)
		}
		if !d.AppliesTo(pt) {
			return nil, fmt.Errorf("%w: %s does not apply to %s", engine.ErrUnknownAbility, id, pt.Name())
		}
		state.AttachAbility(d.Instantiate())
	}
	return state, nil
}

// ParseCSV parses a comma-separated ability list into catalog ids.
func ParseCSV(s string) ([]engine.Ability, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty ability list")
	}
	parts := strings.Split(s, ",")
	out := make([]engine.Ability, 0, len(parts))
	for _, p := range parts {
		a, ok := engine.ParseAbility(strings.TrimSpace(p))
		if !ok {
			return nil, fmt.Errorf("invalid ability %q; valid: %v", p, engine.AbilityStrings())
		}
		if _, listed := Lookup(a); !listed {
			return nil, fmt.Errorf("ability %q has no catalog entry", p)
		}
		out = append(out, a)
	}
	return out, nil
}
