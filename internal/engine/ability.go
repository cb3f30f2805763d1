// path: evochess/internal/engine/ability.go
package engine

import (
	"fmt"
	"strings"
	"time"
)

type Ability uint8

const (
	AbilityNone Ability = iota

	// Movement patterns.
	AbilityEnhancedMarch
	AbilityDiagonalMove

	// Special effects.
	AbilityKnightDash
	AbilityRookEntrench
	AbilityBishopConsecrate
	AbilityQueenDominance
	AbilityRoyalDecree
	AbilityLastStand
	AbilityTeleportBlink
	AbilityBreakthrough
	AbilityGuardianAura
	AbilityCommandersPresence
	AbilityRallyingBanner
	AbilitySentinelWatch
	AbilityTerritoryClaim
	AbilityHoldTheLine
	AbilityFortressWall
	AbilityConsecratedGround
	AbilityIntimidatingPresence
	AbilityTerrifyingRoar
	AbilitySuppressingField
	AbilityPhaseStep
	AbilityBlinkStrike
	AbilityVanguardCharge
	AbilityHealingRadiance
	AbilityIronDiscipline
	AbilityRoyalSanctuary

	// Capture multipliers.
	AbilityBerserkerRage
	AbilityBloodlust
	AbilityExecutionersEdge

	// Passive multipliers.
	AbilityVeteranInstinct
	AbilityPredatorsEye
	AbilityImmovableObject
)

func (a Ability) String() string {
	switch a {
	case AbilityNone:
		return "none"
	case AbilityEnhancedMarch:
		return "enhanced-march"
	case AbilityDiagonalMove:
		return "diagonal-move"
	case AbilityKnightDash:
		return "knight-dash"
	case AbilityRookEntrench:
		return "rook-entrench"
	case AbilityBishopConsecrate:
		return "bishop-consecrate"
	case AbilityQueenDominance:
		return "queen-dominance"
	case AbilityRoyalDecree:
		return "royal-decree"
	case AbilityLastStand:
		return "last-stand"
	case AbilityTeleportBlink:
		return "teleport-blink"
	case AbilityBreakthrough:
		return "breakthrough"
	case AbilityGuardianAura:
		return "guardian-aura"
	case AbilityCommandersPresence:
		return "commanders-presence"
	case AbilityRallyingBanner:
		return "rallying-banner"
	case AbilitySentinelWatch:
		return "sentinel-watch"
	case AbilityTerritoryClaim:
		return "territory-claim"
	case AbilityHoldTheLine:
		return "hold-the-line"
	case AbilityFortressWall:
		return "fortress-wall"
	case AbilityConsecratedGround:
		return "consecrated-ground"
	case AbilityIntimidatingPresence:
		return "intimidating-presence"
	case AbilityTerrifyingRoar:
		return "terrifying-roar"
	case AbilitySuppressingField:
		return "suppressing-field"
	case AbilityPhaseStep:
		return "phase-step"
	case AbilityBlinkStrike:
		return "blink-strike"
	case AbilityVanguardCharge:
		return "vanguard-charge"
	case AbilityHealingRadiance:
		return "healing-radiance"
	case AbilityIronDiscipline:
		return "iron-discipline"
	case AbilityRoyalSanctuary:
		return "royal-sanctuary"
	case AbilityBerserkerRage:
		return "berserker-rage"
	case AbilityBloodlust:
		return "bloodlust"
	case AbilityExecutionersEdge:
		return "executioners-edge"
	case AbilityVeteranInstinct:
		return "veteran-instinct"
	case AbilityPredatorsEye:
		return "predators-eye"
	case AbilityImmovableObject:
		return "immovable-object"
	default:
		return "?"
	}
}

var AllAbilities = []Ability{
	AbilityEnhancedMarch,
	AbilityDiagonalMove,
	AbilityKnightDash,
	AbilityRookEntrench,
	AbilityBishopConsecrate,
	AbilityQueenDominance,
	AbilityRoyalDecree,
	AbilityLastStand,
	AbilityTeleportBlink,
	AbilityBreakthrough,
	AbilityGuardianAura,
	AbilityCommandersPresence,
	AbilityRallyingBanner,
	AbilitySentinelWatch,
	AbilityTerritoryClaim,
	AbilityHoldTheLine,
	AbilityFortressWall,
	AbilityConsecratedGround,
	AbilityIntimidatingPresence,
	AbilityTerrifyingRoar,
	AbilitySuppressingField,
	AbilityPhaseStep,
	AbilityBlinkStrike,
	AbilityVanguardCharge,
	AbilityHealingRadiance,
	AbilityIronDiscipline,
	AbilityRoyalSanctuary,
	AbilityBerserkerRage,
	AbilityBloodlust,
	AbilityExecutionersEdge,
	AbilityVeteranInstinct,
	AbilityPredatorsEye,
	AbilityImmovableObject,
}

func ParseAbility(s string) (Ability, bool) {
	needle := strings.ToLower(strings.TrimSpace(s))
	needle = strings.ReplaceAll(needle, " ", "-")
	needle = strings.ReplaceAll(needle, "_", "-")
	for _, a := range AllAbilities {
		if a.String() == needle {
			return a, true
		}
	}
	return AbilityNone, false
}

func AbilityStrings() []string {
	out := make([]string, len(AllAbilities))
	for i, a := range AllAbilities {
		out[i] = a.String()
	}
	return out
}

func (a Ability) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Ability) UnmarshalText(text []byte) error {
	parsed, ok := ParseAbility(string(text))
	if !ok {
		return ErrUnknownAbility
	}
	*a = parsed
	return nil
}

type AbilityList []Ability

func (al AbilityList) Contains(target Ability) bool {
	for _, ability := range al {
		if ability == target {
			return true
		}
	}
	return false
}

func (al AbilityList) Clone() AbilityList {
	if len(al) == 0 {
		return nil
	}
	out := make(AbilityList, len(al))
	copy(out, al)
	return out
}

func (al AbilityList) Strings() []string {
	out := make([]string, len(al))
	for i, ability := range al {
		out[i] = ability.String()
	}
	return out
}

type AbilityCategory uint8

const (
	CategoryMovement AbilityCategory = iota
	CategoryCapture
	CategorySpecial
	CategoryPassive
)

func (c AbilityCategory) String() string {
	switch c {
	case CategoryMovement:
		return "movement"
	case CategoryCapture:
		return "capture"
	case CategorySpecial:
		return "special"
	case CategoryPassive:
		return "passive"
	default:
		return "?"
	}
}

func ParseAbilityCategory(s string) (AbilityCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movement":
		return CategoryMovement, true
	case "capture":
		return CategoryCapture, true
	case "special":
		return CategorySpecial, true
	case "passive":
		return CategoryPassive, true
	default:
		return CategoryMovement, false
	}
}

func (c AbilityCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *AbilityCategory) UnmarshalText(text []byte) error {
	parsed, ok := ParseAbilityCategory(string(text))
	if !ok {
		return fmt.Errorf("invalid ability category %q", string(text))
	}
	*c = parsed
	return nil
}

type ConditionKind uint8

const (
	ConditionNone ConditionKind = iota
	ConditionMoveCount
	ConditionPieceCount
	ConditionBoardPosition
	ConditionTimeElapsed
)

func (k ConditionKind) String() string {
	switch k {
	case ConditionMoveCount:
		return "move_count"
	case ConditionPieceCount:
		return "piece_count"
	case ConditionBoardPosition:
		return "board_position"
	case ConditionTimeElapsed:
		return "time_elapsed"
	default:
		return "none"
	}
}

func ParseConditionKind(s string) (ConditionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "move_count":
		return ConditionMoveCount, true
	case "piece_count":
		return ConditionPieceCount, true
	case "board_position":
		return ConditionBoardPosition, true
	case "time_elapsed":
		return ConditionTimeElapsed, true
	case "none", "":
		return ConditionNone, true
	default:
		return ConditionNone, false
	}
}

func (k ConditionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ConditionKind) UnmarshalText(text []byte) error {
	parsed, ok := ParseConditionKind(string(text))
	if !ok {
		return fmt.Errorf("invalid condition kind %q", string(text))
	}
	*k = parsed
	return nil
}

type Comparator uint8

const (
	CompareGT Comparator = iota
	CompareLT
	CompareEQ
	CompareGE
	CompareLE
)

func (c Comparator) String() string {
	switch c {
	case CompareGT:
		return ">"
	case CompareLT:
		return "<"
	case CompareEQ:
		return "="
	case CompareGE:
		return ">="
	case CompareLE:
		return "<="
	default:
		return "?"
	}
}

func ParseComparator(s string) (Comparator, bool) {
	switch strings.TrimSpace(s) {
	case ">":
		return CompareGT, true
	case "<":
		return CompareLT, true
	case "=", "==":
		return CompareEQ, true
	case ">=":
		return CompareGE, true
	case "<=":
		return CompareLE, true
	default:
		return CompareGT, false
	}
}

func (c Comparator) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Comparator) UnmarshalText(text []byte) error {
	parsed, ok := ParseComparator(string(text))
	if !ok {
		return fmt.Errorf("invalid comparator %q", string(text))
	}
	*c = parsed
	return nil
}

func (c Comparator) Holds(value, threshold float64) bool {
	switch c {
	case CompareGT:
		return value > threshold
	case CompareLT:
		return value < threshold
	case CompareEQ:
		return value == threshold
	case CompareGE:
		return value >= threshold
	case CompareLE:
		return value <= threshold
	default:
		return false
	}
}

// Condition gates an ability trigger on an observable game quantity.
// Board-position conditions test region membership and ignore the
// comparator and threshold.
type Condition struct {
	Kind      ConditionKind `json:"kind"`
	Compare   Comparator    `json:"compare"`
	Threshold float64       `json:"threshold"`
	Region    BoardRegion   `json:"region,omitempty"`
}

// plyNever marks an ability that has not consumed its ply cooldown yet.
const plyNever = -1

// AbilityInstance is one ability attached to one piece, with its
// per-piece cooldown and usage bookkeeping.
type AbilityInstance struct {
	ID              Ability         `json:"id"`
	Category        AbilityCategory `json:"category"`
	CooldownSeconds float64         `json:"cooldownSeconds,omitempty"`
	LastUsedAt      time.Time       `json:"lastUsedAt,omitzero"`
	MoveCooldown    int             `json:"moveCooldownPlies,omitempty"`
	LastUsedAtPly   int             `json:"lastUsedAtPly"`
	MaxUses         int             `json:"maxUses,omitempty"`
	Uses            int             `json:"uses"`
	Conditions      []Condition     `json:"conditions,omitempty"`
}

func NewAbilityInstance(id Ability, category AbilityCategory) *AbilityInstance {
	return &AbilityInstance{
		ID:            id,
		Category:      category,
		LastUsedAtPly: plyNever,
	}
}

func (ai *AbilityInstance) Clone() *AbilityInstance {
	if ai == nil {
		return nil
	}
	clone := *ai
	if len(ai.Conditions) > 0 {
		clone.Conditions = make([]Condition, len(ai.Conditions))
		copy(clone.Conditions, ai.Conditions)
	}
	return &clone
}

// Exhausted reports whether the usage cap has been reached.
func (ai *AbilityInstance) Exhausted() bool {
	return ai.MaxUses > 0 && ai.Uses >= ai.MaxUses
}

// AbilityResult reports the outcome of one ability effect execution.
type AbilityResult struct {
	Ability Ability `json:"ability"`
	Effect  string  `json:"effect"`
	Success bool    `json:"success"`
	Detail  string  `json:"detail,omitempty"`
}
