// path: evochess/internal/engine/effects_test.go
package engine

import (
	"errors"
	"testing"
)

func TestCaptureBonusCompounds(t *testing.T) {
	eng := newEngineFromFEN(t, "k7/8/8/8/3p3q/8/8/K2R4 w - - 0 1")
	attach(eng, mustSquare(t, "d1"), NewAbilityInstance(AbilityBerserkerRage, CategoryCapture))

	m := mustMove(t, eng, "d1", "d4")
	if len(m.Results) != 1 || m.Results[0].Effect != "capture_bonus" || !m.Results[0].Success {
		t.Fatalf("expected a capture bonus result, got %+v", m.Results)
	}
	state := eng.PieceEvolutionData(mustSquare(t, "d4"))
	if state.Modifiers.CaptureBonus != 2.0 {
		t.Fatalf("capture bonus = %v, want 2.0", state.Modifiers.CaptureBonus)
	}

	mustMove(t, eng, "a8", "a7")
	mustMove(t, eng, "d4", "h4")
	state = eng.PieceEvolutionData(mustSquare(t, "h4"))
	if state.Modifiers.CaptureBonus != 4.0 {
		t.Fatalf("second trigger should compound to 4.0, got %v", state.Modifiers.CaptureBonus)
	}

	mustMove(t, eng, "a7", "a8")
	mustMove(t, eng, "h4", "h3")
	state = eng.PieceEvolutionData(mustSquare(t, "h3"))
	if state.Modifiers.CaptureBonus != 4.0 {
		t.Fatalf("quiet move must not trigger a capture ability, got %v", state.Modifiers.CaptureBonus)
	}
}

func TestPassiveAppliesOnce(t *testing.T) {
	eng := newEngineFromFEN(t, "k7/8/8/8/8/8/8/K2R4 w - - 0 1")
	attach(eng, mustSquare(t, "d1"), &AbilityInstance{
		ID:            AbilityImmovableObject,
		Category:      CategoryPassive,
		MaxUses:       1,
		LastUsedAtPly: plyNever,
	})

	mustMove(t, eng, "d1", "d4")
	state := eng.PieceEvolutionData(mustSquare(t, "d4"))
	if state.Modifiers.DefensiveBonus != 1.5 {
		t.Fatalf("defensive bonus = %v, want 1.5", state.Modifiers.DefensiveBonus)
	}

	mustMove(t, eng, "a8", "a7")
	mustMove(t, eng, "d4", "d5")
	state = eng.PieceEvolutionData(mustSquare(t, "d5"))
	if state.Modifiers.DefensiveBonus != 1.5 {
		t.Fatalf("exhausted passive must not reapply, got %v", state.Modifiers.DefensiveBonus)
	}
}

func TestConsecrateBlessesAndOpensThroughSlide(t *testing.T) {
	eng := newEngineFromFEN(t, "k7/6P1/8/2B5/8/2P1P3/8/K7 w - - 0 1")
	attach(eng, mustSquare(t, "c5"), NewAbilityInstance(AbilityBishopConsecrate, CategorySpecial))

	mustMove(t, eng, "c5", "d4")

	source := eng.PieceEvolutionData(mustSquare(t, "d4"))
	if source == nil || !source.IsConsecratedSource {
		t.Fatalf("mover should become a consecration source")
	}
	for _, coord := range []string{"c3", "e3"} {
		ally := eng.PieceEvolutionData(mustSquare(t, coord))
		if ally == nil || !ally.IsReceivingConsecration {
			t.Fatalf("pawn on %s should receive consecration", coord)
		}
		if ally.Modifiers.ConsecrationBonus != 1.5 {
			t.Fatalf("consecration bonus on %s = %v, want 1.5", coord, ally.Modifiers.ConsecrationBonus)
		}
	}

	mustMove(t, eng, "a8", "a7")

	// The source slides through the friendly pawn on g7.
	m := mustMove(t, eng, "d4", "h8")
	if !m.Enhanced() || m.Ability != AbilityBishopConsecrate {
		t.Fatalf("expected a consecrate through-slide, got %+v", m)
	}
	if state := eng.PieceEvolutionData(mustSquare(t, "h8")); state == nil || !state.IsConsecratedSource {
		t.Fatalf("source flag should travel with the bishop")
	}
}

func TestDominanceRestrictsNeighbours(t *testing.T) {
	eng := newEngineFromFEN(t, "k7/8/8/3r4/8/3Q4/8/K7 w - - 0 1")
	attach(eng, mustSquare(t, "d3"), NewAbilityInstance(AbilityQueenDominance, CategorySpecial))

	mustMove(t, eng, "d3", "d4")

	rook := eng.PieceEvolutionData(mustSquare(t, "d5"))
	if rook == nil || !rook.IsDominated || !rook.IsMoveRestricted {
		t.Fatalf("enemy rook should be dominated: %+v", rook)
	}
	if rook.Modifiers.DominancePenalty != 0.75 {
		t.Fatalf("dominance penalty = %v, want 0.75", rook.Modifiers.DominancePenalty)
	}
	if eng.PieceEvolutionData(mustSquare(t, "a8")) != nil {
		t.Fatalf("king outside the radius should stay untouched")
	}

	// The dominated rook cannot take its oppressor.
	if _, err := eng.MakeMove(MoveRequest{From: mustSquare(t, "d5"), To: mustSquare(t, "d4")}); !errors.Is(err, ErrMoveRestricted) {
		t.Fatalf("expected ErrMoveRestricted, got %v", err)
	}
	mustMove(t, eng, "d5", "d6")

	// Once dominance has fired, the queen slides through the dominated
	// piece.
	if !eng.IsEnhancedMoveLegal(mustSquare(t, "d4"), mustSquare(t, "d8")) {
		t.Fatalf("queen should slide through the dominated rook")
	}
}

func TestEnemyDebuffAuras(t *testing.T) {
	tests := []struct {
		name           string
		ability        Ability
		wantPenalty    float64
		wantRestricted bool
	}{
		{name: "intimidating presence", ability: AbilityIntimidatingPresence, wantPenalty: 0.9},
		{name: "terrifying roar", ability: AbilityTerrifyingRoar, wantPenalty: 0.85},
		{name: "suppressing field", ability: AbilitySuppressingField, wantPenalty: 0.9, wantRestricted: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			eng := newEngineFromFEN(t, "k7/8/8/3r4/1N6/8/8/K7 w - - 0 1")
			attach(eng, mustSquare(t, "b4"), NewAbilityInstance(tt.ability, CategorySpecial))

			mustMove(t, eng, "b4", "c6")

			rook := eng.PieceEvolutionData(mustSquare(t, "d5"))
			if rook == nil || rook.Modifiers.DominancePenalty != tt.wantPenalty {
				t.Fatalf("rook penalty = %+v, want %v", rook, tt.wantPenalty)
			}
			if rook.IsMoveRestricted != tt.wantRestricted {
				t.Fatalf("rook restriction = %v, want %v", rook.IsMoveRestricted, tt.wantRestricted)
			}
			if king := eng.PieceEvolutionData(mustSquare(t, "a8")); king != nil {
				if king.Modifiers.DominancePenalty != 1.0 {
					t.Fatalf("kings are exempt from debuffs: %+v", king)
				}
			}
		})
	}
}

func TestHealingRadianceCleansesAllies(t *testing.T) {
	eng := newEngineFromFEN(t, "k7/8/8/3r4/1n6/8/8/K7 b - - 0 1")
	attach(eng, mustSquare(t, "b4"), NewAbilityInstance(AbilityHealingRadiance, CategorySpecial))

	d5 := mustSquare(t, "d5")
	marked := &PieceEvolutionState{IsDominated: true, IsMoveRestricted: true, Modifiers: NewModifiers()}
	marked.Modifiers.DominancePenalty = 0.75
	if err := eng.ApplyEvolutionEffects(d5, marked); err != nil {
		t.Fatalf("apply effects: %v", err)
	}

	mustMove(t, eng, "b4", "c6")

	rook := eng.PieceEvolutionData(d5)
	if rook.IsDominated || rook.IsMoveRestricted {
		t.Fatalf("radiance should cleanse the rook: %+v", rook)
	}
	if rook.Modifiers.DominancePenalty != 1.0 {
		t.Fatalf("penalty should reset to 1.0, got %v", rook.Modifiers.DominancePenalty)
	}

	mustMove(t, eng, "a1", "a2")
	moves := eng.LegalMovesFrom(d5)
	if len(moves) != 14 {
		t.Fatalf("cleansed rook should regain its full move set, got %d", len(moves))
	}
	for _, m := range moves {
		if m.Is(MoveFlagCached) {
			t.Fatalf("cleansed rook should not be on cached moves: %+v", m)
		}
	}
}

func TestIronDisciplineSelfCleanse(t *testing.T) {
	eng := newEngineFromFEN(t, "k7/8/8/3r4/8/8/8/K7 b - - 0 1")
	d5 := mustSquare(t, "d5")

	marked := &PieceEvolutionState{
		IsDominated:      true,
		IsMoveRestricted: true,
		Modifiers:        NewModifiers(),
		Abilities:        []*AbilityInstance{NewAbilityInstance(AbilityIronDiscipline, CategorySpecial)},
	}
	marked.Modifiers.DominancePenalty = 0.75
	if err := eng.ApplyEvolutionEffects(d5, marked); err != nil {
		t.Fatalf("apply effects: %v", err)
	}

	mustMove(t, eng, "d5", "d6")

	state := eng.PieceEvolutionData(mustSquare(t, "d6"))
	if state.IsDominated || state.IsMoveRestricted {
		t.Fatalf("discipline should shrug off the restriction: %+v", state)
	}
	if state.Modifiers.DominancePenalty != 1.0 {
		t.Fatalf("penalty should reset to 1.0, got %v", state.Modifiers.DominancePenalty)
	}
}
