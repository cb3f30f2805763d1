// path: evochess/internal/session/session_test.go
package session

import (
	"errors"
	"testing"

	"evochess/internal/abilities"
	"evochess/internal/engine"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestLoadoutAttachesPerBinding(t *testing.T) {
	s := newTestSession(t, CreateParams{Loadout: Loadout{
		White: []engine.Ability{engine.AbilityEnhancedMarch, engine.AbilityKnightDash},
	}})

	pawn := s.Evolution(mustSquare(t, "e2"))
	if pawn == nil || !pawn.HasAbility(engine.AbilityEnhancedMarch) {
		t.Fatalf("white pawn should carry enhanced-march, got %+v", pawn)
	}
	if len(pawn.Abilities) != 1 {
		t.Fatalf("pawn abilities = %d, want 1", len(pawn.Abilities))
	}

	knight := s.Evolution(mustSquare(t, "b1"))
	if knight == nil || !knight.HasAbility(engine.AbilityKnightDash) {
		t.Fatalf("white knight should carry knight-dash, got %+v", knight)
	}

	if rook := s.Evolution(mustSquare(t, "a1")); rook != nil {
		t.Fatalf("no listed ability binds to rooks, got %+v", rook)
	}
	if black := s.Evolution(mustSquare(t, "e7")); black != nil {
		t.Fatalf("black side got no loadout, got %+v", black)
	}
}

func TestCreateFromFEN(t *testing.T) {
	const fen = "k7/8/8/8/8/4P3/8/K7 w - - 0 1"
	s := newTestSession(t, CreateParams{FEN: fen, Loadout: Loadout{
		White: []engine.Ability{engine.AbilityEnhancedMarch},
	}})

	st := s.State()
	if st.FEN != fen {
		t.Fatalf("fen = %s, want %s", st.FEN, fen)
	}
	if len(st.Pieces) != 3 {
		t.Fatalf("pieces = %d, want 3", len(st.Pieces))
	}
	if ev := s.Evolution(mustSquare(t, "e3")); ev == nil || !ev.HasAbility(engine.AbilityEnhancedMarch) {
		t.Fatalf("pawn should carry the loadout ability, got %+v", ev)
	}
}

func TestMoveOutcomeAndCounters(t *testing.T) {
	s := newTestSession(t, CreateParams{})

	out := play(t, s, "e2", "e4")
	if out.Elegance != 1.0 {
		t.Fatalf("quiet push elegance = %v, want 1.0", out.Elegance)
	}
	if len(out.Stationary) != 0 {
		t.Fatalf("no stationary triggers expected, got %d", len(out.Stationary))
	}
	turns := s.StationaryTurns()
	if turns["a1"] != 1 {
		t.Fatalf("a1 stillness = %d, want 1", turns["a1"])
	}
	if _, ok := turns["e4"]; ok {
		t.Fatalf("the moved pawn must restart its stillness count")
	}

	play(t, s, "d7", "d5")
	out = play(t, s, "e4", "d5")
	if !out.Move.Capture || out.Move.Captured != "pawn" {
		t.Fatalf("capture view = %+v, want captured pawn", out.Move)
	}
	if out.Elegance != 2.0 {
		t.Fatalf("pawn capture elegance = %v, want 2.0", out.Elegance)
	}
	if out.State.Ply != 3 {
		t.Fatalf("ply = %d, want 3", out.State.Ply)
	}

	turns = s.StationaryTurns()
	if turns["a1"] != 3 {
		t.Fatalf("a1 stillness = %d, want 3", turns["a1"])
	}
	if _, ok := turns["d5"]; ok {
		t.Fatalf("the capturing pawn must restart its stillness count")
	}
}

func TestStationaryTriggerFiresThroughSession(t *testing.T) {
	s := newTestSession(t, CreateParams{Loadout: Loadout{
		White: []engine.Ability{engine.AbilityRookEntrench},
	}})

	if out := play(t, s, "b1", "c3"); len(out.Stationary) != 0 {
		t.Fatalf("first move fired %d triggers, want 0", len(out.Stationary))
	}
	play(t, s, "b8", "c6")
	out := play(t, s, "g1", "f3")

	if len(out.Stationary) != 2 {
		t.Fatalf("stationary results = %d, want both rooks", len(out.Stationary))
	}
	for _, res := range out.Stationary {
		if res.Ability != engine.AbilityRookEntrench || !res.Success {
			t.Fatalf("unexpected stationary result %+v", res)
		}
	}

	rook := s.Evolution(mustSquare(t, "a1"))
	if rook == nil || !rook.IsEntrenched {
		t.Fatalf("a1 rook should be entrenched, got %+v", rook)
	}
	if rook.Modifiers.DefensiveBonus != 2.5 {
		t.Fatalf("defensive bonus = %v, want 2.5", rook.Modifiers.DefensiveBonus)
	}
	if rook.Abilities[0].Uses != 1 {
		t.Fatalf("entrench uses = %d, want 1", rook.Abilities[0].Uses)
	}
}

func TestMovedKnightRestartsStillness(t *testing.T) {
	s := newTestSession(t, CreateParams{})

	play(t, s, "b1", "c3")
	play(t, s, "b8", "c6")
	play(t, s, "g1", "f3")

	turns := s.StationaryTurns()
	if turns["c3"] != 2 {
		t.Fatalf("c3 stillness = %d, want 2", turns["c3"])
	}
	if turns["c6"] != 1 {
		t.Fatalf("c6 stillness = %d, want 1", turns["c6"])
	}
	if _, ok := turns["f3"]; ok {
		t.Fatalf("f3 moved this turn and must restart")
	}
	if _, ok := turns["g1"]; ok {
		t.Fatalf("g1 is vacated and must not be counted")
	}
}

func TestCastlingRestartsRookStillness(t *testing.T) {
	s := newTestSession(t, CreateParams{
		FEN: "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1",
	})

	out := play(t, s, "e1", "g1")
	if !out.Move.Castle {
		t.Fatalf("expected a castling move, got %+v", out.Move)
	}
	turns := s.StationaryTurns()
	if _, ok := turns["f1"]; ok {
		t.Fatalf("the castled rook must restart its stillness count")
	}
	if turns["a1"] != 1 {
		t.Fatalf("a1 stillness = %d, want 1", turns["a1"])
	}
}

func TestUndoRestartsCounters(t *testing.T) {
	s := newTestSession(t, CreateParams{})

	play(t, s, "e2", "e4")
	if len(s.StationaryTurns()) == 0 {
		t.Fatalf("expected stillness counts after a move")
	}

	st, err := s.Undo()
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if st.Ply != 0 || st.FEN != startFEN {
		t.Fatalf("undo state = ply %d fen %s", st.Ply, st.FEN)
	}
	if len(s.StationaryTurns()) != 0 {
		t.Fatalf("undo must clear stillness counts")
	}

	if _, err := s.Undo(); !errors.Is(err, engine.ErrNoHistory) {
		t.Fatalf("undo empty history: err = %v, want ErrNoHistory", err)
	}
}

func TestResetRestoresLoadout(t *testing.T) {
	s := newTestSession(t, CreateParams{Loadout: Loadout{
		White: []engine.Ability{engine.AbilityEnhancedMarch},
	}})

	play(t, s, "e2", "e4")
	if ev := s.Evolution(mustSquare(t, "e4")); ev == nil {
		t.Fatalf("overlay should travel with the pawn")
	}

	st, err := s.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if st.Ply != 0 || st.FEN != startFEN {
		t.Fatalf("reset state = ply %d fen %s", st.Ply, st.FEN)
	}
	if len(s.StationaryTurns()) != 0 {
		t.Fatalf("reset must clear stillness counts")
	}
	if ev := s.Evolution(mustSquare(t, "e2")); ev == nil || !ev.HasAbility(engine.AbilityEnhancedMarch) {
		t.Fatalf("reset must reapply the loadout, got %+v", ev)
	}
	if ev := s.Evolution(mustSquare(t, "e4")); ev != nil {
		t.Fatalf("stale overlay survived reset: %+v", ev)
	}
}

func TestResetKeepsConfiguredPosition(t *testing.T) {
	const fen = "k7/8/8/8/8/4P3/8/K7 w - - 0 1"
	s := newTestSession(t, CreateParams{FEN: fen})

	play(t, s, "e3", "e4")
	st, err := s.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if st.FEN != fen {
		t.Fatalf("fen after reset = %s, want %s", st.FEN, fen)
	}
}

func TestMoveSAN(t *testing.T) {
	s := newTestSession(t, CreateParams{})

	out, err := s.MoveSAN("Nf3")
	if err != nil {
		t.Fatalf("move san: %v", err)
	}
	if out.Move.From != "g1" || out.Move.To != "f3" || out.Move.SAN != "Nf3" {
		t.Fatalf("san view = %+v", out.Move)
	}

	if _, err := s.MoveSAN("Qxf7"); err == nil {
		t.Fatalf("expected an error for an unplayable san")
	}
}

func TestApplyEvolutionAndClear(t *testing.T) {
	s := newTestSession(t, CreateParams{})
	e2 := mustSquare(t, "e2")

	data, err := abilities.NewState(engine.Pawn, engine.AbilityEnhancedMarch)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	st, err := s.ApplyEvolution(e2, data)
	if err != nil {
		t.Fatalf("apply evolution: %v", err)
	}
	if ev := s.Evolution(e2); ev == nil || !ev.HasAbility(engine.AbilityEnhancedMarch) {
		t.Fatalf("overlay missing after apply, got %+v", ev)
	}
	if ps, ok := pieceAt(st, "e2"); !ok || ps.Evolution == nil {
		t.Fatalf("state snapshot should expose the overlay, got %+v", ps)
	}

	if _, err := s.ApplyEvolution(mustSquare(t, "e4"), data); !errors.Is(err, engine.ErrNoPiece) {
		t.Fatalf("apply to empty square: err = %v, want ErrNoPiece", err)
	}

	if _, err := s.ApplyEvolution(e2, nil); err != nil {
		t.Fatalf("clear evolution: %v", err)
	}
	if ev := s.Evolution(e2); ev != nil {
		t.Fatalf("overlay should be cleared, got %+v", ev)
	}
}

func TestStateSnapshot(t *testing.T) {
	s := newTestSession(t, CreateParams{Loadout: Loadout{
		White: []engine.Ability{engine.AbilityEnhancedMarch},
	}})

	st := s.State()
	if st.ID != s.ID {
		t.Fatalf("id = %s, want %s", st.ID, s.ID)
	}
	if st.FEN != startFEN || st.TurnName != "white" || st.Ply != 0 {
		t.Fatalf("unexpected snapshot %+v", st)
	}
	if st.GameOver || st.HasWinner {
		t.Fatalf("fresh game reported over: %+v", st)
	}
	if len(st.Pieces) != 32 {
		t.Fatalf("pieces = %d, want 32", len(st.Pieces))
	}
	if st.Pieces[0].Square != "a1" {
		t.Fatalf("pieces should list squares in ascending order, got %s first", st.Pieces[0].Square)
	}
	if ps, ok := pieceAt(st, "e2"); !ok || ps.Evolution == nil || ps.TypeName != "pawn" {
		t.Fatalf("e2 view = %+v", ps)
	}
	if ps, ok := pieceAt(st, "b8"); !ok || ps.Evolution != nil || ps.ColorName != "black" {
		t.Fatalf("b8 view = %+v", ps)
	}
	if len(st.Moves) != 0 {
		t.Fatalf("fresh game has %d moves", len(st.Moves))
	}
	if st.CreatedAt.IsZero() || st.UpdatedAt.IsZero() {
		t.Fatalf("timestamps missing: %+v", st)
	}
}

func newTestSession(t *testing.T, params CreateParams) *Session {
	t.Helper()
	s, err := NewManager(nil).Create(params)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func mustSquare(t *testing.T, coord string) engine.Square {
	t.Helper()
	sq, ok := engine.CoordToSquare(coord)
	if !ok {
		t.Fatalf("invalid coordinate %s", coord)
	}
	return sq
}

func play(t *testing.T, s *Session, from, to string) MoveOutcome {
	t.Helper()
	out, err := s.Move(engine.MoveRequest{From: mustSquare(t, from), To: mustSquare(t, to)})
	if err != nil {
		t.Fatalf("move %s%s: %v", from, to, err)
	}
	return out
}

func pieceAt(st State, coord string) (PieceState, bool) {
	for _, ps := range st.Pieces {
		if ps.Square == coord {
			return ps, true
		}
	}
	return PieceState{}, false
}
