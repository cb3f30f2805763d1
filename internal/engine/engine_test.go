// path: evochess/internal/engine/engine_test.go
package engine

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewEngineStartsAtInitialPosition(t *testing.T) {
	eng := NewEngine()

	if got := eng.CurrentFEN(); got != StartingFEN {
		t.Fatalf("initial fen = %q, want %q", got, StartingFEN)
	}
	if eng.Turn() != White {
		t.Fatalf("expected white to move, got %s", eng.Turn())
	}
	if eng.Ply() != 0 {
		t.Fatalf("expected ply 0, got %d", eng.Ply())
	}
	if eng.GameOver() || eng.InCheck() {
		t.Fatalf("fresh game should be ongoing, status %q", eng.Status())
	}
	if eng.Status() != "ongoing" {
		t.Fatalf("status = %q, want ongoing", eng.Status())
	}
	if eng.Outcome() != "*" {
		t.Fatalf("outcome = %q, want *", eng.Outcome())
	}
	if moves := eng.LegalMoves(); len(moves) != 20 {
		t.Fatalf("expected 20 opening moves, got %d", len(moves))
	}
}

func TestStandardMoveUpdatesState(t *testing.T) {
	eng := NewEngine()

	m := mustMove(t, eng, "e2", "e4")
	if m.SAN != "e4" {
		t.Fatalf("san = %q, want e4", m.SAN)
	}
	if m.Enhanced() || m.Is(MoveFlagCapture) {
		t.Fatalf("opening pawn push misflagged: %v", m.Flags)
	}

	if eng.Turn() != Black {
		t.Fatalf("expected black to move, got %s", eng.Turn())
	}
	if eng.Ply() != 1 {
		t.Fatalf("expected ply 1, got %d", eng.Ply())
	}
	if pc, ok := eng.board.PieceAt(mustSquare(t, "e4")); !ok || pc.Type != Pawn || pc.Color != White {
		t.Fatalf("expected white pawn on e4")
	}
	if eng.board.Occupied(mustSquare(t, "e2")) {
		t.Fatalf("expected e2 to be vacated")
	}
	if hist := eng.History(); len(hist) != 1 || hist[0].SAN != "e4" {
		t.Fatalf("history = %+v, want single e4", hist)
	}
}

func TestMakeMoveValidation(t *testing.T) {
	tests := []struct {
		name string
		req  MoveRequest
		want error
	}{
		{"off board", MoveRequest{From: Square(64), To: 0}, ErrInvalidSquare},
		{"same square", MoveRequest{From: 12, To: 12}, ErrIllegalMove},
		{"own king target", MoveRequest{From: 3, To: 4}, ErrKingCaptureAttempt},
		{"empty source", MoveRequest{From: 28, To: 36}, ErrNoPiece},
		{"opponent piece", MoveRequest{From: 52, To: 36}, ErrNotYourTurn},
		{"unreachable square", MoveRequest{From: 12, To: 47}, ErrIllegalMove},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine()
			if _, err := eng.MakeMove(tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if got := eng.CurrentFEN(); got != StartingFEN {
				t.Fatalf("rejected move mutated state: %q", got)
			}
			if eng.Ply() != 0 || len(eng.History()) != 0 {
				t.Fatalf("rejected move advanced counters")
			}
		})
	}
}

func TestLoadFromFENRejectsInvalid(t *testing.T) {
	eng := NewEngine()
	mustMove(t, eng, "e2", "e4")
	before := eng.CurrentFEN()

	for _, bad := range []string{"not a fen", "rnbqkbnr/pppppppp w KQkq - 0 1", ""} {
		if err := eng.LoadFromFEN(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}

	if got := eng.CurrentFEN(); got != before {
		t.Fatalf("rejected fen mutated state: %q", got)
	}
	if _, err := eng.MakeMove(MoveRequest{From: mustSquare(t, "e7"), To: mustSquare(t, "e5")}); err != nil {
		t.Fatalf("engine unplayable after rejected load: %v", err)
	}
}

func TestLoadFromFENRoundTrip(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3"
	eng := newEngineFromFEN(t, fen)

	if got := eng.CurrentFEN(); got != fen {
		t.Fatalf("loaded fen serialized to %q, want %q", got, fen)
	}
	if eng.Turn() != Black {
		t.Fatalf("expected black to move, got %s", eng.Turn())
	}
	if eng.Ply() != 0 {
		t.Fatalf("loading resets ply, got %d", eng.Ply())
	}

	// Two engines loaded from the same position generate identical moves.
	other := newEngineFromFEN(t, fen)
	a, _ := json.Marshal(eng.LegalMoves())
	b, _ := json.Marshal(other.LegalMoves())
	if string(a) != string(b) {
		t.Fatalf("generation diverged for identical positions")
	}
}

func TestUndoRestoresPosition(t *testing.T) {
	eng := NewEngine()
	attach(eng, mustSquare(t, "e2"), NewAbilityInstance(AbilityEnhancedMarch, CategoryMovement))
	mustMove(t, eng, "e2", "e4")
	mustMove(t, eng, "e7", "e5")

	if err := eng.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if eng.Turn() != Black || eng.Ply() != 1 {
		t.Fatalf("expected black to move at ply 1, got %s ply %d", eng.Turn(), eng.Ply())
	}
	if err := eng.Undo(); err != nil {
		t.Fatalf("second undo: %v", err)
	}

	if got := eng.CurrentFEN(); got != StartingFEN {
		t.Fatalf("undo did not restore start: %q", got)
	}
	if len(eng.History()) != 0 {
		t.Fatalf("history should be empty after full rewind")
	}
	state := eng.PieceEvolutionData(mustSquare(t, "e2"))
	if state == nil || state.FindAbility(AbilityEnhancedMarch) == nil {
		t.Fatalf("overlay not restored with the position")
	}

	if err := eng.Undo(); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
}

func TestResetClearsOverlayAndHistory(t *testing.T) {
	eng := NewEngine()
	mustMove(t, eng, "e2", "e4")
	if err := eng.ApplyEvolutionEffects(mustSquare(t, "e4"), &PieceEvolutionState{Level: 3}); err != nil {
		t.Fatalf("apply effects: %v", err)
	}

	if err := eng.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := eng.CurrentFEN(); got != StartingFEN {
		t.Fatalf("reset fen = %q, want start", got)
	}
	if eng.Ply() != 0 || len(eng.History()) != 0 {
		t.Fatalf("reset left counters behind")
	}
	if eng.PieceEvolutionData(mustSquare(t, "e4")) != nil {
		t.Fatalf("reset left overlay entries behind")
	}
	if err := eng.Undo(); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("reset should clear the undo stack, got %v", err)
	}
}

func TestApplyEvolutionEffectsValidation(t *testing.T) {
	eng := NewEngine()

	if err := eng.ApplyEvolutionEffects(Square(64), &PieceEvolutionState{}); !errors.Is(err, ErrInvalidSquare) {
		t.Fatalf("expected ErrInvalidSquare, got %v", err)
	}
	if err := eng.ApplyEvolutionEffects(mustSquare(t, "e4"), &PieceEvolutionState{}); !errors.Is(err, ErrNoPiece) {
		t.Fatalf("expected ErrNoPiece for empty square, got %v", err)
	}

	e2 := mustSquare(t, "e2")
	if err := eng.ApplyEvolutionEffects(e2, &PieceEvolutionState{Level: 2}); err != nil {
		t.Fatalf("apply effects: %v", err)
	}
	if eng.PieceEvolutionData(e2) == nil {
		t.Fatalf("expected overlay entry on e2")
	}

	// A nil payload discards the entry.
	if err := eng.ApplyEvolutionEffects(e2, nil); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if eng.PieceEvolutionData(e2) != nil {
		t.Fatalf("expected overlay entry to be discarded")
	}
}

func TestApplyEvolutionEffectsNormalizes(t *testing.T) {
	eng := NewEngine()
	e2 := mustSquare(t, "e2")

	data := &PieceEvolutionState{
		PieceType: Knight, // occupant wins
		Level:     0,
		Abilities: []*AbilityInstance{{ID: AbilityBloodlust, Category: CategoryCapture}},
	}
	if err := eng.ApplyEvolutionEffects(e2, data); err != nil {
		t.Fatalf("apply effects: %v", err)
	}

	state := eng.PieceEvolutionData(e2)
	if state.PieceType != Pawn {
		t.Fatalf("piece type = %s, want pawn", state.PieceType)
	}
	if state.Level != 1 {
		t.Fatalf("level = %d, want 1", state.Level)
	}
	if state.Modifiers != NewModifiers() {
		t.Fatalf("zero modifiers should normalize to 1.0, got %+v", state.Modifiers)
	}
	ai := state.FindAbility(AbilityBloodlust)
	if ai == nil {
		t.Fatalf("expected bloodlust to be attached")
	}
	if ai.LastUsedAtPly != plyNever {
		t.Fatalf("fresh instance stamp = %d, want never", ai.LastUsedAtPly)
	}
}

func TestPieceEvolutionDataReturnsCopy(t *testing.T) {
	eng := NewEngine()
	b1 := mustSquare(t, "b1")
	attach(eng, b1, NewAbilityInstance(AbilityKnightDash, CategorySpecial))

	state := eng.PieceEvolutionData(b1)
	state.Level = 9
	state.Modifiers.CaptureBonus = 99
	state.FindAbility(AbilityKnightDash).Uses = 42

	fresh := eng.PieceEvolutionData(b1)
	if fresh.Level != 1 || fresh.Modifiers.CaptureBonus != 1.0 {
		t.Fatalf("mutating the copy leaked into the engine: %+v", fresh)
	}
	if fresh.FindAbility(AbilityKnightDash).Uses != 0 {
		t.Fatalf("mutating a copied ability leaked into the engine")
	}
}

func TestSyncPrunesStaleEntries(t *testing.T) {
	eng := NewEngine()

	keep := mustSquare(t, "e2")
	attach(eng, keep, NewAbilityInstance(AbilityEnhancedMarch, CategoryMovement))

	// An orphan on an empty square and a type mismatch on an occupied one.
	eng.evolutions[mustSquare(t, "e5")] = NewPieceEvolutionState(Queen)
	eng.evolutions[mustSquare(t, "b1")] = NewPieceEvolutionState(Rook)

	if removed := eng.SyncPieceEvolutionsWithBoard(); removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if eng.PieceEvolutionData(keep) == nil {
		t.Fatalf("matching entry should survive the sync")
	}
	if eng.PieceEvolutionData(mustSquare(t, "e5")) != nil || eng.PieceEvolutionData(mustSquare(t, "b1")) != nil {
		t.Fatalf("stale entries should be pruned")
	}
	if removed := eng.SyncPieceEvolutionsWithBoard(); removed != 0 {
		t.Fatalf("second sync removed %d entries", removed)
	}
}

func TestFoolsMateEndsGame(t *testing.T) {
	eng := NewEngine()
	for _, san := range []string{"f3", "e5", "g4", "Qh4#"} {
		if _, err := eng.MakeMoveFromNotation(san); err != nil {
			t.Fatalf("play %s: %v", san, err)
		}
	}

	if eng.Status() != "checkmate" {
		t.Fatalf("status = %q, want checkmate", eng.Status())
	}
	if !eng.GameOver() || !eng.InCheck() {
		t.Fatalf("expected a decided game with the king in check")
	}
	winner, ok := eng.Winner()
	if !ok || winner != Black {
		t.Fatalf("winner = %s (%v), want black", winner, ok)
	}
	if eng.Outcome() != "0-1" {
		t.Fatalf("outcome = %q, want 0-1", eng.Outcome())
	}

	if _, err := eng.MakeMove(MoveRequest{From: mustSquare(t, "a2"), To: mustSquare(t, "a3")}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestStalemateIsDraw(t *testing.T) {
	eng := newEngineFromFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")

	if eng.Status() != "stalemate" {
		t.Fatalf("status = %q, want stalemate", eng.Status())
	}
	if !eng.GameOver() || eng.InCheck() {
		t.Fatalf("stalemate should end the game without check")
	}
	if _, ok := eng.Winner(); ok {
		t.Fatalf("stalemate should have no winner")
	}
	if eng.Outcome() != "1/2-1/2" {
		t.Fatalf("outcome = %q, want 1/2-1/2", eng.Outcome())
	}
}

func TestCheckIsReported(t *testing.T) {
	eng := newEngineFromFEN(t, "rnbqkbnr/ppp1pppp/8/1B1p4/4P3/8/PPPP1PPP/RNBQK1NR b KQkq - 1 2")

	if !eng.InCheck() {
		t.Fatalf("expected black to be in check")
	}
	if eng.Status() != "check" {
		t.Fatalf("status = %q, want check", eng.Status())
	}
	if eng.GameOver() {
		t.Fatalf("check alone should not end the game")
	}
}

// A position the oracle scores as checkmate stays alive when an
// evolution grant still offers the king an escape.
func TestCachedEscapeDefersMate(t *testing.T) {
	eng := newEngineFromFEN(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if eng.Status() != "checkmate" {
		t.Fatalf("baseline status = %q, want checkmate", eng.Status())
	}

	h8 := mustSquare(t, "h8")
	if err := eng.ApplyEvolutionEffects(h8, &PieceEvolutionState{CachedBy: AbilityTeleportBlink}); err != nil {
		t.Fatalf("apply effects: %v", err)
	}

	if eng.GameOver() {
		t.Fatalf("blink grant should reopen the game, status %q", eng.Status())
	}
	if eng.Status() != "check" {
		t.Fatalf("status = %q, want check", eng.Status())
	}

	moves := eng.LegalMovesFrom(h8)
	if len(moves) == 0 {
		t.Fatalf("expected cached escapes for the king")
	}
	for _, m := range moves {
		if !m.Is(MoveFlagCached) || !m.Enhanced() {
			t.Fatalf("escape misflagged: %+v", m)
		}
	}

	m, err := eng.MakeMove(MoveRequest{From: h8, To: mustSquare(t, "h6")})
	if err != nil {
		t.Fatalf("play escape: %v", err)
	}
	if !m.Is(MoveFlagCached) {
		t.Fatalf("escape should resolve through the cache")
	}

	if eng.PieceEvolutionData(h8) != nil {
		t.Fatalf("overlay should migrate off h8")
	}
	state := eng.PieceEvolutionData(mustSquare(t, "h6"))
	if state == nil {
		t.Fatalf("overlay should migrate to h6")
	}
	if state.CachedBy != AbilityNone || !state.CachedMoves.Empty() {
		t.Fatalf("cached grant should be consumed, got %s %v", state.CachedBy, state.CachedMoves.Squares())
	}
	if eng.Turn() != White || eng.Status() != "ongoing" {
		t.Fatalf("expected ongoing game with white to move, got %s %q", eng.Turn(), eng.Status())
	}
}

func TestDeterministicReplay(t *testing.T) {
	run := func() *Engine {
		eng := NewEngine()
		attach(eng, mustSquare(t, "b1"), NewAbilityInstance(AbilityKnightDash, CategorySpecial))
		attach(eng, mustSquare(t, "e2"), NewAbilityInstance(AbilityEnhancedMarch, CategoryMovement))
		mustMove(t, eng, "b1", "c4")
		mustMove(t, eng, "c4", "e5")
		mustMove(t, eng, "g8", "f6")
		mustMove(t, eng, "e2", "e4")
		return eng
	}

	a := run()
	b := run()

	if a.CurrentFEN() != b.CurrentFEN() {
		t.Fatalf("replay diverged: %q vs %q", a.CurrentFEN(), b.CurrentFEN())
	}
	aMoves, _ := json.Marshal(a.LegalMoves())
	bMoves, _ := json.Marshal(b.LegalMoves())
	if string(aMoves) != string(bMoves) {
		t.Fatalf("generation diverged after identical replay")
	}
	aState, _ := json.Marshal(a.PieceEvolutionData(mustSquare(t, "e5")))
	bState, _ := json.Marshal(b.PieceEvolutionData(mustSquare(t, "e5")))
	if string(aState) != string(bState) {
		t.Fatalf("overlay diverged after identical replay")
	}
}

func mustSquare(t *testing.T, coord string) Square {
	t.Helper()
	sq, ok := CoordToSquare(coord)
	if !ok {
		t.Fatalf("invalid coordinate %s", coord)
	}
	return sq
}

func newEngineFromFEN(t *testing.T, fen string) *Engine {
	t.Helper()
	eng := NewEngine()
	if err := eng.LoadFromFEN(fen); err != nil {
		t.Fatalf("load fen %q: %v", fen, err)
	}
	return eng
}

func mustMove(t *testing.T, eng *Engine, from, to string) Move {
	t.Helper()
	m, err := eng.MakeMove(MoveRequest{From: mustSquare(t, from), To: mustSquare(t, to)})
	if err != nil {
		t.Fatalf("move %s%s: %v", from, to, err)
	}
	return m
}

// attach installs an ability on the occupant of sq, creating the overlay
// entry when the piece has none yet.
func attach(eng *Engine, sq Square, ai *AbilityInstance) *AbilityInstance {
	state, ok := eng.evolutions[sq]
	if !ok {
		pc, _ := eng.board.PieceAt(sq)
		state = NewPieceEvolutionState(pc.Type)
		eng.evolutions[sq] = state
	}
	state.AttachAbility(ai)
	return ai
}
