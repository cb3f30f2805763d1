// path: evochess/internal/engine/engine.go
// Package engine implements the evolution chess engine state and API.
package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Engine is the authoritative game state: a bitboard mirror and rules
// oracle kept in lockstep, plus the per-square evolution overlay. It is
// single-threaded; callers that share an Engine serialize access
// themselves.
type Engine struct {
	board      Board
	oracle     *oracle
	evolutions map[Square]*PieceEvolutionState

	provider        ActivityProvider
	clock           Clock
	logger          *zap.Logger
	stationaryAfter int

	ply       int
	genDepth  int
	dash      dashWindow
	startedAt time.Time

	moves []Move
	undo  []*snapshot

	inCheck   bool
	gameOver  bool
	hasWinner bool
	winner    Color
	status    string
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a structured logger. The engine stays quiet
// without one.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithActivityProvider installs the external predicate deciding whether
// an ability is active for a piece type. Absent a provider every
// ability is considered active.
func WithActivityProvider(p ActivityProvider) Option {
	return func(e *Engine) { e.provider = p }
}

// WithClock substitutes the time source, for deterministic cooldown
// tests.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithStationaryThreshold overrides how many full turns a piece must
// hold its square before stationary abilities arm. Values below one
// keep the default.
func WithStationaryThreshold(turns int) Option {
	return func(e *Engine) {
		if turns >= 1 {
			e.stationaryAfter = turns
		}
	}
}

// NewEngine returns an engine at the standard starting position.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{clock: SystemClock(), stationaryAfter: stationaryThreshold}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = SystemClock()
	}
	e.resetState(newOracle(), startingBoard())
	return e
}

func (e *Engine) resetState(o *oracle, b Board) {
	e.board = b
	e.oracle = o
	e.evolutions = make(map[Square]*PieceEvolutionState)
	e.ply = 0
	e.dash = dashWindow{}
	e.startedAt = e.clock.Now()
	e.moves = nil
	e.undo = nil
	e.updateStatus()
}

// Reset returns the engine to the standard starting position and clears
// the evolution overlay.
func (e *Engine) Reset() error {
	e.resetState(newOracle(), startingBoard())
	return nil
}

// LoadFromFEN replaces the position. A rejected FEN leaves the prior
// state fully intact.
func (e *Engine) LoadFromFEN(fen string) error {
	oracle, err := newOracleFromFEN(fen)
	if err != nil {
		return err
	}
	board, err := ParseFEN(fen)
	if err != nil {
		return err
	}
	e.resetState(oracle, board)
	return nil
}

// CurrentFEN serializes the position. The mirror and the oracle agree
// on this string at every quiescent point.
func (e *Engine) CurrentFEN() string {
	return e.board.FEN()
}

// PieceEvolutionData returns a deep copy of the overlay entry for the
// square, or nil when the piece has not evolved.
func (e *Engine) PieceEvolutionData(sq Square) *PieceEvolutionState {
	return e.evolutionAt(sq).Clone()
}

// ApplyEvolutionEffects installs externally supplied evolution state on
// an occupied square, normalizing multipliers and ability stamps.
func (e *Engine) ApplyEvolutionEffects(sq Square, data *PieceEvolutionState) error {
	if sq > 63 {
		return fmt.Errorf("%w: %d", ErrInvalidSquare, sq)
	}
	if data == nil {
		e.discardEvolution(sq)
		e.refreshCachedMoves()
		e.updateStatus()
		return nil
	}
	pc, ok := e.board.PieceAt(sq)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPiece, sq)
	}
	state := data.Clone()
	state.PieceType = pc.Type
	state.normalize()
	e.evolutions[sq] = state

	// The overlay shapes the move set, so cached grants and the game
	// status are stale until recomputed.
	e.refreshCachedMoves()
	e.updateStatus()
	return nil
}

// SyncPieceEvolutionsWithBoard prunes overlay entries that no longer
// match an occupant, returning how many were removed.
func (e *Engine) SyncPieceEvolutionsWithBoard() int {
	removed := e.syncEvolutionsWithBoard()
	if removed > 0 {
		e.refreshCachedMoves()
		e.updateStatus()
	}
	return removed
}

// --------------------------------------------------------------------
// Status surface.
// --------------------------------------------------------------------

func (e *Engine) Turn() Color { return e.board.turn }

// PieceAt reports the occupant of a square.
func (e *Engine) PieceAt(sq Square) (Piece, bool) { return e.board.PieceAt(sq) }

// OccupiedSquares lists every occupied square in ascending order.
func (e *Engine) OccupiedSquares() []Square { return e.board.OccupiedSquares().Squares() }

func (e *Engine) Ply() int { return e.ply }

func (e *Engine) GameOver() bool { return e.gameOver }

func (e *Engine) Status() string { return e.status }

func (e *Engine) InCheck() bool { return e.inCheck }

func (e *Engine) StartedAt() time.Time { return e.startedAt }

// Winner reports the winning color once the game has one.
func (e *Engine) Winner() (Color, bool) {
	return e.winner, e.hasWinner
}

// Outcome reports the result in score notation, "*" while play
// continues.
func (e *Engine) Outcome() string {
	switch {
	case !e.gameOver:
		return "*"
	case !e.hasWinner:
		return "1/2-1/2"
	case e.winner == White:
		return "1-0"
	default:
		return "0-1"
	}
}

// updateStatus recomputes check and termination for the side to move.
// Ability moves count: a position the oracle scores as mate stays alive
// while an enhanced escape exists.
func (e *Engine) updateStatus() {
	current := e.board.turn
	inCheck := e.board.isKingInCheck(current)
	hasMove := len(e.generate(nil)) > 0

	e.inCheck = inCheck
	e.gameOver = false
	e.hasWinner = false
	e.winner = 0
	e.status = "ongoing"

	if inCheck {
		e.status = "check"
	}
	if !hasMove {
		e.gameOver = true
		if inCheck {
			e.status = "checkmate"
			e.hasWinner = true
			e.winner = current.Opposite()
		} else {
			e.status = "stalemate"
		}
	}
}
