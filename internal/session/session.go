// path: evochess/internal/session/session.go
// Package session tracks live games. A Manager hands out UUID-keyed
// sessions; each session owns one engine, serializes access to it, and
// keeps the per-square stillness counters the stationary triggers read.
package session

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"evochess/internal/abilities"
	"evochess/internal/engine"
)

// Loadout is the per-side ability selection applied at game creation.
// Each listed ability attaches to every piece of that side it binds to.
type Loadout struct {
	White []engine.Ability `json:"white"`
	Black []engine.Ability `json:"black"`
}

// CreateParams configures a new game. An empty FEN starts from the
// standard position.
type CreateParams struct {
	FEN     string  `json:"fen,omitempty"`
	Loadout Loadout `json:"loadout"`
}

// Session is one live game. All engine access goes through the session
// mutex; the engine itself is single-threaded.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	eng       *engine.Engine
	counters  map[engine.Square]int
	params    CreateParams
	updatedAt time.Time
	logger    *zap.Logger
}

func newSession(id string, params CreateParams, logger *zap.Logger, opts ...engine.Option) (*Session, error) {
	now := time.Now()
	engOpts := append([]engine.Option{engine.WithLogger(logger.Named("engine"))}, opts...)
	s := &Session{
		ID:        id,
		CreatedAt: now,
		eng:       engine.NewEngine(engOpts...),
		counters:  make(map[engine.Square]int),
		params:    params,
		updatedAt: now,
		logger:    logger,
	}
	if err := s.setup(); err != nil {
		return nil, err
	}
	return s, nil
}

// setup loads the configured position and attaches the loadout. Callers
// hold s.mu or own the session exclusively.
func (s *Session) setup() error {
	if s.params.FEN != "" {
		if err := s.eng.LoadFromFEN(s.params.FEN); err != nil {
			return err
		}
	}
	if err := s.applyLoadout(engine.White, s.params.Loadout.White); err != nil {
		return err
	}
	return s.applyLoadout(engine.Black, s.params.Loadout.Black)
}

// applyLoadout attaches every chosen ability to each piece of the color
// that can carry it. Pieces no listed ability binds to stay unevolved.
func (s *Session) applyLoadout(c engine.Color, ids []engine.Ability) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if _, ok := abilities.Lookup(id); !ok {
			return fmt.Errorf("%w: %s", engine.ErrUnknownAbility, id)
		}
	}
	for _, sq := range s.eng.OccupiedSquares() {
		pc, ok := s.eng.PieceAt(sq)
		if !ok || pc.Color != c {
			continue
		}
		fits := make([]engine.Ability, 0, len(ids))
		for _, id := range ids {
			d, _ := abilities.Lookup(id)
			if d.AppliesTo(pc.Type) {
				fits = append(fits, id)
			}
		}
		if len(fits) == 0 {
			continue
		}
		state, err := abilities.NewState(pc.Type, fits...)
		if err != nil {
			return err
		}
		if err := s.eng.ApplyEvolutionEffects(sq, state); err != nil {
			return err
		}
	}
	return nil
}

// Move applies a coordinate move and runs the post-move bookkeeping:
// elegance scoring, stillness counters, stationary triggers.
func (s *Session) Move(req engine.MoveRequest) (MoveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.eng.MakeMove(req)
	if err != nil {
		return MoveOutcome{}, err
	}
	return s.afterMove(m), nil
}

// MoveSAN applies a move written in algebraic notation.
func (s *Session) MoveSAN(san string) (MoveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.eng.MakeMoveFromNotation(san)
	if err != nil {
		return MoveOutcome{}, err
	}
	return s.afterMove(m), nil
}

func (s *Session) afterMove(m engine.Move) MoveOutcome {
	elegance := s.eng.EleganceScore(m)
	s.bumpCounters(m)
	stationary := s.eng.CheckStationaryTriggers(s.counters)
	s.updatedAt = time.Now()
	s.logger.Debug("move played",
		zap.String("id", s.ID),
		zap.String("move", m.String()),
		zap.Float64("elegance", elegance),
		zap.Int("stationary", len(stationary)),
	)
	return MoveOutcome{
		Move:       newMoveView(m),
		Elegance:   elegance,
		Stationary: stationary,
		State:      s.stateLocked(),
	}
}

// bumpCounters advances the stillness clock. Every occupied square the
// move left untouched gains one turn; touched squares start over.
func (s *Session) bumpCounters(m engine.Move) {
	touched := map[engine.Square]bool{m.From: true, m.To: true}
	if m.Is(engine.MoveFlagCastle) {
		file := 3
		if m.To.File() == 6 {
			file = 5
		}
		if sq, ok := engine.SquareFromCoords(m.From.Rank(), file); ok {
			touched[sq] = true
		}
	}
	next := make(map[engine.Square]int)
	for _, sq := range s.eng.OccupiedSquares() {
		if touched[sq] {
			continue
		}
		next[sq] = s.counters[sq] + 1
	}
	s.counters = next
}

// Undo rolls back the last move. Stillness counters restart rather than
// rewind; the per-piece trigger latches travel with the engine snapshot.
func (s *Session) Undo() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.eng.Undo(); err != nil {
		return State{}, err
	}
	s.counters = make(map[engine.Square]int)
	s.updatedAt = time.Now()
	return s.stateLocked(), nil
}

// Reset starts the game over with the same position and loadout it was
// created with.
func (s *Session) Reset() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.eng.Reset(); err != nil {
		return State{}, err
	}
	if err := s.setup(); err != nil {
		return State{}, err
	}
	s.counters = make(map[engine.Square]int)
	s.updatedAt = time.Now()
	return s.stateLocked(), nil
}

// LegalMoves lists every legal move for the side to move.
func (s *Session) LegalMoves() []MoveView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newMoveViews(s.eng.LegalMoves())
}

// LegalMovesFrom lists the legal moves of the piece on one square.
func (s *Session) LegalMovesFrom(sq engine.Square) []MoveView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newMoveViews(s.eng.LegalMovesFrom(sq))
}

// Evolution returns the overlay entry for a square, nil when the piece
// has not evolved.
func (s *Session) Evolution(sq engine.Square) *engine.PieceEvolutionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.PieceEvolutionData(sq)
}

// ApplyEvolution installs or replaces the overlay entry for a square.
func (s *Session) ApplyEvolution(sq engine.Square, data *engine.PieceEvolutionState) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.eng.ApplyEvolutionEffects(sq, data); err != nil {
		return State{}, err
	}
	s.updatedAt = time.Now()
	return s.stateLocked(), nil
}

// StationaryTurns reports how many completed moves each occupied square
// has sat unmoved, keyed by coordinate.
func (s *Session) StationaryTurns() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counters))
	for sq, n := range s.counters {
		out[sq.String()] = n
	}
	return out
}

// State returns a consistent snapshot of the game.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}
