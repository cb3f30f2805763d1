// path: evochess/internal/session/view.go
package session

import (
	"time"

	"evochess/internal/engine"
)

// State is the wire snapshot of one game.
type State struct {
	ID         string         `json:"id"`
	FEN        string         `json:"fen"`
	Turn       engine.Color   `json:"turn"`
	TurnName   string         `json:"turnName"`
	Ply        int            `json:"ply"`
	Status     string         `json:"status"`
	Outcome    string         `json:"outcome"`
	InCheck    bool           `json:"inCheck"`
	GameOver   bool           `json:"gameOver"`
	HasWinner  bool           `json:"hasWinner"`
	WinnerName string         `json:"winnerName,omitempty"`
	Pieces     []PieceState   `json:"pieces"`
	Moves      []MoveView     `json:"moves"`
	Stationary map[string]int `json:"stationaryTurns,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// PieceState is one occupied square plus its evolution overlay entry.
type PieceState struct {
	Square    string                      `json:"square"`
	Color     engine.Color                `json:"color"`
	ColorName string                      `json:"colorName"`
	Type      engine.PieceType            `json:"type"`
	TypeName  string                      `json:"typeName"`
	Evolution *engine.PieceEvolutionState `json:"evolution,omitempty"`
}

// MoveView is the wire form of a generated or applied move.
type MoveView struct {
	From             string                 `json:"from"`
	To               string                 `json:"to"`
	Piece            string                 `json:"piece"`
	Color            string                 `json:"color"`
	Promotion        string                 `json:"promotion,omitempty"`
	Captured         string                 `json:"captured,omitempty"`
	SAN              string                 `json:"san,omitempty"`
	Ability          engine.Ability         `json:"ability,omitempty"`
	Enhanced         bool                   `json:"enhanced"`
	Capture          bool                   `json:"capture"`
	Castle           bool                   `json:"castle,omitempty"`
	EnPassant        bool                   `json:"enPassant,omitempty"`
	Cached           bool                   `json:"cached,omitempty"`
	DashContinuation bool                   `json:"dashContinuation,omitempty"`
	Results          []engine.AbilityResult `json:"results,omitempty"`
}

// MoveOutcome bundles everything one accepted move produced.
type MoveOutcome struct {
	Move       MoveView               `json:"move"`
	Elegance   float64                `json:"elegance"`
	Stationary []engine.AbilityResult `json:"stationary,omitempty"`
	State      State                  `json:"state"`
}

func newMoveView(m engine.Move) MoveView {
	v := MoveView{
		From:             m.From.String(),
		To:               m.To.String(),
		Piece:            m.Piece.Name(),
		Color:            m.Color.String(),
		SAN:              m.SAN,
		Ability:          m.Ability,
		Enhanced:         m.Enhanced(),
		Capture:          m.Is(engine.MoveFlagCapture),
		Castle:           m.Is(engine.MoveFlagCastle),
		EnPassant:        m.Is(engine.MoveFlagEnPassant),
		Cached:           m.Is(engine.MoveFlagCached),
		DashContinuation: m.Is(engine.MoveFlagDashContinuation),
		Results:          m.Results,
	}
	if m.Is(engine.MoveFlagPromotion) {
		v.Promotion = m.Promotion.Name()
	}
	if m.Is(engine.MoveFlagCapture) {
		v.Captured = m.Captured.Name()
	}
	return v
}

func newMoveViews(moves []engine.Move) []MoveView {
	out := make([]MoveView, len(moves))
	for i, m := range moves {
		out[i] = newMoveView(m)
	}
	return out
}

// stateLocked builds the snapshot. Callers hold s.mu.
func (s *Session) stateLocked() State {
	st := State{
		ID:        s.ID,
		FEN:       s.eng.CurrentFEN(),
		Turn:      s.eng.Turn(),
		TurnName:  s.eng.Turn().String(),
		Ply:       s.eng.Ply(),
		Status:    s.eng.Status(),
		Outcome:   s.eng.Outcome(),
		InCheck:   s.eng.InCheck(),
		GameOver:  s.eng.GameOver(),
		Moves:     newMoveViews(s.eng.History()),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
	if winner, ok := s.eng.Winner(); ok {
		st.HasWinner = true
		st.WinnerName = winner.String()
	}
	for _, sq := range s.eng.OccupiedSquares() {
		pc, ok := s.eng.PieceAt(sq)
		if !ok {
			continue
		}
		st.Pieces = append(st.Pieces, PieceState{
			Square:    sq.String(),
			Color:     pc.Color,
			ColorName: pc.Color.String(),
			Type:      pc.Type,
			TypeName:  pc.Type.Name(),
			Evolution: s.eng.PieceEvolutionData(sq),
		})
	}
	if len(s.counters) > 0 {
		st.Stationary = make(map[string]int, len(s.counters))
		for sq, n := range s.counters {
			st.Stationary[sq.String()] = n
		}
	}
	return st
}
