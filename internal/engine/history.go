// path: evochess/internal/engine/history.go
package engine

// snapshot captures everything a move can change. One is taken before
// every mutation; error paths restore it, successful moves push it on
// the undo stack.
type snapshot struct {
	board      Board
	oracleFEN  string
	evolutions map[Square]*PieceEvolutionState
	ply        int
	dash       dashWindow
	inCheck    bool
	gameOver   bool
	hasWinner  bool
	winner     Color
	status     string
	moveCount  int
}

func (e *Engine) snapshot() *snapshot {
	return &snapshot{
		board:      e.board,
		oracleFEN:  e.oracle.fen(),
		evolutions: e.cloneEvolutions(),
		ply:        e.ply,
		dash:       e.dash,
		inCheck:    e.inCheck,
		gameOver:   e.gameOver,
		hasWinner:  e.hasWinner,
		winner:     e.winner,
		status:     e.status,
		moveCount:  len(e.moves),
	}
}

// restore rewinds the engine to a snapshot. The undo stack is left
// alone: mid-move error paths never pushed, and Undo pops before
// calling here.
func (e *Engine) restore(snap *snapshot) {
	e.board = snap.board
	if oracle, err := newOracleFromFEN(snap.oracleFEN); err == nil {
		e.oracle = oracle
	} else {
		e.logDesync("snapshot fen rejected on restore", err)
	}
	e.evolutions = snap.evolutions
	e.ply = snap.ply
	e.dash = snap.dash
	e.inCheck = snap.inCheck
	e.gameOver = snap.gameOver
	e.hasWinner = snap.hasWinner
	e.winner = snap.winner
	e.status = snap.status
	if snap.moveCount <= len(e.moves) {
		e.moves = e.moves[:snap.moveCount]
	}
}

// Undo rewinds the most recent applied move, dash continuations
// included.
func (e *Engine) Undo() error {
	if len(e.undo) == 0 {
		return ErrNoHistory
	}
	snap := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.restore(snap)
	return nil
}

// History returns the applied moves in order.
func (e *Engine) History() []Move {
	out := make([]Move, len(e.moves))
	copy(out, e.moves)
	return out
}
