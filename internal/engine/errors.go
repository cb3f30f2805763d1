// path: evochess/internal/engine/errors.go
package engine

import "errors"

// Input errors.
var (
	ErrInvalidSquare  = errors.New("invalid square")
	ErrInvalidFEN     = errors.New("invalid fen")
	ErrNoPiece        = errors.New("no piece at square")
	ErrUnknownAbility = errors.New("unknown ability")
)

// Move legality errors.
var (
	ErrIllegalMove        = errors.New("illegal move")
	ErrKingCaptureAttempt = errors.New("king cannot be captured")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrAbilityOnCooldown  = errors.New("ability on cooldown")
	ErrAbilityExhausted   = errors.New("ability uses exhausted")
	ErrMoveRestricted     = errors.New("piece is move restricted")
	ErrLeavesKingInCheck  = errors.New("move leaves own king in check")
)

// Engine state errors.
var (
	ErrStateDesync = errors.New("board state desync")
	ErrGameOver    = errors.New("game is over")
	ErrNoHistory   = errors.New("no move to undo")
)
