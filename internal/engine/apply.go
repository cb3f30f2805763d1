// path: evochess/internal/engine/apply.go
package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// MakeMove resolves the request against the augmented move set and
// applies it. Oracle-expressible moves delegate to the oracle; enhanced
// moves are reconstructed manually on the mirror and the oracle reloads
// from the resulting FEN. Every failure path leaves the engine exactly
// as it was.
func (e *Engine) MakeMove(req MoveRequest) (Move, error) {
	if req.From > 63 || req.To > 63 {
		return Move{}, ErrInvalidSquare
	}
	if req.From == req.To {
		return Move{}, fmt.Errorf("%w: source and destination are equal", ErrIllegalMove)
	}
	if e.kingAt(req.To) {
		return Move{}, ErrKingCaptureAttempt
	}
	pc, ok := e.board.PieceAt(req.From)
	if !ok {
		return Move{}, fmt.Errorf("%w: %s", ErrNoPiece, req.From)
	}

	if e.dash.active && req.From == e.dash.square && pc.Color == e.dash.color {
		return e.applyDashContinuation(req, pc)
	}

	if e.gameOver {
		return Move{}, ErrGameOver
	}
	if pc.Color != e.board.Turn() {
		return Move{}, ErrNotYourTurn
	}

	move, found := e.resolveMove(req)
	if !found {
		if state := e.evolutionAt(req.From); state != nil && state.IsMoveRestricted {
			return Move{}, fmt.Errorf("%w: %s may only use its cached moves", ErrMoveRestricted, req.From)
		}
		return Move{}, fmt.Errorf("%w: %s%s is not available", ErrIllegalMove, req.From, req.To)
	}

	if move.Enhanced() && !oracleExpressible(e, move, req) {
		return e.applyEnhanced(move, req)
	}
	return e.applyStandard(move, req)
}

// resolveMove picks the generated move matching the request, preferring
// the oracle's own version when an enhanced destination coincides with a
// base-legal one. Promotion requests must match the promoted piece; a
// bare request against a promotion resolves to the queen.
func (e *Engine) resolveMove(req MoveRequest) (Move, bool) {
	candidates := e.generate(&req.From)
	var enhanced Move
	var haveEnhanced bool
	for _, m := range candidates {
		if m.From != req.From || m.To != req.To {
			continue
		}
		if m.Is(MoveFlagPromotion) && !m.Enhanced() {
			if req.HasPromotion {
				if m.Promotion != req.Promotion {
					continue
				}
			} else if m.Promotion != Queen {
				continue
			}
		}
		if req.HasPromotion && m.Enhanced() && m.Is(MoveFlagPromotion) {
			m.Promotion = req.Promotion
		}
		if !m.Enhanced() {
			return m, true
		}
		if !haveEnhanced {
			enhanced, haveEnhanced = m, true
		}
	}
	return enhanced, haveEnhanced
}

// oracleExpressible reports whether the oracle can play the move itself.
// Defensive double-check on top of resolveMove's standard-first pick.
func oracleExpressible(e *Engine, m Move, req MoveRequest) bool {
	return e.oracle.findMove(m.From, m.To, req.Promotion, req.HasPromotion) != nil
}

// applyStandard delegates to the oracle, re-syncs the mirror from the
// oracle FEN and migrates the overlay.
func (e *Engine) applyStandard(m Move, req MoveRequest) (Move, error) {
	om := e.oracle.findMove(m.From, m.To, req.Promotion, req.HasPromotion)
	if om == nil {
		return Move{}, fmt.Errorf("%w: %s%s rejected by rules", ErrIllegalMove, m.From, m.To)
	}

	snap := e.snapshot()
	m.SAN = e.oracle.encodeSAN(om)

	if err := e.oracle.apply(om); err != nil {
		e.restore(snap)
		e.logDesync("oracle rejected its own move", err)
		return Move{}, ErrStateDesync
	}
	mirror, err := ParseFEN(e.oracle.fen())
	if err != nil {
		e.restore(snap)
		e.logDesync("oracle produced unreadable fen", err)
		return Move{}, ErrStateDesync
	}
	e.board = mirror

	// Overlay migration. The captured entry goes first, then the mover;
	// castling also carries the rook's entry.
	if m.Is(MoveFlagEnPassant) {
		e.discardEvolution(enPassantVictimSquare(m))
	}
	e.migrateEvolution(m.From, m.To)
	if m.Is(MoveFlagCastle) {
		rookFrom, rookTo := castleRookSquares(m)
		e.migrateEvolution(rookFrom, rookTo)
	}
	if m.Is(MoveFlagPromotion) {
		e.promoteEvolution(m.To, m.Promotion)
	}

	e.finishMove(&m, snap)
	return m, nil
}

// applyEnhanced performs the manual reconstruction: mutate the mirror,
// reload the oracle from the new FEN, then run the shared post-move
// pipeline. A reload failure rolls everything back.
func (e *Engine) applyEnhanced(m Move, req MoveRequest) (Move, error) {
	snap := e.snapshot()
	pc, _ := e.board.PieceAt(m.From)

	captured, hadCapture := e.board.movePiece(m.From, m.To)
	if hadCapture && captured.Type == King {
		e.restore(snap)
		return Move{}, ErrKingCaptureAttempt
	}

	if m.Is(MoveFlagPromotion) {
		promo := m.Promotion
		if req.HasPromotion {
			promo = req.Promotion
		}
		m.Promotion = promo
		e.board.setPiece(m.To, Piece{Color: pc.Color, Type: promo})
	}

	if pc.Type == Pawn || hadCapture {
		e.board.halfmove = 0
	} else {
		e.board.halfmove++
	}
	if pc.Color == Black {
		e.board.fullmove++
	}
	e.board.turn = pc.Color.Opposite()
	e.board.enPassant = NoEnPassantTarget()
	e.board.castling = adjustCastlingRights(e.board.castling, pc, m.From, m.To, captured, hadCapture)

	oracle, err := newOracleFromFEN(e.board.FEN())
	if err != nil {
		e.restore(snap)
		e.logDesync("mirror fen rejected after reconstruction", err)
		return Move{}, ErrStateDesync
	}
	e.oracle = oracle

	e.migrateEvolution(m.From, m.To)
	if m.Is(MoveFlagPromotion) {
		e.promoteEvolution(m.To, m.Promotion)
	}

	// A cached move consumes its standing grant; the stamp happened when
	// the grant was made. Non-cached moves stamp in finishMove.
	if m.Is(MoveFlagCached) {
		if state := e.evolutionAt(m.To); state != nil {
			state.CachedMoves = 0
			state.CachedBy = AbilityNone
		}
	}

	e.finishMove(&m, snap)
	return m, nil
}

// applyDashContinuation plays the follow-up leap of an open dash window.
// The side to move already flipped on the first leg, so neither turn nor
// ply advances here.
func (e *Engine) applyDashContinuation(req MoveRequest, pc Piece) (Move, error) {
	var move Move
	found := false
	for _, m := range e.dashContinuations(&req.From) {
		if m.To == req.To {
			move, found = m, true
			break
		}
	}
	if !found {
		return Move{}, fmt.Errorf("%w: no dash continuation to %s", ErrIllegalMove, req.To)
	}

	snap := e.snapshot()
	captured, hadCapture := e.board.movePiece(move.From, move.To)
	if hadCapture && captured.Type == King {
		e.restore(snap)
		return Move{}, ErrKingCaptureAttempt
	}
	if hadCapture {
		e.board.halfmove = 0
	}
	e.board.enPassant = NoEnPassantTarget()
	e.board.castling = adjustCastlingRights(e.board.castling, pc, move.From, move.To, captured, hadCapture)

	oracle, err := newOracleFromFEN(e.board.FEN())
	if err != nil {
		e.restore(snap)
		e.logDesync("mirror fen rejected after dash continuation", err)
		return Move{}, ErrStateDesync
	}
	e.oracle = oracle

	e.migrateEvolution(move.From, move.To)

	e.finishMove(&move, snap)
	return move, nil
}

// finishMove is the shared tail: counters, the ability that produced the
// move, the effect executor pass, cache refresh, status, history. The
// dash window closes on every applied move; the producing ability may
// reopen it afterwards.
func (e *Engine) finishMove(m *Move, snap *snapshot) {
	if !m.Is(MoveFlagDashContinuation) {
		e.ply++
	}
	e.dash = dashWindow{}

	if m.Enhanced() && !m.Is(MoveFlagCached) && !m.Is(MoveFlagDashContinuation) && m.Ability != AbilityNone {
		if state := e.evolutionAt(m.To); state != nil {
			if ability := state.FindAbility(m.Ability); ability != nil {
				e.markTriggered(ability)
				if ability.Category == CategorySpecial {
					m.Results = append(m.Results, e.executeSpecial(ability, state, m.To, m))
				}
			}
		}
	}

	m.Results = append(m.Results, e.executeTriggeredAbilities(m.To, m)...)
	e.refreshCachedMoves()
	e.updateStatus()

	e.undo = append(e.undo, snap)
	e.moves = append(e.moves, *m)

	if e.logger != nil {
		e.logger.Debug("move applied",
			zap.String("move", m.String()),
			zap.String("san", m.SAN),
			zap.Bool("enhanced", m.Enhanced()),
			zap.Int("ply", e.ply),
		)
	}
}

func (e *Engine) logDesync(msg string, err error) {
	if e.logger != nil {
		e.logger.Error("state desync", zap.String("reason", msg), zap.Error(err))
	}
}

// enPassantVictimSquare is the actual square of the pawn removed by an
// en-passant capture: same file as the destination, mover's rank.
func enPassantVictimSquare(m Move) Square {
	rank := m.To.Rank() - forwardDelta(m.Color)
	sq, _ := SquareFromCoords(rank, m.To.File())
	return sq
}

// castleRookSquares maps a castling king move to the rook's path.
func castleRookSquares(m Move) (Square, Square) {
	rank := m.From.Rank()
	if m.To.File() == 6 {
		from, _ := SquareFromCoords(rank, 7)
		to, _ := SquareFromCoords(rank, 5)
		return from, to
	}
	from, _ := SquareFromCoords(rank, 0)
	to, _ := SquareFromCoords(rank, 3)
	return from, to
}

// adjustCastlingRights clears rights invalidated by a manual mutation:
// the mover's rights on a king move, one side on a rook move from its
// corner, and the victim's side when a corner rook is captured.
func adjustCastlingRights(cr CastlingRights, pc Piece, from, to Square, captured Piece, hadCapture bool) CastlingRights {
	switch {
	case pc.Type == King && pc.Color == White:
		cr = cr.Without(CastlingWhiteKingside | CastlingWhiteQueenside)
	case pc.Type == King && pc.Color == Black:
		cr = cr.Without(CastlingBlackKingside | CastlingBlackQueenside)
	case pc.Type == Rook:
		cr = cr.Without(rookCornerRight(pc.Color, from))
	}
	if hadCapture && captured.Type == Rook {
		cr = cr.Without(rookCornerRight(captured.Color, to))
	}
	return cr
}

func rookCornerRight(c Color, sq Square) CastlingRights {
	switch {
	case c == White && sq == 0:
		return CastlingWhiteQueenside
	case c == White && sq == 7:
		return CastlingWhiteKingside
	case c == Black && sq == 56:
		return CastlingBlackQueenside
	case c == Black && sq == 63:
		return CastlingBlackKingside
	default:
		return CastlingNone
	}
}

// MakeMoveFromNotation decodes a SAN string against the current position
// and plays it through the standard path.
func (e *Engine) MakeMoveFromNotation(san string) (Move, error) {
	om, err := e.oracle.decodeSAN(san)
	if err != nil {
		return Move{}, err
	}
	req := MoveRequest{
		From: fromOracleSquare(om.S1()),
		To:   fromOracleSquare(om.S2()),
	}
	if promo := fromOraclePieceType(om.Promo()); promo != NoPieceType {
		req.Promotion = promo
		req.HasPromotion = true
	}
	return e.MakeMove(req)
}
