// path: evochess/internal/httpx/server.go
// Package httpx exposes the session manager over a JSON API.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"evochess/internal/abilities"
	"evochess/internal/engine"
	"evochess/internal/session"
)

// Server wires the HTTP layer to the session manager.
type Server struct {
	manager *session.Manager
	logger  *zap.Logger
	srvMu   sync.Mutex
	srv     *http.Server
}

const (
	maxJSONBodyBytes int64 = 1 << 20
	apiCSP                 = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
)

// NewServer builds a Server over the given session manager.
func NewServer(manager *session.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{manager: manager, logger: logger}
}

// Listen starts the HTTP server.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	s.logger.Info("http listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// routes configures the ServeMux with the JSON APIs.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/new", s.withJSON(s.handleNew))
	mux.HandleFunc("/api/state", s.withJSON(s.handleState))
	mux.HandleFunc("/api/moves", s.withJSON(s.handleMoves))
	mux.HandleFunc("/api/move", s.withJSON(s.handleMove))
	mux.HandleFunc("/api/evolution", s.withJSON(s.handleEvolution))
	mux.HandleFunc("/api/stationary", s.withJSON(s.handleStationary))
	mux.HandleFunc("/api/undo", s.withJSON(s.handleUndo))
	mux.HandleFunc("/api/reset", s.withJSON(s.handleReset))
	mux.HandleFunc("/api/remove", s.withJSON(s.handleRemove))
	mux.HandleFunc("/api/abilities", s.withJSON(s.handleAbilities))

	// Health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ---- JSON helpers ----

func (s *Server) withJSON(h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applyAPISecurityHeaders(w.Header())
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		s.logger.Debug("api request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	writeJSON(w, map[string]string{"error": msg})
}

func applyAPISecurityHeaders(h http.Header) {
	h.Set("Content-Security-Policy", apiCSP)
	h.Set("Cross-Origin-Opener-Policy", "same-origin")
	h.Set("Cross-Origin-Embedder-Policy", "require-corp")
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrGameOver):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// sessionFor resolves the game id or writes the failure response.
func (s *Server) sessionFor(w http.ResponseWriter, id string) (*session.Session, bool) {
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "missing game id")
		return nil, false
	}
	sess, err := s.manager.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "game not found")
		return nil, false
	}
	return sess, true
}

// ---- API: new ----

type newBody struct {
	FEN   string   `json:"fen"`
	White []string `json:"white"`
	Black []string `json:"black"`
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	defer r.Body.Close()
	var body newBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "request too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	white, err := parseAbilities(body.White)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	black, err := parseAbilities(body.Black)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.manager.Create(session.CreateParams{
		FEN:     strings.TrimSpace(body.FEN),
		Loadout: session.Loadout{White: white, Black: black},
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, map[string]any{"state": sess.State()})
}

// ---- API: state ----

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, ok := s.sessionFor(w, r.URL.Query().Get("id"))
	if !ok {
		return
	}
	writeJSON(w, map[string]any{"state": sess.State()})
}

// ---- API: moves ----

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	sess, ok := s.sessionFor(w, q.Get("id"))
	if !ok {
		return
	}

	var moves []session.MoveView
	if coord := strings.TrimSpace(q.Get("from")); coord != "" {
		sq, ok := engine.CoordToSquare(strings.ToLower(coord))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid from square")
			return
		}
		moves = sess.LegalMovesFrom(sq)
	} else {
		moves = sess.LegalMoves()
	}
	writeJSON(w, map[string]any{"moves": moves})
}

// ---- API: move ----

type moveBody struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion"`
	SAN       string `json:"san"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	defer r.Body.Close()
	var body moveBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "request too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	sess, ok := s.sessionFor(w, body.ID)
	if !ok {
		return
	}

	if san := strings.TrimSpace(body.SAN); san != "" {
		out, err := sess.MoveSAN(san)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, out)
		return
	}

	from, ok := engine.CoordToSquare(strings.ToLower(strings.TrimSpace(body.From)))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid from square")
		return
	}
	to, ok := engine.CoordToSquare(strings.ToLower(strings.TrimSpace(body.To)))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid to square")
		return
	}
	req := engine.MoveRequest{From: from, To: to}
	if promotion := strings.TrimSpace(body.Promotion); promotion != "" {
		pt, ok := engine.ParsePieceType(promotion)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid promotion choice")
			return
		}
		req.Promotion = pt
		req.HasPromotion = true
	}

	out, err := sess.Move(req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, out)
}

// ---- API: evolution ----

type evolutionBody struct {
	ID        string                      `json:"id"`
	Square    string                      `json:"square"`
	Evolution *engine.PieceEvolutionState `json:"evolution"`
}

// handleEvolution reads or replaces one square's overlay entry. A null
// evolution in a POST clears the square.
func (s *Server) handleEvolution(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		sess, ok := s.sessionFor(w, q.Get("id"))
		if !ok {
			return
		}
		sq, ok := engine.CoordToSquare(strings.ToLower(strings.TrimSpace(q.Get("square"))))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid square")
			return
		}
		writeJSON(w, map[string]any{"evolution": sess.Evolution(sq)})
	case http.MethodPost:
		defer r.Body.Close()
		var body evolutionBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			if isBodyTooLarge(err) {
				writeError(w, http.StatusRequestEntityTooLarge, "request too large")
				return
			}
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		sess, ok := s.sessionFor(w, body.ID)
		if !ok {
			return
		}
		sq, ok := engine.CoordToSquare(strings.ToLower(strings.TrimSpace(body.Square)))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid square")
			return
		}
		state, err := sess.ApplyEvolution(sq, body.Evolution)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, map[string]any{"state": state})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// ---- API: stationary ----

func (s *Server) handleStationary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, ok := s.sessionFor(w, r.URL.Query().Get("id"))
	if !ok {
		return
	}
	writeJSON(w, map[string]any{"stationaryTurns": sess.StationaryTurns()})
}

// ---- API: undo / reset / remove ----

type gameBody struct {
	ID string `json:"id"`
}

func (s *Server) decodeGameBody(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	defer r.Body.Close()
	var body gameBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "request too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return nil, false
	}
	return s.sessionFor(w, body.ID)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, ok := s.decodeGameBody(w, r)
	if !ok {
		return
	}
	state, err := sess.Undo()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, map[string]any{"state": state})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, ok := s.decodeGameBody(w, r)
	if !ok {
		return
	}
	state, err := sess.Reset()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, map[string]any{"state": state})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, ok := s.decodeGameBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{"removed": s.manager.Remove(sess.ID)})
}

// ---- API: abilities ----

type abilityView struct {
	ID              string             `json:"id"`
	Category        string             `json:"category"`
	Pieces          []string           `json:"pieces,omitempty"`
	CooldownSeconds float64            `json:"cooldownSeconds,omitempty"`
	MoveCooldown    int                `json:"moveCooldownPlies,omitempty"`
	MaxUses         int                `json:"maxUses,omitempty"`
	Conditions      []engine.Condition `json:"conditions,omitempty"`
}

func (s *Server) handleAbilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	defs := abilities.All()
	out := make([]abilityView, 0, len(defs))
	for _, d := range defs {
		view := abilityView{
			ID:              d.ID.String(),
			Category:        d.Category.String(),
			CooldownSeconds: d.CooldownSeconds,
			MoveCooldown:    d.MoveCooldown,
			MaxUses:         d.MaxUses,
			Conditions:      d.Conditions,
		}
		for _, pt := range d.Pieces {
			view.Pieces = append(view.Pieces, pt.Name())
		}
		out = append(out, view)
	}
	writeJSON(w, map[string]any{"abilities": out})
}

// ---- parsing helpers ----

func parseAbilities(list []string) ([]engine.Ability, error) {
	out := make([]engine.Ability, 0, len(list))
	for _, item := range list {
		ability, ok := engine.ParseAbility(item)
		if !ok {
			return nil, fmt.Errorf("invalid ability %q", item)
		}
		out = append(out, ability)
	}
	return out, nil
}
