package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"boardroom/internal/config"
	"boardroom/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type Server struct {
	cfg  config.APIConfig
	log  *slog.Logger
	game *game.Game
	ws   http.Handler
	mux  *chi.Mux
}

// New wires the HTTP surface over the orchestrator. ws may be nil when no
// spectator hub is mounted.
func New(cfg config.APIConfig, logger *slog.Logger, g *game.Game, ws http.Handler) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  logger,
		game: g,
		ws:   ws,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	if s.ws != nil {
		r.Handle("/ws", s.ws)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/teams/join", s.handleJoin)
		r.Post("/teams/submit", s.handleSubmit)
		r.Post("/teams/unsubmit", s.handleUnsubmit)
		r.Post("/teams/disconnect", s.handleDisconnect)

		r.Get("/state", s.handleState)
		r.Get("/decisions", s.handleDecisions)
		r.Get("/submissions", s.handleSubmissions)
		r.Get("/results/round", s.handleRoundResults)
		r.Get("/results/final", s.handleFinalResults)
		r.Get("/histories", s.handleHistories)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/start", s.adminOp(s.game.Start))
			r.Post("/pause", s.adminOp(s.game.Pause))
			r.Post("/resume", s.adminOp(s.game.Resume))
			r.Post("/end-round", s.adminOp(s.game.EndRound))
			r.Post("/next-round", s.adminOp(s.game.NextRound))
			r.Post("/reset", s.adminOp(s.game.Reset))
			r.Post("/event", s.handleTriggerEvent)
			r.Post("/config", s.handleConfigure)
		})
	})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TeamName     string `json:"team_name"`
		ConnectionID string `json:"connection_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	connID := strings.TrimSpace(in.ConnectionID)
	if connID == "" {
		connID = uuid.NewString()
	}
	teamID, err := s.game.Join(in.TeamName, connID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"team_id":       teamID,
		"connection_id": connID,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ConnectionID string   `json:"connection_id"`
		DecisionIDs  []string `json:"decision_ids"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.game.Submit(in.ConnectionID, in.DecisionIDs); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleUnsubmit(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ConnectionID string `json:"connection_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.game.Unsubmit(in.ConnectionID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ConnectionID string `json:"connection_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.game.Disconnect(in.ConnectionID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.Snapshot())
}

func (s *Server) handleDecisions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"decisions": s.game.AvailableDecisions()})
}

func (s *Server) handleSubmissions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"teams": s.game.TeamSubmissionSummary()})
}

func (s *Server) handleRoundResults(w http.ResponseWriter, _ *http.Request) {
	results, ok := s.game.LastRoundResults()
	if !ok {
		writeError(w, http.StatusNotFound, "no round has settled yet")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleFinalResults(w http.ResponseWriter, _ *http.Request) {
	results, ok := s.game.FinalResults()
	if !ok {
		writeError(w, http.StatusNotFound, "game has not finished")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleHistories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"histories": s.game.RoundHistories()})
}

func (s *Server) handleTriggerEvent(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.game.TriggerEvent(in.Description); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TeamCount    int `json:"team_count"`
		RoundSeconds int `json:"round_seconds"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.TeamCount > 0 {
		if err := s.game.ConfigureTeamCount(in.TeamCount); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	if in.RoundSeconds > 0 {
		if err := s.game.ConfigureRoundDuration(time.Duration(in.RoundSeconds) * time.Second); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) adminOp(op func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := op(); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrTeamNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrWrongStatus), errors.Is(err, game.ErrNameTaken), errors.Is(err, game.ErrGameFull):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrNameRequired),
		errors.Is(err, game.ErrUnknownDecision),
		errors.Is(err, game.ErrDecisionUnavailable),
		errors.Is(err, game.ErrDuplicateDecision),
		errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrAlreadySubmitted),
		errors.Is(err, game.ErrNotSubmitted),
		errors.Is(err, game.ErrInvalidTeamCount),
		errors.Is(err, game.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
