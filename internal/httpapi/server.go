package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/kenmarkitan/concierge/internal/brain"
	"github.com/kenmarkitan/concierge/internal/chat"
	"github.com/kenmarkitan/concierge/internal/config"
	"github.com/kenmarkitan/concierge/internal/observability"
	"github.com/kenmarkitan/concierge/internal/store"
)

const sessionCookieName = "chat_session_id"

type Server struct {
	cfg          config.Config
	orchestrator *chat.Orchestrator
	store        store.Store
	metrics      *observability.Metrics
	logger       *slog.Logger
	upgrader     websocket.Upgrader
}

func New(cfg config.Config, orchestrator *chat.Orchestrator, st store.Store, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		store:        st,
		metrics:      metrics,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same origin
				// unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/chat/message", s.handleChatMessage)
	r.Get("/v1/chat/history", s.handleChatHistory)
	r.Get("/v1/chat/ws", s.handleChatWS)

	r.Post("/v1/admin/knowledge", s.handleImportKnowledge)
	r.Get("/v1/admin/analytics", s.handleAnalytics)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type chatRequest struct {
	Message string          `json:"message"`
	History []brain.Message `json:"history"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	// Programming defects in the pipeline must still yield an apologetic body,
	// never an empty 500.
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("chat pipeline panic", "panic", rec)
			s.metrics.Turns.WithLabelValues("panic").Inc()
			respondJSON(w, http.StatusInternalServerError, map[string]any{
				"error":    "internal server error",
				"response": chat.ApologyMessage,
			})
		}
	}()

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	token := s.sessionToken(r)
	reply, sessionID, err := s.orchestrator.HandleTurn(r.Context(), token, req.Message, req.History)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			respondError(w, http.StatusBadRequest, "message_required", "message is required and must be a non-empty string")
			return
		}
		// HandleTurn has no other failure mode; treat the unexpected as a defect.
		panic(err)
	}

	s.setSessionCookie(w, r, sessionID)
	respondJSON(w, http.StatusOK, chatResponse{Response: reply, SessionID: sessionID})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	token := s.sessionToken(r)
	if token == "" {
		respondJSON(w, http.StatusOK, map[string]any{"turns": []store.Turn{}})
		return
	}

	limit := 50
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	turns, err := s.orchestrator.History(r.Context(), token, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "history_unavailable", err.Error())
		return
	}
	if turns == nil {
		turns = []store.Turn{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

func (s *Server) handleImportKnowledge(w http.ResponseWriter, r *http.Request) {
	var entries []store.Entry
	if err := decodeJSON(r, &entries); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(entries) == 0 {
		respondError(w, http.StatusBadRequest, "no_entries", "request body must be a non-empty array of entries")
		return
	}

	count, err := s.store.InsertEntries(r.Context(), entries)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "import_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   count,
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	stats, err := s.store.TopQuestions(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "analytics_unavailable", err.Error())
		return
	}
	if stats == nil {
		stats = []store.QuestionStat{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"questions": stats})
}

func (s *Server) sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value == sessionID {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
