package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/kenmarkitan/concierge/internal/brain"
	"github.com/kenmarkitan/concierge/internal/chat"
)

type wsClientMessage struct {
	Message string          `json:"message"`
	History []brain.Message `json:"history,omitempty"`
}

type wsServerMessage struct {
	Response  string `json:"response,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
}

const (
	wsReadLimit     = 1 << 20
	wsReadDeadline  = 120 * time.Second
	wsWriteDeadline = 10 * time.Second
)

// handleChatWS serves a live chat connection. Each inbound frame is one user
// message and produces exactly one reply frame through the same orchestrator
// as the POST endpoint.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	token := s.sessionToken(r)
	if t := strings.TrimSpace(r.URL.Query().Get("session_id")); t != "" {
		token = t
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.ActiveWebsockets.Inc()
	defer s.metrics.ActiveWebsockets.Dec()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	for {
		var req wsClientMessage
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))

		reply, sessionID, err := s.handleWSMessage(r, token, req)
		out := wsServerMessage{Response: reply, SessionID: sessionID}
		if err != nil {
			out = wsServerMessage{Error: "message is required", Code: "message_required"}
		} else {
			token = sessionID
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
		if err := conn.WriteJSON(out); err != nil {
			return
		}
	}
}

func (s *Server) handleWSMessage(r *http.Request, token string, req wsClientMessage) (reply, sessionID string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("chat pipeline panic", "panic", rec)
			s.metrics.Turns.WithLabelValues("panic").Inc()
			reply, sessionID, err = chat.ApologyMessage, token, nil
		}
	}()
	return s.orchestrator.HandleTurn(r.Context(), token, req.Message, req.History)
}
