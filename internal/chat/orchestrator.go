// Package chat coordinates one conversation turn: retrieve context, generate
// a draft through the provider chain, normalize it, and record the turn as
// best-effort side effects that never block the reply.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kenmarkitan/concierge/internal/brain"
	"github.com/kenmarkitan/concierge/internal/normalize"
	"github.com/kenmarkitan/concierge/internal/observability"
	"github.com/kenmarkitan/concierge/internal/retriever"
	"github.com/kenmarkitan/concierge/internal/store"
)

// ErrEmptyMessage is the orchestrator's only hard failure: a missing or blank
// message, rejected before any side effect.
var ErrEmptyMessage = errors.New("message is required")

// ApologyMessage is served by the transport layer when the pipeline itself
// faults. Expected external failures never reach it.
const ApologyMessage = "I apologize, but I'm having trouble processing your request right now. Please try again in a moment."

type Orchestrator struct {
	store     store.Store
	retriever *retriever.Retriever
	generator *brain.Generator
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewOrchestrator(s store.Store, r *retriever.Retriever, g *brain.Generator, m *observability.Metrics, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{store: s, retriever: r, generator: g, metrics: m, logger: logger}
}

// HandleTurn runs the full pipeline for one user message and returns the
// normalized reply plus the resolved session id.
func (o *Orchestrator) HandleTurn(ctx context.Context, token, message string, history []brain.Message) (string, string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", ErrEmptyMessage
	}

	sessionID, err := o.store.FindOrCreateSession(ctx, token)
	if err != nil {
		// A session is continuity, not correctness: answer under a synthetic token.
		sessionID = "temp_" + uuid.NewString()
		o.storeFailure("session", err)
	}

	if err := o.store.AppendTurn(ctx, sessionID, brain.RoleUser, message); err != nil {
		o.storeFailure("user_turn", err)
	}

	if err := o.store.UpsertQuestionCount(ctx, message); err != nil {
		o.storeFailure("analytics", err)
	}

	contextText, err := o.retriever.Retrieve(ctx, message)
	if err != nil {
		contextText = ""
		o.storeFailure("retrieval", err)
		o.metrics.Retrievals.WithLabelValues("error").Inc()
	} else if contextText == retriever.NoKnowledgeMessage {
		o.metrics.Retrievals.WithLabelValues("no_kb").Inc()
	} else {
		o.metrics.Retrievals.WithLabelValues("ok").Inc()
	}

	draft := o.generator.Generate(ctx, message, contextText, history)
	reply := normalize.Clean(draft)

	if err := o.store.AppendTurn(ctx, sessionID, brain.RoleAssistant, reply); err != nil {
		o.storeFailure("assistant_turn", err)
	}

	o.metrics.Turns.WithLabelValues("ok").Inc()
	return reply, sessionID, nil
}

// History returns the recent persisted turns for a session.
func (o *Orchestrator) History(ctx context.Context, token string, limit int) ([]store.Turn, error) {
	sessionID, err := o.store.FindOrCreateSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return o.store.SessionTurns(ctx, sessionID, limit)
}

func (o *Orchestrator) storeFailure(op string, err error) {
	o.metrics.StoreErrors.WithLabelValues(op).Inc()
	o.logger.Warn("best-effort store operation failed", "op", op, "error", err)
}
