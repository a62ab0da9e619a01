package store

import (
	"context"
	"time"
)

// Entry is one curated knowledge base record: a category, an optional
// question, and the answer text served to users.
type Entry struct {
	ID        string            `json:"id"`
	Category  string            `json:"category"`
	Question  string            `json:"question,omitempty"`
	Answer    string            `json:"answer"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// QuestionStat is the per-question analytics counter.
type QuestionStat struct {
	Question  string    `json:"question"`
	Count     int64     `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Turn stores a single user or assistant conversational turn.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists knowledge entries, chat sessions and analytics counters.
type Store interface {
	FindAllEntries(ctx context.Context) ([]Entry, error)
	InsertEntries(ctx context.Context, entries []Entry) (int, error)

	// UpsertQuestionCount creates the counter at 1 or atomically increments it.
	UpsertQuestionCount(ctx context.Context, question string) error
	TopQuestions(ctx context.Context, limit int) ([]QuestionStat, error)

	// FindOrCreateSession returns the session id for a caller-presented token,
	// creating a record keyed by that token when none exists.
	FindOrCreateSession(ctx context.Context, token string) (string, error)
	AppendTurn(ctx context.Context, sessionID, role, content string) error
	SessionTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error)

	Close() error
}
