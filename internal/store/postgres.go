package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the knowledge base and chat history in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS knowledge_entries (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			question TEXT,
			answer TEXT NOT NULL,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS analytics (
			question TEXT PRIMARY KEY,
			count BIGINT NOT NULL DEFAULT 1,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			session_id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS chat_turns (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES chat_sessions (session_id),
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_turns_session_created ON chat_turns (session_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) FindAllEntries(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, category, question, answer, metadata, created_at
		 FROM knowledge_entries ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			question *string
			metadata []byte
		)
		if err := rows.Scan(&e.ID, &e.Category, &question, &e.Answer, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		if question != nil {
			e.Question = *question
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode entry metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry rows: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) InsertEntries(ctx context.Context, entries []Entry) (int, error) {
	inserted := 0
	for _, e := range entries {
		if strings.TrimSpace(e.Category) == "" || strings.TrimSpace(e.Answer) == "" {
			continue
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}

		var metadata []byte
		if len(e.Metadata) > 0 {
			var err error
			metadata, err = json.Marshal(e.Metadata)
			if err != nil {
				return inserted, fmt.Errorf("encode entry metadata: %w", err)
			}
		}

		var question *string
		if q := strings.TrimSpace(e.Question); q != "" {
			question = &q
		}

		_, err := s.pool.Exec(ctx,
			`INSERT INTO knowledge_entries (id, category, question, answer, metadata, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID,
			strings.TrimSpace(e.Category),
			question,
			strings.TrimSpace(e.Answer),
			metadata,
			e.CreatedAt,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert entry: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

func (s *PostgresStore) UpsertQuestionCount(ctx context.Context, question string) error {
	// Single statement so concurrent identical questions never lose an increment.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analytics (question, count, updated_at) VALUES ($1, 1, now())
		 ON CONFLICT (question) DO UPDATE SET count = analytics.count + 1, updated_at = now()`,
		question,
	)
	if err != nil {
		return fmt.Errorf("upsert question count: %w", err)
	}
	return nil
}

func (s *PostgresStore) TopQuestions(ctx context.Context, limit int) ([]QuestionStat, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT question, count, updated_at FROM analytics ORDER BY count DESC, question LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top questions: %w", err)
	}
	defer rows.Close()

	stats := make([]QuestionStat, 0, limit)
	for rows.Next() {
		var st QuestionStat
		if err := rows.Scan(&st.Question, &st.Count, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan analytics row: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analytics rows: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) FindOrCreateSession(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		token = uuid.NewString()
	}

	var existing string
	err := s.pool.QueryRow(ctx,
		`SELECT session_id FROM chat_sessions WHERE session_id=$1`, token,
	).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("lookup session: %w", err)
	}

	// The token a caller presents stays the key even when the record is gone,
	// so a client keeps its identity across store resets.
	_, err = s.pool.Exec(ctx,
		`INSERT INTO chat_sessions (session_id, created_at) VALUES ($1, now())
		 ON CONFLICT (session_id) DO NOTHING`,
		token,
	)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

func (s *PostgresStore) AppendTurn(ctx context.Context, sessionID, role, content string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_turns (id, session_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		uuid.NewString(), sessionID, role, content,
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) SessionTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM chat_turns WHERE session_id=$1 ORDER BY created_at DESC LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query session turns: %w", err)
	}
	defer rows.Close()

	turns := make([]Turn, 0, limit)
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}

	// Reverse into chronological order for display and prompt coherence.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
