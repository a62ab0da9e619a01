package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process store for local/dev use.
type InMemoryStore struct {
	mu       sync.RWMutex
	entries  []Entry
	counters map[string]*QuestionStat
	sessions map[string]time.Time
	turns    map[string][]Turn
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		counters: make(map[string]*QuestionStat),
		sessions: make(map[string]time.Time),
		turns:    make(map[string][]Turn),
	}
}

func (s *InMemoryStore) FindAllEntries(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *InMemoryStore) InsertEntries(_ context.Context, entries []Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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
		e.Category = strings.TrimSpace(e.Category)
		e.Question = strings.TrimSpace(e.Question)
		e.Answer = strings.TrimSpace(e.Answer)
		s.entries = append(s.entries, e)
		inserted++
	}
	return inserted, nil
}

func (s *InMemoryStore) UpsertQuestionCount(_ context.Context, question string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.counters[question]; ok {
		st.Count++
		st.UpdatedAt = time.Now().UTC()
		return nil
	}
	s.counters[question] = &QuestionStat{
		Question:  question,
		Count:     1,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *InMemoryStore) TopQuestions(_ context.Context, limit int) ([]QuestionStat, error) {
	if limit <= 0 {
		limit = 10
	}
	s.mu.RLock()
	stats := make([]QuestionStat, 0, len(s.counters))
	for _, st := range s.counters {
		stats = append(stats, *st)
	}
	s.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Question < stats[j].Question
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (s *InMemoryStore) FindOrCreateSession(_ context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		token = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		s.sessions[token] = time.Now().UTC()
	}
	return token, nil
}

func (s *InMemoryStore) AppendTurn(_ context.Context, sessionID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[sessionID] = append(s.turns[sessionID], Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *InMemoryStore) SessionTurns(_ context.Context, sessionID string, limit int) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.turns[sessionID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]Turn, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
