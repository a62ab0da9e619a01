// Package retriever selects knowledge base context for a user query using
// keyword overlap. It is deliberately permissive: any entry sharing at least
// one keyword with the query is a candidate.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kenmarkitan/concierge/internal/store"
)

// NoKnowledgeMessage is returned when the knowledge base is empty or has no
// general-information entries to fall back on.
const NoKnowledgeMessage = "No knowledge base content available. Please import FAQ, Services, and About entries through the admin API."

const (
	maxKeywords = 5
	topResults  = 3
	minWordLen  = 2
)

// Retriever scores stored knowledge entries against a query.
type Retriever struct {
	store store.Store
}

func New(s store.Store) *Retriever {
	return &Retriever{store: s}
}

// Retrieve returns the answer text of the best matching entry, a
// general-information fallback, or NoKnowledgeMessage. The only error is a
// store failure; an empty store is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) (string, error) {
	entries, err := r.store.FindAllEntries(ctx)
	if err != nil {
		return "", fmt.Errorf("load knowledge entries: %w", err)
	}

	keywords := Keywords(query)

	type scored struct {
		entry store.Entry
		score int
	}
	candidates := make([]scored, 0, len(entries))
	for _, e := range entries {
		text := strings.ToLower(e.Question + " " + e.Answer + " " + e.Category)
		score := 0
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{entry: e, score: score})
		}
	}

	if len(candidates) == 0 {
		for _, e := range entries {
			if e.Category == "About" || e.Category == "Services" {
				return e.Answer, nil
			}
		}
		return NoKnowledgeMessage, nil
	}

	// Stable sort: ties keep store order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > topResults {
		candidates = candidates[:topResults]
	}

	return candidates[0].entry.Answer, nil
}

// Keywords extracts at most five lowercase query words longer than two characters.
func Keywords(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	keywords := make([]string, 0, maxKeywords)
	for _, w := range words {
		if len(w) <= minWordLen {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
