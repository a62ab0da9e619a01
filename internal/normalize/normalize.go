// Package normalize strips structural artifacts from draft replies: category
// prefixes and Q/A labels that leak from templated knowledge entries, plus
// duplicated sentences produced by permissive retrieval.
package normalize

import (
	"regexp"
	"strings"
)

var (
	labelPrefix  = regexp.MustCompile(`^[^:\n]+:\s+`)
	questionLine = regexp.MustCompile(`(?im)^q:\s*[^\n]*\n?`)
	answerPrefix = regexp.MustCompile(`(?im)^a:\s*`)
	sentenceEnd  = regexp.MustCompile(`[.!?]+`)
)

const minSentenceLen = 10

// StripLabels removes a leading "Label: " prefix, "Q:" lines, and "A:"
// line prefixes without touching sentence structure.
func StripLabels(s string) string {
	s = labelPrefix.ReplaceAllString(s, "")
	s = questionLine.ReplaceAllString(s, "")
	return answerPrefix.ReplaceAllString(s, "")
}

// Clean normalizes a draft reply. It is total: when cleaning would remove
// everything, the input is returned unchanged. Clean(Clean(x)) == Clean(x)
// for inputs already in output shape.
func Clean(raw string) string {
	if raw == "" {
		return raw
	}

	cleaned := StripLabels(raw)

	parts := sentenceEnd.Split(cleaned, -1)
	seen := make(map[string]struct{}, len(parts))
	unique := make([]string, 0, len(parts))
	for _, part := range parts {
		sentence := strings.TrimSpace(part)
		if len(sentence) <= minSentenceLen {
			continue
		}
		key := strings.ToLower(sentence)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, sentence)
	}

	cleaned = strings.TrimSpace(strings.Join(unique, ". "))
	if cleaned != "" && !strings.HasSuffix(cleaned, ".") &&
		!strings.HasSuffix(cleaned, "!") && !strings.HasSuffix(cleaned, "?") {
		cleaned += "."
	}

	if cleaned == "" {
		return raw
	}
	return cleaned
}
