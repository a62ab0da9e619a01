package brain

import (
	"context"
	"fmt"
	"strings"

	"github.com/kenmarkitan/concierge/internal/normalize"
	"github.com/kenmarkitan/concierge/internal/retriever"
)

// RuleBasedProvider is the deterministic last tier. It never fails, so the
// pipeline stays available with zero external dependencies reachable.
type RuleBasedProvider struct {
	companyName string
	websiteURL  string
}

func NewRuleBasedProvider(companyName, websiteURL string) *RuleBasedProvider {
	return &RuleBasedProvider{companyName: companyName, websiteURL: websiteURL}
}

func (p *RuleBasedProvider) Name() string { return "rules" }

const (
	contextMinLen = 10
	contextMaxLen = 500
)

func (p *RuleBasedProvider) Generate(_ context.Context, req Request) (string, error) {
	cleaned := strings.TrimSpace(normalize.StripLabels(req.Context))
	if len(cleaned) > contextMinLen {
		runes := []rune(cleaned)
		if len(runes) > contextMaxLen {
			return string(runes[:contextMaxLen]) + "...", nil
		}
		return cleaned, nil
	}

	q := strings.ToLower(req.Query)
	switch {
	case strings.Contains(q, "service") || strings.Contains(q, "what do you offer"):
		return fmt.Sprintf("We offer AI solutions, consulting services, and training programs. For more details, please visit %s", p.websiteURL), nil
	case strings.Contains(q, "contact") || strings.Contains(q, "how to reach"):
		return fmt.Sprintf("You can contact us by visiting our website at %s. We would be happy to assist you!", p.websiteURL), nil
	case strings.Contains(q, "about") || strings.Contains(q, "who are you"):
		return fmt.Sprintf("%s is a technology company focused on delivering innovative AI solutions and consulting services.", p.companyName), nil
	}

	return retriever.NoKnowledgeMessage, nil
}
