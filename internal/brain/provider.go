// Package brain produces draft replies by trying an ordered list of
// generation providers: a local model endpoint, a hosted model API, and a
// deterministic rule-based tier that always succeeds.
package brain

import (
	"context"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is the in-memory unit passed to generation providers. It is derived
// from persisted turns and never stored in this shape.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries the assembled prompt plus the raw query and retrieval
// context the rule-based tier works from.
type Request struct {
	Query    string
	Context  string
	Messages []Message
}

// Provider is one candidate generation strategy in the fallback chain.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Config controls which provider tiers are assembled.
type Config struct {
	LocalEnabled  bool
	LocalEndpoint string
	LocalModel    string

	HostedAPIKey  string
	HostedBaseURL string
	HostedModel   string

	Timeout time.Duration

	CompanyName string
	WebsiteURL  string
}

const defaultTimeout = 30 * time.Second
