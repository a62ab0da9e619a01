package brain

import (
	"context"
	"strings"
)

const historyWindow = 6

const systemPromptTemplate = `You are an AI assistant for {company}, a technology company.
Your role is to help users with questions about the company, its services, and general inquiries.

Guidelines:
- Answer questions using ONLY the information provided in the context
- Provide a SINGLE, clear, and concise answer - do not repeat the question or use Q/A format
- Do NOT include "Q:" or "A:" labels in your response
- Do NOT repeat the question in your answer
- If the context doesn't contain relevant information, politely say so and direct the user to {website}
- Be polite, concise, and professional
- Do not make up information
- Return ONLY the answer text, nothing else

Context from knowledge base:
{context}`

// Generator assembles the prompt and drives the provider chain. It never
// returns an error: the rule-based tier guarantees a textual reply.
type Generator struct {
	chain       *Chain
	companyName string
	websiteURL  string
}

func NewGenerator(chain *Chain, companyName, websiteURL string) *Generator {
	return &Generator{chain: chain, companyName: companyName, websiteURL: websiteURL}
}

// Generate produces a draft reply for a query given retrieval context and a
// bounded rolling history window.
func (g *Generator) Generate(ctx context.Context, query, contextText string, history []Message) string {
	fullContext := strings.TrimSpace(contextText)
	if fullContext == "" {
		fullContext = "No specific context available."
	}

	req := Request{
		Query:    query,
		Context:  fullContext,
		Messages: g.buildMessages(query, fullContext, history),
	}

	text, _, err := g.chain.Generate(ctx, req)
	if err != nil {
		// Unreachable when the rule tier is present; answer deterministically anyway.
		text, _ = NewRuleBasedProvider(g.companyName, g.websiteURL).Generate(ctx, req)
	}
	return text
}

func (g *Generator) buildMessages(query, fullContext string, history []Message) []Message {
	system := strings.NewReplacer(
		"{company}", g.companyName,
		"{website}", g.websiteURL,
		"{context}", fullContext,
	).Replace(systemPromptTemplate)

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	msgs := make([]Message, 0, len(history)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	msgs = append(msgs, history...)
	msgs = append(msgs, Message{Role: RoleUser, Content: query})
	return msgs
}
