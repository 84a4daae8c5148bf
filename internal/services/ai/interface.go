// File: internal/services/ai/interface.go
package ai

import "context"

// Turn is one entry of a conversation transcript.
type Turn struct {
	Role    string
	Content string
}

// CompletionProvider maps a system instruction plus an ordered transcript to
// a single reply.
type CompletionProvider interface {
	Complete(ctx context.Context, systemPrompt string, turns []Turn) (string, error)
}
