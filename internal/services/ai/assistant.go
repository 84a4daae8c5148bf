package ai

import (
	"context"
	"fmt"
	"strings"
)

const (
	// ApologyPrefix starts every reply produced for a failed provider call.
	ApologyPrefix = "I'm sorry, I encountered an error: "
	emptyReply    = "I'm sorry, I couldn't generate a response."
)

// Logger defines the logging interface used by the assistant.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Assistant is the planning chat adapter. It never fails: provider errors
// become apology text that flows into the conversation like any other reply.
type Assistant struct {
	provider     CompletionProvider
	systemPrompt string
	logger       Logger
}

func NewAssistant(provider CompletionProvider, logger Logger) *Assistant {
	return &Assistant{
		provider:     provider,
		systemPrompt: PlannerSystemPrompt,
		logger:       logger,
	}
}

// Reply sends the transcript with the planner system prompt and returns the
// assistant's text.
func (a *Assistant) Reply(ctx context.Context, turns []Turn) string {
	a.logger.Debug("requesting assistant reply", "turns", len(turns))

	reply, err := a.provider.Complete(ctx, a.systemPrompt, turns)
	if err != nil {
		a.logger.Error("assistant completion failed", "error", err, "turns", len(turns))
		return fmt.Sprintf("%s%v", ApologyPrefix, err)
	}
	if strings.TrimSpace(reply) == "" {
		a.logger.Warn("assistant returned an empty reply", "turns", len(turns))
		return emptyReply
	}
	return reply
}
