// File: internal/services/chat/config.go
package chat

import (
	"fmt"
)

type Config struct {
	// Conversation defaults
	DefaultChatTitle string // Title of a conversation before its first message
	TitleMaxRunes    int    // Conversation titles are cut from the first message
	MaxMessageRunes  int    // Longest accepted user message

	// Proposal defaults
	DefaultPlanTitle string
	DefaultTaskTitle string
}

func (c *Config) Validate() error {
	if c.DefaultChatTitle == "" {
		return fmt.Errorf("default_chat_title is required")
	}
	if c.TitleMaxRunes <= 0 {
		return fmt.Errorf("title_max_runes must be positive")
	}
	if c.MaxMessageRunes <= 0 {
		return fmt.Errorf("max_message_runes must be positive")
	}
	if c.DefaultPlanTitle == "" || c.DefaultTaskTitle == "" {
		return fmt.Errorf("default plan and task titles are required")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		DefaultChatTitle: "New Conversation",
		TitleMaxRunes:    50,
		MaxMessageRunes:  4000,
		DefaultPlanTitle: "Untitled Plan",
		DefaultTaskTitle: "Untitled Task",
	}
}
