// File: internal/services/chat/conversation.go
package chat

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/repository/chat"
	"github.com/iyunix/go-planner/internal/repository/message"
	"github.com/iyunix/go-planner/internal/repository/proposal"
	"github.com/iyunix/go-planner/internal/services/ai"
)

// ConversationService runs the planning chat: it stores every turn, asks the
// assistant for the next one and stages any plan proposal it contains.
type ConversationService struct {
	config       *Config
	chatRepo     chat.ChatRepository
	messageRepo  message.MessageRepository
	proposalRepo proposal.ProposalRepository
	replier      Replier
	logger       Logger
}

func NewConversationService(
	config *Config,
	chatRepo chat.ChatRepository,
	messageRepo message.MessageRepository,
	proposalRepo proposal.ProposalRepository,
	replier Replier,
	logger Logger,
) *ConversationService {
	if config == nil {
		config = DefaultConfig()
	}
	return &ConversationService{
		config:       config,
		chatRepo:     chatRepo,
		messageRepo:  messageRepo,
		proposalRepo: proposalRepo,
		replier:      replier,
		logger:       logger,
	}
}

// ActiveConversation returns the user's most recently updated conversation,
// starting one if the user has none.
func (s *ConversationService) ActiveConversation(ctx context.Context, userID uint) (*domain.Chat, error) {
	latest, err := s.chatRepo.FindLatestByUserID(ctx, userID)
	if err == nil {
		return latest, nil
	}
	if !errors.Is(err, chat.ErrChatNotFound) {
		s.logger.Error("failed to load latest conversation", "user_id", userID, "error", err)
		return nil, NewInternalError("active_conversation", "could not load conversation", err)
	}
	return s.NewConversation(ctx, userID)
}

func (s *ConversationService) NewConversation(ctx context.Context, userID uint) (*domain.Chat, error) {
	created, err := s.chatRepo.Create(ctx, &domain.Chat{UserID: userID, Title: s.config.DefaultChatTitle})
	if err != nil {
		s.logger.Error("failed to create conversation", "user_id", userID, "error", err)
		return nil, NewInternalError("new_conversation", "could not create conversation", err)
	}
	s.logger.Info("conversation created", "user_id", userID, "chat_id", created.ID)
	return created, nil
}

func (s *ConversationService) ListConversations(ctx context.Context, userID uint) ([]domain.Chat, error) {
	chats, err := s.chatRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("list_conversations", "could not list conversations", err)
	}
	return chats, nil
}

// Conversation loads one owned conversation with its transcript and proposals.
func (s *ConversationService) Conversation(ctx context.Context, userID, chatID uint) (*ConversationView, error) {
	c, err := s.ownedChat(ctx, "conversation", userID, chatID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.FindByChatID(ctx, c.ID)
	if err != nil {
		return nil, NewInternalError("conversation", "could not load messages", err)
	}
	proposals, err := s.proposalRepo.FindByChatID(ctx, c.ID)
	if err != nil {
		return nil, NewInternalError("conversation", "could not load proposals", err)
	}
	return &ConversationView{Chat: c, Messages: messages, Proposals: proposals}, nil
}

// SendMessage records the user's turn, obtains and records the assistant's
// reply, and stages a proposal when the reply carries one. An empty message
// is rejected before anything is written.
func (s *ConversationService) SendMessage(ctx context.Context, userID, chatID uint, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ChatError{
			Type:      ErrTypeValidation,
			Operation: "send_message",
			Message:   "message cannot be empty",
			UserID:    userID,
			ChatID:    chatID,
			Cause:     ErrEmptyMessage,
		}
	}
	if utf8.RuneCountInString(text) > s.config.MaxMessageRunes {
		return nil, NewValidationError("send_message", "message is too long")
	}

	c, err := s.ownedChat(ctx, "send_message", userID, chatID)
	if err != nil {
		return nil, err
	}

	isFirst, err := s.isEmpty(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.messageRepo.Create(ctx, &domain.Message{ChatID: c.ID, Role: domain.RoleUser, Content: text})
	if err != nil {
		return nil, NewInternalError("send_message", "could not save message", err)
	}
	if isFirst {
		s.renameFromFirstMessage(ctx, c.ID, text)
	}

	history, err := s.messageRepo.FindByChatID(ctx, c.ID)
	if err != nil {
		return nil, NewInternalError("send_message", "could not load transcript", err)
	}

	reply := s.replier.Reply(ctx, toTurns(history))

	assistantMsg, err := s.messageRepo.Create(ctx, &domain.Message{ChatID: c.ID, Role: domain.RoleAssistant, Content: reply})
	if err != nil {
		return nil, NewInternalError("send_message", "could not save reply", err)
	}

	result := &SendResult{UserMessage: userMsg, AssistantMessage: assistantMsg}

	if payload, ok := ExtractProposal(reply); ok {
		staged, err := s.proposalRepo.Create(ctx, s.stageProposal(userID, c.ID, payload))
		if err != nil {
			return nil, NewInternalError("send_message", "could not save plan proposal", err)
		}
		result.ProposedPlanID = &staged.ID
		result.Proposal = &payload
		s.logger.Info("plan proposal staged", "chat_id", c.ID, "proposal_id", staged.ID, "tasks", len(payload.Tasks))
	}

	if err := s.chatRepo.TouchUpdatedAt(ctx, c.ID); err != nil {
		s.logger.Warn("failed to touch conversation", "chat_id", c.ID, "error", err)
	}
	return result, nil
}

func (s *ConversationService) DeleteConversation(ctx context.Context, userID, chatID uint) error {
	if err := s.chatRepo.Delete(ctx, chatID, userID); err != nil {
		if errors.Is(err, chat.ErrChatNotFound) {
			return NewNotFoundError("delete_conversation", userID, chatID, err)
		}
		return NewInternalError("delete_conversation", "could not delete conversation", err)
	}
	s.logger.Info("conversation deleted", "user_id", userID, "chat_id", chatID)
	return nil
}

func (s *ConversationService) ownedChat(ctx context.Context, operation string, userID, chatID uint) (*domain.Chat, error) {
	c, err := s.chatRepo.FindByIDAndUserID(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, chat.ErrChatNotFound) {
			return nil, NewNotFoundError(operation, userID, chatID, err)
		}
		return nil, NewInternalError(operation, "could not load conversation", err)
	}
	return c, nil
}

func (s *ConversationService) isEmpty(ctx context.Context, chatID uint) (bool, error) {
	count, err := s.messageRepo.CountByChatID(ctx, chatID)
	if err != nil {
		return false, NewInternalError("send_message", "could not count messages", err)
	}
	return count == 0, nil
}

func (s *ConversationService) renameFromFirstMessage(ctx context.Context, chatID uint, text string) {
	title := TruncateText(strings.Join(strings.Fields(text), " "), s.config.TitleMaxRunes)
	if err := s.chatRepo.UpdateTitle(ctx, chatID, title); err != nil {
		s.logger.Warn("failed to title conversation", "chat_id", chatID, "error", err)
	}
}

func (s *ConversationService) stageProposal(userID, chatID uint, payload ProposalPayload) *domain.ProposedPlan {
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		title = s.config.DefaultPlanTitle
	}
	color := payload.Color
	if color == "" {
		color = domain.DefaultPlanColor
	}
	tasks := payload.RawTasks
	if len(tasks) == 0 {
		tasks = []byte("[]")
	}
	return &domain.ProposedPlan{
		ChatID:      chatID,
		UserID:      userID,
		Title:       TruncateText(title, 200),
		Description: payload.Description,
		Color:       color,
		StartDate:   payload.StartDate,
		EndDate:     payload.EndDate,
		Tasks:       []byte(tasks),
	}
}

func toTurns(messages []domain.Message) []ai.Turn {
	turns := make([]ai.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, ai.Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

// TruncateText safely truncates a UTF-8 string to maxLen runes.
func TruncateText(input string, maxLen int) string {
	if input == "" || maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}

	var b strings.Builder
	count := 0
	for _, r := range input {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
