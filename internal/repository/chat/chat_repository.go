// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-planner/internal/domain"
)

var ErrChatNotFound = errors.New("chat not found")

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if chat.UserID == 0 {
		return nil, errors.New("invalid user ID")
	}
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		log.Printf("[ChatRepository] Database error during chat creation for user ID %d: %v", chat.UserID, err)
		return nil, fmt.Errorf("create chat: %w", err)
	}
	log.Printf("[ChatRepository] Chat created with ID: %d for user: %d", chat.ID, chat.UserID)
	return chat, nil
}

func (r *gormChatRepository) FindByIDAndUserID(ctx context.Context, chatID, userID uint) (*domain.Chat, error) {
	if chatID == 0 || userID == 0 {
		return nil, ErrChatNotFound
	}
	var chat domain.Chat
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", chatID, userID).First(&chat).Error
	return r.handleFindError(err, &chat, "FindByIDAndUserID")
}

// FindLatestByUserID returns the most recently updated chat for the user.
func (r *gormChatRepository) FindLatestByUserID(ctx context.Context, userID uint) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Limit(1).
		Take(&chat).Error
	return r.handleFindError(err, &chat, "FindLatestByUserID")
}

func (r *gormChatRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&chats).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error finding chats for user ID %d: %v", userID, err)
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (r *gormChatRepository) UpdateTitle(ctx context.Context, chatID uint, title string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Update("title", title)
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error renaming chat ID %d: %v", chatID, result.Error)
		return fmt.Errorf("rename chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

func (r *gormChatRepository) TouchUpdatedAt(ctx context.Context, chatID uint) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", time.Now())
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error updating timestamp for chat ID %d: %v", chatID, result.Error)
		return fmt.Errorf("touch chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

// Delete removes a chat with its messages and proposals.
func (r *gormChatRepository) Delete(ctx context.Context, chatID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chat domain.Chat
		if err := tx.Where("id = ? AND user_id = ?", chatID, userID).First(&chat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChatNotFound
			}
			return fmt.Errorf("find chat: %w", err)
		}
		if err := tx.Where("chat_id = ?", chat.ID).Delete(&domain.Message{}).Error; err != nil {
			return fmt.Errorf("delete chat messages: %w", err)
		}
		if err := tx.Where("chat_id = ?", chat.ID).Delete(&domain.ProposedPlan{}).Error; err != nil {
			return fmt.Errorf("delete chat proposals: %w", err)
		}
		if err := tx.Delete(&chat).Error; err != nil {
			return fmt.Errorf("delete chat: %w", err)
		}
		return nil
	})
}

func (r *gormChatRepository) handleFindError(err error, chat *domain.Chat, methodName string) (*domain.Chat, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		log.Printf("[ChatRepository] %s error: %v", methodName, err)
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return chat, nil
}
