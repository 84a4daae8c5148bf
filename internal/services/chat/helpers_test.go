package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/repository"
	chatrepo "github.com/iyunix/go-planner/internal/repository/chat"
	"github.com/iyunix/go-planner/internal/repository/message"
	"github.com/iyunix/go-planner/internal/repository/proposal"
	"github.com/iyunix/go-planner/internal/services/ai"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type scriptedReplier struct {
	reply string
	seen  [][]ai.Turn
}

func (r *scriptedReplier) Reply(ctx context.Context, turns []ai.Turn) string {
	r.seen = append(r.seen, turns)
	return r.reply
}

type fixture struct {
	db           *gorm.DB
	chats        chatrepo.ChatRepository
	messages     message.MessageRepository
	proposals    proposal.ProposalRepository
	conversation *ConversationService
	acceptance   *AcceptanceService
}

func newFixture(t *testing.T, replier Replier) *fixture {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		db:        db,
		chats:     chatrepo.NewChatRepository(db),
		messages:  message.NewMessageRepository(db),
		proposals: proposal.NewProposalRepository(db),
	}
	f.conversation = NewConversationService(DefaultConfig(), f.chats, f.messages, f.proposals, replier, nopLogger{})
	f.acceptance = NewAcceptanceService(DefaultConfig(), f.proposals, nopLogger{})
	return f
}

func (f *fixture) createUser(t *testing.T, username string) uint {
	t.Helper()
	u := &domain.User{Username: username, Password: "hashed"}
	require.NoError(t, f.db.Create(u).Error)
	return u.ID
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
