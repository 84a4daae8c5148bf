package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/services/ai"
)

type failingProvider struct{}

func (failingProvider) Complete(ctx context.Context, systemPrompt string, turns []ai.Turn) (string, error) {
	return "", errors.New("upstream unavailable")
}

func TestSendMessage_EmptyMessageWritesNothing(t *testing.T) {
	replier := &scriptedReplier{reply: "unused"}
	f := newFixture(t, replier)
	ctx := context.Background()
	userID := f.createUser(t, "alice")
	conv, err := f.conversation.NewConversation(ctx, userID)
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := f.conversation.SendMessage(ctx, userID, conv.ID, text)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptyMessage))
		assert.True(t, errors.Is(err, ErrValidation))
	}

	assert.Zero(t, f.count(t, &domain.Message{}))
	assert.Zero(t, f.count(t, &domain.ProposedPlan{}))
	assert.Empty(t, replier.seen)
}

func TestSendMessage_ProviderFailureStoresApology(t *testing.T) {
	assistant := ai.NewAssistant(failingProvider{}, nopLogger{})
	f := newFixture(t, assistant)
	ctx := context.Background()
	userID := f.createUser(t, "alice")
	conv, err := f.conversation.NewConversation(ctx, userID)
	require.NoError(t, err)

	result, err := f.conversation.SendMessage(ctx, userID, conv.ID, "Plan my week")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.AssistantMessage.Content, ai.ApologyPrefix))
	assert.Nil(t, result.ProposedPlanID)
	assert.Nil(t, result.Proposal)
	assert.Zero(t, f.count(t, &domain.ProposedPlan{}))

	stored, err := f.messages.FindByChatID(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, domain.RoleUser, stored[0].Role)
	assert.Equal(t, "Plan my week", stored[0].Content)
	assert.Equal(t, domain.RoleAssistant, stored[1].Role)
	assert.True(t, strings.HasPrefix(stored[1].Content, ai.ApologyPrefix))
}

func TestSendMessage_ProseWithBareJSONStagesProposal(t *testing.T) {
	reply := `Sounds good! Here's your plan: {"type":"plan_proposal","plan":{"title":"Gym Month","start_date":"2025-01-06","end_date":"2025-01-31","tasks":[{"title":"Legs","task_date":"2025-01-06"},{"title":"Arms","task_date":"2025-01-08"}]}}`
	f := newFixture(t, &scriptedReplier{reply: reply})
	ctx := context.Background()
	userID := f.createUser(t, "alice")
	conv, err := f.conversation.NewConversation(ctx, userID)
	require.NoError(t, err)

	result, err := f.conversation.SendMessage(ctx, userID, conv.ID, "Yes, that's perfect")
	require.NoError(t, err)
	require.NotNil(t, result.ProposedPlanID)
	require.NotNil(t, result.Proposal)
	assert.Equal(t, "#3B82F6", result.Proposal.Color)
	for _, task := range result.Proposal.Tasks {
		assert.Equal(t, "pending", task.Status)
	}

	staged, err := f.proposals.FindByIDAndUserID(ctx, *result.ProposedPlanID, userID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, staged.ChatID)
	assert.Equal(t, "Gym Month", staged.Title)
	assert.Equal(t, "#3B82F6", staged.Color)
	assert.Equal(t, "2025-01-06", staged.StartDate)
	assert.Equal(t, "2025-01-31", staged.EndDate)
	assert.False(t, staged.IsAccepted)
	assert.JSONEq(t, `[{"title":"Legs","task_date":"2025-01-06"},{"title":"Arms","task_date":"2025-01-08"}]`, string(staged.Tasks))
}

func TestSendMessage_UntitledProposalGetsDefaults(t *testing.T) {
	f := newFixture(t, &scriptedReplier{reply: `{"type":"plan_proposal","plan":{"start_date":"2025-03-01"}}`})
	ctx := context.Background()
	userID := f.createUser(t, "alice")
	conv, err := f.conversation.NewConversation(ctx, userID)
	require.NoError(t, err)

	result, err := f.conversation.SendMessage(ctx, userID, conv.ID, "go")
	require.NoError(t, err)
	require.NotNil(t, result.ProposedPlanID)

	staged, err := f.proposals.FindByIDAndUserID(ctx, *result.ProposedPlanID, userID)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Plan", staged.Title)
	assert.Equal(t, "[]", string(staged.Tasks))
}

func TestSendMessage_SendsFullTranscriptInOrder(t *testing.T) {
	replier := &scriptedReplier{reply: "Where would you like to go?"}
	f := newFixture(t, replier)
	ctx := context.Background()
	userID := f.createUser(t, "alice")
	conv, err := f.conversation.NewConversation(ctx, userID)
	require.NoError(t, err)

	_, err = f.conversation.SendMessage(ctx, userID, conv.ID, "Plan a trip")
	require.NoError(t, err)
	_, err = f.conversation.SendMessage(ctx, userID, conv.ID, "Lisbon")
	require.NoError(t, err)

	require.Len(t, replier.seen, 2)
	assert.Equal(t, []ai.Turn{{Role: "user", Content: "Plan a trip"}}, replier.seen[0])
	assert.Equal(t, []ai.Turn{
		{Role: "user", Content: "Plan a trip"},
		{Role: "assistant", Content: "Where would you like to go?"},
		{Role: "user", Content: "Lisbon"},
	}, replier.seen[1])
}

func TestSendMessage_TitlesConversationFromFirstMessage(t *testing.T) {
	f := newFixture(t, &scriptedReplier{reply: "ok"})
	ctx := context.Background()
	userID := f.createUser(t, "alice")
	conv, err := f.conversation.NewConversation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "New Conversation", conv.Title)

	_, err = f.conversation.SendMessage(ctx, userID, conv.ID, "  Plan a   study schedule  ")
	require.NoError(t, err)
	_, err = f.conversation.SendMessage(ctx, userID, conv.ID, "For finals")
	require.NoError(t, err)

	view, err := f.conversation.Conversation(ctx, userID, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plan a study schedule", view.Chat.Title)
	assert.Len(t, view.Messages, 4)
}

func TestSendMessage_ForeignConversationIsNotFound(t *testing.T) {
	replier := &scriptedReplier{reply: "ok"}
	f := newFixture(t, replier)
	ctx := context.Background()
	owner := f.createUser(t, "alice")
	intruder := f.createUser(t, "mallory")
	conv, err := f.conversation.NewConversation(ctx, owner)
	require.NoError(t, err)

	_, err = f.conversation.SendMessage(ctx, intruder, conv.ID, "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Zero(t, f.count(t, &domain.Message{}))
	assert.Empty(t, replier.seen)
}

func TestActiveConversation_ReusesLatest(t *testing.T) {
	f := newFixture(t, &scriptedReplier{reply: "ok"})
	ctx := context.Background()
	userID := f.createUser(t, "alice")

	first, err := f.conversation.ActiveConversation(ctx, userID)
	require.NoError(t, err)
	again, err := f.conversation.ActiveConversation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	fresh, err := f.conversation.NewConversation(ctx, userID)
	require.NoError(t, err)
	latest, err := f.conversation.ActiveConversation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, latest.ID)

	all, err := f.conversation.ListConversations(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteConversation_RemovesTranscriptAndProposals(t *testing.T) {
	f := newFixture(t, &scriptedReplier{reply: samplePlanJSON})
	ctx := context.Background()
	userID := f.createUser(t, "alice")
	other := f.createUser(t, "bob")
	conv, err := f.conversation.NewConversation(ctx, userID)
	require.NoError(t, err)
	_, err = f.conversation.SendMessage(ctx, userID, conv.ID, "plan it")
	require.NoError(t, err)

	err = f.conversation.DeleteConversation(ctx, other, conv.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, f.conversation.DeleteConversation(ctx, userID, conv.ID))
	assert.Zero(t, f.count(t, &domain.Chat{}))
	assert.Zero(t, f.count(t, &domain.Message{}))
	assert.Zero(t, f.count(t, &domain.ProposedPlan{}))
}
