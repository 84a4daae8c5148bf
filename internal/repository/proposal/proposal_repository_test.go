package proposal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/repository"
)

func setup(t *testing.T) (*gorm.DB, ProposalRepository, *domain.ProposedPlan) {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	u := &domain.User{Username: "alice", Password: "hash"}
	require.NoError(t, db.Create(u).Error)
	c := &domain.Chat{UserID: u.ID, Title: "Trip"}
	require.NoError(t, db.Create(c).Error)

	repo := NewProposalRepository(db)
	staged, err := repo.Create(context.Background(), &domain.ProposedPlan{
		ChatID:    c.ID,
		UserID:    u.ID,
		Title:     "Lisbon Weekend",
		StartDate: "2025-06-07",
		Tasks:     datatypes.JSON(`[]`),
	})
	require.NoError(t, err)
	return db, repo, staged
}

func sampleTasks() []domain.Task {
	day := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)
	return []domain.Task{
		{Title: "Alfama walk", Status: domain.TaskStatusPending, TaskDate: day},
		{Title: "Belem", Status: domain.TaskStatusCompleted, TaskDate: day.AddDate(0, 0, 1)},
	}
}

func TestAccept_CreatesPlanAndLinksProposal(t *testing.T) {
	db, repo, staged := setup(t)
	ctx := context.Background()

	plan := &domain.Plan{Title: "Lisbon Weekend", Color: domain.DefaultPlanColor, StartDate: time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Accept(ctx, staged.ID, staged.UserID, plan, sampleTasks()))
	require.NotZero(t, plan.ID)
	assert.Equal(t, staged.UserID, plan.UserID)

	var tasks int64
	require.NoError(t, db.Model(&domain.Task{}).Where("plan_id = ?", plan.ID).Count(&tasks).Error)
	assert.Equal(t, int64(2), tasks)

	reloaded, err := repo.FindByIDAndUserID(ctx, staged.ID, staged.UserID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsAccepted)
	require.NotNil(t, reloaded.PlanID)
	assert.Equal(t, plan.ID, *reloaded.PlanID)

	err = repo.Accept(ctx, staged.ID, staged.UserID, &domain.Plan{Title: "Again"}, nil)
	assert.ErrorIs(t, err, ErrAlreadyAccepted)
}

func TestAccept_UnknownOrForeignProposal(t *testing.T) {
	_, repo, staged := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Accept(ctx, staged.ID, staged.UserID+1, &domain.Plan{Title: "x"}, nil), ErrProposalNotFound)
	assert.ErrorIs(t, repo.Accept(ctx, staged.ID+100, staged.UserID, &domain.Plan{Title: "x"}, nil), ErrProposalNotFound)
}

func TestAccept_RollsBackOnTaskFailure(t *testing.T) {
	db, repo, staged := setup(t)
	ctx := context.Background()

	tasks := sampleTasks()
	tasks[0].ID = 7
	tasks[1].ID = 7

	plan := &domain.Plan{Title: "Lisbon Weekend", Color: domain.DefaultPlanColor, StartDate: time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)}
	require.Error(t, repo.Accept(ctx, staged.ID, staged.UserID, plan, tasks))

	var plans, stored int64
	require.NoError(t, db.Model(&domain.Plan{}).Count(&plans).Error)
	require.NoError(t, db.Model(&domain.Task{}).Count(&stored).Error)
	assert.Zero(t, plans)
	assert.Zero(t, stored)

	reloaded, err := repo.FindByIDAndUserID(ctx, staged.ID, staged.UserID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsAccepted)
	assert.Nil(t, reloaded.PlanID)
}
