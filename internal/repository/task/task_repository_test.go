package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/repository"
)

func TestFindByPhotoPathAndUserID(t *testing.T) {
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	ctx := context.Background()

	alice := &domain.User{Username: "alice", Password: "hash"}
	bob := &domain.User{Username: "bob", Password: "hash"}
	require.NoError(t, db.Create(alice).Error)
	require.NoError(t, db.Create(bob).Error)
	plan := &domain.Plan{UserID: alice.ID, Title: "Trip", Color: domain.DefaultPlanColor, StartDate: time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(plan).Error)

	repo := NewTaskRepository(db)
	created, err := repo.Create(ctx, &domain.Task{
		PlanID:    plan.ID,
		Title:     "Tram 28",
		PhotoPath: "task_photos/tram.png",
		Status:    domain.TaskStatusPending,
		TaskDate:  plan.StartDate,
	})
	require.NoError(t, err)

	found, err := repo.FindByPhotoPathAndUserID(ctx, "task_photos/tram.png", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindByPhotoPathAndUserID(ctx, "task_photos/tram.png", bob.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = repo.FindByPhotoPathAndUserID(ctx, "task_photos/other.png", alice.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = repo.FindByPhotoPathAndUserID(ctx, "", alice.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
