package planner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/repository"
	"github.com/iyunix/go-planner/internal/repository/plan"
	"github.com/iyunix/go-planner/internal/repository/task"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type memoryPhotos struct {
	files map[string][]byte
	seq   int
}

func newMemoryPhotos() *memoryPhotos {
	return &memoryPhotos{files: map[string][]byte{}}
}

func (m *memoryPhotos) Save(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.seq++
	p := fmt.Sprintf("task_photos/%d-%s", m.seq, name)
	m.files[p] = data
	return p, nil
}

func (m *memoryPhotos) Delete(p string) error {
	delete(m.files, p)
	return nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type plannerFixture struct {
	db     *gorm.DB
	photos *memoryPhotos
	plans  *PlanService
	tasks  *TaskService
	now    time.Time
}

func newPlannerFixture(t *testing.T) *plannerFixture {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &plannerFixture{db: db, photos: newMemoryPhotos(), now: day("2025-05-15")}
	clock := func() time.Time { return f.now }
	planRepo := plan.NewPlanRepository(db)
	f.plans = NewPlanService(nil, planRepo, f.photos, nopLogger{}).WithClock(clock)
	f.tasks = NewTaskService(nil, planRepo, task.NewTaskRepository(db), f.photos, nopLogger{}).WithClock(clock)
	return f
}

func (f *plannerFixture) user(t *testing.T, name string) uint {
	t.Helper()
	u := &domain.User{Username: name, Password: "hashed"}
	require.NoError(t, f.db.Create(u).Error)
	return u.ID
}

func (f *plannerFixture) plan(t *testing.T, userID uint) *domain.Plan {
	t.Helper()
	p, err := f.plans.Create(context.Background(), userID, PlanInput{Title: "Trip", StartDate: "2025-05-01"})
	require.NoError(t, err)
	return p
}

func TestPlanService_CreateValidates(t *testing.T) {
	f := newPlannerFixture(t)
	userID := f.user(t, "alice")
	ctx := context.Background()

	_, err := f.plans.Create(ctx, userID, PlanInput{
		Title:     "",
		Color:     "red",
		StartDate: "2025-05-10",
		EndDate:   "2025-05-01",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "color")
	assert.Contains(t, verr.Fields, "end_date")
	assert.NotContains(t, verr.Fields, "start_date")

	_, err = f.plans.Create(ctx, userID, PlanInput{Title: string(bytes.Repeat([]byte("x"), 201)), StartDate: "2025-05-10"})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "title")

	_, err = f.plans.Create(ctx, userID, PlanInput{Title: "ok"})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "start_date")
}

func TestPlanService_CreateDefaultsColor(t *testing.T) {
	f := newPlannerFixture(t)
	userID := f.user(t, "alice")

	p, err := f.plans.Create(context.Background(), userID, PlanInput{
		Title: "  Study  ", StartDate: "2025-05-01", EndDate: "2025-05-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Study", p.Title)
	assert.Equal(t, domain.DefaultPlanColor, p.Color)
	require.NotNil(t, p.EndDate)
}

func TestPlanService_OwnershipIsEnforced(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	owner := f.user(t, "alice")
	other := f.user(t, "bob")
	p := f.plan(t, owner)

	_, err := f.plans.Get(ctx, other, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = f.plans.Update(ctx, other, p.ID, PlanInput{Title: "mine now", StartDate: "2025-05-01"})
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(f.plans.Delete(ctx, other, p.ID), ErrNotFound))

	_, err = f.tasks.Create(ctx, other, p.ID, TaskInput{Title: "x", TaskDate: "2025-05-02"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPlanService_ListWithStats(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")

	empty := f.plan(t, userID)
	full := f.plan(t, userID)
	_, err := f.tasks.Create(ctx, userID, full.ID, TaskInput{Title: "a", TaskDate: "2025-05-02", Status: "completed"})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, userID, full.ID, TaskInput{Title: "b", TaskDate: "2025-05-03", Status: "completed"})
	require.NoError(t, err)

	list, err := f.plans.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, full.ID, list[0].Plan.ID, "newest first")
	assert.Equal(t, domain.TaskStats{Total: 2, Completed: 2}, list[0].Stats)
	assert.True(t, list[0].IsComplete)
	assert.Equal(t, empty.ID, list[1].Plan.ID)
	assert.False(t, list[1].IsComplete, "a plan without tasks is not complete")
}

func TestPlanService_DeleteCascadesAndRemovesPhotos(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")
	p := f.plan(t, userID)

	_, err := f.tasks.Create(ctx, userID, p.ID, TaskInput{
		Title:    "with photo",
		TaskDate: "2025-05-02",
		Photo:    &PhotoUpload{Filename: "p.png", Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)},
	})
	require.NoError(t, err)
	require.Len(t, f.photos.files, 1)

	require.NoError(t, f.plans.Delete(ctx, userID, p.ID))
	assert.Empty(t, f.photos.files)

	var count int64
	require.NoError(t, f.db.Model(&domain.Task{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlanService_CalendarRejectsParamsBeforeLookup(t *testing.T) {
	f := newPlannerFixture(t)

	_, err := f.plans.Calendar(context.Background(), 1, 9999, "2025", "13")
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	_, err = f.plans.Calendar(context.Background(), 1, 9999, "2025", "5")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPlanService_CalendarUsesTasks(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")
	p := f.plan(t, userID)
	_, err := f.tasks.Create(ctx, userID, p.ID, TaskInput{Title: "a", TaskDate: "2025-07-04"})
	require.NoError(t, err)

	view, err := f.plans.Calendar(ctx, userID, p.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, 7, view.Month)
	assert.Len(t, view.TasksByDate["2025-07-04"], 1)
}

func TestTaskService_ValidatesInput(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")
	p := f.plan(t, userID)

	_, err := f.tasks.Create(ctx, userID, p.ID, TaskInput{
		Title:    "",
		TaskDate: "tomorrow",
		Status:   "done",
		Photo:    &PhotoUpload{Filename: "notes.txt", Size: 5, Content: bytes.NewReader([]byte("hello"))},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "task_date")
	assert.Contains(t, verr.Fields, "status")
	assert.Contains(t, verr.Fields, "photo")

	_, err = f.tasks.Create(ctx, userID, p.ID, TaskInput{
		Title:    "big",
		TaskDate: "2025-05-02",
		Photo:    &PhotoUpload{Filename: "big.png", Size: 6 << 20, Content: bytes.NewReader(pngHeader)},
	})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields["photo"], "5MB")
	assert.Empty(t, f.photos.files)
}

func TestTaskService_ToggleTwiceRestoresState(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")
	p := f.plan(t, userID)
	created, err := f.tasks.Create(ctx, userID, p.ID, TaskInput{Title: "past", TaskDate: "2025-05-01"})
	require.NoError(t, err)
	assert.True(t, created.IsOverdue(f.now))

	first, err := f.tasks.ToggleStatus(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, first.Status)
	assert.False(t, first.IsOverdue)

	second, err := f.tasks.ToggleStatus(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, second.Status)
	assert.True(t, second.IsOverdue)

	reloaded, err := f.tasks.Get(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, reloaded.Status)
}

func TestTaskService_UpdateReplacesPhoto(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")
	p := f.plan(t, userID)

	created, err := f.tasks.Create(ctx, userID, p.ID, TaskInput{
		Title: "a", TaskDate: "2025-05-02",
		Photo: &PhotoUpload{Filename: "one.png", Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)},
	})
	require.NoError(t, err)
	oldPath := created.PhotoPath

	updated, err := f.tasks.Update(ctx, userID, created.ID, TaskInput{
		Title: "a2", TaskDate: "2025-05-03", Status: "completed",
		Photo: &PhotoUpload{Filename: "two.png", Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)},
	})
	require.NoError(t, err)
	assert.NotEqual(t, oldPath, updated.PhotoPath)
	assert.NotContains(t, f.photos.files, oldPath)
	assert.Contains(t, f.photos.files, updated.PhotoPath)

	planID, err := f.tasks.Delete(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, planID)
	assert.Empty(t, f.photos.files)

	_, err = f.tasks.Get(ctx, userID, created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTaskService_ForeignTaskNotFound(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	owner := f.user(t, "alice")
	other := f.user(t, "bob")
	p := f.plan(t, owner)
	created, err := f.tasks.Create(ctx, owner, p.ID, TaskInput{Title: "a", TaskDate: "2025-05-02"})
	require.NoError(t, err)

	_, err = f.tasks.ToggleStatus(ctx, other, created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = f.tasks.Delete(ctx, other, created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
