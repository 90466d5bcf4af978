// internal/service/test_helpers.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/taskmanagement/internal/database/dbtest"
	"github.com/gurkanbulca/taskmanagement/internal/models"
	"github.com/gurkanbulca/taskmanagement/internal/repository"
	"github.com/gurkanbulca/taskmanagement/internal/storage"
	"github.com/gurkanbulca/taskmanagement/internal/validation"
)

// TestHelpers provides common test utilities
type TestHelpers struct {
	t         *testing.T
	Store     *repository.Store
	Files     *storage.FileStore
	UploadDir string
	Tags      *TagService
	Tasks     *TaskService
}

// NewTestHelpers wires both services to a fresh database and upload directory
func NewTestHelpers(t *testing.T) *TestHelpers {
	store := repository.NewStore(dbtest.Open(t))
	dir := t.TempDir()
	files := storage.NewFileStore(dir)
	v := validation.New()

	return &TestHelpers{
		t:         t,
		Store:     store,
		Files:     files,
		UploadDir: dir,
		Tags:      NewTagService(store, files, v),
		Tasks:     NewTaskService(store, files, v),
	}
}

// Tomorrow returns a scheduled date one day ahead at the given hour
func Tomorrow(hour int) time.Time {
	y, m, d := time.Now().UTC().AddDate(0, 0, 1).Date()
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

// CreateTestTag creates a tag and fails the test on error
func (h *TestHelpers) CreateTestTag(name string) models.TagResponse {
	tag, err := h.Tags.CreateTag(context.Background(), models.TagCreateRequest{Name: name})
	require.NoError(h.t, err)
	return tag
}

// CreateTestTask creates a task and fails the test on error
func (h *TestHelpers) CreateTestTask(name string, at time.Time, p models.TaskPriority) models.TaskResponse {
	date := models.DateTime(at)
	task, err := h.Tasks.CreateTask(context.Background(), models.TaskCreateRequest{
		Name:          name,
		ScheduledDate: &date,
		Priority:      p,
	})
	require.NoError(h.t, err)
	return task
}

// AttachTag attaches tagID to taskID and fails the test on error
func (h *TestHelpers) AttachTag(taskID, tagID int64) models.TaskResponse {
	task, err := h.Tasks.AddTagToTask(context.Background(), taskID, tagID)
	require.NoError(h.t, err)
	return task
}

// TaskExists reports whether the task is still stored
func (h *TestHelpers) TaskExists(id int64) bool {
	var exists bool
	require.NoError(h.t, h.Store.WithReadOnlyTx(context.Background(), func(ctx context.Context, r repository.Repositories) error {
		var err error
		exists, err = r.Tasks.ExistsByID(ctx, id)
		return err
	}))
	return exists
}

// TagExists reports whether the tag is still stored
func (h *TestHelpers) TagExists(id int64) bool {
	var exists bool
	require.NoError(h.t, h.Store.WithReadOnlyTx(context.Background(), func(ctx context.Context, r repository.Repositories) error {
		var err error
		exists, err = r.Tags.ExistsByID(ctx, id)
		return err
	}))
	return exists
}
