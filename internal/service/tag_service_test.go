// internal/service/tag_service_test.go
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/taskmanagement/internal/apperrors"
	"github.com/gurkanbulca/taskmanagement/internal/models"
	"github.com/gurkanbulca/taskmanagement/internal/validation"
)

func TestTagService_CreateTag(t *testing.T) {
	h := NewTestHelpers(t)
	ctx := context.Background()

	created := h.CreateTestTag("#work")
	assert.NotZero(t, created.ID)
	assert.Equal(t, "#work", created.Name)
	assert.True(t, h.TagExists(created.ID))

	tests := []struct {
		name      string
		tagName   string
		checkErr  func(error) bool
		errOrigin apperrors.Origin
	}{
		{"missing prefix", "work", apperrors.IsValidation, apperrors.OriginTagName},
		{"duplicate", "#work", apperrors.IsDuplicate, apperrors.OriginTagName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Tags.CreateTag(ctx, models.TagCreateRequest{Name: tt.tagName})
			require.Error(t, err)
			assert.True(t, tt.checkErr(err), err.Error())

			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.errOrigin, appErr.Origin)
		})
	}

	t.Run("too short", func(t *testing.T) {
		_, err := h.Tags.CreateTag(ctx, models.TagCreateRequest{Name: "#"})
		assert.True(t, validation.IsValidationErrors(err))
	})
}

func TestTagService_UpdateTag(t *testing.T) {
	h := NewTestHelpers(t)
	ctx := context.Background()

	work := h.CreateTestTag("#work")
	h.CreateTestTag("#home")

	rename := func(name string) models.TagUpdateRequest {
		return models.TagUpdateRequest{Name: &name}
	}

	updated, err := h.Tags.UpdateTag(ctx, work.ID, rename("#office"))
	require.NoError(t, err)
	assert.Equal(t, models.TagResponse{ID: work.ID, Name: "#office"}, updated)

	// absent name leaves the tag untouched
	same, err := h.Tags.UpdateTag(ctx, work.ID, models.TagUpdateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "#office", same.Name)

	_, err = h.Tags.UpdateTag(ctx, work.ID, rename("office"))
	assert.True(t, apperrors.IsValidation(err))

	_, err = h.Tags.UpdateTag(ctx, work.ID, rename("#home"))
	assert.True(t, apperrors.IsDuplicate(err))

	_, err = h.Tags.UpdateTag(ctx, 999, rename("#other"))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTagService_DeleteTagAndTasks_SingleTagCascade(t *testing.T) {
	h := NewTestHelpers(t)
	ctx := context.Background()

	x := h.CreateTestTag("#x")
	a := h.CreateTestTask("Alpha", Tomorrow(9), models.PriorityUsual)
	h.AttachTag(a.ID, x.ID)
	require.NoError(t, h.Tasks.UploadFile(ctx, a.ID, "plan.txt", strings.NewReader("plan")))

	require.NoError(t, h.Tags.DeleteTagAndTasks(ctx, x.ID))

	assert.False(t, h.TagExists(x.ID))
	assert.False(t, h.TaskExists(a.ID))

	entries, err := os.ReadDir(h.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "attachments of cascaded tasks are removed")
}

func TestTagService_DeleteTagAndTasks_ConflictDeletesNothing(t *testing.T) {
	h := NewTestHelpers(t)
	ctx := context.Background()

	x := h.CreateTestTag("#x")
	y := h.CreateTestTag("#y")
	single := h.CreateTestTask("single", Tomorrow(8), models.PriorityUrgent)
	b := h.CreateTestTask("Beta", Tomorrow(9), models.PriorityUsual)
	h.AttachTag(single.ID, x.ID)
	h.AttachTag(b.ID, x.ID)
	h.AttachTag(b.ID, y.ID)
	require.NoError(t, h.Tasks.UploadFile(ctx, single.ID, "notes.txt", strings.NewReader("keep")))

	err := h.Tags.DeleteTagAndTasks(ctx, x.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), `"Beta"`)
	assert.Contains(t, err.Error(), "#x, #y")

	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.OriginTagName, appErr.Origin)

	assert.True(t, h.TagExists(x.ID))
	assert.True(t, h.TagExists(y.ID))
	assert.True(t, h.TaskExists(b.ID))
	assert.True(t, h.TaskExists(single.ID))

	_, err = os.Stat(filepath.Join(h.UploadDir, fmt.Sprintf("task_%d_notes.txt", single.ID)))
	assert.NoError(t, err, "attachments survive a refused delete")
}

func TestTagService_DeleteTagAndTasks_NotFound(t *testing.T) {
	h := NewTestHelpers(t)

	err := h.Tags.DeleteTagAndTasks(context.Background(), 404)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTagService_DeleteUnusedTag(t *testing.T) {
	h := NewTestHelpers(t)

	lonely := h.CreateTestTag("#lonely")
	require.NoError(t, h.Tags.DeleteTagAndTasks(context.Background(), lonely.ID))
	assert.False(t, h.TagExists(lonely.ID))
}

func TestTagService_GetTagsForTasks(t *testing.T) {
	h := NewTestHelpers(t)
	ctx := context.Background()

	used := h.CreateTestTag("#used")
	h.CreateTestTag("#unused")
	task := h.CreateTestTask("task", Tomorrow(10), models.PriorityImportant)
	h.AttachTag(task.ID, used.ID)
	h.AttachTag(task.ID, used.ID)

	tags, err := h.Tags.GetTagsForTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.TagResponse{used}, tags)

	page, err := h.Tags.GetAllTags(ctx, models.PageRequest{Size: 10, Sort: "id"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
}
