package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/taskmanagement/internal/apperrors"
	"github.com/gurkanbulca/taskmanagement/internal/database/dbtest"
	"github.com/gurkanbulca/taskmanagement/internal/models"
)

var baseDate = time.Date(2030, 5, 17, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(dbtest.Open(t))
}

func saveTag(t *testing.T, s *Store, name string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name}
	require.NoError(t, s.WithTx(context.Background(), func(ctx context.Context, r Repositories) error {
		return r.Tags.Save(ctx, &tag)
	}))
	return tag
}

func saveTask(t *testing.T, s *Store, name string, at time.Time, p models.TaskPriority, tags ...models.Tag) models.Task {
	t.Helper()
	task := models.Task{Name: name, ScheduledDate: at, Priority: p, Tags: tags}
	require.NoError(t, s.WithTx(context.Background(), func(ctx context.Context, r Repositories) error {
		return r.Tasks.Save(ctx, &task)
	}))
	return task
}

func taskNames(tasks []models.Task) []string {
	names := make([]string, len(tasks))
	for i, task := range tasks {
		names[i] = task.Name
	}
	return names
}

func TestTaskRepository_SaveAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	work := saveTag(t, s, "#work")
	home := saveTag(t, s, "#home")
	desc := "quarterly numbers"
	task := models.Task{
		Name:          "Report",
		Description:   &desc,
		ScheduledDate: baseDate.In(time.FixedZone("CET", 3600)),
		Priority:      models.PriorityImportant,
		Tags:          []models.Tag{home, work},
	}
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		return r.Tasks.Save(ctx, &task)
	}))
	require.NotZero(t, task.ID)

	var found *models.Task
	require.NoError(t, s.WithReadOnlyTx(ctx, func(ctx context.Context, r Repositories) error {
		var err error
		found, err = r.Tasks.FindByID(ctx, task.ID)
		return err
	}))

	assert.Equal(t, "Report", found.Name)
	require.NotNil(t, found.Description)
	assert.Equal(t, desc, *found.Description)
	assert.True(t, baseDate.Equal(found.ScheduledDate))
	assert.Equal(t, time.UTC, found.ScheduledDate.Location())
	assert.Equal(t, models.PriorityImportant, found.Priority)
	assert.Equal(t, []models.Tag{work, home}, found.Tags)

	// update replaces the tag set
	found.Name = "Report v2"
	found.Tags = []models.Tag{home}
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		return r.Tasks.Save(ctx, found)
	}))
	require.NoError(t, s.WithReadOnlyTx(ctx, func(ctx context.Context, r Repositories) error {
		var err error
		found, err = r.Tasks.FindByID(ctx, task.ID)
		return err
	}))
	assert.Equal(t, "Report v2", found.Name)
	assert.Equal(t, []models.Tag{home}, found.Tags)
}

func TestTaskRepository_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.WithTx(context.Background(), func(ctx context.Context, r Repositories) error {
		_, err := r.Tasks.FindByID(ctx, 42)
		return err
	})
	assert.True(t, apperrors.IsNotFound(err))

	err = s.WithTx(context.Background(), func(ctx context.Context, r Repositories) error {
		return r.Tasks.DeleteByID(ctx, 42)
	})
	assert.True(t, apperrors.IsNotFound(err))

	err = s.WithTx(context.Background(), func(ctx context.Context, r Repositories) error {
		return r.Tasks.Save(ctx, &models.Task{ID: 42, Name: "ghost", ScheduledDate: baseDate, Priority: models.PriorityUsual})
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTaskRepository_FindScheduledBetween(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saveTask(t, s, "usual", baseDate, models.PriorityUsual)
	saveTask(t, s, "urgent", baseDate.Add(time.Hour), models.PriorityUrgent)
	saveTask(t, s, "important", baseDate.Add(2*time.Hour), models.PriorityImportant)
	saveTask(t, s, "next day", baseDate.Add(24*time.Hour), models.PriorityUrgent)

	start := time.Date(2030, 5, 17, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	saveTask(t, s, "midnight", end, models.PriorityUrgent)

	var tasks []models.Task
	require.NoError(t, s.WithReadOnlyTx(ctx, func(ctx context.Context, r Repositories) error {
		var err error
		tasks, err = r.Tasks.FindScheduledBetween(ctx, start, end)
		return err
	}))
	assert.Equal(t, []string{"urgent", "important", "usual"}, taskNames(tasks))

	require.NoError(t, s.WithReadOnlyTx(ctx, func(ctx context.Context, r Repositories) error {
		var err error
		tasks, err = r.Tasks.FindScheduledBetween(ctx, end, start)
		return err
	}))
	assert.Empty(t, tasks)
}

func TestTaskRepository_FindAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saveTask(t, s, "c", baseDate.Add(3*time.Hour), models.PriorityUsual)
	saveTask(t, s, "a", baseDate.Add(1*time.Hour), models.PriorityUrgent)
	saveTask(t, s, "b", baseDate.Add(2*time.Hour), models.PriorityImportant)

	tests := []struct {
		name  string
		req   models.PageRequest
		want  []string
		total int64
		pages int
	}{
		{"by date", models.PageRequest{Page: 0, Size: 2, Sort: "scheduledDate"}, []string{"a", "b"}, 3, 2},
		{"second page", models.PageRequest{Page: 1, Size: 2, Sort: "scheduledDate"}, []string{"c"}, 3, 2},
		{"name desc", models.PageRequest{Page: 0, Size: 10, Sort: "name", Descending: true}, []string{"c", "b", "a"}, 3, 1},
		{"priority desc", models.PageRequest{Page: 0, Size: 10, Sort: "priority", Descending: true}, []string{"a", "b", "c"}, 3, 1},
		{"past the end", models.PageRequest{Page: 5, Size: 10, Sort: "id"}, []string{}, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page models.Page[models.Task]
			require.NoError(t, s.WithReadOnlyTx(ctx, func(ctx context.Context, r Repositories) error {
				var err error
				page, err = r.Tasks.FindAll(ctx, tt.req)
				return err
			}))
			assert.Equal(t, tt.want, taskNames(page.Content))
			assert.Equal(t, tt.total, page.TotalElements)
			assert.Equal(t, tt.pages, page.TotalPages)
		})
	}

	err := s.WithReadOnlyTx(ctx, func(ctx context.Context, r Repositories) error {
		_, err := r.Tasks.FindAll(ctx, models.PageRequest{Size: 10, Sort: "description"})
		return err
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestTaskRepository_FindByTagIDAndDeleteAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := saveTag(t, s, "#shared")
	other := saveTag(t, s, "#other")
	t1 := saveTask(t, s, "one", baseDate, models.PriorityUsual, tag)
	t2 := saveTask(t, s, "two", baseDate, models.PriorityUrgent, tag)
	saveTask(t, s, "three", baseDate, models.PriorityUrgent, other)

	var tasks []models.Task
	require.NoError(t, s.WithReadOnlyTx(ctx, func(ctx context.Context, r Repositories) error {
		var err error
		tasks, err = r.Tasks.FindByTagID(ctx, tag.ID)
		return err
	}))
	assert.Equal(t, []string{"two", "one"}, taskNames(tasks))

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		return r.Tasks.DeleteAll(ctx, []models.Task{t1, t2})
	}))

	require.NoError(t, s.WithReadOnlyTx(ctx, func(ctx context.Context, r Repositories) error {
		for _, id := range []int64{t1.ID, t2.ID} {
			exists, err := r.Tasks.ExistsByID(ctx, id)
			require.NoError(t, err)
			assert.False(t, exists)
		}
		inUse, err := r.Tags.FindWithAtLeastOneTask(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.Tag{other}, inUse)
		return nil
	}))
}

func TestTagRepository_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	work := saveTag(t, s, "#work")
	saveTag(t, s, "#home")

	err := s.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		return r.Tags.Save(ctx, &models.Tag{Name: "#work"})
	})
	assert.True(t, apperrors.IsDuplicate(err))

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		work.Name = "#office"
		return r.Tags.Save(ctx, &work)
	}))

	require.NoError(t, s.WithReadOnlyTx(ctx, func(ctx context.Context, r Repositories) error {
		exists, err := r.Tags.ExistsByName(ctx, "#office")
		require.NoError(t, err)
		assert.True(t, exists)

		found, err := r.Tags.FindByName(ctx, "#office")
		require.NoError(t, err)
		assert.Equal(t, work.ID, found.ID)

		page, err := r.Tags.FindAll(ctx, models.PageRequest{Size: 10, Sort: "name"})
		require.NoError(t, err)
		assert.Equal(t, []models.Tag{{ID: 2, Name: "#home"}, {ID: work.ID, Name: "#office"}}, page.Content)
		return nil
	}))

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		return r.Tags.DeleteByID(ctx, work.ID)
	}))
	err = s.WithReadOnlyTx(ctx, func(ctx context.Context, r Repositories) error {
		_, err := r.Tags.FindByID(ctx, work.ID)
		return err
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestStore_WithTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		if err := r.Tags.Save(ctx, &models.Tag{Name: "#temp"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, s.WithReadOnlyTx(ctx, func(ctx context.Context, r Repositories) error {
		exists, err := r.Tags.ExistsByName(ctx, "#temp")
		require.NoError(t, err)
		assert.False(t, exists)
		return nil
	}))
}
