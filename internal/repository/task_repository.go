// internal/repository/task_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"

	"github.com/gurkanbulca/taskmanagement/internal/apperrors"
	"github.com/gurkanbulca/taskmanagement/internal/models"
)

const taskColumns = "id, name, description, scheduled_date, priority"

// Sort keys accepted by FindAll, mapped to columns.
var taskSortColumns = map[string]string{
	"id":            "id",
	"name":          "name",
	"scheduledDate": "scheduled_date",
	"priority":      "priority",
}

type TaskRepository struct {
	q       sqlx.ExtContext
	dialect string
}

// Save inserts a task with ID 0 and updates it otherwise. The stored tag
// set is replaced by task.Tags in both cases.
func (r *TaskRepository) Save(ctx context.Context, task *models.Task) error {
	task.ScheduledDate = task.ScheduledDate.UTC()

	if task.ID == 0 {
		query := r.q.Rebind(`INSERT INTO tasks (name, description, scheduled_date, priority)
			VALUES (?, ?, ?, ?) RETURNING id`)
		err := r.q.QueryRowxContext(ctx, query,
			task.Name, task.Description, task.ScheduledDate, string(task.Priority),
		).Scan(&task.ID)
		if err != nil {
			return apperrors.NewDatabaseError("insert task", err)
		}
	} else {
		query := r.q.Rebind(`UPDATE tasks
			SET name = ?, description = ?, scheduled_date = ?, priority = ?
			WHERE id = ?`)
		result, err := r.q.ExecContext(ctx, query,
			task.Name, task.Description, task.ScheduledDate, string(task.Priority), task.ID,
		)
		if err != nil {
			return apperrors.NewDatabaseError("update task", err)
		}
		if err := affectedOrNotFound(result, "task", task.ID); err != nil {
			return err
		}
	}

	if task.Tags == nil {
		task.Tags = []models.Tag{}
	}
	return r.replaceTags(ctx, task.ID, task.Tags)
}

func (r *TaskRepository) replaceTags(ctx context.Context, taskID int64, tags []models.Tag) error {
	if _, err := r.q.ExecContext(ctx, r.q.Rebind("DELETE FROM task_tags WHERE task_id = ?"), taskID); err != nil {
		return apperrors.NewDatabaseError("clear task tags", err)
	}

	insert := r.q.Rebind("INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)")
	for _, tag := range tags {
		if _, err := r.q.ExecContext(ctx, insert, taskID, tag.ID); err != nil {
			return apperrors.NewDatabaseError(fmt.Sprintf("link tag %d to task %d", tag.ID, taskID), err)
		}
	}
	return nil
}

// FindByID returns the task with its tags, or a not found error.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	query := r.q.Rebind("SELECT " + taskColumns + " FROM tasks WHERE id = ?")
	if err := sqlx.GetContext(ctx, r.q, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("task", id)
		}
		return nil, apperrors.NewDatabaseError("get task", err)
	}

	tasks := []models.Task{task}
	if err := r.loadTags(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

func (r *TaskRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := r.q.Rebind("SELECT EXISTS (SELECT 1 FROM tasks WHERE id = ?)")
	if err := sqlx.GetContext(ctx, r.q, &exists, query, id); err != nil {
		return false, apperrors.NewDatabaseError("check task exists", err)
	}
	return exists, nil
}

func (r *TaskRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, r.q.Rebind("DELETE FROM task_tags WHERE task_id = ?"), id); err != nil {
		return apperrors.NewDatabaseError("unlink task tags", err)
	}

	result, err := r.q.ExecContext(ctx, r.q.Rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return apperrors.NewDatabaseError("delete task", err)
	}
	return affectedOrNotFound(result, "task", id)
}

func (r *TaskRepository) Delete(ctx context.Context, task models.Task) error {
	return r.DeleteByID(ctx, task.ID)
}

// DeleteAll removes every given task in two statements.
func (r *TaskRepository) DeleteAll(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]int64, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}

	for _, stmt := range []string{
		"DELETE FROM task_tags WHERE task_id IN (?)",
		"DELETE FROM tasks WHERE id IN (?)",
	} {
		query, args, err := sqlx.In(stmt, ids)
		if err != nil {
			return apperrors.NewDatabaseError("build delete tasks", err)
		}
		if _, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...); err != nil {
			return apperrors.NewDatabaseError("delete tasks", err)
		}
	}
	return nil
}

// FindAll returns one page of tasks ordered by req.Sort, id breaking ties.
func (r *TaskRepository) FindAll(ctx context.Context, req models.PageRequest) (models.Page[models.Task], error) {
	column, ok := taskSortColumns[req.Sort]
	if !ok {
		return models.Page[models.Task]{}, apperrors.NewValidationError(apperrors.OriginEntity,
			fmt.Sprintf("unsupported sort property %q", req.Sort))
	}

	var total int64
	if err := sqlx.GetContext(ctx, r.q, &total, "SELECT COUNT(*) FROM tasks"); err != nil {
		return models.Page[models.Task]{}, apperrors.NewDatabaseError("count tasks", err)
	}

	selector := entsql.Dialect(r.dialect).
		Select("id", "name", "description", "scheduled_date", "priority").
		From(entsql.Table("tasks"))

	// Apply sorting
	switch {
	case column == "priority":
		direction := " ASC"
		if req.Descending {
			direction = " DESC"
		}
		selector.OrderExpr(entsql.Expr(priorityOrderExpr("") + direction))
	case req.Descending:
		selector.OrderBy(entsql.Desc(column))
	default:
		selector.OrderBy(entsql.Asc(column))
	}
	if column != "id" {
		selector.OrderBy(entsql.Asc("id"))
	}

	// Apply pagination
	selector.Limit(req.Size).Offset(req.Offset())

	query, args := selector.Query()
	var tasks []models.Task
	if err := sqlx.SelectContext(ctx, r.q, &tasks, query, args...); err != nil {
		return models.Page[models.Task]{}, apperrors.NewDatabaseError("list tasks", err)
	}

	if err := r.loadTags(ctx, tasks); err != nil {
		return models.Page[models.Task]{}, err
	}
	return models.NewPage(tasks, req, total), nil
}

// FindScheduledBetween returns tasks with start <= scheduled_date < end,
// highest priority weight first.
func (r *TaskRepository) FindScheduledBetween(ctx context.Context, start, end time.Time) ([]models.Task, error) {
	query := r.q.Rebind("SELECT " + taskColumns + ` FROM tasks
		WHERE scheduled_date >= ? AND scheduled_date < ?
		ORDER BY ` + priorityOrderExpr("") + " DESC, id ASC")

	var tasks []models.Task
	if err := sqlx.SelectContext(ctx, r.q, &tasks, query, start.UTC(), end.UTC()); err != nil {
		return nil, apperrors.NewDatabaseError("list tasks by period", err)
	}
	return tasks, r.loadTags(ctx, tasks)
}

// FindByTagID returns the tasks linked to tagID, highest priority weight first.
func (r *TaskRepository) FindByTagID(ctx context.Context, tagID int64) ([]models.Task, error) {
	query := r.q.Rebind(`SELECT t.id, t.name, t.description, t.scheduled_date, t.priority
		FROM tasks t
		JOIN task_tags tt ON tt.task_id = t.id
		WHERE tt.tag_id = ?
		ORDER BY ` + priorityOrderExpr("t.") + " DESC, t.id ASC")

	var tasks []models.Task
	if err := sqlx.SelectContext(ctx, r.q, &tasks, query, tagID); err != nil {
		return nil, apperrors.NewDatabaseError("list tasks by tag", err)
	}
	return tasks, r.loadTags(ctx, tasks)
}

type taskTagRow struct {
	TaskID int64  `db:"task_id"`
	ID     int64  `db:"id"`
	Name   string `db:"name"`
}

// loadTags fills the tag set of every task with a single query.
func (r *TaskRepository) loadTags(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]int64, len(tasks))
	byID := make(map[int64]int, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
		byID[tasks[i].ID] = i
		tasks[i].ScheduledDate = tasks[i].ScheduledDate.UTC()
		tasks[i].Tags = []models.Tag{}
	}

	query, args, err := sqlx.In(`SELECT tt.task_id, g.id, g.name
		FROM task_tags tt
		JOIN tags g ON g.id = tt.tag_id
		WHERE tt.task_id IN (?)
		ORDER BY g.id`, ids)
	if err != nil {
		return apperrors.NewDatabaseError("build tag lookup", err)
	}

	var rows []taskTagRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, r.q.Rebind(query), args...); err != nil {
		return apperrors.NewDatabaseError("load task tags", err)
	}

	for _, row := range rows {
		i := byID[row.TaskID]
		tasks[i].Tags = append(tasks[i].Tags, models.Tag{ID: row.ID, Name: row.Name})
	}
	return nil
}

// priorityOrderExpr maps the stored priority name to its weight so that
// ordering follows the enumeration rather than the alphabet.
func priorityOrderExpr(prefix string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(prefix)
	b.WriteString("priority")
	for _, p := range models.Priorities() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, p.Weight())
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}
