// internal/repository/tag_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"

	"github.com/gurkanbulca/taskmanagement/internal/apperrors"
	"github.com/gurkanbulca/taskmanagement/internal/models"
)

var tagSortColumns = map[string]string{
	"id":   "id",
	"name": "name",
}

type TagRepository struct {
	q       sqlx.ExtContext
	dialect string
}

// Save inserts a tag with ID 0 and renames it otherwise. A name clash with
// another tag is reported as a duplicate.
func (r *TagRepository) Save(ctx context.Context, tag *models.Tag) error {
	if tag.ID == 0 {
		query := r.q.Rebind("INSERT INTO tags (name) VALUES (?) RETURNING id")
		if err := r.q.QueryRowxContext(ctx, query, tag.Name).Scan(&tag.ID); err != nil {
			return r.writeError("insert tag", tag.Name, err)
		}
		return nil
	}

	result, err := r.q.ExecContext(ctx, r.q.Rebind("UPDATE tags SET name = ? WHERE id = ?"), tag.Name, tag.ID)
	if err != nil {
		return r.writeError("update tag", tag.Name, err)
	}
	return affectedOrNotFound(result, "tag", tag.ID)
}

func (r *TagRepository) writeError(op, name string, err error) error {
	if isUniqueViolation(err) {
		return apperrors.NewDuplicateError(apperrors.OriginTagName,
			fmt.Sprintf("tag %s already exists", name))
	}
	return apperrors.NewDatabaseError(op, err)
}

func (r *TagRepository) FindByID(ctx context.Context, id int64) (*models.Tag, error) {
	var tag models.Tag
	if err := sqlx.GetContext(ctx, r.q, &tag, r.q.Rebind("SELECT id, name FROM tags WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("tag", id)
		}
		return nil, apperrors.NewDatabaseError("get tag", err)
	}
	return &tag, nil
}

// FindByName returns the tag called name, or a not found error.
func (r *TagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := sqlx.GetContext(ctx, r.q, &tag, r.q.Rebind("SELECT id, name FROM tags WHERE name = ?"), name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("tag", name)
		}
		return nil, apperrors.NewDatabaseError("get tag by name", err)
	}
	return &tag, nil
}

func (r *TagRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS (SELECT 1 FROM tags WHERE id = ?)", id)
}

func (r *TagRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS (SELECT 1 FROM tags WHERE name = ?)", name)
}

func (r *TagRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.q, &exists, r.q.Rebind(query), arg); err != nil {
		return false, apperrors.NewDatabaseError("check tag exists", err)
	}
	return exists, nil
}

// DeleteByID removes the tag and its links.
func (r *TagRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, r.q.Rebind("DELETE FROM task_tags WHERE tag_id = ?"), id); err != nil {
		return apperrors.NewDatabaseError("unlink tag", err)
	}

	result, err := r.q.ExecContext(ctx, r.q.Rebind("DELETE FROM tags WHERE id = ?"), id)
	if err != nil {
		return apperrors.NewDatabaseError("delete tag", err)
	}
	return affectedOrNotFound(result, "tag", id)
}

func (r *TagRepository) Delete(ctx context.Context, tag models.Tag) error {
	return r.DeleteByID(ctx, tag.ID)
}

func (r *TagRepository) FindAll(ctx context.Context, req models.PageRequest) (models.Page[models.Tag], error) {
	column, ok := tagSortColumns[req.Sort]
	if !ok {
		return models.Page[models.Tag]{}, apperrors.NewValidationError(apperrors.OriginEntity,
			fmt.Sprintf("unsupported sort property %q", req.Sort))
	}

	var total int64
	if err := sqlx.GetContext(ctx, r.q, &total, "SELECT COUNT(*) FROM tags"); err != nil {
		return models.Page[models.Tag]{}, apperrors.NewDatabaseError("count tags", err)
	}

	selector := entsql.Dialect(r.dialect).
		Select("id", "name").
		From(entsql.Table("tags"))
	if req.Descending {
		selector.OrderBy(entsql.Desc(column))
	} else {
		selector.OrderBy(entsql.Asc(column))
	}
	if column != "id" {
		selector.OrderBy(entsql.Asc("id"))
	}
	selector.Limit(req.Size).Offset(req.Offset())

	query, args := selector.Query()
	var tags []models.Tag
	if err := sqlx.SelectContext(ctx, r.q, &tags, query, args...); err != nil {
		return models.Page[models.Tag]{}, apperrors.NewDatabaseError("list tags", err)
	}
	return models.NewPage(tags, req, total), nil
}

// FindWithAtLeastOneTask returns, in id order, every tag linked to a task.
func (r *TagRepository) FindWithAtLeastOneTask(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := sqlx.SelectContext(ctx, r.q, &tags, `SELECT g.id, g.name
		FROM tags g
		WHERE EXISTS (SELECT 1 FROM task_tags tt WHERE tt.tag_id = g.id)
		ORDER BY g.id`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list tags in use", err)
	}
	return tags, nil
}
