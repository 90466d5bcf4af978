// internal/service/tag_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gurkanbulca/taskmanagement/internal/apperrors"
	"github.com/gurkanbulca/taskmanagement/internal/logger"
	"github.com/gurkanbulca/taskmanagement/internal/models"
	"github.com/gurkanbulca/taskmanagement/internal/repository"
	"github.com/gurkanbulca/taskmanagement/internal/storage"
	"github.com/gurkanbulca/taskmanagement/internal/validation"
)

type TagService struct {
	store     *repository.Store
	files     *storage.FileStore
	validator *validation.Validator
}

func NewTagService(store *repository.Store, files *storage.FileStore, validator *validation.Validator) *TagService {
	return &TagService{
		store:     store,
		files:     files,
		validator: validator,
	}
}

// CreateTag creates a new tag
func (s *TagService) CreateTag(ctx context.Context, req models.TagCreateRequest) (resp models.TagResponse, err error) {
	defer observe("create_tag", time.Now(), &err)

	if err := s.validator.Struct(req); err != nil {
		return models.TagResponse{}, err
	}
	if err := checkTagPrefix(req.Name); err != nil {
		return models.TagResponse{}, err
	}

	tag := models.Tag{Name: req.Name}
	err = s.store.WithTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		exists, err := r.Tags.ExistsByName(ctx, req.Name)
		if err != nil {
			return err
		}
		if exists {
			return duplicateTag(req.Name)
		}
		return r.Tags.Save(ctx, &tag)
	})
	if err != nil {
		return models.TagResponse{}, err
	}

	logger.Info(ctx, "tag created", "tag_id", tag.ID, "name", tag.Name)
	return models.ToTagResponse(tag), nil
}

// UpdateTag renames a tag. The new name obeys the same rules as on create.
func (s *TagService) UpdateTag(ctx context.Context, id int64, req models.TagUpdateRequest) (resp models.TagResponse, err error) {
	defer observe("update_tag", time.Now(), &err)

	if err := s.validator.Struct(req); err != nil {
		return models.TagResponse{}, err
	}

	var tag *models.Tag
	err = s.store.WithTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		var err error
		tag, err = r.Tags.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Name == nil || *req.Name == tag.Name {
			return nil
		}

		if err := checkTagPrefix(*req.Name); err != nil {
			return err
		}
		exists, err := r.Tags.ExistsByName(ctx, *req.Name)
		if err != nil {
			return err
		}
		if exists {
			return duplicateTag(*req.Name)
		}

		tag.Name = *req.Name
		return r.Tags.Save(ctx, tag)
	})
	if err != nil {
		return models.TagResponse{}, err
	}

	logger.Info(ctx, "tag updated", "tag_id", tag.ID, "name", tag.Name)
	return models.ToTagResponse(*tag), nil
}

// DeleteTagAndTasks deletes the tag together with every task tagged only
// with it. If any linked task carries another tag nothing is deleted.
// Attachments of the deleted tasks are removed once the transaction commits.
func (s *TagService) DeleteTagAndTasks(ctx context.Context, id int64) (err error) {
	defer observe("delete_tag", time.Now(), &err)

	var deleted []int64
	err = s.store.WithTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		tag, err := r.Tags.FindByID(ctx, id)
		if err != nil {
			return err
		}

		linked, err := r.Tasks.FindByTagID(ctx, tag.ID)
		if err != nil {
			return err
		}

		for _, task := range linked {
			if len(task.Tags) > 1 {
				return apperrors.NewConflictError(apperrors.OriginTagName, fmt.Sprintf(
					"tag %s cannot be deleted: task %q (id %d) also has tags [%s]",
					tag.Name, task.Name, task.ID, strings.Join(task.TagNames(), ", "),
				)).WithContext("task_id", task.ID)
			}
		}

		if err := r.Tasks.DeleteAll(ctx, linked); err != nil {
			return err
		}
		for _, task := range linked {
			deleted = append(deleted, task.ID)
		}
		return r.Tags.Delete(ctx, *tag)
	})
	if err != nil {
		return err
	}

	for _, taskID := range deleted {
		if err := s.files.DeleteFiles(ctx, taskID); err != nil {
			logger.Warn(ctx, "failed to remove attachment of deleted task", "task_id", taskID, "error", err)
		}
	}

	logger.Info(ctx, "tag deleted", "tag_id", id, "tasks_deleted", len(deleted))
	return nil
}

// GetTagsForTasks lists every tag attached to at least one task.
func (s *TagService) GetTagsForTasks(ctx context.Context) ([]models.TagResponse, error) {
	var tags []models.Tag
	err := s.store.WithReadOnlyTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		var err error
		tags, err = r.Tags.FindWithAtLeastOneTask(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return models.ToTagResponses(tags), nil
}

// GetAllTags returns one page of tags.
func (s *TagService) GetAllTags(ctx context.Context, req models.PageRequest) (models.Page[models.TagResponse], error) {
	var page models.Page[models.Tag]
	err := s.store.WithReadOnlyTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		var err error
		page, err = r.Tags.FindAll(ctx, req)
		return err
	})
	if err != nil {
		return models.Page[models.TagResponse]{}, err
	}
	return models.MapPage(page, models.ToTagResponse), nil
}

func checkTagPrefix(name string) error {
	if !models.HasTagPrefix(name) {
		return apperrors.NewValidationError(apperrors.OriginTagName,
			fmt.Sprintf("tag name %q must start with %s", name, models.TagPrefix))
	}
	return nil
}

func duplicateTag(name string) error {
	return apperrors.NewDuplicateError(apperrors.OriginTagName,
		fmt.Sprintf("tag %s already exists", name))
}
