// internal/service/task_service.go
package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/gurkanbulca/taskmanagement/internal/apperrors"
	"github.com/gurkanbulca/taskmanagement/internal/logger"
	"github.com/gurkanbulca/taskmanagement/internal/models"
	"github.com/gurkanbulca/taskmanagement/internal/repository"
	"github.com/gurkanbulca/taskmanagement/internal/storage"
	"github.com/gurkanbulca/taskmanagement/internal/validation"
)

var (
	prioritiesOnce sync.Once
	priorities     []models.TaskPriorityResponse
)

// Attachment is a stored task file ready to be served.
type Attachment struct {
	Path string
	Name string
}

type TaskService struct {
	store     *repository.Store
	files     *storage.FileStore
	validator *validation.Validator
}

func NewTaskService(store *repository.Store, files *storage.FileStore, validator *validation.Validator) *TaskService {
	return &TaskService{
		store:     store,
		files:     files,
		validator: validator,
	}
}

// CreateTask creates a new task
func (s *TaskService) CreateTask(ctx context.Context, req models.TaskCreateRequest) (resp models.TaskResponse, err error) {
	defer observe("create_task", time.Now(), &err)

	if err := s.validator.Struct(req); err != nil {
		return models.TaskResponse{}, err
	}

	task := models.NewTask(req)
	err = s.store.WithTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		return r.Tasks.Save(ctx, &task)
	})
	if err != nil {
		return models.TaskResponse{}, err
	}

	logger.Info(ctx, "task created", "task_id", task.ID, "priority", task.Priority)
	return models.ToTaskResponse(task), nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id int64) (models.TaskResponse, error) {
	var task *models.Task
	err := s.store.WithReadOnlyTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		var err error
		task, err = r.Tasks.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return models.TaskResponse{}, err
	}
	return models.ToTaskResponse(*task), nil
}

// UpdateTask applies a partial update; absent fields keep their value.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, req models.TaskUpdateRequest) (resp models.TaskResponse, err error) {
	defer observe("update_task", time.Now(), &err)

	if err := s.validator.Struct(req); err != nil {
		return models.TaskResponse{}, err
	}

	var task *models.Task
	err = s.store.WithTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		var err error
		task, err = r.Tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		models.ApplyUpdate(task, req)
		return r.Tasks.Save(ctx, task)
	})
	if err != nil {
		return models.TaskResponse{}, err
	}

	logger.Info(ctx, "task updated", "task_id", task.ID)
	return models.ToTaskResponse(*task), nil
}

// DeleteTask deletes a task and its attachment. Its tags are kept.
func (s *TaskService) DeleteTask(ctx context.Context, id int64) (err error) {
	defer observe("delete_task", time.Now(), &err)

	err = s.store.WithTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		return r.Tasks.DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}

	if err := s.files.DeleteFiles(ctx, id); err != nil {
		logger.Warn(ctx, "failed to remove attachment of deleted task", "task_id", id, "error", err)
	}

	logger.Info(ctx, "task deleted", "task_id", id)
	return nil
}

// AddTagToTask attaches a tag. Attaching a present tag changes nothing.
func (s *TaskService) AddTagToTask(ctx context.Context, taskID, tagID int64) (resp models.TaskResponse, err error) {
	defer observe("add_tag_to_task", time.Now(), &err)

	var task *models.Task
	err = s.store.WithTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		var tag *models.Tag
		var err error
		if task, tag, err = findTaskAndTag(ctx, r, taskID, tagID); err != nil {
			return err
		}
		if task.HasTag(tag.ID) {
			return nil
		}
		task.AddTag(*tag)
		return r.Tasks.Save(ctx, task)
	})
	if err != nil {
		return models.TaskResponse{}, err
	}

	logger.Info(ctx, "tag attached", "task_id", taskID, "tag_id", tagID)
	return models.ToTaskResponse(*task), nil
}

// RemoveTagFromTask detaches a tag; detaching an absent tag is a conflict.
func (s *TaskService) RemoveTagFromTask(ctx context.Context, taskID, tagID int64) (resp models.TaskResponse, err error) {
	defer observe("remove_tag_from_task", time.Now(), &err)

	var task *models.Task
	err = s.store.WithTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		var tag *models.Tag
		var err error
		if task, tag, err = findTaskAndTag(ctx, r, taskID, tagID); err != nil {
			return err
		}
		if !task.RemoveTag(tag.ID) {
			return apperrors.NewConflictError(apperrors.OriginEntity,
				"tag "+tag.Name+" is not attached to task "+task.Name)
		}
		return r.Tasks.Save(ctx, task)
	})
	if err != nil {
		return models.TaskResponse{}, err
	}

	logger.Info(ctx, "tag detached", "task_id", taskID, "tag_id", tagID)
	return models.ToTaskResponse(*task), nil
}

func findTaskAndTag(ctx context.Context, r repository.Repositories, taskID, tagID int64) (*models.Task, *models.Tag, error) {
	task, err := r.Tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	tag, err := r.Tags.FindByID(ctx, tagID)
	if err != nil {
		return nil, nil, err
	}
	return task, tag, nil
}

// GetAllPriorities lists the priority enumeration with its weights.
func (s *TaskService) GetAllPriorities() []models.TaskPriorityResponse {
	prioritiesOnce.Do(func() {
		for _, p := range models.Priorities() {
			priorities = append(priorities, models.TaskPriorityResponse{
				Priority: string(p),
				Level:    p.Weight(),
			})
		}
	})

	out := make([]models.TaskPriorityResponse, len(priorities))
	copy(out, priorities)
	return out
}

// GetAllTasksBetweenDateByPriorityDesc returns the tasks scheduled from the
// start of start's day up to, but excluding, midnight after end's day.
func (s *TaskService) GetAllTasksBetweenDateByPriorityDesc(ctx context.Context, start, end time.Time) ([]models.TaskResponse, error) {
	from := startOfDay(start)
	to := startOfDay(end).AddDate(0, 0, 1)

	var tasks []models.Task
	err := s.store.WithReadOnlyTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		var err error
		tasks, err = r.Tasks.FindScheduledBetween(ctx, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	return models.ToTaskResponses(tasks), nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GetAllTasksByTagID lists the tasks of a tag, highest priority first.
func (s *TaskService) GetAllTasksByTagID(ctx context.Context, tagID int64) ([]models.TaskResponse, error) {
	var tasks []models.Task
	err := s.store.WithReadOnlyTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		exists, err := r.Tags.ExistsByID(ctx, tagID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.NewNotFoundError("tag", tagID)
		}
		tasks, err = r.Tasks.FindByTagID(ctx, tagID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return models.ToTaskResponses(tasks), nil
}

// GetAllTasks returns one page of tasks.
func (s *TaskService) GetAllTasks(ctx context.Context, req models.PageRequest) (models.Page[models.TaskResponse], error) {
	var page models.Page[models.Task]
	err := s.store.WithReadOnlyTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		var err error
		page, err = r.Tasks.FindAll(ctx, req)
		return err
	})
	if err != nil {
		return models.Page[models.TaskResponse]{}, err
	}
	return models.MapPage(page, models.ToTaskResponse), nil
}

// UploadFile stores content as the attachment of an existing task.
func (s *TaskService) UploadFile(ctx context.Context, taskID int64, fileName string, content io.Reader) (err error) {
	defer observe("upload_file", time.Now(), &err)

	if err := s.requireTask(ctx, taskID); err != nil {
		return err
	}

	counted := &countingReader{r: content}
	if _, err := s.files.SaveFile(ctx, taskID, fileName, counted); err != nil {
		logger.Error(ctx, err, "failed to store attachment", "task_id", taskID)
		return err
	}
	uploadSize.Observe(float64(counted.n))
	return nil
}

// DownloadFile resolves the attachment of an existing task.
func (s *TaskService) DownloadFile(ctx context.Context, taskID int64) (*Attachment, error) {
	if err := s.requireTask(ctx, taskID); err != nil {
		return nil, err
	}

	path, err := s.files.LoadFile(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &Attachment{Path: path, Name: storage.OriginalName(taskID, path)}, nil
}

func (s *TaskService) requireTask(ctx context.Context, taskID int64) error {
	return s.store.WithReadOnlyTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		exists, err := r.Tasks.ExistsByID(ctx, taskID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.NewNotFoundError("task", taskID)
		}
		return nil
	})
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
