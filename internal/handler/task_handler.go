// internal/handler/task_handler.go
package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gurkanbulca/taskmanagement/internal/config"
	"github.com/gurkanbulca/taskmanagement/internal/models"
	"github.com/gurkanbulca/taskmanagement/internal/service"
	"github.com/gurkanbulca/taskmanagement/internal/validation"
)

const dateLayout = "2006-01-02"

type TaskHandler struct {
	tasks         *service.TaskService
	paging        config.PagingConfig
	maxUploadSize int64
}

func NewTaskHandler(tasks *service.TaskService, paging config.PagingConfig, maxUploadSize int64) *TaskHandler {
	return &TaskHandler{
		tasks:         tasks,
		paging:        paging,
		maxUploadSize: maxUploadSize,
	}
}

func (h *TaskHandler) list(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r, h.paging, "scheduledDate")
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.tasks.GetAllTasks(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *TaskHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) priorities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tasks.GetAllPriorities())
}

func (h *TaskHandler) byTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := parseID(r, "tagId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	tasks, err := h.tasks.GetAllTasksByTagID(r.Context(), tagID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) period(w http.ResponseWriter, r *http.Request) {
	errs := &validation.Errors{}
	parseDate := func(param string) time.Time {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			errs.Add(param, param+" is required")
			return time.Time{}
		}
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			errs.Add(param, fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", param))
		}
		return d
	}

	start, end := parseDate("start"), parseDate("end")
	if errs.HasErrors() {
		writeError(w, r, errs)
		return
	}

	tasks, err := h.tasks.GetAllTasksBetweenDateByPriorityDesc(r.Context(), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) create(w http.ResponseWriter, r *http.Request) {
	var req models.TaskCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.TaskUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) addTag(w http.ResponseWriter, r *http.Request) {
	taskID, tagID, err := parseTaskAndTag(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.AddTagToTask(r.Context(), taskID, tagID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) removeTag(w http.ResponseWriter, r *http.Request) {
	taskID, tagID, err := parseTaskAndTag(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.tasks.RemoveTagFromTask(r.Context(), taskID, tagID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTaskAndTag(r *http.Request) (int64, int64, error) {
	taskID, err := parseID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	tagID, err := parseID(r, "tagId")
	if err != nil {
		return 0, 0, err
	}
	return taskID, tagID, nil
}

// upload accepts multipart/form-data with an id field and a file part.
func (h *TaskHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, violations("file", fmt.Sprintf("file must not exceed %d bytes", h.maxUploadSize)))
			return
		}
		writeError(w, r, violations("file", "request must be multipart/form-data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, violations("id", "id must be a positive integer"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, violations("file", "file is required"))
		return
	}
	defer file.Close()

	if err := h.tasks.UploadFile(r.Context(), id, header.Filename, file); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *TaskHandler) download(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	att, err := h.tasks.DownloadFile(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.Name}))
	http.ServeFile(w, r, att.Path)
}
