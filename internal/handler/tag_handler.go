// internal/handler/tag_handler.go
package handler

import (
	"net/http"

	"github.com/gurkanbulca/taskmanagement/internal/config"
	"github.com/gurkanbulca/taskmanagement/internal/models"
	"github.com/gurkanbulca/taskmanagement/internal/service"
)

type TagHandler struct {
	tags   *service.TagService
	paging config.PagingConfig
}

func NewTagHandler(tags *service.TagService, paging config.PagingConfig) *TagHandler {
	return &TagHandler{tags: tags, paging: paging}
}

func (h *TagHandler) tagsForTasks(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.GetTagsForTasks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *TagHandler) list(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r, h.paging, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.tags.GetAllTags(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *TagHandler) create(w http.ResponseWriter, r *http.Request) {
	var req models.TagCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	tag, err := h.tags.CreateTag(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.TagUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	tag, err := h.tags.UpdateTag(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *TagHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.tags.DeleteTagAndTasks(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
