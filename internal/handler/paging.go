// internal/handler/paging.go
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gurkanbulca/taskmanagement/internal/config"
	"github.com/gurkanbulca/taskmanagement/internal/models"
	"github.com/gurkanbulca/taskmanagement/internal/validation"
)

// parsePageRequest reads page, size and sort=field[,asc|desc] from the
// query string. Size is capped at the configured maximum.
func parsePageRequest(r *http.Request, cfg config.PagingConfig, defaultSort string) (models.PageRequest, error) {
	q := r.URL.Query()
	errs := &validation.Errors{}

	req := models.PageRequest{
		Page: 0,
		Size: cfg.DefaultPageSize,
		Sort: defaultSort,
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			errs.Add("page", "page must be a non-negative integer")
		}
		req.Page = page
	}

	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			errs.Add("size", "size must be a positive integer")
		}
		req.Size = size
	}
	if req.Size > cfg.MaxPageSize {
		req.Size = cfg.MaxPageSize
	}

	if v := q.Get("sort"); v != "" {
		field, dir, _ := strings.Cut(v, ",")
		req.Sort = strings.TrimSpace(field)
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			req.Descending = true
		default:
			errs.Add("sort", "sort direction must be asc or desc")
		}
	}

	if errs.HasErrors() {
		return models.PageRequest{}, errs
	}
	return req, nil
}

func parseID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, violations(param, param+" must be a positive integer")
	}
	return id, nil
}
