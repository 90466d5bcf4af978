// internal/handler/router.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gurkanbulca/taskmanagement/internal/middleware"
)

// NewRouter mounts the tag and task API under basePath, plus the health
// and metrics endpoints at the root.
func NewRouter(basePath string, tags *TagHandler, tasks *TaskHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientInfo)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	if basePath == "" {
		mountAPI(r, tags, tasks)
	} else {
		r.Route(basePath, func(r chi.Router) { mountAPI(r, tags, tasks) })
	}
	return r
}

func mountAPI(api chi.Router, tags *TagHandler, tasks *TaskHandler) {
	api.Route("/tag", func(r chi.Router) {
		r.Get("/", tags.list)
		r.Get("/tag-for-tasks", tags.tagsForTasks)
		r.Post("/", tags.create)
		r.Put("/{id}", tags.update)
		r.Delete("/{id}", tags.delete)
	})

	api.Route("/task", func(r chi.Router) {
		r.Get("/", tasks.list)
		r.Post("/", tasks.upload)
		r.Get("/get-priority", tasks.priorities)
		r.Get("/get-period", tasks.period)
		r.Get("/tag/{tagId}", tasks.byTag)
		r.Get("/downloadFile/{id}", tasks.download)
		r.Post("/save", tasks.create)
		r.Get("/{id}", tasks.get)
		r.Put("/{id}", tasks.update)
		r.Delete("/{id}", tasks.delete)
		r.Post("/{id}/{tagId}", tasks.addTag)
		r.Delete("/{id}/{tagId}", tasks.removeTag)
	})
}
