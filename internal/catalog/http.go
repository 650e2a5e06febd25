package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"StreamBox/pkg/kit"
)

const (
	livenessText    = "StreamBox API is running"
	notFoundMessage = "Video not found"
)

type Server struct {
	Catalog *Catalog
	Log     *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { kit.WriteText(w, http.StatusOK, livenessText) })
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.Catalog == nil {
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/categories", s.listCategories)
	r.Get("/videos", s.listVideos)
	r.Get("/videos/{id}", s.getVideo)

	return r
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.ListCategories())
}

func (s *Server) listVideos(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	kit.WriteJSON(w, http.StatusOK, s.Catalog.ListVideos(category))
}

func (s *Server) getVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := kit.URLParam(r, "id")
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, notFoundMessage, nil)
		return
	}

	v, err := s.Catalog.GetVideo(id)
	if errors.Is(err, ErrNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, notFoundMessage, map[string]any{"id": id})
		return
	}
	if err != nil {
		if s.Log != nil {
			s.Log.Error("get video failed", zap.Error(err), zap.String("id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, v)
}
