package browse

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"StreamBox/internal/catalog"
	"StreamBox/pkg/kit"
)

const (
	upstreamMessage = "Something went wrong loading StreamBox data."
	notFoundMessage = "Video not found"
)

type Server struct {
	Browser *Browser
	Log     *zap.Logger
}

type homeResp struct {
	Rows  []CategoryRow `json:"rows"`
	Empty bool          `json:"empty"`
}

type searchResp struct {
	Query   string          `json:"query"`
	Results []catalog.Video `json:"results"`
	Count   int             `json:"count"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/home", s.home)
	r.Get("/search", s.search)
	r.Get("/videos/{id}", s.detail)

	return r
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Browser.Home(r.Context())
	if err != nil {
		s.writeUpstreamError(w, r, "home", err)
		return
	}

	empty := true
	for _, row := range rows {
		if len(row.Videos) > 0 {
			empty = false
			break
		}
	}
	kit.WriteJSON(w, http.StatusOK, homeResp{Rows: rows, Empty: empty})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	results, err := s.Browser.Search(r.Context(), q)
	if err != nil {
		s.writeUpstreamError(w, r, "search", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, searchResp{Query: q, Results: results, Count: len(results)})
}

func (s *Server) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := kit.URLParam(r, "id")
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, notFoundMessage, nil)
		return
	}

	d, err := s.Browser.Detail(r.Context(), id)
	if errors.Is(err, ErrVideoNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, notFoundMessage, map[string]any{"id": id})
		return
	}
	if err != nil {
		s.writeUpstreamError(w, r, "detail", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, d)
}

// writeUpstreamError hides upstream details behind a generic message.
func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, view string, err error) {
	if s.Log != nil {
		s.Log.Error("catalog call failed", zap.String("view", view), zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusBadGateway, upstreamMessage, nil)
}
