package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" is not allowed on "+r.URL.Path)
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Stateless: lay out or render a tree supplied in the request body.
		r.Post("/layout", s.handlePostLayout)
		r.Post("/render.{format}", s.handlePostRender)

		// Proxied: the caller's token is forwarded to the backend.
		r.Group(func(r chi.Router) {
			r.Use(requireBearer)
			r.Get("/tree", s.handleTree)
			r.Get("/tree/layout", s.handleTreeLayout)
			r.Get("/tree/render.{format}", s.handleTreeRender)
			r.Get("/placement-queue", s.handlePlacementQueue)
			r.Post("/placement", s.handlePlacement)

			if s.cfg.Snapshots != nil {
				r.Route("/snapshots", func(r chi.Router) {
					r.Use(s.identifyMember)
					r.Get("/", s.handleListSnapshots)
					r.Post("/", s.handleSaveSnapshot)
					r.Get("/diff", s.handleDiffSnapshots)
					r.Get("/{id}", s.handleGetSnapshot)
				})
			}
		})
	})
	return r
}
