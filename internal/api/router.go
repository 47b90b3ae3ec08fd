package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"docintake/internal/api/handler"
	"docintake/internal/common"
)

// NewRouter wires the HTTP surface. bucket is only reported by the
// health endpoint.
func NewRouter(documents *handler.DocumentHandler, bucket string) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"bucket": bucket,
		})
	})

	documents.RegisterRoutes(r)

	return r
}
