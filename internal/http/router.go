package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/games-list-service/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux.
func NewRouter(handler *handlers.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /ready", handler.Ready)
	mux.HandleFunc("GET /games", handler.List)
	mux.HandleFunc("POST /games", handler.Create)
	mux.HandleFunc("GET /games/latest", handler.Latest)
	mux.HandleFunc("POST /games/latest/touch", handler.TouchLatest)
	mux.HandleFunc("DELETE /games/latest", handler.DeleteLatest)
	mux.HandleFunc("GET /games/{id}", handler.Get)
	mux.HandleFunc("PATCH /games/{id}", handler.Update)
	mux.HandleFunc("DELETE /games/{id}", handler.Delete)
	return mux
}
