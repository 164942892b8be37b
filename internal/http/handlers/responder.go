package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/preston-bernstein/games-list-service/internal/domain/games"
	"github.com/preston-bernstein/games-list-service/internal/http/middleware"
	"github.com/preston-bernstein/games-list-service/internal/http/requestutil"
	"github.com/preston-bernstein/games-list-service/internal/logging"
	"github.com/preston-bernstein/games-list-service/internal/sharepoint"
)

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "failed to encode response", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get(requestutil.HeaderRequestID)
	}
	body := map[string]string{"error": message}
	if reqID != "" {
		body["requestId"] = reqID
	}
	writeJSON(w, status, body, logger)
}

// writeStoreError maps a list failure onto an HTTP status.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if throttle, ok := sharepoint.AsThrottleError(err); ok {
		if throttle.RetryAfter > 0 {
			secs := int(math.Ceil(throttle.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
		writeError(w, r, http.StatusServiceUnavailable, "list is throttling requests", logger)
		return
	}

	switch {
	case errors.Is(err, games.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "game not found", logger)
	case errors.Is(err, games.ErrPreconditionFailed):
		writeError(w, r, http.StatusPreconditionFailed, "game was changed by someone else; reload and retry", logger)
	case errors.Is(err, sharepoint.ErrMissingETag):
		writeError(w, r, http.StatusPreconditionRequired, "etag required", logger)
	case isClientRejection(err):
		logging.Warn(logger, "list rejected request", "error", err.Error())
		writeError(w, r, http.StatusBadRequest, "list rejected the request", logger)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "list request timed out", logger)
	default:
		logging.Error(logger, "list request failed", err)
		writeError(w, r, http.StatusBadGateway, "list unavailable", logger)
	}
}

// isClientRejection reports a 4xx from the list that has no dedicated mapping.
func isClientRejection(err error) bool {
	status, ok := sharepoint.AsStatusError(err)
	return ok && status.StatusCode >= 400 && status.StatusCode < 500
}

func writeTable(w http.ResponseWriter, r *http.Request, status int, rows []games.Game) {
	templ.Handler(GamesTable(rows), templ.WithStatus(status)).ServeHTTP(w, r)
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
