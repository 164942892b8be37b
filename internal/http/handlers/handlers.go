package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"
	"strconv"

	domaingames "github.com/preston-bernstein/games-list-service/internal/domain/games"
	"github.com/preston-bernstein/games-list-service/internal/http/requestutil"
	"github.com/preston-bernstein/games-list-service/internal/logging"
)

const maxBodyBytes = 64 << 10

// GameService is the subset of the games service the handlers drive.
type GameService interface {
	Games(ctx context.Context) ([]domaingames.Game, error)
	GameByID(ctx context.Context, id int) (domaingames.Game, error)
	LatestGame(ctx context.Context) (domaingames.Game, error)
	Create(ctx context.Context, g domaingames.Game) ([]domaingames.Game, error)
	TouchLatest(ctx context.Context) (domaingames.Game, error)
	Update(ctx context.Context, id int, patch domaingames.Game) (domaingames.Game, error)
	DeleteLatest(ctx context.Context) ([]domaingames.Game, error)
	Delete(ctx context.Context, id int) error
}

// Handler wires HTTP routes to the games service.
type Handler struct {
	svc    GameService
	logger *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(svc GameService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready probes the list. An empty list is still ready.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	_, err := h.svc.LatestGame(r.Context())
	if err != nil && !errors.Is(err, domaingames.ErrNotFound) {
		logging.Warn(loggerFromContext(r, h.logger), "readiness probe failed", slog.Any(logging.FieldError, err))
		writeError(w, r, nethttp.StatusServiceUnavailable, "list unreachable", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
}

// List returns every game as JSON or as an HTML table.
func (h *Handler) List(w nethttp.ResponseWriter, r *nethttp.Request) {
	rows, err := h.svc.Games(r.Context())
	if err != nil {
		writeStoreError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	logging.Info(loggerFromContext(r, h.logger), "listed games", slog.Int(logging.FieldCount, len(rows)))
	h.respondList(w, r, nethttp.StatusOK, rows)
}

// Get returns the game at /games/{id}.
func (h *Handler) Get(w nethttp.ResponseWriter, r *nethttp.Request) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		writeError(w, r, nethttp.StatusBadRequest, "invalid game id", h.logger)
		return
	}
	game, err := h.svc.GameByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	h.respondGame(w, r, nethttp.StatusOK, game)
}

// Latest returns the game with the highest id.
func (h *Handler) Latest(w nethttp.ResponseWriter, r *nethttp.Request) {
	game, err := h.svc.LatestGame(r.Context())
	if err != nil {
		writeStoreError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	h.respondGame(w, r, nethttp.StatusOK, game)
}

// Create adds the posted game and returns the refreshed list.
func (h *Handler) Create(w nethttp.ResponseWriter, r *nethttp.Request) {
	var game domaingames.Game
	if !h.decodeBody(w, r, &game) {
		return
	}
	rows, err := h.svc.Create(r.Context(), game)
	if err != nil {
		writeStoreError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	logging.Info(loggerFromContext(r, h.logger), "game created", slog.Int(logging.FieldCount, len(rows)))
	h.respondList(w, r, nethttp.StatusCreated, rows)
}

// TouchLatest marks the latest game as played now.
func (h *Handler) TouchLatest(w nethttp.ResponseWriter, r *nethttp.Request) {
	game, err := h.svc.TouchLatest(r.Context())
	if err != nil {
		writeStoreError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	logging.Info(loggerFromContext(r, h.logger), "latest game touched", slog.Int(logging.FieldGameID, game.ID))
	writeJSON(w, nethttp.StatusOK, game, h.logger)
}

// Update merges the posted fields into /games/{id}. An If-Match header, when
// present, is forwarded as the etag instead of the freshly read one.
func (h *Handler) Update(w nethttp.ResponseWriter, r *nethttp.Request) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		writeError(w, r, nethttp.StatusBadRequest, "invalid game id", h.logger)
		return
	}
	var patch domaingames.Game
	if !h.decodeBody(w, r, &patch) {
		return
	}
	patch.ID = id
	patch.EntityType = ""
	patch.ETag = requestutil.IfMatch(r)

	game, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeStoreError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	logging.Info(loggerFromContext(r, h.logger), "game updated", slog.Int(logging.FieldGameID, id))
	writeJSON(w, nethttp.StatusOK, game, h.logger)
}

// DeleteLatest removes the latest game and returns the refreshed list.
func (h *Handler) DeleteLatest(w nethttp.ResponseWriter, r *nethttp.Request) {
	rows, err := h.svc.DeleteLatest(r.Context())
	if err != nil {
		writeStoreError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	logging.Info(loggerFromContext(r, h.logger), "latest game deleted", slog.Int(logging.FieldCount, len(rows)))
	h.respondList(w, r, nethttp.StatusOK, rows)
}

// Delete removes /games/{id}.
func (h *Handler) Delete(w nethttp.ResponseWriter, r *nethttp.Request) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		writeError(w, r, nethttp.StatusBadRequest, "invalid game id", h.logger)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	logging.Info(loggerFromContext(r, h.logger), "game deleted", slog.Int(logging.FieldGameID, id))
	w.WriteHeader(nethttp.StatusNoContent)
}

func (h *Handler) respondList(w nethttp.ResponseWriter, r *nethttp.Request, status int, rows []domaingames.Game) {
	if requestutil.WantsHTML(r) {
		writeTable(w, r, status, rows)
		return
	}
	writeJSON(w, status, domaingames.NewListResponse(rows), h.logger)
}

func (h *Handler) respondGame(w nethttp.ResponseWriter, r *nethttp.Request, status int, game domaingames.Game) {
	if requestutil.WantsHTML(r) {
		writeTable(w, r, status, []domaingames.Game{game})
		return
	}
	writeJSON(w, status, game, h.logger)
}

func (h *Handler) decodeBody(w nethttp.ResponseWriter, r *nethttp.Request, dest any) bool {
	dec := json.NewDecoder(nethttp.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body required"
		}
		writeError(w, r, nethttp.StatusBadRequest, msg, h.logger)
		return false
	}
	return true
}

func parseID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
