package lists

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/games-list-service/internal/domain/games"
	"github.com/preston-bernstein/games-list-service/internal/logging"
	"github.com/preston-bernstein/games-list-service/internal/metrics"
	"github.com/preston-bernstein/games-list-service/internal/sharepoint"
)

// Store is the set of list operations the service depends on.
type Store interface {
	ListGames(ctx context.Context) ([]games.Game, error)
	GetGame(ctx context.Context, id int) (games.Game, error)
	LatestGame(ctx context.Context) (games.Game, error)
	CreateGame(ctx context.Context, g games.Game) (games.Game, error)
	UpdateGame(ctx context.Context, g games.Game) error
	DeleteGame(ctx context.Context, g games.Game) error
}

// instrumentedStore times every call and reports it to the recorder.
type instrumentedStore struct {
	inner    Store
	logger   *slog.Logger
	recorder *metrics.Recorder
	backend  string
	now      func() time.Time
}

// NewInstrumentedStore wraps inner so each call is measured and failures are logged.
// Errors from inner are returned unchanged.
func NewInstrumentedStore(inner Store, logger *slog.Logger, recorder *metrics.Recorder, backend string) Store {
	return &instrumentedStore{
		inner:    inner,
		logger:   logger,
		recorder: recorder,
		backend:  backend,
		now:      time.Now,
	}
}

func (s *instrumentedStore) ListGames(ctx context.Context) ([]games.Game, error) {
	start := s.now()
	result, err := s.inner.ListGames(ctx)
	s.observe(ctx, sharepoint.OpList, start, err, slog.Int(logging.FieldCount, len(result)))
	return result, err
}

func (s *instrumentedStore) GetGame(ctx context.Context, id int) (games.Game, error) {
	start := s.now()
	game, err := s.inner.GetGame(ctx, id)
	s.observe(ctx, sharepoint.OpGet, start, err, slog.Int(logging.FieldGameID, id))
	return game, err
}

func (s *instrumentedStore) LatestGame(ctx context.Context) (games.Game, error) {
	start := s.now()
	game, err := s.inner.LatestGame(ctx)
	s.observe(ctx, sharepoint.OpLatest, start, err)
	return game, err
}

func (s *instrumentedStore) CreateGame(ctx context.Context, g games.Game) (games.Game, error) {
	start := s.now()
	created, err := s.inner.CreateGame(ctx, g)
	s.observe(ctx, sharepoint.OpCreate, start, err)
	return created, err
}

func (s *instrumentedStore) UpdateGame(ctx context.Context, g games.Game) error {
	start := s.now()
	err := s.inner.UpdateGame(ctx, g)
	s.observe(ctx, sharepoint.OpUpdate, start, err, slog.Int(logging.FieldGameID, g.ID))
	return err
}

func (s *instrumentedStore) DeleteGame(ctx context.Context, g games.Game) error {
	start := s.now()
	err := s.inner.DeleteGame(ctx, g)
	s.observe(ctx, sharepoint.OpDelete, start, err, slog.Int(logging.FieldGameID, g.ID))
	return err
}

func (s *instrumentedStore) observe(ctx context.Context, op string, start time.Time, err error, attrs ...any) {
	elapsed := s.now().Sub(start)
	if s.recorder != nil {
		s.recorder.RecordStoreCall(s.backend, op, elapsed, err)
		if throttle, ok := sharepoint.AsThrottleError(err); ok {
			s.recorder.RecordThrottle(s.backend, op, throttle.RetryAfter)
		}
	}
	attrs = append(attrs,
		slog.String(logging.FieldOperation, op),
		slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)
	if err == nil {
		logWithBackend(ctx, s.logger, slog.LevelDebug, s.backend, "list call complete", attrs...)
		return
	}
	attrs = append(attrs, slog.Any(logging.FieldError, err))
	logWithBackend(ctx, s.logger, slog.LevelWarn, s.backend, "list call failed", attrs...)
}

// logWithBackend emits a log entry if a logger is available and always includes the backend name.
func logWithBackend(ctx context.Context, fallback *slog.Logger, level slog.Level, backend string, msg string, args ...any) {
	logger := logging.FromContext(ctx, fallback)
	if logger == nil {
		return
	}
	args = append(args, slog.String(logging.FieldBackend, backend))
	logger.Log(ctx, level, msg, args...)
}
