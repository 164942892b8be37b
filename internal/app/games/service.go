package games

import (
	"context"
	"time"

	domaingames "github.com/preston-bernstein/games-list-service/internal/domain/games"
	"github.com/preston-bernstein/games-list-service/internal/timeutil"
)

// Store is the list access contract the service drives.
// GetGame and LatestGame must return rows carrying their current etag.
type Store interface {
	ListGames(ctx context.Context) ([]domaingames.Game, error)
	GetGame(ctx context.Context, id int) (domaingames.Game, error)
	LatestGame(ctx context.Context) (domaingames.Game, error)
	CreateGame(ctx context.Context, g domaingames.Game) (domaingames.Game, error)
	UpdateGame(ctx context.Context, g domaingames.Game) error
	DeleteGame(ctx context.Context, g domaingames.Game) error
}

// Service coordinates game operations using a Store. It keeps no state
// between calls; every operation reads through to the store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a Service with the provided Store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Games returns every game in the list.
func (s *Service) Games(ctx context.Context) ([]domaingames.Game, error) {
	return s.store.ListGames(ctx)
}

// GameByID returns a single game.
func (s *Service) GameByID(ctx context.Context, id int) (domaingames.Game, error) {
	return s.store.GetGame(ctx, id)
}

// LatestGame returns the most recently created game.
func (s *Service) LatestGame(ctx context.Context) (domaingames.Game, error) {
	return s.store.LatestGame(ctx)
}

// Create adds g to the list and returns the refreshed list.
func (s *Service) Create(ctx context.Context, g domaingames.Game) ([]domaingames.Game, error) {
	if _, err := s.store.CreateGame(ctx, g); err != nil {
		return nil, err
	}
	return s.store.ListGames(ctx)
}

// TouchLatest stamps the latest game as played now and returns the updated row.
func (s *Service) TouchLatest(ctx context.Context) (domaingames.Game, error) {
	latest, err := s.store.LatestGame(ctx)
	if err != nil {
		return domaingames.Game{}, err
	}
	latest.DateLastPlayed = timeutil.FormatTimestamp(s.now())
	if err := s.store.UpdateGame(ctx, latest); err != nil {
		return domaingames.Game{}, err
	}
	return latest.WithoutMetadata(), nil
}

// Update applies patch to the game with the given id using its current etag.
func (s *Service) Update(ctx context.Context, id int, patch domaingames.Game) (domaingames.Game, error) {
	current, err := s.store.GetGame(ctx, id)
	if err != nil {
		return domaingames.Game{}, err
	}
	next := current.Merge(patch)
	if patch.ETag != "" {
		next.ETag = patch.ETag
	}
	if err := s.store.UpdateGame(ctx, next); err != nil {
		return domaingames.Game{}, err
	}
	return next.WithoutMetadata(), nil
}

// DeleteLatest removes the latest game and returns the refreshed list.
func (s *Service) DeleteLatest(ctx context.Context) ([]domaingames.Game, error) {
	latest, err := s.store.LatestGame(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteGame(ctx, latest); err != nil {
		return nil, err
	}
	return s.store.ListGames(ctx)
}

// Delete removes the game with the given id using its current etag.
func (s *Service) Delete(ctx context.Context, id int) error {
	current, err := s.store.GetGame(ctx, id)
	if err != nil {
		return err
	}
	return s.store.DeleteGame(ctx, current)
}
