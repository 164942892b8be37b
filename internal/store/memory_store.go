package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/preston-bernstein/games-list-service/internal/domain/games"
)

type row struct {
	game    games.Game
	version int
}

// MemoryStore is a thread-safe in-process games list. Ids are assigned from 1
// and every write bumps the row version, which is exposed as the etag.
type MemoryStore struct {
	mu         sync.RWMutex
	rows       map[int]row
	nextID     int
	entityType string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:       make(map[int]row),
		nextID:     1,
		entityType: "SP.Data.GamesListItem",
	}
}

// ListGames returns every row ordered by id, without metadata.
func (s *MemoryStore) ListGames(ctx context.Context) ([]games.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]games.Game, 0, len(s.rows))
	for _, id := range s.sortedIDsLocked() {
		result = append(result, s.rows[id].game)
	}
	return result, nil
}

// GetGame returns one row with its etag.
func (s *MemoryStore) GetGame(ctx context.Context, id int) (games.Game, error) {
	if err := ctx.Err(); err != nil {
		return games.Game{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[id]
	if !ok {
		return games.Game{}, fmt.Errorf("memory: get %d: %w", id, games.ErrNotFound)
	}
	return withETag(r), nil
}

// LatestGame returns the row with the highest id with its etag.
func (s *MemoryStore) LatestGame(ctx context.Context) (games.Game, error) {
	if err := ctx.Err(); err != nil {
		return games.Game{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sortedIDsLocked()
	if len(ids) == 0 {
		return games.Game{}, fmt.Errorf("memory: latest: list is empty: %w", games.ErrNotFound)
	}
	return withETag(s.rows[ids[len(ids)-1]]), nil
}

// ItemEntityType reports the type name stamped on created rows.
func (s *MemoryStore) ItemEntityType(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.entityType, nil
}

// CreateGame stores g under a new id and returns the stored row.
func (s *MemoryStore) CreateGame(ctx context.Context, g games.Game) (games.Game, error) {
	if err := ctx.Err(); err != nil {
		return games.Game{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := g.WithoutMetadata()
	stored.ID = s.nextID
	s.nextID++
	s.rows[stored.ID] = row{game: stored, version: 1}
	return stored, nil
}

// UpdateGame replaces the content fields of the stored row with those of g when
// g.ETag matches the current version. Empty strings are written as given.
func (s *MemoryStore) UpdateGame(ctx context.Context, g games.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.matchLocked("update", g)
	if err != nil {
		return err
	}
	next := g.WithoutMetadata()
	next.ID = r.game.ID
	r.game = next
	r.version++
	s.rows[g.ID] = r
	return nil
}

// DeleteGame removes the row when g.ETag matches the current version.
func (s *MemoryStore) DeleteGame(ctx context.Context, g games.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.matchLocked("delete", g); err != nil {
		return err
	}
	delete(s.rows, g.ID)
	return nil
}

// SetGames replaces the list contents; ids already set on the input are kept.
func (s *MemoryStore) SetGames(list []games.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make(map[int]row, len(list))
	s.nextID = 1
	var pending []games.Game
	for _, g := range list {
		g = g.WithoutMetadata()
		if g.ID <= 0 {
			pending = append(pending, g)
			continue
		}
		if g.ID >= s.nextID {
			s.nextID = g.ID + 1
		}
		s.rows[g.ID] = row{game: g, version: 1}
	}
	// Rows without an id go after every explicit id so none is overwritten.
	for _, g := range pending {
		g.ID = s.nextID
		s.nextID++
		s.rows[g.ID] = row{game: g, version: 1}
	}
}

func (s *MemoryStore) matchLocked(op string, g games.Game) (row, error) {
	r, ok := s.rows[g.ID]
	if !ok {
		return row{}, fmt.Errorf("memory: %s %d: %w", op, g.ID, games.ErrNotFound)
	}
	if !ETagMatches(g.ETag, g.ID, r.version) {
		return row{}, fmt.Errorf("memory: %s %d: %w", op, g.ID, games.ErrPreconditionFailed)
	}
	return r, nil
}

func (s *MemoryStore) sortedIDsLocked() []int {
	ids := make([]int, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func withETag(r row) games.Game {
	g := r.game
	g.ETag = FormatETag(g.ID, r.version)
	return g
}

// FormatETag renders a row version the way the list API does: "<id>,<version>".
func FormatETag(id, version int) string {
	return `"` + strconv.Itoa(id) + "," + strconv.Itoa(version) + `"`
}

// ETagMatches reports whether an If-Match value addresses the given row version.
// "*" matches any version; weak validators are compared by their opaque part.
func ETagMatches(etag string, id, version int) bool {
	etag = strings.TrimSpace(etag)
	if etag == "*" {
		return true
	}
	etag = strings.TrimPrefix(etag, "W/")
	return etag == FormatETag(id, version)
}
