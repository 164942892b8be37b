package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/preston-bernstein/games-list-service/internal/domain/games"
)

func TestMemoryStoreCreateAssignsIncreasingIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.CreateGame(ctx, games.Game{ID: 50, Title: "Doom", ETag: `"x"`})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, _ := s.CreateGame(ctx, games.Game{Title: "Quake"})

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}
	if first.ETag != "" {
		t.Fatalf("expected caller etag dropped on create")
	}

	list, _ := s.ListGames(ctx)
	if len(list) != 2 || list[0].Title != "Doom" || list[1].Title != "Quake" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestMemoryStoreListEmpty(t *testing.T) {
	list, err := NewMemoryStore().ListGames(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty slice, got %#v", list)
	}
}

func TestMemoryStoreGetReturnsETag(t *testing.T) {
	s := NewMemoryStore()
	created, _ := s.CreateGame(context.Background(), games.Game{Title: "Portal"})

	got, err := s.GetGame(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ETag != FormatETag(created.ID, 1) {
		t.Fatalf("expected etag for version 1, got %s", got.ETag)
	}

	if _, err := s.GetGame(context.Background(), 404); !errors.Is(err, games.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreLatest(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.LatestGame(context.Background()); !errors.Is(err, games.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty list, got %v", err)
	}

	s.SetGames([]games.Game{{ID: 3, Title: "c"}, {ID: 10, Title: "j"}, {ID: 7, Title: "g"}})
	latest, err := s.LatestGame(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if latest.ID != 10 {
		t.Fatalf("expected id 10, got %d", latest.ID)
	}

	next, _ := s.CreateGame(context.Background(), games.Game{Title: "k"})
	if next.ID != 11 {
		t.Fatalf("expected id after seeded max, got %d", next.ID)
	}
}

func TestMemoryStoreUpdateRequiresCurrentETag(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created, _ := s.CreateGame(ctx, games.Game{Title: "Celeste", Platform: "Switch"})
	fresh, _ := s.GetGame(ctx, created.ID)

	patch := fresh
	patch.DateLastPlayed = "2024-05-01T10:00:00Z"
	patch.Platform = ""
	if err := s.UpdateGame(ctx, patch); err != nil {
		t.Fatalf("expected update with fresh etag to succeed, got %v", err)
	}

	stale := fresh
	stale.Title = "Overwritten"
	if err := s.UpdateGame(ctx, stale); !errors.Is(err, games.ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed for stale etag, got %v", err)
	}

	got, _ := s.GetGame(ctx, created.ID)
	if got.Title != "Celeste" || got.Platform != "" || got.DateLastPlayed != "2024-05-01T10:00:00Z" {
		t.Fatalf("unexpected stored row %+v", got)
	}
	if got.ETag != FormatETag(created.ID, 2) {
		t.Fatalf("expected version bump, got %s", got.ETag)
	}
}

func TestMemoryStoreUpdateClearsEmptiedFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created, _ := s.CreateGame(ctx, games.Game{Title: "Hades", Platform: "PC", Comments: "one more run"})

	record, _ := s.GetGame(ctx, created.ID)
	record.Comments = ""
	if err := s.UpdateGame(ctx, record); err != nil {
		t.Fatalf("expected update to succeed, got %v", err)
	}

	got, _ := s.GetGame(ctx, created.ID)
	if got.Comments != "" {
		t.Fatalf("expected comments cleared, got %q", got.Comments)
	}
	if got.Title != "Hades" || got.Platform != "PC" || got.ID != created.ID {
		t.Fatalf("expected other fields kept, got %+v", got)
	}
}

func TestMemoryStoreSetGamesKeepsExplicitIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.SetGames([]games.Game{{Title: "A"}, {ID: 1, Title: "B"}})

	all, _ := s.ListGames(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(all))
	}
	b, err := s.GetGame(ctx, 1)
	if err != nil || b.Title != "B" {
		t.Fatalf("expected B at id 1, got %+v (%v)", b, err)
	}
	a, err := s.GetGame(ctx, 2)
	if err != nil || a.Title != "A" {
		t.Fatalf("expected A at id 2, got %+v (%v)", a, err)
	}

	next, _ := s.CreateGame(ctx, games.Game{Title: "C"})
	if next.ID != 3 {
		t.Fatalf("expected next id 3, got %d", next.ID)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created, _ := s.CreateGame(ctx, games.Game{Title: "Halo"})

	if err := s.DeleteGame(ctx, games.Game{ID: created.ID, ETag: `"1,9"`}); !errors.Is(err, games.ErrPreconditionFailed) {
		t.Fatalf("expected stale delete rejected, got %v", err)
	}
	if err := s.DeleteGame(ctx, games.Game{ID: created.ID, ETag: "*"}); err != nil {
		t.Fatalf("expected wildcard delete to succeed, got %v", err)
	}
	if _, err := s.GetGame(ctx, created.ID); !errors.Is(err, games.ErrNotFound) {
		t.Fatalf("expected deleted row to be gone, got %v", err)
	}
	if err := s.DeleteGame(ctx, games.Game{ID: created.ID, ETag: "*"}); !errors.Is(err, games.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting missing row, got %v", err)
	}
}

func TestMemoryStoreHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemoryStore().ListGames(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestETagMatches(t *testing.T) {
	if !ETagMatches(`W/"4,2"`, 4, 2) {
		t.Fatalf("expected weak etag to match")
	}
	if ETagMatches(`"4,1"`, 4, 2) {
		t.Fatalf("expected old version not to match")
	}
	if ETagMatches("", 4, 2) {
		t.Fatalf("expected empty etag not to match")
	}
}

func TestMemoryStoreConcurrentCreates(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.CreateGame(context.Background(), games.Game{Title: "t"})
		}()
	}
	wg.Wait()

	list, _ := s.ListGames(context.Background())
	if len(list) != 25 {
		t.Fatalf("expected 25 rows, got %d", len(list))
	}
	seen := make(map[int]bool)
	for _, g := range list {
		if seen[g.ID] {
			t.Fatalf("duplicate id %d", g.ID)
		}
		seen[g.ID] = true
	}
}
