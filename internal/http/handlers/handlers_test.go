package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domaingames "github.com/preston-bernstein/games-list-service/internal/domain/games"
	"github.com/preston-bernstein/games-list-service/internal/sharepoint"
	"github.com/preston-bernstein/games-list-service/internal/testutil"
)

// stubService returns canned results; unset errors mean success.
type stubService struct {
	games   []domaingames.Game
	game    domaingames.Game
	err     error
	patches []domaingames.Game
	deleted []int
}

func (s *stubService) Games(ctx context.Context) ([]domaingames.Game, error) {
	return s.games, s.err
}

func (s *stubService) GameByID(ctx context.Context, id int) (domaingames.Game, error) {
	return s.game, s.err
}

func (s *stubService) LatestGame(ctx context.Context) (domaingames.Game, error) {
	return s.game, s.err
}

func (s *stubService) Create(ctx context.Context, g domaingames.Game) ([]domaingames.Game, error) {
	return append(s.games, g), s.err
}

func (s *stubService) TouchLatest(ctx context.Context) (domaingames.Game, error) {
	return s.game, s.err
}

func (s *stubService) Update(ctx context.Context, id int, patch domaingames.Game) (domaingames.Game, error) {
	s.patches = append(s.patches, patch)
	return s.game.Merge(patch), s.err
}

func (s *stubService) DeleteLatest(ctx context.Context) ([]domaingames.Game, error) {
	return s.games, s.err
}

func (s *stubService) Delete(ctx context.Context, id int) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func newMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /games", h.List)
	mux.HandleFunc("POST /games", h.Create)
	mux.HandleFunc("GET /games/latest", h.Latest)
	mux.HandleFunc("GET /games/{id}", h.Get)
	mux.HandleFunc("PATCH /games/{id}", h.Update)
	mux.HandleFunc("DELETE /games/{id}", h.Delete)
	return mux
}

func TestHealth(t *testing.T) {
	h := NewHandler(&stubService{}, nil)

	rr := testutil.Serve(http.HandlerFunc(h.Health), http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestHealthShuttingDownReturnsServiceUnavailable(t *testing.T) {
	h := NewHandler(&stubService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	rr := testutil.ServeRequest(http.HandlerFunc(h.Health), req.WithContext(ctx))

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] != "shutting down" {
		t.Fatalf("unexpected error %q", resp["error"])
	}
}

func TestReadyTreatsEmptyListAsReady(t *testing.T) {
	h := NewHandler(&stubService{err: domaingames.ErrNotFound}, nil)
	rr := testutil.Serve(http.HandlerFunc(h.Ready), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestReadyFailsWhenListUnreachable(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	h := NewHandler(&stubService{err: errors.New("dial tcp: refused")}, logger)
	rr := testutil.Serve(http.HandlerFunc(h.Ready), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	if !strings.Contains(buf.String(), "readiness probe failed") {
		t.Fatalf("expected warning log, got %s", buf.String())
	}
}

func TestListReturnsJSON(t *testing.T) {
	svc, _ := testutil.NewServiceWithGames(testutil.SampleGames(2))
	h := NewHandler(svc, nil)

	rr := testutil.Serve(newMux(h), http.MethodGet, "/games", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp domaingames.ListResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Count != 2 || len(resp.Games) != 2 || resp.Games[0].ID != 1 {
		t.Fatalf("unexpected list response %+v", resp)
	}
}

func TestListEmptyReturnsEmptyArray(t *testing.T) {
	svc, _ := testutil.NewServiceWithGames(nil)
	h := NewHandler(svc, nil)

	rr := testutil.Serve(newMux(h), http.MethodGet, "/games", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"games":[]`) {
		t.Fatalf("expected empty games array, got %s", rr.Body.String())
	}
}

func TestListRendersHTMLTable(t *testing.T) {
	game := testutil.SampleGame(1)
	game.Title = "<script>alert(1)</script>"
	svc, _ := testutil.NewServiceWithGames([]domaingames.Game{game})
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/games", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rr := testutil.ServeRequest(newMux(h), req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %s", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{"<th>Date Last Played</th>", "&lt;script&gt;", "<td>PC</td>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in table, got %s", want, body)
		}
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("expected title to be escaped")
	}
}

func TestGetByFormatQueryRendersTable(t *testing.T) {
	svc, _ := testutil.NewServiceWithGames(testutil.SampleGames(1))
	h := NewHandler(svc, nil)

	rr := testutil.Serve(newMux(h), http.MethodGet, "/games/1?format=html", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "<td>Game 1</td>") {
		t.Fatalf("expected row in table, got %s", rr.Body.String())
	}
}

func TestGetReturnsGameWithETag(t *testing.T) {
	svc, _ := testutil.NewServiceWithGames(testutil.SampleGames(3))
	h := NewHandler(svc, nil)

	rr := testutil.Serve(newMux(h), http.MethodGet, "/games/3", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var game domaingames.Game
	testutil.DecodeJSON(t, rr, &game)
	if game.ID != 3 || game.ETag == "" {
		t.Fatalf("unexpected game %+v", game)
	}
}

func TestGetInvalidIDReturnsBadRequest(t *testing.T) {
	h := NewHandler(&stubService{}, nil)
	for _, path := range []string{"/games/abc", "/games/0", "/games/-4"} {
		rr := testutil.Serve(newMux(h), http.MethodGet, path, nil)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	}
}

func TestLatestOnEmptyListReturnsNotFound(t *testing.T) {
	svc, _ := testutil.NewServiceWithGames(nil)
	h := NewHandler(svc, nil)

	rr := testutil.Serve(newMux(h), http.MethodGet, "/games/latest", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestCreateReturnsRelistedGames(t *testing.T) {
	svc, ms := testutil.NewServiceWithGames(testutil.SampleGames(1))
	h := NewHandler(svc, nil)

	body := `{"Title":"Half Life 3","platform":"PS5","datePurchased":"2057-08-30","dateLastPlayed":"2057-08-30","comments":"Never gonna happen..."}`
	rr := testutil.Serve(newMux(h), http.MethodPost, "/games", strings.NewReader(body))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var resp domaingames.ListResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Count != 2 {
		t.Fatalf("expected two games after create, got %d", resp.Count)
	}
	latest, _ := ms.LatestGame(context.Background())
	if latest.Title != "Half Life 3" || latest.Comments != "Never gonna happen..." {
		t.Fatalf("unexpected stored row %+v", latest)
	}
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	h := NewHandler(&stubService{}, nil)

	rr := testutil.Serve(newMux(h), http.MethodPost, "/games", strings.NewReader("{not json"))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = testutil.Serve(newMux(h), http.MethodPost, "/games", strings.NewReader(""))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	if !strings.Contains(rr.Body.String(), "request body required") {
		t.Fatalf("expected empty body message, got %s", rr.Body.String())
	}
}

func TestTouchLatestStampsDateLastPlayed(t *testing.T) {
	svc, ms := testutil.NewServiceWithGames(testutil.SampleGames(2))
	h := NewHandler(svc, nil)

	rr := testutil.Serve(http.HandlerFunc(h.TouchLatest), http.MethodPost, "/games/latest/touch", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var game domaingames.Game
	testutil.DecodeJSON(t, rr, &game)
	if game.ID != 2 || game.ETag != "" {
		t.Fatalf("unexpected touched game %+v", game)
	}
	if _, err := time.Parse("2006-01-02T15:04:05.000Z", game.DateLastPlayed); err != nil {
		t.Fatalf("expected timestamp, got %q", game.DateLastPlayed)
	}
	stored, _ := ms.GetGame(context.Background(), 2)
	if stored.DateLastPlayed != game.DateLastPlayed {
		t.Fatalf("expected stored row updated, got %+v", stored)
	}
}

func TestUpdateForwardsIfMatch(t *testing.T) {
	stub := &stubService{game: domaingames.Game{ID: 5, Title: "Halo"}}
	h := NewHandler(stub, nil)

	req := httptest.NewRequest(http.MethodPatch, "/games/5", strings.NewReader(`{"comments":"done","@odata.type":"X"}`))
	req.Header.Set("If-Match", `"5,2"`)
	rr := testutil.ServeRequest(newMux(h), req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	if len(stub.patches) != 1 {
		t.Fatalf("expected one patch, got %d", len(stub.patches))
	}
	patch := stub.patches[0]
	if patch.ID != 5 || patch.ETag != `"5,2"` || patch.EntityType != "" || patch.Comments != "done" {
		t.Fatalf("unexpected patch %+v", patch)
	}
}

func TestUpdateStaleETagReturnsPreconditionFailed(t *testing.T) {
	svc, ms := testutil.NewServiceWithGames(testutil.SampleGames(1))
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPatch, "/games/1", strings.NewReader(`{"comments":"late"}`))
	req.Header.Set("If-Match", `"1,7"`)
	rr := testutil.ServeRequest(newMux(h), req)

	testutil.AssertStatus(t, rr, http.StatusPreconditionFailed)
	stored, _ := ms.GetGame(context.Background(), 1)
	if stored.Comments != "sample" {
		t.Fatalf("expected row unchanged, got %+v", stored)
	}
}

func TestDeleteByID(t *testing.T) {
	svc, ms := testutil.NewServiceWithGames(testutil.SampleGames(2))
	h := NewHandler(svc, nil)

	rr := testutil.Serve(newMux(h), http.MethodDelete, "/games/1", nil)
	testutil.AssertStatus(t, rr, http.StatusNoContent)
	if _, err := ms.GetGame(context.Background(), 1); !errors.Is(err, domaingames.ErrNotFound) {
		t.Fatalf("expected row removed, got %v", err)
	}
}

func TestDeleteLatestReturnsRemainingGames(t *testing.T) {
	svc, _ := testutil.NewServiceWithGames(testutil.SampleGames(3))
	h := NewHandler(svc, nil)

	rr := testutil.Serve(http.HandlerFunc(h.DeleteLatest), http.MethodDelete, "/games/latest", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp domaingames.ListResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Count != 2 || resp.Games[len(resp.Games)-1].ID != 2 {
		t.Fatalf("unexpected remaining games %+v", resp)
	}
}

func TestThrottledListReturnsRetryAfter(t *testing.T) {
	stub := &stubService{err: &sharepoint.ThrottleError{Operation: sharepoint.OpList, StatusCode: 429, RetryAfter: 1500 * time.Millisecond}}
	h := NewHandler(stub, nil)

	rr := testutil.Serve(newMux(h), http.MethodGet, "/games", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	if got := rr.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After rounded up to 2, got %q", got)
	}
}

func TestUpstreamFailureReturnsBadGateway(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	stub := &stubService{err: &sharepoint.StatusError{Operation: sharepoint.OpList, StatusCode: 500}}
	h := NewHandler(stub, logger)

	rr := testutil.Serve(newMux(h), http.MethodGet, "/games", nil)
	testutil.AssertStatus(t, rr, http.StatusBadGateway)
	if !strings.Contains(buf.String(), "list request failed") {
		t.Fatalf("expected error log, got %s", buf.String())
	}
}

func TestListRejectionReturnsBadRequest(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	stub := &stubService{err: &sharepoint.StatusError{Operation: sharepoint.OpList, StatusCode: http.StatusBadRequest, Body: "bad filter"}}
	h := NewHandler(stub, logger)

	rr := testutil.Serve(newMux(h), http.MethodGet, "/games", nil)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	if !strings.Contains(buf.String(), "list rejected request") {
		t.Fatalf("expected warn log, got %s", buf.String())
	}
	if strings.Contains(buf.String(), "list request failed") {
		t.Fatalf("expected no error log for a rejected request, got %s", buf.String())
	}
}
