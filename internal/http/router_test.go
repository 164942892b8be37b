package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/preston-bernstein/games-list-service/internal/http/handlers"
	"github.com/preston-bernstein/games-list-service/internal/testutil"
)

func TestRouterRoutesKnownPaths(t *testing.T) {
	svc, _ := testutil.NewServiceWithGames(testutil.SampleGames(3))
	router := NewRouter(handlers.NewHandler(svc, nil))

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/games", http.StatusOK},
		{http.MethodGet, "/games/latest", http.StatusOK},
		{http.MethodGet, "/games/2", http.StatusOK},
		{http.MethodGet, "/games/99", http.StatusNotFound},
		{http.MethodGet, "/games/abc", http.StatusBadRequest},
		{http.MethodPost, "/games/latest/touch", http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("%s %s expected status %d, got %d", tc.method, tc.path, tc.want, rr.Code)
		}
	}
}

func TestRouterLatestTakesPrecedenceOverID(t *testing.T) {
	svc, _ := testutil.NewServiceWithGames(testutil.SampleGames(2))
	router := NewRouter(handlers.NewHandler(svc, nil))

	rr := testutil.Serve(router, http.MethodDelete, "/games/latest", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"count":1`) {
		t.Fatalf("expected one game left, got %s", rr.Body.String())
	}
}

func TestRouterUnknownRouteReturns404(t *testing.T) {
	svc, _ := testutil.NewServiceWithGames(nil)
	router := NewRouter(handlers.NewHandler(svc, nil))

	rr := testutil.Serve(router, http.MethodGet, "/does-not-exist", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestRouterRejectsWrongMethod(t *testing.T) {
	svc, _ := testutil.NewServiceWithGames(nil)
	router := NewRouter(handlers.NewHandler(svc, nil))

	rr := testutil.Serve(router, http.MethodPut, "/games", nil)
	testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
}
