package testutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/preston-bernstein/games-list-service/internal/domain/games"
	"github.com/preston-bernstein/games-list-service/internal/store"
)

// RecordedRequest is a request observed by the fake list.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// FakeList serves a MemoryStore over the list REST protocol.
type FakeList struct {
	*httptest.Server
	Store *store.MemoryStore

	mu       sync.Mutex
	requests []RecordedRequest
	failures []fakeFailure
}

type fakeFailure struct {
	status     int
	retryAfter string
}

// NewFakeList starts a fake list server preloaded with seed rows. The server is
// closed when the test ends.
func NewFakeList(t *testing.T, seed ...games.Game) *FakeList {
	t.Helper()
	fl := &FakeList{Store: store.NewMemoryStore()}
	if len(seed) > 0 {
		fl.Store.SetGames(seed)
	}
	fl.Server = httptest.NewServer(http.HandlerFunc(fl.serve))
	t.Cleanup(fl.Server.Close)
	return fl
}

// FailNext makes the next request fail with status. retryAfter, when set, is
// sent as the Retry-After header.
func (f *FakeList) FailNext(status int, retryAfter string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, fakeFailure{status: status, retryAfter: retryAfter})
}

// Requests returns a copy of every request received so far.
func (f *FakeList) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *FakeList) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	var failure *fakeFailure
	if len(f.failures) > 0 {
		failure = &f.failures[0]
		f.failures = f.failures[1:]
	}
	f.mu.Unlock()

	if failure != nil {
		if failure.retryAfter != "" {
			w.Header().Set("Retry-After", failure.retryAfter)
		}
		http.Error(w, http.StatusText(failure.status), failure.status)
		return
	}

	resource, ok := listResource(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch {
	case resource == "" && r.Method == http.MethodGet:
		f.writeEntityType(w, r)
	case resource == "/items" && r.Method == http.MethodGet:
		f.writeItems(w, r)
	case resource == "/items" && r.Method == http.MethodPost:
		f.createItem(w, r, body)
	case strings.HasPrefix(resource, "/items("):
		id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(resource, "/items("), ")"))
		if err != nil {
			http.Error(w, "bad item id", http.StatusBadRequest)
			return
		}
		f.serveItem(w, r, id, body)
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

// listResource returns the part of the path after getbytitle('<title>').
func listResource(path string) (string, bool) {
	const prefix = "/_api/web/lists/getbytitle('"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := path[len(prefix):]
	end := strings.Index(rest, "')")
	if end < 0 {
		return "", false
	}
	return rest[end+2:], true
}

func (f *FakeList) writeEntityType(w http.ResponseWriter, r *http.Request) {
	name, _ := f.Store.ItemEntityType(r.Context())
	writeFakeJSON(w, http.StatusOK, map[string]string{"ListItemEntityTypeFullName": name})
}

func (f *FakeList) writeItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var rows []games.Game
	if q.Get("$orderby") == "Id desc" && q.Get("$top") == "1" {
		latest, err := f.Store.LatestGame(r.Context())
		switch {
		case errors.Is(err, games.ErrNotFound):
			rows = []games.Game{}
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		default:
			rows = []games.Game{latest}
		}
	} else {
		all, err := f.Store.ListGames(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		rows = all
	}
	for i := range rows {
		rows[i] = f.shape(r, rows[i])
	}
	writeFakeJSON(w, http.StatusOK, map[string][]games.Game{"value": rows})
}

func (f *FakeList) createItem(w http.ResponseWriter, r *http.Request, body []byte) {
	var g games.Game
	if err := json.Unmarshal(body, &g); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	want, _ := f.Store.ItemEntityType(r.Context())
	if g.EntityType != want {
		http.Error(w, "missing or wrong @odata.type", http.StatusBadRequest)
		return
	}
	if g.ID != 0 {
		http.Error(w, "Id must not be set on create", http.StatusBadRequest)
		return
	}
	created, err := f.Store.CreateGame(r.Context(), g)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeFakeJSON(w, http.StatusCreated, created)
}

func (f *FakeList) serveItem(w http.ResponseWriter, r *http.Request, id int, body []byte) {
	if r.Method == http.MethodGet {
		g, err := f.Store.GetGame(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeFakeJSON(w, http.StatusOK, f.shape(r, g))
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
		return
	}

	etag := r.Header.Get("IF-MATCH")
	var err error
	switch r.Header.Get("X-HTTP-Method") {
	case "MERGE":
		current, getErr := f.Store.GetGame(r.Context(), id)
		if getErr != nil {
			writeStoreError(w, getErr)
			return
		}
		// Keys present in the body overwrite the row, absent keys are kept.
		merged := current.WithoutMetadata()
		if jsonErr := json.Unmarshal(body, &merged); jsonErr != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if merged.Title == "" {
			http.Error(w, "Title is required", http.StatusBadRequest)
			return
		}
		merged.ID = id
		merged.EntityType = ""
		merged.ETag = etag
		err = f.Store.UpdateGame(r.Context(), merged)
	case "DELETE":
		err = f.Store.DeleteGame(r.Context(), games.Game{ID: id, ETag: etag})
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// shape adds or strips metadata according to the Accept header.
func (f *FakeList) shape(r *http.Request, g games.Game) games.Game {
	if !strings.Contains(r.Header.Get("Accept"), "odata.metadata=full") {
		return g.WithoutMetadata()
	}
	name, _ := f.Store.ItemEntityType(r.Context())
	g.EntityType = name
	if g.ETag == "" {
		if current, err := f.Store.GetGame(r.Context(), g.ID); err == nil {
			g.ETag = current.ETag
		}
	}
	return g
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, games.ErrNotFound):
		http.Error(w, "Item does not exist", http.StatusNotFound)
	case errors.Is(err, games.ErrPreconditionFailed):
		http.Error(w, "The request ETag value does not match the object's ETag value", http.StatusPreconditionFailed)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeFakeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
