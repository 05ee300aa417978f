package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robby/bugtracker/internal/domain"
)

// fakeBackend mimics the bug tracker API closely enough to exercise the client:
// ids are assigned on create, PUT/DELETE/GET on a missing id answer 404.
type fakeBackend struct {
	mu       sync.Mutex
	nextID   int
	bugs     map[int]domain.Bug
	comments map[int][]domain.Comment
	requests []*http.Request
}

func newFakeBackend(t *testing.T, seed ...domain.Bug) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{
		nextID:   1,
		bugs:     make(map[int]domain.Bug),
		comments: make(map[int][]domain.Comment),
	}
	for _, b := range seed {
		fb.bugs[b.ID] = b
		if b.ID >= fb.nextID {
			fb.nextID = b.ID + 1
		}
	}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.requests = append(fb.requests, r)

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api"), "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "health":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case len(parts) == 1 && parts[0] == "bugs" && r.Method == http.MethodGet:
		ids := make([]int, 0, len(fb.bugs))
		for id := range fb.bugs {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		out := make([]domain.Bug, 0, len(ids))
		for _, id := range ids {
			out = append(out, fb.bugs[id])
		}
		writeJSON(w, http.StatusOK, out)
	case len(parts) == 1 && parts[0] == "bugs" && r.Method == http.MethodPost:
		var in domain.BugInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
			return
		}
		now := time.Now().UTC()
		bug := domain.Bug{ID: fb.nextID, Title: in.Title, Description: in.Description, Status: in.Status, Priority: in.Priority, CreatedAt: &now, UpdatedAt: &now}
		fb.bugs[bug.ID] = bug
		fb.nextID++
		writeJSON(w, http.StatusCreated, bug)
	case len(parts) >= 2 && parts[0] == "bugs":
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bug ID"})
			return
		}
		bug, ok := fb.bugs[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "bug not found"})
			return
		}
		if len(parts) == 3 && parts[2] == "comments" {
			fb.serveComments(w, r, id)
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, bug)
		case http.MethodPut:
			var patch domain.BugPatch
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			bug = patch.Apply(bug)
			fb.bugs[id] = bug
			writeJSON(w, http.StatusOK, bug)
		case http.MethodDelete:
			delete(fb.bugs, id)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (fb *fakeBackend) serveComments(w http.ResponseWriter, r *http.Request, id int) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, fb.comments[id])
	case http.MethodPost:
		var in domain.CommentInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Validate() != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "author and content are required"})
			return
		}
		c := domain.Comment{
			ID:        strconv.Itoa(len(fb.comments[id]) + 1),
			BugID:     strconv.Itoa(id),
			Author:    in.Author,
			Content:   in.Content,
			CreatedAt: time.Now().UTC(),
		}
		fb.comments[id] = append(fb.comments[id], c)
		writeJSON(w, http.StatusCreated, c)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (fb *fakeBackend) lastRequest() *http.Request {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.requests) == 0 {
		return nil
	}
	return fb.requests[len(fb.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
