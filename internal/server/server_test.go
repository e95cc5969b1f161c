package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/daybook/internal/models"
)

func setupTestServer(t *testing.T, token string) (*gin.Engine, *Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := OpenRepo(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return NewRouter(repo, token), repo
}

func pushSnapshot(t *testing.T, router *gin.Engine, userID string, snap models.Snapshot) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("failed to marshal snapshot: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+userID+"/snapshot", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func fetchSnapshot(t *testing.T, router *gin.Engine, userID string) (models.Snapshot, time.Time) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+userID+"/snapshot", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		models.Snapshot
		SyncedAt time.Time `json:"synced_at"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Snapshot, resp.SyncedAt
}

func TestHealthz(t *testing.T) {
	router, _ := setupTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	router, _ := setupTestServer(t, "")

	now := time.Now().UTC().Truncate(time.Second)
	snap := models.Snapshot{
		Habits: []models.Habit{{
			ID: "h1", Name: "Read", CreatedAt: now, UpdatedAt: now,
		}},
		Completions: []models.HabitCompletion{{
			ID: "c1", HabitID: "h1", Day: "2026-08-23", Completed: true,
			CreatedAt: now, UpdatedAt: now,
		}},
	}

	if w := pushSnapshot(t, router, "u1", snap); w.Code != http.StatusOK {
		t.Fatalf("push failed: %d %s", w.Code, w.Body.String())
	}

	got, syncedAt := fetchSnapshot(t, router, "u1")
	if len(got.Habits) != 1 || got.Habits[0].Name != "Read" {
		t.Errorf("expected pushed habit back, got %+v", got.Habits)
	}
	if len(got.Completions) != 1 || got.Completions[0].Day != "2026-08-23" {
		t.Errorf("expected pushed completion back, got %+v", got.Completions)
	}
	if syncedAt.IsZero() {
		t.Error("expected non-zero watermark")
	}
}

func TestLastWriterWinsPerEntity(t *testing.T) {
	router, _ := setupTestServer(t, "")

	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	// First device pushes two habits.
	first := models.Snapshot{Habits: []models.Habit{
		{ID: "h1", Name: "Read", CreatedAt: base, UpdatedAt: base},
		{ID: "h2", Name: "Run", CreatedAt: base, UpdatedAt: base},
	}}
	if w := pushSnapshot(t, router, "u1", first); w.Code != http.StatusOK {
		t.Fatalf("first push failed: %d", w.Code)
	}

	// Second device pushes a newer version of h1 only. h2 must survive:
	// absence from a snapshot is not a deletion.
	second := models.Snapshot{Habits: []models.Habit{
		{ID: "h1", Name: "Read books", CreatedAt: base, UpdatedAt: base.Add(time.Hour)},
	}}
	if w := pushSnapshot(t, router, "u1", second); w.Code != http.StatusOK {
		t.Fatalf("second push failed: %d", w.Code)
	}

	got, _ := fetchSnapshot(t, router, "u1")
	if len(got.Habits) != 2 {
		t.Fatalf("expected 2 habits after partial overwrite, got %d", len(got.Habits))
	}
	names := map[string]string{}
	for _, h := range got.Habits {
		names[h.ID] = h.Name
	}
	if names["h1"] != "Read books" {
		t.Errorf("expected h1 to take the last write, got %q", names["h1"])
	}
	if names["h2"] != "Run" {
		t.Errorf("expected h2 untouched, got %q", names["h2"])
	}
}

func TestUsersAreIsolated(t *testing.T) {
	router, _ := setupTestServer(t, "")

	now := time.Now().UTC()
	snap := models.Snapshot{Habits: []models.Habit{
		{ID: "h1", Name: "Read", CreatedAt: now, UpdatedAt: now},
	}}
	if w := pushSnapshot(t, router, "u1", snap); w.Code != http.StatusOK {
		t.Fatalf("push failed: %d", w.Code)
	}

	got, _ := fetchSnapshot(t, router, "u2")
	if len(got.Habits) != 0 {
		t.Errorf("expected empty snapshot for a different user, got %+v", got.Habits)
	}
}

func TestBearerAuth(t *testing.T) {
	router, _ := setupTestServer(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/snapshot", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/snapshot", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/snapshot", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with valid token, got %d", w.Code)
	}

	// Health stays open for load balancer probes.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected healthz to bypass auth, got %d", w.Code)
	}
}

func TestInvalidPayload(t *testing.T) {
	router, _ := setupTestServer(t, "")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/u1/snapshot", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed payload, got %d", w.Code)
	}
}
