package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskboard/internal/metrics"
	"taskboard/internal/notify"
	"taskboard/internal/session"
	"taskboard/internal/storage/sqlite"
	"taskboard/internal/tasks"
)

var fixedNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	handler  http.Handler
	store    *tasks.Store
	sessions *session.Manager
	recorder *notify.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv, err := sqlite.Open(filepath.Join(t.TempDir(), "session.db"), logger)
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	sessions := session.NewManager(kv, logger)
	recorder := notify.NewRecorder(0)
	collector := metrics.New("taskboard", false)
	store := tasks.NewStore(sessions,
		tasks.WithSeed(tasks.DemoTasks(fixedNow)),
		tasks.WithNotifier(recorder),
		tasks.WithObserver(collector),
		tasks.WithLogger(logger),
		tasks.WithClock(func() time.Time { return fixedNow }),
	)
	board, err := tasks.NewBoard(store, 2)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}

	srv := New(Deps{
		Tasks:         store,
		Board:         board,
		Sessions:      sessions,
		Notifications: recorder,
		Metrics:       collector,
		ShareBaseURL:  "http://board.local",
		PageSize:      10,
		Now:           func() time.Time { return fixedNow },
	}, logger, "")

	return &testEnv{handler: srv.Engine(), store: store, sessions: sessions, recorder: recorder}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	if _, err := e.sessions.Login(context.Background(), "user@gmail.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var payload map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, payload
}

func taskIDs(t *testing.T, payload map[string]any) []string {
	t.Helper()
	list, ok := payload["tasks"].([]any)
	if !ok {
		t.Fatalf("response has no tasks: %v", payload)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.(map[string]any)["id"].(string))
	}
	return out
}

func pagination(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	p, ok := payload["pagination"].(map[string]any)
	if !ok {
		t.Fatalf("response has no pagination: %v", payload)
	}
	return p
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec, payload := env.do(t, http.MethodGet, "/api/healthz", nil)
	if rec.Code != http.StatusOK || payload["status"] != "ok" {
		t.Fatalf("unexpected health response %d %v", rec.Code, payload)
	}
}

func TestTaskRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.do(t, http.MethodGet, "/api/tasks", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/session", map[string]string{"email": "bad", "password": "x"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad login, got %d", rec.Code)
	}

	rec, payload := env.do(t, http.MethodPost, "/api/session", map[string]string{"email": "kim@example.com", "password": "x"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if user := payload["user"].(map[string]any); user["name"] != "kim" {
		t.Fatalf("unexpected user %v", user)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected current user, got %d", rec.Code)
	}

	rec, _ = env.do(t, http.MethodDelete, "/api/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected logout 200, got %d", rec.Code)
	}
	rec, _ = env.do(t, http.MethodGet, "/api/session", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}

	rec, payload = env.do(t, http.MethodPost, "/api/session/google", nil)
	if rec.Code != http.StatusOK || payload["user"].(map[string]any)["name"] != "Abinaya S" {
		t.Fatalf("unexpected google login %d %v", rec.Code, payload)
	}
}

func TestListTasks_Filters(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3", "4"}},
		{"?due=overdue", []string{"4"}},
		{"?search=doc", []string{"3"}},
		{"?status=pending&priority=high", []string{"4"}},
		{"?status=pending,completed", []string{"2", "3", "4"}},
		{"?status=pending&status=in-progress", []string{"1", "2", "4"}},
		{"?due=someday", []string{"1", "2", "3", "4"}},
		{"?limit=3&page=2", []string{"4"}},
		{"?page=9", []string{}},
	}

	for _, tc := range cases {
		rec, payload := env.do(t, http.MethodGet, "/api/tasks"+tc.query, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", tc.query, rec.Code)
		}
		got := taskIDs(t, payload)
		if strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Fatalf("%q: expected %v, got %v", tc.query, tc.want, got)
		}
	}

	_, payload := env.do(t, http.MethodGet, "/api/tasks", nil)
	p := pagination(t, payload)
	if p["total"].(float64) != 4 || p["totalPages"].(float64) != 1 || p["limit"].(float64) != 10 {
		t.Fatalf("unexpected pagination %v", p)
	}
}

func TestListTasks_RejectsBadPagination(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	for _, q := range []string{"?page=0", "?page=abc", "?limit=0", "?limit=-1"} {
		rec, _ := env.do(t, http.MethodGet, "/api/tasks"+q, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestListTasks_LimitIsCapped(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	for _, q := range []string{"?limit=1000", "?page=3&limit=4611686018427387904", "?page=9223372036854775807&limit=9223372036854775807"} {
		rec, payload := env.do(t, http.MethodGet, "/api/tasks"+q, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", q, rec.Code)
		}
		p := pagination(t, payload)
		if p["limit"].(float64) != 10 || p["totalPages"].(float64) != 1 {
			t.Fatalf("%q: unexpected pagination %v", q, p)
		}
	}

	_, payload := env.do(t, http.MethodGet, "/api/tasks?page=3&limit=4611686018427387904", nil)
	if got := taskIDs(t, payload); len(got) != 0 {
		t.Fatalf("expected an empty page, got %v", got)
	}
}

func TestCreateTask(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec, payload := env.do(t, http.MethodPost, "/api/tasks", map[string]any{
		"title":       "",
		"description": "",
		"dueDate":     "2026-10-13",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	fields := payload["fields"].(map[string]any)
	for _, f := range []string{"title", "description", "dueDate"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("expected error on %s, got %v", f, fields)
		}
	}
	if len(env.store.List()) != 4 {
		t.Fatalf("invalid form must not create a task")
	}

	rec, payload = env.do(t, http.MethodPost, "/api/tasks", map[string]any{
		"title":       "Plan sprint",
		"description": "Pick stories for next sprint",
		"priority":    "high",
		"dueDate":     "2026-10-20",
		"tags":        []string{"planning"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", rec.Code, payload)
	}
	task := payload["task"].(map[string]any)
	if task["status"] != "pending" || task["assignedTo"] != "user@gmail.com" {
		t.Fatalf("unexpected task %v", task)
	}

	list := env.store.List()
	if len(list) != 5 || list[0].Title != "Plan sprint" {
		t.Fatalf("expected new task first, got %d tasks", len(list))
	}
}

func TestUpdateTask(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec, payload := env.do(t, http.MethodPut, "/api/tasks/2", map[string]any{"status": "completed"})
	if rec.Code != http.StatusOK || payload["task"].(map[string]any)["status"] != "completed" {
		t.Fatalf("unexpected update response %d %v", rec.Code, payload)
	}

	before := env.store.List()
	rec, payload = env.do(t, http.MethodPut, "/api/tasks/nonexistent", map[string]any{"status": "completed"})
	if rec.Code != http.StatusOK || payload["status"] != "unchanged" {
		t.Fatalf("expected silent no-op, got %d %v", rec.Code, payload)
	}
	if len(env.store.List()) != len(before) {
		t.Fatalf("collection changed on missing id")
	}

	rec, _ = env.do(t, http.MethodPut, "/api/tasks/2", map[string]any{"status": "archived"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown status, got %d", rec.Code)
	}

	rec, _ = env.do(t, http.MethodPut, "/api/tasks/2", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", rec.Code)
	}
}

func TestDeleteAndCycle(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec, payload := env.do(t, http.MethodDelete, "/api/tasks/3", nil)
	if rec.Code != http.StatusOK || payload["status"] != "deleted" {
		t.Fatalf("unexpected delete response %d %v", rec.Code, payload)
	}
	rec, payload = env.do(t, http.MethodDelete, "/api/tasks/3", nil)
	if rec.Code != http.StatusOK || payload["status"] != "unchanged" {
		t.Fatalf("unexpected second delete response %d %v", rec.Code, payload)
	}

	rec, payload = env.do(t, http.MethodPost, "/api/tasks/1/cycle", nil)
	if rec.Code != http.StatusOK || payload["task"].(map[string]any)["status"] != "completed" {
		t.Fatalf("unexpected cycle response %d %v", rec.Code, payload)
	}

	_, payload = env.do(t, http.MethodGet, "/api/stats", nil)
	stats := payload["stats"].(map[string]any)
	if stats["total"].(float64) != 3 || stats["completed"].(float64) != 1 || stats["pending"].(float64) != 2 {
		t.Fatalf("unexpected stats %v", stats)
	}
}

func TestSharing(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec, _ := env.do(t, http.MethodPost, "/api/tasks/2/share", map[string]string{"email": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", rec.Code)
	}

	rec, payload := env.do(t, http.MethodPost, "/api/tasks/2/share", map[string]string{"email": "pat@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	shared := payload["task"].(map[string]any)["sharedWith"].([]any)
	if len(shared) != 1 || shared[0] != "pat@example.com" {
		t.Fatalf("unexpected collaborators %v", shared)
	}

	rec, payload = env.do(t, http.MethodDelete, "/api/tasks/2/share?email=pat@example.com", nil)
	if rec.Code != http.StatusOK || len(payload["task"].(map[string]any)["sharedWith"].([]any)) != 0 {
		t.Fatalf("unexpected unshare response %d %v", rec.Code, payload)
	}

	_, payload = env.do(t, http.MethodGet, "/api/tasks/2/link", nil)
	if payload["link"] != "http://board.local/task/2" {
		t.Fatalf("unexpected link %v", payload)
	}
	rec, _ = env.do(t, http.MethodGet, "/api/tasks/missing/link", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown task link, got %d", rec.Code)
	}
}

func TestBoardFiltersResetPage(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec, payload := env.do(t, http.MethodPut, "/api/board/page", map[string]int{"page": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := taskIDs(t, payload); strings.Join(got, ",") != "3,4" {
		t.Fatalf("unexpected page 2 %v", got)
	}

	_, payload = env.do(t, http.MethodPut, "/api/board/filters", map[string]any{"status": []string{"pending"}})
	p := pagination(t, payload)
	if p["page"].(float64) != 1 || p["total"].(float64) != 2 {
		t.Fatalf("expected page reset with 2 matches, got %v", p)
	}
	if payload["hasActiveFilters"] != true {
		t.Fatalf("expected active filters flag")
	}

	_, payload = env.do(t, http.MethodDelete, "/api/board/filters", nil)
	if payload["hasActiveFilters"] != false || pagination(t, payload)["total"].(float64) != 4 {
		t.Fatalf("expected cleared filters, got %v", payload)
	}

	rec, _ = env.do(t, http.MethodPut, "/api/board/page", map[string]int{"page": 0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for page 0, got %d", rec.Code)
	}
}

func TestNotificationsAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	env.do(t, http.MethodPut, "/api/tasks/1", map[string]any{"title": "Renamed"})
	env.do(t, http.MethodPost, "/api/tasks/refresh", nil)

	_, payload := env.do(t, http.MethodGet, "/api/notifications", nil)
	list := payload["notifications"].([]any)
	if len(list) != 2 || list[1].(map[string]any)["message"] != "Tasks refreshed!" {
		t.Fatalf("unexpected notifications %v", list)
	}

	rec, _ := env.do(t, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `taskboard_task_mutations_total{op="update"} 1`) {
		t.Fatalf("unexpected metrics output:\n%s", rec.Body.String())
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	env := newTestEnv(t)
	rec, payload := env.do(t, http.MethodGet, "/api/nope", nil)
	if rec.Code != http.StatusNotFound || payload["error"] != "endpoint not found" {
		t.Fatalf("unexpected response %d %v", rec.Code, payload)
	}
}
