package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tempo/internal/core"
	"tempo/internal/services"
)

const testIdentityHeader = "X-User-Subject"

type fakeCatalog struct {
	clients  []core.Client
	projects []core.Project
	err      error
}

func (f *fakeCatalog) Clients(ctx context.Context, userID string) ([]core.Client, error) {
	return f.clients, f.err
}

func (f *fakeCatalog) CreateClient(ctx context.Context, userID, name, description string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if err := (core.Client{ID: "x", UserID: userID, Name: name, Description: description}).Validate(); err != nil {
		return "", err
	}
	return "client-1", nil
}

func (f *fakeCatalog) UpdateClient(ctx context.Context, userID string, upd services.ClientUpdate) error {
	return f.err
}

func (f *fakeCatalog) Projects(ctx context.Context, userID, clientID string) ([]core.Project, error) {
	return f.projects, f.err
}

func (f *fakeCatalog) CreateProject(ctx context.Context, userID, clientID, name, description string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "project-1", nil
}

func (f *fakeCatalog) UpdateProject(ctx context.Context, userID string, upd services.ProjectUpdate) error {
	return f.err
}

type fakeTimer struct {
	current *services.CurrentEntry
	startID string
	err     error
	stopped []string
}

func (f *fakeTimer) Current(ctx context.Context, userID string) (*services.CurrentEntry, error) {
	return f.current, f.err
}

func (f *fakeTimer) Start(ctx context.Context, userID, clientID, projectID, description string) (string, error) {
	return f.startID, f.err
}

func (f *fakeTimer) Stop(ctx context.Context, userID, entryID string) error {
	if f.err != nil {
		return f.err
	}
	f.stopped = append(f.stopped, entryID)
	return nil
}

func (f *fakeTimer) UpdateDescription(ctx context.Context, userID, entryID, description string) error {
	return f.err
}

type fakeReports struct {
	daily  core.DailyReport
	weekly core.WeeklyReport
	custom core.CustomReport
	calls  int
	err    error
}

func (f *fakeReports) Daily(ctx context.Context, userID, date string) (core.DailyReport, error) {
	f.calls++
	return f.daily, f.err
}

func (f *fakeReports) Weekly(ctx context.Context, userID, date string) (core.WeeklyReport, error) {
	f.calls++
	return f.weekly, f.err
}

func (f *fakeReports) Custom(ctx context.Context, userID string, q services.CustomQuery) (core.CustomReport, error) {
	f.calls++
	return f.custom, f.err
}

func newTestServer(catalog CatalogService, timer TimerService, reports ReportService) *Server {
	if catalog == nil {
		catalog = &fakeCatalog{}
	}
	if timer == nil {
		timer = &fakeTimer{}
	}
	if reports == nil {
		reports = &fakeReports{}
	}
	return NewServer(":0", testIdentityHeader, catalog, timer, reports)
}

func doRequest(srv *Server, method, target, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != "" {
		req.Header.Set(testIdentityHeader, user)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(nil, nil, nil)
	defer srv.Shutdown(context.Background())

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doRequest(srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestMissingIdentityRejected(t *testing.T) {
	srv := newTestServer(nil, nil, nil)
	defer srv.Shutdown(context.Background())

	rr := doRequest(srv, http.MethodGet, "/api/clients", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity header, got %d", rr.Code)
	}
}

func TestListClients(t *testing.T) {
	catalog := &fakeCatalog{clients: []core.Client{
		{ID: "c1", UserID: "alice", Name: "Acme", IsActive: true},
	}}
	srv := newTestServer(catalog, nil, nil)
	defer srv.Shutdown(context.Background())

	rr := doRequest(srv, http.MethodGet, "/api/clients", "alice", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var got []core.Client
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Acme" {
		t.Fatalf("unexpected clients: %+v", got)
	}
}

func TestListClientsEmptyIsArray(t *testing.T) {
	srv := newTestServer(&fakeCatalog{}, nil, nil)
	defer srv.Shutdown(context.Background())

	rr := doRequest(srv, http.MethodGet, "/api/clients", "alice", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("expected empty JSON array, got %s", body)
	}
}

func TestCreateClient(t *testing.T) {
	srv := newTestServer(&fakeCatalog{}, nil, nil)
	defer srv.Shutdown(context.Background())

	rr := doRequest(srv, http.MethodPost, "/api/clients", "alice", `{"name":"Acme"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var got createdResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "client-1" {
		t.Fatalf("unexpected id %q", got.ID)
	}
}

func TestCreateClientValidation(t *testing.T) {
	srv := newTestServer(&fakeCatalog{}, nil, nil)
	defer srv.Shutdown(context.Background())

	// Malformed body
	rr := doRequest(srv, http.MethodPost, "/api/clients", "alice", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad JSON, got %d", rr.Code)
	}

	// Empty name
	rr = doRequest(srv, http.MethodPost, "/api/clients", "alice", `{"name":"  "}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty name, got %d", rr.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", core.ErrNotFound, http.StatusNotFound},
		{"forbidden", core.ErrForbidden, http.StatusForbidden},
		{"already stopped", core.ErrEntryAlreadyStopped, http.StatusUnprocessableEntity},
		{"unauthorized", core.ErrUnauthorized, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(nil, &fakeTimer{err: tt.err}, nil)
			defer srv.Shutdown(context.Background())

			rr := doRequest(srv, http.MethodPost, "/api/timer/stop", "alice", `{"entryId":"e1"}`)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestTimerCurrentIdleReturnsNull(t *testing.T) {
	srv := newTestServer(nil, &fakeTimer{}, nil)
	defer srv.Shutdown(context.Background())

	rr := doRequest(srv, http.MethodGet, "/api/timer/current", "alice", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "null" {
		t.Fatalf("expected null body when idle, got %s", body)
	}
}

func TestTimerStartAndStop(t *testing.T) {
	timer := &fakeTimer{startID: "entry-1"}
	srv := newTestServer(nil, timer, nil)
	defer srv.Shutdown(context.Background())

	rr := doRequest(srv, http.MethodPost, "/api/timer/start", "alice",
		`{"clientId":"c1","projectId":"p1","description":"work"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("start status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRequest(srv, http.MethodPost, "/api/timer/stop", "alice", `{"entryId":"entry-1"}`)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("stop status=%d", rr.Code)
	}
	if len(timer.stopped) != 1 || timer.stopped[0] != "entry-1" {
		t.Fatalf("unexpected stop calls: %v", timer.stopped)
	}
}

func TestDailyReportCached(t *testing.T) {
	reports := &fakeReports{daily: core.DailyReport{Date: "2024-01-10", TotalTime: 3600000}}
	srv := newTestServer(nil, nil, reports)
	defer srv.Shutdown(context.Background())

	for i := 0; i < 3; i++ {
		rr := doRequest(srv, http.MethodGet, "/api/reports/daily?date=2024-01-10", "alice", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
	}
	if reports.calls != 1 {
		t.Fatalf("expected one service call for repeated reads, got %d", reports.calls)
	}
}

func TestDailyReportDefaultSharesTodayCacheEntry(t *testing.T) {
	reports := &fakeReports{daily: core.DailyReport{TotalTime: 3600000}}
	srv := newTestServer(nil, nil, reports)
	defer srv.Shutdown(context.Background())

	// The empty default resolves to today before keying, so an explicit
	// request for today's date hits the same entry.
	doRequest(srv, http.MethodGet, "/api/reports/daily", "alice", "")
	doRequest(srv, http.MethodGet, "/api/reports/daily?date="+core.Today(time.Now()), "alice", "")

	if reports.calls != 1 {
		t.Fatalf("expected default and explicit today to share one cache entry, got %d calls", reports.calls)
	}
}

func TestWeeklyReportCachedPerWeek(t *testing.T) {
	reports := &fakeReports{weekly: core.WeeklyReport{TotalTime: 3600000}}
	srv := newTestServer(nil, nil, reports)
	defer srv.Shutdown(context.Background())

	// Wednesday and Friday of the same Sunday..Saturday week share the
	// week-start cache key; the next week's Monday does not.
	doRequest(srv, http.MethodGet, "/api/reports/weekly?date=2024-01-10", "alice", "")
	doRequest(srv, http.MethodGet, "/api/reports/weekly?date=2024-01-12", "alice", "")
	if reports.calls != 1 {
		t.Fatalf("expected one service call for two days of the same week, got %d", reports.calls)
	}

	doRequest(srv, http.MethodGet, "/api/reports/weekly?date=2024-01-15", "alice", "")
	if reports.calls != 2 {
		t.Fatalf("expected a fresh service call for the next week, got %d", reports.calls)
	}
}

func TestReportCacheInvalidatedOnMutation(t *testing.T) {
	reports := &fakeReports{daily: core.DailyReport{Date: "2024-01-10"}}
	timer := &fakeTimer{startID: "e1"}
	srv := newTestServer(nil, timer, reports)
	defer srv.Shutdown(context.Background())

	doRequest(srv, http.MethodGet, "/api/reports/daily?date=2024-01-10", "alice", "")
	doRequest(srv, http.MethodPost, "/api/timer/start", "alice",
		`{"clientId":"c1","projectId":"p1"}`)
	doRequest(srv, http.MethodGet, "/api/reports/daily?date=2024-01-10", "alice", "")

	if reports.calls != 2 {
		t.Fatalf("expected cache invalidation to force a second service call, got %d", reports.calls)
	}
}

func TestReportCacheIsPerUser(t *testing.T) {
	reports := &fakeReports{daily: core.DailyReport{Date: "2024-01-10"}}
	srv := newTestServer(nil, nil, reports)
	defer srv.Shutdown(context.Background())

	doRequest(srv, http.MethodGet, "/api/reports/daily?date=2024-01-10", "alice", "")
	doRequest(srv, http.MethodGet, "/api/reports/daily?date=2024-01-10", "bob", "")

	if reports.calls != 2 {
		t.Fatalf("expected distinct cache entries per user, got %d calls", reports.calls)
	}
}

func TestCustomReportPassesQuery(t *testing.T) {
	reports := &fakeReports{custom: core.CustomReport{StartDate: "2024-01-01", EndDate: "2024-01-31"}}
	srv := newTestServer(nil, nil, reports)
	defer srv.Shutdown(context.Background())

	rr := doRequest(srv, http.MethodGet,
		"/api/reports/custom?startDate=2024-01-01&endDate=2024-01-31&clientId=c1", "alice", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var got core.CustomReport
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.StartDate != "2024-01-01" || got.EndDate != "2024-01-31" {
		t.Fatalf("unexpected report range: %+v", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(nil, nil, nil)
	defer srv.Shutdown(context.Background())

	rr := doRequest(srv, http.MethodGet, "/api/clients", "alice", "")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("missing nosniff header, got %q", got)
	}
}
