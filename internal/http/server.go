package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tempo/internal/cache"
	"tempo/internal/core"
	"tempo/internal/middleware/identity"
	"tempo/internal/middleware/ratelimit"
	"tempo/internal/middleware/trace"
	"tempo/internal/services"
)

// CatalogService is the client/project directory surface the handlers use.
type CatalogService interface {
	Clients(ctx context.Context, userID string) ([]core.Client, error)
	CreateClient(ctx context.Context, userID, name, description string) (string, error)
	UpdateClient(ctx context.Context, userID string, upd services.ClientUpdate) error
	Projects(ctx context.Context, userID, clientID string) ([]core.Project, error)
	CreateProject(ctx context.Context, userID, clientID, name, description string) (string, error)
	UpdateProject(ctx context.Context, userID string, upd services.ProjectUpdate) error
}

// TimerService is the timer surface the handlers use.
type TimerService interface {
	Current(ctx context.Context, userID string) (*services.CurrentEntry, error)
	Start(ctx context.Context, userID, clientID, projectID, description string) (string, error)
	Stop(ctx context.Context, userID, entryID string) error
	UpdateDescription(ctx context.Context, userID, entryID, description string) error
}

// ReportService is the reporting surface the handlers use.
type ReportService interface {
	Daily(ctx context.Context, userID, date string) (core.DailyReport, error)
	Weekly(ctx context.Context, userID, date string) (core.WeeklyReport, error)
	Custom(ctx context.Context, userID string, q services.CustomQuery) (core.CustomReport, error)
}

type Server struct {
	http.Server

	catalog CatalogService
	timer   TimerService
	reports ReportService

	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	// Daily and weekly reports are read far more often than entries
	// change, so they are cached per user+window and invalidated
	// wholesale on any mutation.
	dailyCache  *cache.LRUCache[core.DailyReport]
	weeklyCache *cache.LRUCache[core.WeeklyReport]
	cacheMgr    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. identityHeader names the trusted header carrying the user
// subject.
func NewServer(addr, identityHeader string, catalog CatalogService, timer TimerService, reports ReportService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		catalog:     catalog,
		timer:       timer,
		reports:     reports,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:      trace.NewMiddleware(extractClientIP),
		dailyCache:  cache.NewLRUCache[core.DailyReport](200, 5*time.Minute),
		weeklyCache: cache.NewLRUCache[core.WeeklyReport](200, 5*time.Minute),
		cacheMgr:    cache.NewManager(),
	}

	s.cacheMgr.Register(s.dailyCache)
	s.cacheMgr.Register(s.weeklyCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	ident := identity.NewMiddleware(identityHeader)
	api := func(h http.HandlerFunc) http.Handler {
		return s.tracer.Middleware(withSecurityHeaders(s.withRateLimit(ident.Middleware(h))))
	}

	mux.Handle("GET /api/clients", api(s.handleListClients))
	mux.Handle("POST /api/clients", api(s.handleCreateClient))
	mux.Handle("PATCH /api/clients/{id}", api(s.handleUpdateClient))

	mux.Handle("GET /api/projects", api(s.handleListProjects))
	mux.Handle("POST /api/projects", api(s.handleCreateProject))
	mux.Handle("PATCH /api/projects/{id}", api(s.handleUpdateProject))

	mux.Handle("GET /api/timer/current", api(s.handleTimerCurrent))
	mux.Handle("POST /api/timer/start", api(s.handleTimerStart))
	mux.Handle("POST /api/timer/stop", api(s.handleTimerStop))
	mux.Handle("PATCH /api/timer/entry/{id}", api(s.handleUpdateEntry))

	mux.Handle("GET /api/reports/daily", api(s.handleDailyReport))
	mux.Handle("GET /api/reports/weekly", api(s.handleWeeklyReport))
	mux.Handle("GET /api/reports/custom", api(s.handleCustomReport))

	return s
}

// withRateLimit throttles mutating requests per client IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && !s.rateLimiter.Allow(extractClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// invalidateReports drops every cached report for the user. Called on any
// mutation that could change report contents.
func (s *Server) invalidateReports(userID string) {
	s.dailyCache.InvalidateUser(userID)
	s.weeklyCache.InvalidateUser(userID)
}

// Metrics exposes request counters for diagnostics.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown gracefully stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
