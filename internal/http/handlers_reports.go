package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tempo/internal/cache"
	"tempo/internal/core"
	"tempo/internal/middleware/identity"
	"tempo/internal/services"
)

// handleDailyReport reports a single calendar day, today by default.
func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserID(r.Context())
	date := strings.TrimSpace(r.URL.Query().Get("date"))

	// Key on the resolved day: a key built from the empty default would
	// keep serving yesterday after midnight until the TTL expires.
	day := date
	if day == "" {
		day = core.Today(time.Now())
	}
	key := cache.Key(userID, "daily", day)
	if report, found := s.dailyCache.Get(key); found {
		slog.DebugContext(r.Context(), "Daily report cache hit", "date", date)
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err := s.reports.Daily(r.Context(), userID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.dailyCache.Set(key, report)
	writeJSON(w, http.StatusOK, report)
}

// handleWeeklyReport reports the Sunday..Saturday week containing the
// reference date, this week by default.
func (s *Server) handleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserID(r.Context())
	date := strings.TrimSpace(r.URL.Query().Get("date"))

	// Key on the week's start day so every date inside one week shares a
	// cache entry and the empty default rolls over with the calendar.
	week := date
	if week == "" {
		week = core.Today(time.Now())
	}
	if day, err := core.ParseDay(week); err == nil {
		week, _ = core.WeekOf(day)
	}
	key := cache.Key(userID, "weekly", week)
	if report, found := s.weeklyCache.Get(key); found {
		slog.DebugContext(r.Context(), "Weekly report cache hit", "date", date)
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err := s.reports.Weekly(r.Context(), userID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.weeklyCache.Set(key, report)
	writeJSON(w, http.StatusOK, report)
}

// handleCustomReport reports an explicit inclusive range with optional
// client/project filters and per-entry detail. Custom ranges are too
// varied to be worth caching.
func (s *Server) handleCustomReport(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserID(r.Context())
	q := r.URL.Query()

	report, err := s.reports.Custom(r.Context(), userID, services.CustomQuery{
		StartDate: strings.TrimSpace(q.Get("startDate")),
		EndDate:   strings.TrimSpace(q.Get("endDate")),
		ClientID:  strings.TrimSpace(q.Get("clientId")),
		ProjectID: strings.TrimSpace(q.Get("projectId")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
