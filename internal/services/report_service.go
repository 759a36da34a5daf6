package services

import (
	"context"
	"time"

	"tempo/internal/core"
	"tempo/internal/storage"
)

// ReportService builds the three report shapes from a single scan over a
// user's closed entries. Aggregation state is local to each call.
type ReportService struct {
	store Store
	guard Guard
	now   func() time.Time
}

func NewReportService(store Store) *ReportService {
	return &ReportService{store: store, guard: NewGuard(store), now: time.Now}
}

// CustomQuery selects an explicit inclusive day range with optional
// client/project filters.
type CustomQuery struct {
	StartDate string
	EndDate   string
	ClientID  string
	ProjectID string
}

// Daily reports a single calendar day, defaulting to today (UTC).
func (s *ReportService) Daily(ctx context.Context, userID, date string) (core.DailyReport, error) {
	if userID == "" {
		return core.DailyReport{}, core.ErrUnauthorized
	}
	if date == "" {
		date = core.Today(s.now())
	} else if _, err := core.ParseDay(date); err != nil {
		return core.DailyReport{}, err
	}

	tree, err := s.aggregate(ctx, userID, storage.EntryRangeQuery{
		UserID:    userID,
		StartDate: date,
		EndDate:   date,
	}, false)
	if err != nil {
		return core.DailyReport{}, err
	}
	return core.DailyReport{
		Date:      date,
		TotalTime: tree.TotalTime(),
		Clients:   tree.ClientProjectTotals(),
	}, nil
}

// Weekly reports the Sunday..Saturday week containing the reference date,
// defaulting to the week of today (UTC).
func (s *ReportService) Weekly(ctx context.Context, userID, date string) (core.WeeklyReport, error) {
	if userID == "" {
		return core.WeeklyReport{}, core.ErrUnauthorized
	}
	ref := s.now().UTC()
	if date != "" {
		parsed, err := core.ParseDay(date)
		if err != nil {
			return core.WeeklyReport{}, err
		}
		ref = parsed
	}
	startDate, endDate := core.WeekOf(ref)

	tree, err := s.aggregate(ctx, userID, storage.EntryRangeQuery{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
	}, false)
	if err != nil {
		return core.WeeklyReport{}, err
	}
	return core.WeeklyReport{
		StartDate: startDate,
		EndDate:   endDate,
		TotalTime: tree.TotalTime(),
		Clients:   tree.ClientTotals(),
	}, nil
}

// Custom reports an explicit range with optional filters, including the
// entry lines under each project (newest date first).
func (s *ReportService) Custom(ctx context.Context, userID string, q CustomQuery) (core.CustomReport, error) {
	if userID == "" {
		return core.CustomReport{}, core.ErrUnauthorized
	}
	if err := core.ValidateRange(q.StartDate, q.EndDate); err != nil {
		return core.CustomReport{}, err
	}
	if q.ClientID != "" {
		if _, err := s.guard.Client(ctx, q.ClientID, userID); err != nil {
			return core.CustomReport{}, err
		}
	}
	if q.ProjectID != "" {
		if _, err := s.guard.Project(ctx, q.ProjectID, userID); err != nil {
			return core.CustomReport{}, err
		}
	}

	tree, err := s.aggregate(ctx, userID, storage.EntryRangeQuery{
		UserID:    userID,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		ClientID:  q.ClientID,
		ProjectID: q.ProjectID,
	}, true)
	if err != nil {
		return core.CustomReport{}, err
	}
	return core.CustomReport{
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		TotalTime: tree.TotalTime(),
		Clients:   tree.Detailed(),
	}, nil
}

// aggregate folds the matching closed entries into a report tree. Every
// referenced client and project is re-validated through the ownership
// guard (once per distinct id); a failure aborts the whole report rather
// than silently dropping rows, since entries referencing not-owned
// entities signal corrupted data.
func (s *ReportService) aggregate(ctx context.Context, userID string, q storage.EntryRangeQuery, keepEntries bool) (*core.ReportTree, error) {
	entries, err := s.store.ListClosedEntries(ctx, q)
	if err != nil {
		return nil, err
	}

	clients := make(map[string]core.Client)
	projects := make(map[string]core.Project)
	tree := core.NewReportTree(keepEntries)

	for _, entry := range entries {
		client, ok := clients[entry.ClientID]
		if !ok {
			client, err = s.guard.Client(ctx, entry.ClientID, userID)
			if err != nil {
				return nil, err
			}
			clients[entry.ClientID] = client
		}
		project, ok := projects[entry.ProjectID]
		if !ok {
			project, err = s.guard.Project(ctx, entry.ProjectID, userID)
			if err != nil {
				return nil, err
			}
			projects[entry.ProjectID] = project
		}
		tree.Add(entry, client, project)
	}
	return tree, nil
}
