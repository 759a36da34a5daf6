package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tempo/internal/core"
)

// TimerService drives the per-user timer: at most one running entry per
// user, start implicitly closes whatever was running, stop is final.
type TimerService struct {
	store     Store
	guard     Guard
	publisher ExportPublisher
	now       func() time.Time
}

// NewTimerService wires the timer over the store. publisher may be nil
// when the export pipeline is disabled.
func NewTimerService(store Store, publisher ExportPublisher) *TimerService {
	return &TimerService{
		store:     store,
		guard:     NewGuard(store),
		publisher: publisher,
		now:       time.Now,
	}
}

// CurrentEntry is the running entry joined with its client and project.
type CurrentEntry struct {
	core.TimeEntry
	Client  core.Client  `json:"client"`
	Project core.Project `json:"project"`
}

// Current returns the user's running entry, or nil when idle.
func (s *TimerService) Current(ctx context.Context, userID string) (*CurrentEntry, error) {
	if userID == "" {
		return nil, core.ErrUnauthorized
	}
	entry, err := s.store.GetRunningEntry(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	client, err := s.guard.Client(ctx, entry.ClientID, userID)
	if err != nil {
		return nil, err
	}
	project, err := s.guard.Project(ctx, entry.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	return &CurrentEntry{TimeEntry: *entry, Client: client, Project: project}, nil
}

// Start opens a new entry against the given client and project. If an
// entry is already running it is closed first, atomically with the new
// insert, so starting while running never errors. Returns the new entry
// id.
func (s *TimerService) Start(ctx context.Context, userID, clientID, projectID, description string) (string, error) {
	if userID == "" {
		return "", core.ErrUnauthorized
	}
	if _, err := s.guard.Client(ctx, clientID, userID); err != nil {
		return "", err
	}
	if _, err := s.guard.Project(ctx, projectID, userID); err != nil {
		return "", err
	}
	if err := core.ValidateEntryDescription(description); err != nil {
		return "", err
	}

	startTime := s.now().UnixMilli()
	entry := core.TimeEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		ClientID:    clientID,
		ProjectID:   projectID,
		StartTime:   startTime,
		Description: description,
		Date:        core.DayOf(startTime),
	}

	autoClosed, err := s.store.StartEntry(ctx, entry)
	if err != nil {
		return "", fmt.Errorf("start time entry: %w", err)
	}
	if autoClosed != nil {
		s.publishClosed(ctx, autoClosed.ID)
	}
	return entry.ID, nil
}

// Stop closes the entry. Stopping an already-stopped entry fails with
// core.ErrEntryAlreadyStopped and changes nothing.
func (s *TimerService) Stop(ctx context.Context, userID, entryID string) error {
	if userID == "" {
		return core.ErrUnauthorized
	}
	entry, err := s.guard.Entry(ctx, entryID, userID)
	if err != nil {
		return err
	}
	if !entry.Running() {
		return core.ErrEntryAlreadyStopped
	}
	if _, err := s.store.StopEntry(ctx, entryID, s.now().UnixMilli()); err != nil {
		return err
	}
	s.publishClosed(ctx, entryID)
	return nil
}

// UpdateDescription edits the entry description; start and end times are
// not editable once set.
func (s *TimerService) UpdateDescription(ctx context.Context, userID, entryID, description string) error {
	if userID == "" {
		return core.ErrUnauthorized
	}
	if _, err := s.guard.Entry(ctx, entryID, userID); err != nil {
		return err
	}
	if err := core.ValidateEntryDescription(description); err != nil {
		return err
	}
	return s.store.UpdateEntryDescription(ctx, entryID, description)
}

// publishClosed hands the entry to the export pipeline. Failures are
// logged, never surfaced: the entry is safely closed locally and the
// worker's catch-up pass will pick it up.
func (s *TimerService) publishClosed(ctx context.Context, entryID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEntryClosed(ctx, entryID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry closed message",
			"entry_id", entryID, "error", err)
	}
}
