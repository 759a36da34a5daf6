package services

import (
	"context"

	"tempo/internal/core"
	"tempo/internal/storage"
)

// Store is the entity store surface the services need. Implemented by
// storage.SQLiteRepository; tests substitute an in-memory fake.
type Store interface {
	CreateClient(ctx context.Context, c core.Client) error
	GetClient(ctx context.Context, id string) (core.Client, error)
	ListActiveClients(ctx context.Context, userID string) ([]core.Client, error)
	UpdateClient(ctx context.Context, c core.Client) error

	CreateProject(ctx context.Context, p core.Project) error
	GetProject(ctx context.Context, id string) (core.Project, error)
	ListActiveProjects(ctx context.Context, userID, clientID string) ([]core.Project, error)
	UpdateProject(ctx context.Context, p core.Project) error

	GetEntry(ctx context.Context, id string) (core.TimeEntry, error)
	GetRunningEntry(ctx context.Context, userID string) (*core.TimeEntry, error)
	StartEntry(ctx context.Context, entry core.TimeEntry) (*core.TimeEntry, error)
	StopEntry(ctx context.Context, id string, endTime int64) (core.TimeEntry, error)
	UpdateEntryDescription(ctx context.Context, id, description string) error
	ListClosedEntries(ctx context.Context, q storage.EntryRangeQuery) ([]core.TimeEntry, error)
}

// ExportPublisher hands a freshly closed entry to the timesheet export
// pipeline. Implemented by the AMQP client; a nil publisher disables
// export.
type ExportPublisher interface {
	PublishEntryClosed(ctx context.Context, entryID string) error
}
