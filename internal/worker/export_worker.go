package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tempo/internal/amqp"
	"tempo/internal/core"
	"tempo/internal/export"
	"tempo/internal/storage"
)

// EntryStore is the slice of the repository the export worker needs.
type EntryStore interface {
	GetEntry(ctx context.Context, id string) (core.TimeEntry, error)
	GetClient(ctx context.Context, id string) (core.Client, error)
	GetProject(ctx context.Context, id string) (core.Project, error)
	GetEntryExportStatus(ctx context.Context, id string) (string, error)
	ListPendingExport(ctx context.Context, limit int) ([]core.TimeEntry, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

// ExportWorker copies closed time entries to the external timesheet.
// Entries arrive through entry-closed messages; a periodic catch-up pass
// sweeps anything the queue missed.
type ExportWorker struct {
	store     EntryStore
	sheet     export.TimesheetWriter
	batchSize int
}

func NewExportWorker(store EntryStore, sheet export.TimesheetWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		sheet:     sheet,
		batchSize: batchSize,
	}
}

// HandleEntryClosed processes one entry-closed message from AMQP.
func (w *ExportWorker) HandleEntryClosed(ctx context.Context, msg *amqp.EntryClosedMessage) error {
	status, err := w.store.GetEntryExportStatus(ctx, msg.EntryID)
	if err != nil {
		return fmt.Errorf("get export status: %w", err)
	}
	if status == storage.ExportSynced {
		slog.DebugContext(ctx, "Entry already exported, skipping", "entry_id", msg.EntryID)
		return nil
	}

	entry, err := w.store.GetEntry(ctx, msg.EntryID)
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}
	return w.exportEntry(ctx, entry)
}

// ProcessPending sweeps one batch of pending entries. Returns the number
// successfully exported.
func (w *ExportWorker) ProcessPending(ctx context.Context) (int, error) {
	entries, err := w.store.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending export: %w", err)
	}

	exported := 0
	for _, entry := range entries {
		if err := w.exportEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry",
				"entry_id", entry.ID, "error", err)
			continue
		}
		exported++
	}
	return exported, nil
}

// StartupCheck runs one catch-up pass at boot so a worker restart never
// strands pending entries.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	n, err := w.ProcessPending(ctx)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Startup export check completed", "exported", n)
	return nil
}

func (w *ExportWorker) exportEntry(ctx context.Context, entry core.TimeEntry) error {
	if entry.Running() {
		slog.WarnContext(ctx, "Skipping export of running entry", "entry_id", entry.ID)
		return nil
	}

	client, err := w.store.GetClient(ctx, entry.ClientID)
	if err != nil {
		return fmt.Errorf("resolve client %s: %w", entry.ClientID, err)
	}
	project, err := w.store.GetProject(ctx, entry.ProjectID)
	if err != nil {
		return fmt.Errorf("resolve project %s: %w", entry.ProjectID, err)
	}

	row := export.TimesheetRow{
		EntryID:     entry.ID,
		Date:        entry.Date,
		ClientName:  client.Name,
		ProjectName: project.Name,
		Description: entry.Description,
		StartTime:   time.UnixMilli(entry.StartTime),
		EndTime:     time.UnixMilli(*entry.EndTime),
		DurationMS:  *entry.Duration,
	}

	ref, err := w.sheet.Append(ctx, row)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, entry.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"entry_id", entry.ID, "error", markErr)
		}
		return fmt.Errorf("append timesheet row: %w", err)
	}

	if err := w.store.MarkExported(ctx, entry.ID); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}

	slog.InfoContext(ctx, "Entry exported to timesheet",
		"entry_id", entry.ID,
		"client", client.Name,
		"project", project.Name,
		"row_ref", ref)
	return nil
}
