// Package memory holds an in-memory timesheet used in tests and local
// runs without Google Sheets credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tempo/internal/export"
)

type Store struct {
	mu   sync.Mutex
	rows []export.TimesheetRow
}

var _ export.TimesheetWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row export.TimesheetRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []export.TimesheetRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]export.TimesheetRow, len(s.rows))
	copy(out, s.rows)
	return out
}
