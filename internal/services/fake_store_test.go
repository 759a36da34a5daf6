package services

import (
	"context"
	"sort"

	"tempo/internal/core"
	"tempo/internal/storage"
)

// fakeStore is an in-memory Store holding entities by id. StartEntry and
// StopEntry mirror the repository's transactional behavior closely enough
// for service-level tests.
type fakeStore struct {
	clients  map[string]core.Client
	projects map[string]core.Project
	entries  map[string]core.TimeEntry

	listErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:  make(map[string]core.Client),
		projects: make(map[string]core.Project),
		entries:  make(map[string]core.TimeEntry),
	}
}

func (f *fakeStore) CreateClient(ctx context.Context, c core.Client) error {
	f.clients[c.ID] = c
	return nil
}

func (f *fakeStore) GetClient(ctx context.Context, id string) (core.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return core.Client{}, core.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ListActiveClients(ctx context.Context, userID string) ([]core.Client, error) {
	var out []core.Client
	for _, c := range f.clients {
		if c.UserID == userID && c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateClient(ctx context.Context, c core.Client) error {
	if _, ok := f.clients[c.ID]; !ok {
		return core.ErrNotFound
	}
	f.clients[c.ID] = c
	return nil
}

func (f *fakeStore) CreateProject(ctx context.Context, p core.Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeStore) GetProject(ctx context.Context, id string) (core.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return core.Project{}, core.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListActiveProjects(ctx context.Context, userID, clientID string) ([]core.Project, error) {
	var out []core.Project
	for _, p := range f.projects {
		if p.UserID != userID || !p.IsActive {
			continue
		}
		if clientID != "" && p.ClientID != clientID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateProject(ctx context.Context, p core.Project) error {
	if _, ok := f.projects[p.ID]; !ok {
		return core.ErrNotFound
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeStore) GetEntry(ctx context.Context, id string) (core.TimeEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return core.TimeEntry{}, core.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) GetRunningEntry(ctx context.Context, userID string) (*core.TimeEntry, error) {
	for _, e := range f.entries {
		if e.UserID == userID && e.Running() {
			running := e
			return &running, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) StartEntry(ctx context.Context, entry core.TimeEntry) (*core.TimeEntry, error) {
	var autoClosed *core.TimeEntry
	for id, e := range f.entries {
		if e.UserID == entry.UserID && e.Running() {
			end := entry.StartTime
			dur := end - e.StartTime
			e.EndTime = &end
			e.Duration = &dur
			f.entries[id] = e
			closed := e
			autoClosed = &closed
			break
		}
	}
	f.entries[entry.ID] = entry
	return autoClosed, nil
}

func (f *fakeStore) StopEntry(ctx context.Context, id string, endTime int64) (core.TimeEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return core.TimeEntry{}, core.ErrNotFound
	}
	if !e.Running() {
		return core.TimeEntry{}, core.ErrEntryAlreadyStopped
	}
	dur := endTime - e.StartTime
	e.EndTime = &endTime
	e.Duration = &dur
	f.entries[id] = e
	return e, nil
}

func (f *fakeStore) UpdateEntryDescription(ctx context.Context, id, description string) error {
	e, ok := f.entries[id]
	if !ok {
		return core.ErrNotFound
	}
	e.Description = description
	f.entries[id] = e
	return nil
}

func (f *fakeStore) ListClosedEntries(ctx context.Context, q storage.EntryRangeQuery) ([]core.TimeEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []core.TimeEntry
	for _, e := range f.entries {
		if e.UserID != q.UserID || e.Running() {
			continue
		}
		if e.Date < q.StartDate || e.Date > q.EndDate {
			continue
		}
		if q.ClientID != "" && e.ClientID != q.ClientID {
			continue
		}
		if q.ProjectID != "" && e.ProjectID != q.ProjectID {
			continue
		}
		out = append(out, e)
	}
	// Newest date first, then by id for stability, same shape as the SQL
	// ordering.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].StartTime > out[j].StartTime
	})
	return out, nil
}

// fakePublisher records published entry ids.
type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishEntryClosed(ctx context.Context, entryID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, entryID)
	return nil
}

// seed helpers used across the service tests.

func seedClient(f *fakeStore, id, userID, name string) core.Client {
	c := core.Client{ID: id, UserID: userID, Name: name, IsActive: true}
	f.clients[id] = c
	return c
}

func seedProject(f *fakeStore, id, userID, clientID, name string) core.Project {
	p := core.Project{ID: id, UserID: userID, ClientID: clientID, Name: name, IsActive: true}
	f.projects[id] = p
	return p
}

func seedClosedEntry(f *fakeStore, id, userID, clientID, projectID, date string, start, duration int64) core.TimeEntry {
	end := start + duration
	e := core.TimeEntry{
		ID:        id,
		UserID:    userID,
		ClientID:  clientID,
		ProjectID: projectID,
		StartTime: start,
		EndTime:   &end,
		Duration:  &duration,
		Date:      date,
	}
	f.entries[id] = e
	return e
}
