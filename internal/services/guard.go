package services

import (
	"context"

	"tempo/internal/core"
)

// Guard binds every entity access to the requesting user: a lookup fails
// with core.ErrNotFound when the id is unknown and core.ErrForbidden when
// the entity belongs to someone else. Every id-taking operation runs
// through it, including transitively (creating a project validates the
// referenced client first).
type Guard struct {
	store Store
}

func NewGuard(store Store) Guard {
	return Guard{store: store}
}

func (g Guard) Client(ctx context.Context, id, userID string) (core.Client, error) {
	c, err := g.store.GetClient(ctx, id)
	if err != nil {
		return core.Client{}, err
	}
	if c.UserID != userID {
		return core.Client{}, core.ErrForbidden
	}
	return c, nil
}

func (g Guard) Project(ctx context.Context, id, userID string) (core.Project, error) {
	p, err := g.store.GetProject(ctx, id)
	if err != nil {
		return core.Project{}, err
	}
	if p.UserID != userID {
		return core.Project{}, core.ErrForbidden
	}
	return p, nil
}

func (g Guard) Entry(ctx context.Context, id, userID string) (core.TimeEntry, error) {
	e, err := g.store.GetEntry(ctx, id)
	if err != nil {
		return core.TimeEntry{}, err
	}
	if e.UserID != userID {
		return core.TimeEntry{}, core.ErrForbidden
	}
	return e, nil
}
