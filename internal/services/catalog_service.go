package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"tempo/internal/core"
)

// CatalogService manages the client and project directory. Both kinds are
// soft-deleted via IsActive and never removed, so historical entries keep
// resolving.
type CatalogService struct {
	store Store
	guard Guard
}

func NewCatalogService(store Store) *CatalogService {
	return &CatalogService{store: store, guard: NewGuard(store)}
}

// ClientUpdate is a partial update; nil fields are left untouched.
type ClientUpdate struct {
	ID          string
	Name        *string
	Description *string
	IsActive    *bool
}

// ProjectUpdate is a partial update; nil fields are left untouched.
// Changing ClientID re-validates the new client's ownership.
type ProjectUpdate struct {
	ID          string
	ClientID    *string
	Name        *string
	Description *string
	IsActive    *bool
}

func (s *CatalogService) Clients(ctx context.Context, userID string) ([]core.Client, error) {
	if userID == "" {
		return nil, core.ErrUnauthorized
	}
	return s.store.ListActiveClients(ctx, userID)
}

func (s *CatalogService) CreateClient(ctx context.Context, userID, name, description string) (string, error) {
	if userID == "" {
		return "", core.ErrUnauthorized
	}
	c := core.Client{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	if err := s.store.CreateClient(ctx, c); err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}
	return c.ID, nil
}

func (s *CatalogService) UpdateClient(ctx context.Context, userID string, upd ClientUpdate) error {
	if userID == "" {
		return core.ErrUnauthorized
	}
	c, err := s.guard.Client(ctx, upd.ID, userID)
	if err != nil {
		return err
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.IsActive != nil {
		c.IsActive = *upd.IsActive
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateClient(ctx, c); err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	slog.InfoContext(ctx, "Client updated", "id", c.ID, "active", c.IsActive)
	return nil
}

// Projects lists the user's active projects. A non-empty clientID narrows
// the list and is ownership-checked first.
func (s *CatalogService) Projects(ctx context.Context, userID, clientID string) ([]core.Project, error) {
	if userID == "" {
		return nil, core.ErrUnauthorized
	}
	if clientID != "" {
		if _, err := s.guard.Client(ctx, clientID, userID); err != nil {
			return nil, err
		}
	}
	return s.store.ListActiveProjects(ctx, userID, clientID)
}

func (s *CatalogService) CreateProject(ctx context.Context, userID, clientID, name, description string) (string, error) {
	if userID == "" {
		return "", core.ErrUnauthorized
	}
	if _, err := s.guard.Client(ctx, clientID, userID); err != nil {
		return "", err
	}
	p := core.Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		ClientID:    clientID,
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	if err := p.Validate(); err != nil {
		return "", err
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return "", fmt.Errorf("create project: %w", err)
	}
	return p.ID, nil
}

func (s *CatalogService) UpdateProject(ctx context.Context, userID string, upd ProjectUpdate) error {
	if userID == "" {
		return core.ErrUnauthorized
	}
	p, err := s.guard.Project(ctx, upd.ID, userID)
	if err != nil {
		return err
	}
	if upd.ClientID != nil && *upd.ClientID != p.ClientID {
		if _, err := s.guard.Client(ctx, *upd.ClientID, userID); err != nil {
			return err
		}
		p.ClientID = *upd.ClientID
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	slog.InfoContext(ctx, "Project updated", "id", p.ID, "client_id", p.ClientID, "active", p.IsActive)
	return nil
}
