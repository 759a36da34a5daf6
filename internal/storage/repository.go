package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tempo/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the entity store behind the tracker: clients,
// projects and time entries, each scoped to an owning user.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// The pragmas ride the DSN so they apply to every connection in the
	// pool, not just the one a PRAGMA statement happens to run on.
	// Foreign keys are off by default in SQLite.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CLIENTS

func (r *SQLiteRepository) CreateClient(ctx context.Context, c core.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, user_id, name, description, is_active) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Description, boolToInt(c.IsActive))
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}

	slog.InfoContext(ctx, "Client saved",
		"id", c.ID,
		"name", c.Name)
	return nil
}

// GetClient looks a client up by id regardless of owner. Missing rows map
// to core.ErrNotFound; ownership is the caller's concern.
func (r *SQLiteRepository) GetClient(ctx context.Context, id string) (core.Client, error) {
	var c core.Client
	var active int
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, is_active FROM clients WHERE id = ?`, id).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Client{}, core.ErrNotFound
	}
	if err != nil {
		return core.Client{}, fmt.Errorf("get client: %w", err)
	}
	c.IsActive = active != 0
	return c, nil
}

// ListActiveClients returns the user's active clients in creation order.
func (r *SQLiteRepository) ListActiveClients(ctx context.Context, userID string) ([]core.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, description, is_active
		 FROM clients WHERE user_id = ? AND is_active = 1
		 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active clients: %w", err)
	}
	defer rows.Close()

	var out []core.Client
	for rows.Next() {
		var c core.Client
		var active int
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &active); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		c.IsActive = active != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateClient(ctx context.Context, c core.Client) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE clients SET name = ?, description = ?, is_active = ? WHERE id = ?`,
		c.Name, c.Description, boolToInt(c.IsActive), c.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

// PROJECTS

func (r *SQLiteRepository) CreateProject(ctx context.Context, p core.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, client_id, name, description, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.ClientID, p.Name, p.Description, boolToInt(p.IsActive))
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	slog.InfoContext(ctx, "Project saved",
		"id", p.ID,
		"client_id", p.ClientID,
		"name", p.Name)
	return nil
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (core.Project, error) {
	var p core.Project
	var active int
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, client_id, name, description, is_active FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.UserID, &p.ClientID, &p.Name, &p.Description, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Project{}, core.ErrNotFound
	}
	if err != nil {
		return core.Project{}, fmt.Errorf("get project: %w", err)
	}
	p.IsActive = active != 0
	return p, nil
}

// ListActiveProjects returns the user's active projects, optionally
// restricted to one client when clientID is non-empty.
func (r *SQLiteRepository) ListActiveProjects(ctx context.Context, userID, clientID string) ([]core.Project, error) {
	query := `SELECT id, user_id, client_id, name, description, is_active
	          FROM projects WHERE user_id = ? AND is_active = 1`
	args := []any{userID}
	if clientID != "" {
		query += ` AND client_id = ?`
		args = append(args, clientID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active projects: %w", err)
	}
	defer rows.Close()

	var out []core.Project
	for rows.Next() {
		var p core.Project
		var active int
		if err := rows.Scan(&p.ID, &p.UserID, &p.ClientID, &p.Name, &p.Description, &active); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.IsActive = active != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateProject(ctx context.Context, p core.Project) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE projects SET client_id = ?, name = ?, description = ?, is_active = ? WHERE id = ?`,
		p.ClientID, p.Name, p.Description, boolToInt(p.IsActive), p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
