// Package store persists project view counts in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// ProjectViews is the view tally for one project.
type ProjectViews struct {
	ProjectID  string    `json:"projectId"`
	Views      int64     `json:"views"`
	LastViewed time.Time `json:"lastViewed"`
}

// OpenDB opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS project_views (
			project_id TEXT PRIMARY KEY,
			views INTEGER NOT NULL DEFAULT 0,
			last_viewed INTEGER NOT NULL
		);
	`)
	return err
}

// IncrementView records one view of projectID and returns the new total.
func (d *DB) IncrementView(ctx context.Context, projectID string) (int64, error) {
	if projectID == "" {
		return 0, errors.New("store: empty project id")
	}
	var views int64
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO project_views (project_id, views, last_viewed)
		VALUES (?, 1, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			views = views + 1,
			last_viewed = excluded.last_viewed
		RETURNING views`,
		projectID, d.now().UnixMilli(),
	).Scan(&views)
	if err != nil {
		return 0, fmt.Errorf("incrementing views for %s: %w", projectID, err)
	}
	return views, nil
}

// Views returns the tally for projectID; unknown projects have zero views.
func (d *DB) Views(ctx context.Context, projectID string) (ProjectViews, error) {
	pv := ProjectViews{ProjectID: projectID}
	var last int64
	err := d.db.QueryRowContext(ctx,
		`SELECT views, last_viewed FROM project_views WHERE project_id = ?`, projectID,
	).Scan(&pv.Views, &last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return pv, nil
	case err != nil:
		return pv, fmt.Errorf("reading views for %s: %w", projectID, err)
	}
	pv.LastViewed = time.UnixMilli(last).UTC()
	return pv, nil
}

// Top returns up to limit projects by descending view count.
func (d *DB) Top(ctx context.Context, limit int) ([]ProjectViews, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT project_id, views, last_viewed FROM project_views
		 ORDER BY views DESC, project_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing views: %w", err)
	}
	defer rows.Close()

	var out []ProjectViews
	for rows.Next() {
		var pv ProjectViews
		var last int64
		if err := rows.Scan(&pv.ProjectID, &pv.Views, &last); err != nil {
			return nil, fmt.Errorf("scanning views: %w", err)
		}
		pv.LastViewed = time.UnixMilli(last).UTC()
		out = append(out, pv)
	}
	return out, rows.Err()
}
