// Package store persists node positions and the viewport per dataset in a
// SQLite file (modernc.org/sqlite, no cgo). The dataset id is the content
// hash from pkg/content, so editing a dataset starts a fresh layout only
// for the nodes that did not survive (see canvas.Positions.Reconcile).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/conceptmap/pkg/canvas"
	"github.com/vanderheijden86/conceptmap/pkg/debug"
	"github.com/vanderheijden86/conceptmap/pkg/metrics"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// SchemaVersion is recorded in the meta table.
const SchemaVersion = 1

// ErrNotFound is returned when nothing was saved for a dataset.
var ErrNotFound = errors.New("store: nothing saved for dataset")

// Store is a handle on the positions database. It is safe for concurrent
// use; database/sql serializes access.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	debug.Log("store: opened %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS positions (
			dataset TEXT NOT NULL,
			node_key TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			PRIMARY KEY (dataset, node_key)
		)`,
		`CREATE TABLE IF NOT EXISTS viewports (
			dataset TEXT PRIMARY KEY,
			pan_x REAL NOT NULL,
			pan_y REAL NOT NULL,
			scale REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, q := range stmts {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`,
		fmt.Sprint(SchemaVersion))
	return err
}

// SavePositions replaces every saved position of dataset. Non-finite
// coordinates are skipped.
func (s *Store) SavePositions(ctx context.Context, dataset string, positions map[string]model.Point) error {
	defer metrics.Timer(metrics.StoreSave)()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE dataset = ?`, dataset); err != nil {
		return fmt.Errorf("clear positions: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO positions (dataset, node_key, x, y) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	skipped := 0
	for key, p := range positions {
		if !finite(p.X) || !finite(p.Y) {
			skipped++
			continue
		}
		if _, err := stmt.ExecContext(ctx, dataset, key, p.X, p.Y); err != nil {
			return fmt.Errorf("insert %s: %w", key, err)
		}
	}
	debug.LogIf(skipped > 0, "store: skipped %d non-finite positions", skipped)
	return tx.Commit()
}

// LoadPositions returns the saved positions of dataset, or ErrNotFound.
func (s *Store) LoadPositions(ctx context.Context, dataset string) (map[string]model.Point, error) {
	defer metrics.Timer(metrics.StoreLoad)()

	rows, err := s.db.QueryContext(ctx, `SELECT node_key, x, y FROM positions WHERE dataset = ?`, dataset)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.Point)
	for rows.Next() {
		var key string
		var p model.Point
		if err := rows.Scan(&key, &p.X, &p.Y); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		out[key] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// SaveViewport stores the viewport of dataset.
func (s *Store) SaveViewport(ctx context.Context, dataset string, vp canvas.ViewportState) error {
	defer metrics.Timer(metrics.StoreSave)()

	if !finite(vp.Pan.X) || !finite(vp.Pan.Y) || !finite(vp.Scale) || vp.Scale <= 0 {
		return fmt.Errorf("invalid viewport %+v", vp)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO viewports (dataset, pan_x, pan_y, scale) VALUES (?, ?, ?, ?)`,
		dataset, vp.Pan.X, vp.Pan.Y, vp.Scale)
	if err != nil {
		return fmt.Errorf("save viewport: %w", err)
	}
	return nil
}

// LoadViewport returns the saved viewport of dataset, or ErrNotFound.
func (s *Store) LoadViewport(ctx context.Context, dataset string) (canvas.ViewportState, error) {
	defer metrics.Timer(metrics.StoreLoad)()

	var vp canvas.ViewportState
	err := s.db.QueryRowContext(ctx,
		`SELECT pan_x, pan_y, scale FROM viewports WHERE dataset = ?`, dataset,
	).Scan(&vp.Pan.X, &vp.Pan.Y, &vp.Scale)
	if errors.Is(err, sql.ErrNoRows) {
		return canvas.ViewportState{}, ErrNotFound
	}
	if err != nil {
		return canvas.ViewportState{}, fmt.Errorf("load viewport: %w", err)
	}
	return vp, nil
}

// Forget deletes everything saved for dataset.
func (s *Store) Forget(ctx context.Context, dataset string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	for _, q := range []string{
		`DELETE FROM positions WHERE dataset = ?`,
		`DELETE FROM viewports WHERE dataset = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, dataset); err != nil {
			return fmt.Errorf("forget %s: %w", dataset, err)
		}
	}
	return tx.Commit()
}

// Datasets lists every dataset id with saved state.
func (s *Store) Datasets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dataset FROM positions UNION SELECT dataset FROM viewports ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
