package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bethropolis/easel/internal/document"
	"github.com/bethropolis/easel/internal/logger"
	"github.com/bethropolis/easel/internal/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	json       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS projects_updated_at ON projects(updated_at DESC);
`

// SQLite is a Store backed by a local SQLite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path. ":memory:"
// opens a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}
	if path == ":memory:" {
		// Each connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: exec schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: ping: %w", err)
	}

	logger.Debugf("sqlite store: opened %s", path)
	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, json, created_at, updated_at FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return p, nil
}

func (s *SQLite) Save(ctx context.Context, id string, snap document.Snapshot) error {
	if snap.IsZero() {
		return fmt.Errorf("save %s: %w", id, document.ErrInvalidSnapshot)
	}
	data := snap.Bytes()
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET json = ?, updated_at = ? WHERE id = ?`,
		string(data), s.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("save %s: %w", id, ErrNotFound)
	}
	metrics.RecordSnapshotSize(len(data))
	return nil
}

func (s *SQLite) Create(ctx context.Context, params CreateParams) (*Project, error) {
	snap, err := initialSnapshot(params)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	now := s.now()
	p := &Project{
		ID:        uuid.NewString(),
		Name:      projectName(params.Name),
		Snapshot:  snap,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, snap.String(), now.UnixNano(), now.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *SQLite) List(ctx context.Context, page Page) (*ProjectPage, error) {
	page = page.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, fmt.Errorf("list projects: count: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, json, created_at, updated_at FROM projects
		 ORDER BY updated_at DESC, id ASC LIMIT ? OFFSET ?`,
		page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var data []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		data = append(data, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return newProjectPage(data, page, total), nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*Project, error) {
	var (
		p                Project
		raw              string
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.Name, &raw, &created, &updated); err != nil {
		return nil, err
	}
	snap, err := document.ParseSnapshot([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", p.ID, err)
	}
	p.Snapshot = snap
	p.CreatedAt = time.Unix(0, created)
	p.UpdatedAt = time.Unix(0, updated)
	return &p, nil
}
