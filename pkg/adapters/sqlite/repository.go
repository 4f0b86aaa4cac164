// Package sqlite implements core.Store on a local SQLite database using the
// pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/manifolded/graisse-prompt-versioning/pkg/core"
)

// Config for opening a repository.
type Config struct {
	// Path of the database file. Created on first write if absent.
	Path string

	Logger *slog.Logger
}

// Repository is the SQLite-backed store for fragments and masters.
type Repository struct {
	db  *sql.DB
	log *slog.Logger

	queries
}

// Open opens (or creates) the database file and applies the pragmas the
// store relies on. The schema is not created here; see Initialize.
func Open(cfg Config) (*Repository, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}
	// The single-writer model does not need a connection pool, and a pool
	// would let two connections race on the is_current flip.
	db.SetMaxOpenConns(1)

	r := &Repository{db: db, log: logger}
	r.queries = queries{q: db}
	return r, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error { return r.db.Close() }

const schemaFragments = `
CREATE TABLE fragments (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    type           TEXT NOT NULL,
    parent_id      INTEGER,
    version        TEXT NOT NULL,
    content        TEXT NOT NULL,
    commit_message TEXT NOT NULL,
    created_at     TEXT NOT NULL
);
CREATE UNIQUE INDEX idx_fragments_content ON fragments(content);
`

const schemaMasters = `
CREATE TABLE masters (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    parent_id      INTEGER,
    version        TEXT NOT NULL,
    contents       TEXT NOT NULL,
    is_current     INTEGER NOT NULL DEFAULT 0,
    commit_message TEXT NOT NULL,
    created_at     TEXT NOT NULL
);
CREATE UNIQUE INDEX idx_masters_contents ON masters(contents);
CREATE UNIQUE INDEX idx_masters_current ON masters(is_current) WHERE is_current = 1;
`

// Initialize creates both tables and their indexes in one transaction. It
// refuses to touch a database where either table already exists.
func (r *Repository) Initialize(ctx context.Context) error {
	for _, table := range []string{"fragments", "masters"} {
		exists, err := r.tableExists(ctx, table)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("sqlite: cannot initialize: table %q already exists", table)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()
	for _, stmt := range []string{schemaFragments, schemaMasters} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: create schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit schema: %w", err)
	}
	r.log.Debug("schema initialized")
	return nil
}

// Ready reports whether both tables exist.
func (r *Repository) Ready(ctx context.Context) (bool, error) {
	for _, table := range []string{"fragments", "masters"} {
		exists, err := r.tableExists(ctx, table)
		if err != nil || !exists {
			return false, err
		}
	}
	return true, nil
}

func (r *Repository) tableExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: table lookup: %w", err)
	}
	return true, nil
}

// Begin starts a unit of work.
func (r *Repository) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin: %w", err)
	}
	return &Tx{tx: tx, queries: queries{q: tx}}, nil
}

// Fragments returns every fragment row ordered by id. Not part of the core
// store contract; used for inspection and by tests comparing whole-store
// snapshots.
func (r *Repository) Fragments(ctx context.Context) ([]core.Fragment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+fragmentCols+` FROM fragments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list fragments: %w", err)
	}
	defer rows.Close()
	var out []core.Fragment
	for rows.Next() {
		f, err := scanFragment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// Tx implements core.Tx over one SQLite transaction.
type Tx struct {
	tx *sql.Tx

	queries
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// dbtx is the subset of *sql.DB/*sql.Tx the shared query code needs.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements core.Queries and core.Mutations against either a plain
// connection or an open transaction.
type queries struct {
	q dbtx
}

const fragmentCols = `id, type, parent_id, version, content, commit_message, created_at`
const masterCols = `id, parent_id, version, contents, is_current, commit_message, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFragment(row rowScanner) (*core.Fragment, error) {
	var f core.Fragment
	var parent sql.NullInt64
	var version, created string
	err := row.Scan(&f.ID, &f.Type, &parent, &version, &f.Content, &f.CommitMessage, &created)
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan fragment: %w", err)
	}
	v, err := core.ParseVersion(version)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fragment %d: %w", f.ID, err)
	}
	f.Version = v
	if parent.Valid {
		id := parent.Int64
		f.ParentID = &id
	}
	f.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fragment %d created_at: %w", f.ID, err)
	}
	return &f, nil
}

func scanMaster(row rowScanner) (*core.Master, error) {
	var m core.Master
	var parent sql.NullInt64
	var version, contents, created string
	var current int
	err := row.Scan(&m.ID, &parent, &version, &contents, &current, &m.CommitMessage, &created)
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan master: %w", err)
	}
	v, err := core.ParseVersion(version)
	if err != nil {
		return nil, fmt.Errorf("sqlite: master %d: %w", m.ID, err)
	}
	m.Version = v
	m.FragmentIDs, err = decodeIDs(contents)
	if err != nil {
		return nil, fmt.Errorf("sqlite: master %d: %w", m.ID, err)
	}
	if parent.Valid {
		id := parent.Int64
		m.ParentID = &id
	}
	m.IsCurrent = current == 1
	m.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("sqlite: master %d created_at: %w", m.ID, err)
	}
	return &m, nil
}

func (q queries) FragmentByContent(ctx context.Context, content string) (*core.Fragment, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+fragmentCols+` FROM fragments WHERE content = ?`, content)
	f, err := scanFragment(row)
	if isNoRows(err) {
		return nil, nil
	}
	return f, err
}

func (q queries) FragmentByID(ctx context.Context, id int64) (*core.Fragment, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+fragmentCols+` FROM fragments WHERE id = ?`, id)
	f, err := scanFragment(row)
	if isNoRows(err) {
		return nil, nil
	}
	return f, err
}

func (q queries) FragmentsByIDs(ctx context.Context, ids []int64) ([]core.Fragment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+fragmentCols+` FROM fragments WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fragments by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]core.Fragment, len(ids))
	for rows.Next() {
		f, err := scanFragment(rows)
		if err != nil {
			return nil, err
		}
		byID[f.ID] = *f
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Requested order, ids that no longer exist silently dropped.
	out := make([]core.Fragment, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (q queries) CurrentMaster(ctx context.Context) (*core.Master, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+masterCols+` FROM masters WHERE is_current = 1`)
	m, err := scanMaster(row)
	if isNoRows(err) {
		return nil, nil
	}
	return m, err
}

func (q queries) MasterByID(ctx context.Context, id int64) (*core.Master, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+masterCols+` FROM masters WHERE id = ?`, id)
	m, err := scanMaster(row)
	if isNoRows(err) {
		return nil, nil
	}
	return m, err
}

func (q queries) Masters(ctx context.Context) ([]core.Master, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+masterCols+` FROM masters ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list masters: %w", err)
	}
	defer rows.Close()
	var out []core.Master
	for rows.Next() {
		m, err := scanMaster(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (q queries) InsertFragment(ctx context.Context, f core.NewFragment) (*core.Fragment, error) {
	created := now()
	res, err := q.q.ExecContext(ctx,
		`INSERT INTO fragments (type, parent_id, version, content, commit_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.Type, nullable(f.ParentID), f.Version.String(), f.Content, f.CommitMessage, created)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("fragment content for type %q: %w", f.Type, core.ErrDuplicateContent)
		}
		return nil, fmt.Errorf("sqlite: insert fragment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert fragment id: %w", err)
	}
	createdAt, _ := time.Parse(time.RFC3339, created)
	return &core.Fragment{
		ID:            id,
		Type:          f.Type,
		ParentID:      f.ParentID,
		Version:       f.Version,
		Content:       f.Content,
		CommitMessage: f.CommitMessage,
		CreatedAt:     createdAt,
	}, nil
}

func (q queries) InsertMaster(ctx context.Context, m core.NewMaster) (*core.Master, error) {
	created := now()
	res, err := q.q.ExecContext(ctx,
		`INSERT INTO masters (parent_id, version, contents, is_current, commit_message, created_at)
		 VALUES (?, ?, ?, 1, ?, ?)`,
		nullable(m.ParentID), m.Version.String(), encodeIDs(m.FragmentIDs), m.CommitMessage, created)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("identical composition already committed: %w", core.ErrDuplicateContent)
		}
		return nil, fmt.Errorf("sqlite: insert master: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert master id: %w", err)
	}
	createdAt, _ := time.Parse(time.RFC3339, created)
	return &core.Master{
		ID:            id,
		ParentID:      m.ParentID,
		Version:       m.Version,
		FragmentIDs:   append([]int64(nil), m.FragmentIDs...),
		IsCurrent:     true,
		CommitMessage: m.CommitMessage,
		CreatedAt:     createdAt,
	}, nil
}

func (q queries) ClearCurrentMaster(ctx context.Context) error {
	_, err := q.q.ExecContext(ctx, `UPDATE masters SET is_current = 0 WHERE is_current = 1`)
	if err != nil {
		return fmt.Errorf("sqlite: clear current: %w", err)
	}
	return nil
}

func (q queries) SetCurrentMaster(ctx context.Context, id int64) error {
	if err := q.ClearCurrentMaster(ctx); err != nil {
		return err
	}
	res, err := q.q.ExecContext(ctx, `UPDATE masters SET is_current = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: set current: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("sqlite: set current: master %d not found", id)
	}
	return nil
}

func (q queries) DeleteMaster(ctx context.Context, id int64) error {
	_, err := q.q.ExecContext(ctx, `DELETE FROM masters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete master %d: %w", id, err)
	}
	return nil
}

func (q queries) DeleteFragments(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := q.q.ExecContext(ctx,
		`DELETE FROM fragments WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("sqlite: delete fragments: %w", err)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullable(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

var (
	_ core.Store = (*Repository)(nil)
	_ core.Tx    = (*Tx)(nil)
)
