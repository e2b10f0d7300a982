package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"goalplan/internal/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a workspace code (or a child row) does not
// exist. Callers branch on it to turn storage misses into 404s or flash
// messages.
var ErrNotFound = errors.New("not found")

// DB is the server-side workspace store backed by a single SQLite file.
type DB struct {
	sql *sql.DB
}

// Open opens (and if needed creates) the store at path and applies the
// schema.
func Open(ctx context.Context, path string) (*DB, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas for local multi-process usage: WAL gives one writer + many
	// readers, busy_timeout avoids "database is locked" flakiness, and the
	// schema relies on ON DELETE CASCADE.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS workspaces (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT UNIQUE NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS objectives (
			workspace_id INTEGER PRIMARY KEY,
			target_date TEXT NOT NULL,
			teaching_goal TEXT NOT NULL,
			category TEXT NOT NULL,
			FOREIGN KEY (workspace_id) REFERENCES workspaces(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS long_term_groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workspace_id INTEGER NOT NULL,
			long_term_goal TEXT NOT NULL,
			ord INTEGER NOT NULL,
			FOREIGN KEY (workspace_id) REFERENCES workspaces(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS short_terms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			group_id INTEGER NOT NULL,
			item TEXT NOT NULL,
			ord INTEGER NOT NULL,
			FOREIGN KEY (group_id) REFERENCES long_term_groups(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workspace_id INTEGER NOT NULL,
			teach_date TEXT NOT NULL,
			teach_time TEXT NOT NULL,
			effectiveness TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (workspace_id) REFERENCES workspaces(id) ON DELETE CASCADE
		)`,
	}
	for _, s := range schema {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

const timeLayout = "2006-01-02 15:04:05"

// makeCode returns a random 6-digit workspace code. Short on purpose: users
// copy these by hand.
func makeCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// CreateWorkspace inserts a new workspace under a fresh collision-free code.
func (d *DB) CreateWorkspace(ctx context.Context) (model.Workspace, error) {
	for {
		code, err := makeCode()
		if err != nil {
			return model.Workspace{}, err
		}
		var exists int
		err = d.sql.QueryRowContext(ctx, `SELECT 1 FROM workspaces WHERE code=?`, code).Scan(&exists)
		if err == nil {
			continue // collision; regenerate
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return model.Workspace{}, err
		}
		now := time.Now()
		res, err := d.sql.ExecContext(ctx,
			`INSERT INTO workspaces(code, created_at) VALUES(?, ?)`,
			code, now.Format(timeLayout))
		if err != nil {
			return model.Workspace{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return model.Workspace{}, err
		}
		return model.Workspace{ID: id, Code: code, CreatedAt: now}, nil
	}
}

// GetWorkspace looks a workspace up by code.
func (d *DB) GetWorkspace(ctx context.Context, code string) (model.Workspace, error) {
	var ws model.Workspace
	var created string
	err := d.sql.QueryRowContext(ctx,
		`SELECT id, code, created_at FROM workspaces WHERE code=?`, code).
		Scan(&ws.ID, &ws.Code, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Workspace{}, ErrNotFound
	}
	if err != nil {
		return model.Workspace{}, err
	}
	ws.CreatedAt, _ = time.Parse(timeLayout, created)
	return ws, nil
}

// DeleteWorkspace removes the workspace and, via cascade, its objectives,
// groups, short terms and records.
func (d *DB) DeleteWorkspace(ctx context.Context, code string) error {
	ws, err := d.GetWorkspace(ctx, code)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx, `DELETE FROM workspaces WHERE id=?`, ws.ID)
	return err
}

// Objectives returns the per-workspace form header, or ErrNotFound when the
// workspace has none yet.
func (d *DB) Objectives(ctx context.Context, workspaceID int64) (model.Objectives, error) {
	var o model.Objectives
	var cat string
	err := d.sql.QueryRowContext(ctx,
		`SELECT workspace_id, target_date, teaching_goal, category FROM objectives WHERE workspace_id=?`,
		workspaceID).
		Scan(&o.WorkspaceID, &o.TargetDate, &o.TeachingGoal, &cat)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Objectives{}, ErrNotFound
	}
	if err != nil {
		return model.Objectives{}, err
	}
	o.Category = model.NormalizeCategory(cat)
	return o, nil
}

// SaveObjectives upserts the form header and transactionally replaces the
// workspace's goal groups (short terms cascade with their group rows).
// Either everything is written or nothing is.
func (d *DB) SaveObjectives(ctx context.Context, workspaceID int64, o model.Objectives, groups []model.GoalGroup) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO objectives(workspace_id, target_date, teaching_goal, category)
		 VALUES(?, ?, ?, ?)
		 ON CONFLICT(workspace_id) DO UPDATE SET
		   target_date=excluded.target_date,
		   teaching_goal=excluded.teaching_goal,
		   category=excluded.category`,
		workspaceID, o.TargetDate, o.TeachingGoal, string(o.Category)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM long_term_groups WHERE workspace_id=?`, workspaceID); err != nil {
		return err
	}
	for ord, g := range groups {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO long_term_groups(workspace_id, long_term_goal, ord) VALUES(?, ?, ?)`,
			workspaceID, g.LongTerm, ord+1)
		if err != nil {
			return err
		}
		groupID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for stOrd, item := range g.ShortTerms {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO short_terms(group_id, item, ord) VALUES(?, ?, ?)`,
				groupID, item, stOrd+1); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Groups returns the workspace's goal groups with their short terms, in
// storage order.
func (d *DB) Groups(ctx context.Context, workspaceID int64) ([]model.GoalGroup, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, long_term_goal, ord FROM long_term_groups
		 WHERE workspace_id=? ORDER BY ord ASC, id ASC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.GoalGroup
	for rows.Next() {
		var g model.GoalGroup
		if err := rows.Scan(&g.ID, &g.LongTerm, &g.Ord); err != nil {
			return nil, err
		}
		// Seed indices restart densely per page load; the client grows
		// them from here.
		g.Index = len(groups)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		sts, err := d.shortTerms(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].ShortTerms = sts
	}
	return groups, nil
}

func (d *DB) shortTerms(ctx context.Context, groupID int64) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT item FROM short_terms WHERE group_id=? ORDER BY ord ASC, id ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var item string
		if err := rows.Scan(&item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// AddRecord appends one teaching record.
func (d *DB) AddRecord(ctx context.Context, workspaceID int64, r model.TeachingRecord) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO records(workspace_id, teach_date, teach_time, effectiveness, created_at)
		 VALUES(?, ?, ?, ?, ?)`,
		workspaceID, r.TeachDate, r.TeachTime, r.Effectiveness, time.Now().Format(timeLayout))
	return err
}

// DeleteRecord removes one record; scoped to the workspace so a stale form
// cannot delete across workspaces.
func (d *DB) DeleteRecord(ctx context.Context, workspaceID, recordID int64) error {
	_, err := d.sql.ExecContext(ctx,
		`DELETE FROM records WHERE id=? AND workspace_id=?`, recordID, workspaceID)
	return err
}

// Records returns the workspace's teaching records, oldest first.
func (d *DB) Records(ctx context.Context, workspaceID int64) ([]model.TeachingRecord, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, teach_date, teach_time, effectiveness, created_at FROM records
		 WHERE workspace_id=? ORDER BY created_at ASC, id ASC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeachingRecord
	for rows.Next() {
		var r model.TeachingRecord
		var created string
		if err := rows.Scan(&r.ID, &r.TeachDate, &r.TeachTime, &r.Effectiveness, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, r)
	}
	return out, rows.Err()
}
