package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wikirip/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "wikirip.db"

// timestampLayout has a fixed width so stored values sort chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// ErrRipNotFound is returned when no rip has the requested ID.
var ErrRipNotFound = errors.New("rip not found")

// HistoryDB is the SQLite store of past rips.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		}
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	// Several wikirip processes may share the file, so wait on locks
	// instead of failing with SQLITE_BUSY.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rips (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root TEXT NOT NULL,
		start_page TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		rounds INTEGER NOT NULL,
		pages_saved INTEGER NOT NULL,
		resources_saved INTEGER NOT NULL,
		bytes_saved INTEGER NOT NULL,
		failure_count INTEGER NOT NULL,
		status TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rips_root ON rips(root);
	CREATE INDEX IF NOT EXISTS idx_rips_started_at ON rips(started_at);

	CREATE TABLE IF NOT EXISTS rip_failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rip_id INTEGER NOT NULL REFERENCES rips(id) ON DELETE CASCADE,
		suffix TEXT NOT NULL,
		kind TEXT NOT NULL,
		round INTEGER NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_failures_rip ON rip_failures(rip_id);
	CREATE INDEX IF NOT EXISTS idx_failures_suffix ON rip_failures(suffix);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRipReport stores report and its failures in one transaction and
// returns the new rip ID.
func (h *HistoryDB) SaveRipReport(ctx context.Context, report *model.RipReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO rips (root, start_page, output_dir, started_at, duration_ms, rounds,
		pages_saved, resources_saved, bytes_saved, failure_count, status, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.Root,
		report.StartPage,
		report.OutputDir,
		report.StartedAt.UTC().Format(timestampLayout),
		report.Duration.Milliseconds(),
		report.Rounds,
		report.PagesSaved,
		report.ResourcesSaved,
		report.BytesSaved,
		report.FailureCount(),
		report.Status(),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save rip: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get rip id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO rip_failures (rip_id, suffix, kind, round, message)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare failure insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range report.Failures {
		if _, err := stmt.ExecContext(ctx, id, f.Suffix, string(f.Kind), f.Round, f.Message); err != nil {
			return 0, fmt.Errorf("failed to save failure %s: %w", f.Suffix, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rip: %w", err)
	}

	return id, nil
}

// ListRips returns the most recent rips first. An empty root lists every
// site; limit <= 0 means no limit.
func (h *HistoryDB) ListRips(ctx context.Context, root string, limit int) ([]model.RipSummary, error) {
	query := `
	SELECT id, root, start_page, started_at, duration_ms, rounds,
		pages_saved, resources_saved, bytes_saved, failure_count, status
	FROM rips
	WHERE (? = '' OR root = ?)
	ORDER BY started_at DESC, id DESC
	`
	args := []any{root, root}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rips: %w", err)
	}
	defer rows.Close()

	var results []model.RipSummary
	for rows.Next() {
		var (
			s          model.RipSummary
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&s.ID, &s.Root, &s.StartPage, &startedAt, &durationMS, &s.Rounds,
			&s.PagesSaved, &s.ResourcesSaved, &s.BytesSaved, &s.FailureCount, &s.Status); err != nil {
			return nil, fmt.Errorf("failed to scan rip: %w", err)
		}
		s.StartedAt = parseTimestamp(startedAt)
		s.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, s)
	}

	return results, rows.Err()
}

// GetRip returns the full report of the rip with the given ID.
func (h *HistoryDB) GetRip(ctx context.Context, id int64) (*model.RipReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `SELECT report_json FROM rips WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRipNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rip: %w", err)
	}

	var report model.RipReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// FailureHistory returns how many stored rips of root failed on each suffix.
// Suffixes that keep failing across runs are usually dead links.
func (h *HistoryDB) FailureHistory(ctx context.Context, root string) (map[string]int, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT f.suffix, COUNT(DISTINCT f.rip_id)
	FROM rip_failures f JOIN rips r ON r.id = f.rip_id
	WHERE r.root = ?
	GROUP BY f.suffix
	`, root)
	if err != nil {
		return nil, fmt.Errorf("failed to query failure history: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			suffix string
			n      int
		)
		if err := rows.Scan(&suffix, &n); err != nil {
			return nil, fmt.Errorf("failed to scan failure history: %w", err)
		}
		counts[suffix] = n
	}

	return counts, rows.Err()
}

// timestampFormats contains the formats a stored timestamp may use.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
