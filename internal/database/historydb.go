package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/serranolab/clinstat/internal/model"
)

// dbFileName is the history database file under the data directory.
const dbFileName = "clinstat.db"

// HistoryDB provides SQLite-based storage for past analysis runs.
// It manages connection pooling and provides methods for archiving runs
// and listing the archive.
//
// Design decision: We use a single database file for all studies rather
// than one file per study. This keeps the history subcommand a single
// query and simplifies backup of the archive.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB under the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to refuse creating new files and
	// mode=rwc to allow creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
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

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one record per executed analysis
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		inputs TEXT NOT NULL,
		variables INTEGER NOT NULL,
		results INTEGER NOT NULL,
		skips INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		archived_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Comparisons store the machine-readable rows of each run
	CREATE TABLE IF NOT EXISTS comparisons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		variable TEXT NOT NULL,
		group_a TEXT NOT NULL,
		group_b TEXT NOT NULL,
		round TEXT,
		p_value REAL NOT NULL,
		u_statistic REAL
	);

	CREATE INDEX IF NOT EXISTS idx_comparisons_run ON comparisons(run_id);
	CREATE INDEX IF NOT EXISTS idx_comparisons_variable ON comparisons(variable);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord summarizes one archived run for the history listing.
type RunRecord struct {
	ID        int64
	Kind      string
	Inputs    []string
	Variables int
	Results   int
	Skips     int
	StartedAt time.Time
}

// SaveRun archives one completed run: its summary row plus every comparison,
// in a single transaction so a failed archive leaves nothing behind.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.AnalysisRun) (int64, error) {
	if run == nil {
		return 0, errors.New("nil run")
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	results := len(run.Friedman) + len(run.MannWhitney)
	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (kind, inputs, variables, results, skips, started_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.Kind.String(),
		strings.Join(run.InputPaths, string(os.PathListSeparator)),
		len(run.Variables),
		results,
		len(run.Skips),
		run.StartedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO comparisons (run_id, variable, group_a, group_b, round, p_value, u_statistic)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare comparison insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // Read-only cleanup

	for _, c := range run.Comparisons {
		if _, err := stmt.ExecContext(ctx, runID, c.Variable, c.GroupA, c.GroupB, c.Round, c.PValue, c.U); err != nil {
			return 0, fmt.Errorf("failed to insert comparison: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return runID, nil
}

// RecentRuns lists the newest archived runs, most recent first.
func (hdb *HistoryDB) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := hdb.db.QueryContext(ctx, `
	SELECT id, kind, inputs, variables, results, skips, started_at
	FROM runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cleanup

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var inputs, started string
		if err := rows.Scan(&r.ID, &r.Kind, &inputs, &r.Variables, &r.Results, &r.Skips, &started); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if inputs != "" {
			r.Inputs = strings.Split(inputs, string(os.PathListSeparator))
		}
		r.StartedAt = parseTimestamp(started)
		records = append(records, r)
	}

	return records, rows.Err()
}

// Comparisons returns the archived comparison rows of one run.
func (hdb *HistoryDB) Comparisons(ctx context.Context, runID int64) ([]model.Comparison, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT variable, group_a, group_b, round, p_value, u_statistic
	FROM comparisons
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cleanup

	var out []model.Comparison
	for rows.Next() {
		var c model.Comparison
		var round sql.NullString
		var u sql.NullFloat64
		if err := rows.Scan(&c.Variable, &c.GroupA, &c.GroupB, &round, &c.PValue, &u); err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		c.Round = round.String
		c.U = u.Float64
		out = append(out, c)
	}

	return out, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
