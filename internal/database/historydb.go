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

	"github.com/nao1215/csv2wiki/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "csv2wiki.db"

// HistoryDB provides SQLite-based storage for create runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
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

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
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

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		input TEXT NOT NULL,
		input_digest TEXT,
		started_at TEXT NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		sections INTEGER NOT NULL DEFAULT 0,
		categories INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0,
		succeeded INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_site ON runs(site);
	CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(input_digest);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunMetadata is the listing view of a stored run.
type RunMetadata struct {
	ID          int64
	Site        string
	Input       string
	InputDigest string
	StartedAt   time.Time
	Pages       int
	Sections    int
	Categories  int
	Warnings    int
	Succeeded   bool
}

// SaveRun stores report and returns its id.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.SyncReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	simple := model.NewSimpleReport(report)

	query := `
	INSERT INTO runs (site, input, input_digest, started_at, pages, sections, categories, warnings, succeeded, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		report.Site,
		report.Input,
		report.InputDigest,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		simple.PagesWritten,
		simple.SectionsWritten,
		len(report.Categories),
		simple.WarningCount,
		report.Succeeded(),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	return result.LastInsertId()
}

// ListRuns returns run metadata, newest first. An empty site lists runs
// against every site.
func (hdb *HistoryDB) ListRuns(ctx context.Context, site string) ([]RunMetadata, error) {
	query := `
	SELECT id, site, input, COALESCE(input_digest, ''), started_at, pages, sections, categories, warnings, succeeded
	FROM runs
	WHERE ? = '' OR site = ?
	ORDER BY id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, site, site)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt string
		if err := rows.Scan(
			&meta.ID,
			&meta.Site,
			&meta.Input,
			&meta.InputDigest,
			&startedAt,
			&meta.Pages,
			&meta.Sections,
			&meta.Categories,
			&meta.Warnings,
			&meta.Succeeded,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.StartedAt = parseTimestamp(startedAt)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun returns the report of run id, or ErrRunNotFound.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*model.SyncReport, error) {
	return hdb.queryReport(ctx, `SELECT report_json FROM runs WHERE id = ?`, id)
}

// LatestRun returns the most recent run against site, or ErrRunNotFound.
func (hdb *HistoryDB) LatestRun(ctx context.Context, site string) (*model.SyncReport, error) {
	return hdb.queryReport(ctx, `
	SELECT report_json FROM runs
	WHERE site = ?
	ORDER BY id DESC
	LIMIT 1
	`, site)
}

// RunsForDigest returns the ids of successful runs against site whose
// input had digest, newest first.
func (hdb *HistoryDB) RunsForDigest(ctx context.Context, site, digest string) ([]int64, error) {
	rows, err := hdb.db.QueryContext(ctx, `
		SELECT id FROM runs
		WHERE site = ? AND input_digest = ? AND succeeded = 1
		ORDER BY id DESC
	`, site, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (hdb *HistoryDB) queryReport(ctx context.Context, query string, args ...any) (*model.SyncReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.SyncReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// timestampFormats contains the timestamp formats SQLite may return.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp tries each of timestampFormats and returns the zero time
// if none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
