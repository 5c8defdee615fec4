package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mergerisk/mergerisk/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// historyTableDDL is created on open; the schema is append-only.
const historyTableDDL = `
CREATE TABLE IF NOT EXISTS mergerisk_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at INTEGER NOT NULL,
	repo_path TEXT NOT NULL,
	branch_name TEXT NOT NULL,
	overall_probability REAL NOT NULL,
	file_count INTEGER NOT NULL,
	conflict_count INTEGER NOT NULL,
	status TEXT NOT NULL,
	report_file TEXT NOT NULL DEFAULT ''
)`

// SQLiteRecorder stores history records in a local SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

var _ Recorder = &SQLiteRecorder{} // Compile-time check

// NewSQLiteRecorder opens (or creates) the history database at dbPath.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history database at %q: %w. Ensure the directory is writable", dbPath, err)
	}
	// A single open connection avoids "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(historyTableDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}
	return &SQLiteRecorder{db: db}, nil
}

// Append implements the Recorder interface.
func (r *SQLiteRecorder) Append(rec schema.HistoryRecord) error {
	_, err := r.db.Exec(
		`INSERT INTO mergerisk_history
		 (recorded_at, repo_path, branch_name, overall_probability, file_count, conflict_count, status, report_file)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.Unix(), rec.RepoPath, rec.BranchName,
		rec.OverallProbability, rec.FileCount, rec.ConflictCount,
		string(rec.Status), rec.ReportFile,
	)
	if err != nil {
		return fmt.Errorf("inserting history record: %w", err)
	}
	return nil
}

// Recent implements the Recorder interface.
func (r *SQLiteRecorder) Recent(limit int) ([]schema.HistoryRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}
	rows, err := r.db.Query(
		`SELECT recorded_at, repo_path, branch_name, overall_probability,
		        file_count, conflict_count, status, report_file
		 FROM mergerisk_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.HistoryRecord
	for rows.Next() {
		var rec schema.HistoryRecord
		var ts int64
		var status string
		if err := rows.Scan(&ts, &rec.RepoPath, &rec.BranchName,
			&rec.OverallProbability, &rec.FileCount, &rec.ConflictCount,
			&status, &rec.ReportFile); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		rec.Timestamp = time.Unix(ts, 0)
		rec.Status = schema.HistoryStatus(status)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close implements the Recorder interface.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
