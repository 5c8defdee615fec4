// Package history records one summary line per analysis run. The flat
// file backend is an append-only shared log; writers take an advisory
// lock so concurrent runs never interleave partial lines.
package history

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mergerisk/mergerisk/schema"
)

// Recorder persists and reads back analysis history records.
type Recorder interface {
	// Append writes one record. Records are never mutated or deleted.
	Append(rec schema.HistoryRecord) error

	// Recent returns up to limit records, newest first.
	Recent(limit int) ([]schema.HistoryRecord, error)

	// Close releases the underlying resources.
	Close() error
}

// Open returns the recorder for the configured backend. The none
// backend returns a recorder that drops writes and reads nothing.
func Open(backend schema.HistoryBackend, path string) (Recorder, error) {
	switch backend {
	case schema.SQLiteBackend:
		return NewSQLiteRecorder(path)
	case schema.NoneBackend:
		return noopRecorder{}, nil
	default:
		return NewFileRecorder(path), nil
	}
}

// noopRecorder is the disabled-history backend.
type noopRecorder struct{}

func (noopRecorder) Append(schema.HistoryRecord) error          { return nil }
func (noopRecorder) Recent(int) ([]schema.HistoryRecord, error) { return nil, nil }
func (noopRecorder) Close() error                               { return nil }

// NewRecord assembles the history record for a finished analysis.
func NewRecord(analysis *schema.ConflictAnalysis) schema.HistoryRecord {
	return schema.HistoryRecord{
		Timestamp:          time.Now(),
		RepoPath:           analysis.RepoPath,
		BranchName:         analysis.TargetRef,
		OverallProbability: analysis.OverallProbability,
		FileCount:          analysis.FileCount,
		ConflictCount:      analysis.TotalHunks,
		Status:             schema.StatusForProbability(analysis.OverallProbability),
	}
}

// FileRecorder appends whitespace-delimited records to a flat log file:
//
//	timestamp repo_path branch_name overall_probability file_count conflict_count status [report_file]
type FileRecorder struct {
	Path string
}

var _ Recorder = &FileRecorder{} // Compile-time check

// NewFileRecorder creates a recorder writing to path.
func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{Path: path}
}

// Append writes one line under an exclusive flock. The lock plus the
// single buffered write keep each record on its own line even with
// concurrent runs.
func (r *FileRecorder) Append(rec schema.HistoryRecord) error {
	f, err := os.OpenFile(r.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("locking history log: %w", err)
	}
	defer func() { _ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN) }()

	if _, err := f.WriteString(FormatRecord(rec)); err != nil {
		return fmt.Errorf("appending history record: %w", err)
	}
	return nil
}

// Recent implements the Recorder interface.
func (r *FileRecorder) Recent(limit int) ([]schema.HistoryRecord, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []schema.HistoryRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		rec, ok := ParseRecord(scanner.Text())
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history log: %w", err)
	}

	// Newest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Close implements the Recorder interface.
func (r *FileRecorder) Close() error { return nil }

// FormatRecord renders one history line including the trailing newline.
func FormatRecord(rec schema.HistoryRecord) string {
	line := fmt.Sprintf("%d %s %s %.2f %d %d %s",
		rec.Timestamp.Unix(), rec.RepoPath, rec.BranchName,
		rec.OverallProbability, rec.FileCount, rec.ConflictCount, rec.Status)
	if rec.ReportFile != "" {
		line += " " + rec.ReportFile
	}
	return line + "\n"
}

// ParseRecord parses one history line. Malformed lines report false and
// are skipped by readers.
func ParseRecord(line string) (schema.HistoryRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) < 7 {
		return schema.HistoryRecord{}, false
	}
	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return schema.HistoryRecord{}, false
	}
	prob, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return schema.HistoryRecord{}, false
	}
	fileCount, err := strconv.Atoi(fields[4])
	if err != nil {
		return schema.HistoryRecord{}, false
	}
	conflictCount, err := strconv.Atoi(fields[5])
	if err != nil {
		return schema.HistoryRecord{}, false
	}
	rec := schema.HistoryRecord{
		Timestamp:          time.Unix(ts, 0),
		RepoPath:           fields[1],
		BranchName:         fields[2],
		OverallProbability: prob,
		FileCount:          fileCount,
		ConflictCount:      conflictCount,
		Status:             schema.HistoryStatus(fields[6]),
	}
	if len(fields) >= 8 {
		rec.ReportFile = fields[7]
	}
	return rec, true
}
