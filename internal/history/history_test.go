package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mergerisk/mergerisk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() schema.HistoryRecord {
	return schema.HistoryRecord{
		Timestamp:          time.Unix(1756600000, 0),
		RepoPath:           "/repos/widget",
		BranchName:         "feature/login-fix",
		OverallProbability: 0.45,
		FileCount:          7,
		ConflictCount:      12,
		Status:             schema.StatusSuccess,
	}
}

func TestFormatRecord(t *testing.T) {
	t.Run("without report file", func(t *testing.T) {
		line := FormatRecord(sampleRecord())
		assert.Equal(t, "1756600000 /repos/widget feature/login-fix 0.45 7 12 SUCCESS\n", line)
	})

	t.Run("with report file", func(t *testing.T) {
		rec := sampleRecord()
		rec.ReportFile = "report.json"
		line := FormatRecord(rec)
		assert.Equal(t, "1756600000 /repos/widget feature/login-fix 0.45 7 12 SUCCESS report.json\n", line)
	})
}

func TestParseRecord(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		rec := sampleRecord()
		rec.ReportFile = "out.csv"
		parsed, ok := ParseRecord(FormatRecord(rec))
		require.True(t, ok)
		assert.Equal(t, rec, parsed)
	})

	t.Run("malformed lines are rejected", func(t *testing.T) {
		for _, line := range []string{
			"",
			"not enough fields",
			"abc /r b 0.45 7 12 SUCCESS",
			"1756600000 /r b high 7 12 SUCCESS",
			"1756600000 /r b 0.45 seven 12 SUCCESS",
		} {
			_, ok := ParseRecord(line)
			assert.False(t, ok, "line %q", line)
		}
	})
}

func TestFileRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.dat")
	recorder := NewFileRecorder(path)

	first := sampleRecord()
	second := sampleRecord()
	second.Timestamp = time.Unix(1756600100, 0)
	second.BranchName = "feature/payments"
	second.OverallProbability = 0.85
	second.Status = schema.StatusCritical

	require.NoError(t, recorder.Append(first))
	require.NoError(t, recorder.Append(second))

	t.Run("newest first", func(t *testing.T) {
		records, err := recorder.Recent(-1)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "feature/payments", records[0].BranchName)
		assert.Equal(t, "feature/login-fix", records[1].BranchName)
	})

	t.Run("limit applies", func(t *testing.T) {
		records, err := recorder.Recent(1)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, schema.StatusCritical, records[0].Status)
	})

	t.Run("missing file reads empty", func(t *testing.T) {
		empty := NewFileRecorder(filepath.Join(t.TempDir(), "absent.dat"))
		records, err := empty.Recent(10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestSQLiteRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	recorder, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer func() { _ = recorder.Close() }()

	rec := sampleRecord()
	rec.ReportFile = "report.json"
	require.NoError(t, recorder.Append(rec))

	records, err := recorder.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
}

func TestOpenBackends(t *testing.T) {
	t.Run("none drops writes", func(t *testing.T) {
		recorder, err := Open(schema.NoneBackend, "")
		require.NoError(t, err)
		assert.NoError(t, recorder.Append(sampleRecord()))
		records, err := recorder.Recent(10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("file is the default", func(t *testing.T) {
		recorder, err := Open(schema.FileBackend, filepath.Join(t.TempDir(), "h.dat"))
		require.NoError(t, err)
		_, ok := recorder.(*FileRecorder)
		assert.True(t, ok)
	})
}

func TestNewRecord(t *testing.T) {
	analysis := &schema.ConflictAnalysis{
		RepoPath:           "/repos/widget",
		TargetRef:          "feature/login-fix",
		FileCount:          3,
		TotalHunks:         9,
		OverallProbability: 0.65,
	}
	rec := NewRecord(analysis)
	assert.Equal(t, "/repos/widget", rec.RepoPath)
	assert.Equal(t, "feature/login-fix", rec.BranchName)
	assert.Equal(t, 3, rec.FileCount)
	assert.Equal(t, 9, rec.ConflictCount)
	assert.Equal(t, schema.StatusWarning, rec.Status)
	assert.WithinDuration(t, time.Now(), rec.Timestamp, 5*time.Second)
}
