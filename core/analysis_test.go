package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mergerisk/mergerisk/internal/contract"
	"github.com/mergerisk/mergerisk/internal/store"
	"github.com/mergerisk/mergerisk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRepoConfig drops a repository config database into the data dir.
func writeRepoConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.RepoConfigFile), []byte(content), 0o644))
}

// stubGitClient serves canned diff output instead of running git.
type stubGitClient struct {
	numstat    []byte
	unified    []byte
	numstatErr error
	unifiedErr error
	sizes      map[string]int64
}

func (s *stubGitClient) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return nil, nil
}

func (s *stubGitClient) GetRepoRoot(_ context.Context, _ string) (string, error) {
	return "/repos/widget", nil
}

func (s *stubGitClient) RefExists(_ context.Context, _ string, _ string) (bool, error) {
	return true, nil
}

func (s *stubGitClient) DiffNumstat(_ context.Context, _, _, _ string) ([]byte, error) {
	return s.numstat, s.numstatErr
}

func (s *stubGitClient) DiffUnified(_ context.Context, _, _, _ string) ([]byte, error) {
	return s.unified, s.unifiedErr
}

func (s *stubGitClient) FileSize(_ context.Context, _, _, path string) (int64, error) {
	if size, ok := s.sizes[path]; ok {
		return size, nil
	}
	return 0, contract.ErrCommandFailed
}

// testConfig points the analysis at an empty data dir so the built-in
// defaults apply.
func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	return &contract.Config{
		RepoPath:  "/repos/widget",
		BaseRef:   "main",
		TargetRef: "feature/login-fix",
		DataDir:   t.TempDir(),
		MaxFiles:  contract.DefaultMaxFiles,
	}
}

func TestExecuteAnalysis(t *testing.T) {
	client := &stubGitClient{
		numstat: []byte("2\t1\tfile1.c\n120\t30\tsrc/engine.c\n3\t0\tREADME.md\n"),
		unified: []byte(`--- a/src/engine.c
+++ b/src/engine.c
@@ -10,5 +10,8 @@
+int main(void) {
@@ -20,3 +23,4 @@
+more
`),
	}

	analysis, err := ExecuteAnalysis(context.Background(), testConfig(t), client)
	require.NoError(t, err)

	assert.Equal(t, 3, analysis.FileCount)
	assert.Equal(t, 125, analysis.TotalAdditions)
	assert.Equal(t, 31, analysis.TotalDeletions)
	assert.Equal(t, "/repos/widget", analysis.RepoPath)
	assert.Equal(t, "main", analysis.BaseRef)
	assert.Equal(t, "feature/login-fix", analysis.TargetRef)

	// Highest risk first: the big engine change outranks the others.
	require.Len(t, analysis.Files, 3)
	assert.Equal(t, "src/engine.c", analysis.Files[0].Path)
	assert.Equal(t, 2, analysis.Files[0].HunkCount)
	assert.Greater(t, analysis.Files[0].Probability, analysis.Files[1].Probability)
}

func TestExecuteAnalysisEmptyDiff(t *testing.T) {
	client := &stubGitClient{numstat: []byte("")}

	analysis, err := ExecuteAnalysis(context.Background(), testConfig(t), client)
	require.NoError(t, err)

	assert.Equal(t, 0, analysis.FileCount)
	assert.Equal(t, 0.0, analysis.OverallProbability)
	assert.Contains(t, analysis.Strategy, "Fast-forward merge")
}

func TestExecuteAnalysisDeterministic(t *testing.T) {
	client := &stubGitClient{
		numstat: []byte("4\t1\tbeta.c\n4\t1\talpha.c\n"),
	}
	cfg := testConfig(t)

	first, err := ExecuteAnalysis(context.Background(), cfg, client)
	require.NoError(t, err)
	second, err := ExecuteAnalysis(context.Background(), cfg, client)
	require.NoError(t, err)

	// Equal probabilities break ties by path, so repeated runs agree.
	assert.Equal(t, "alpha.c", first.Files[0].Path)
	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, first.OverallProbability, second.OverallProbability)
}

func TestExecuteAnalysisNumstatFailure(t *testing.T) {
	client := &stubGitClient{numstatErr: contract.ErrRepoNotFound}

	_, err := ExecuteAnalysis(context.Background(), testConfig(t), client)
	assert.ErrorIs(t, err, contract.ErrRepoNotFound)
}

func TestExecuteAnalysisUnifiedFailure(t *testing.T) {
	client := &stubGitClient{
		numstat:    []byte("1\t1\ta.c\n"),
		unifiedErr: errors.New("boom"),
	}

	_, err := ExecuteAnalysis(context.Background(), testConfig(t), client)
	assert.Error(t, err)
}

func TestExecuteAnalysisMaxFiles(t *testing.T) {
	client := &stubGitClient{
		numstat: []byte("1\t0\ta.txt\n1\t0\tb.txt\n1\t0\tc.txt\n"),
		unified: []byte(""),
	}
	cfg := testConfig(t)
	cfg.MaxFiles = 2

	analysis, err := ExecuteAnalysis(context.Background(), cfg, client)
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.FileCount)
}

func TestFilterFilesExcludes(t *testing.T) {
	files := []schema.FileConflict{
		{Path: "src/a.c"},
		{Path: "vendor/lib/b.c"},
		{Path: "third_party/c.c"},
	}
	kept := filterFiles(files, []string{"vendor/", "third_party/"}, 100)
	require.Len(t, kept, 1)
	assert.Equal(t, "src/a.c", kept[0].Path)
}

func TestRepositoryExcludes(t *testing.T) {
	dir := t.TempDir()
	cfg := &contract.Config{RepoPath: "/repos/widget", DataDir: dir}

	t.Run("no config means no excludes", func(t *testing.T) {
		assert.Nil(t, repositoryExcludes(cfg))
	})

	t.Run("comma separated fragments", func(t *testing.T) {
		content := "/repos/widget * vendor/,third_party/ none 0 0\n"
		writeRepoConfig(t, dir, content)
		assert.Equal(t, []string{"vendor/", "third_party/"}, repositoryExcludes(cfg))
	})

	t.Run("none disables excludes", func(t *testing.T) {
		writeRepoConfig(t, dir, "/repos/widget * none none 0 0\n")
		assert.Nil(t, repositoryExcludes(cfg))
	})
}
