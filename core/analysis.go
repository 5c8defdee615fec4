package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mergerisk/mergerisk/internal/contract"
	"github.com/mergerisk/mergerisk/internal/store"
	"github.com/mergerisk/mergerisk/schema"
	"go.uber.org/zap"
)

// ExecuteAnalysis runs one complete merge-risk analysis between the
// configured refs. Each run is a pure function of the two refs plus the
// on-disk pattern tables; no state survives between runs.
func ExecuteAnalysis(ctx context.Context, cfg *contract.Config, client contract.GitClient) (*schema.ConflictAnalysis, error) {
	tables := store.Load(cfg.DataDir)
	excludes := repositoryExcludes(cfg)

	// A failing preliminary diff means a corrupted or unreadable
	// repository; the run fails fast rather than producing a partial
	// report.
	numstatRaw, err := client.DiffNumstat(ctx, cfg.RepoPath, cfg.BaseRef, cfg.TargetRef)
	if err != nil {
		return nil, fmt.Errorf("listing changed files: %w", err)
	}

	files, skipped := ParseNumstat(numstatRaw)
	logSkipped("numstat", skipped)
	files = filterFiles(files, excludes, cfg.MaxFiles)

	if len(files) > 0 {
		// One batched unified diff covers every changed file; parsing
		// splits it back out per path.
		diffRaw, err := client.DiffUnified(ctx, cfg.RepoPath, cfg.BaseRef, cfg.TargetRef)
		if err != nil {
			return nil, fmt.Errorf("reading unified diff: %w", err)
		}
		details, diffSkipped := ParseUnifiedDiff(diffRaw)
		logSkipped("unified diff", diffSkipped)
		attachDiffDetails(files, details)
	}

	meta := &gitFileMetadata{ctx: ctx, client: client, repoPath: cfg.RepoPath, ref: cfg.TargetRef}
	for i := range files {
		ScoreFile(&files[i], tables, meta)
	}

	// Highest risk first; path breaks ties so output is reproducible.
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Probability != files[j].Probability {
			return files[i].Probability > files[j].Probability
		}
		return files[i].Path < files[j].Path
	})

	analysis := Aggregate(files)
	analysis.RepoPath = cfg.RepoPath
	analysis.BaseRef = cfg.BaseRef
	analysis.TargetRef = cfg.TargetRef
	return analysis, nil
}

// repositoryExcludes resolves the exclude fragments for the analyzed
// repository from the repository configuration database.
func repositoryExcludes(cfg *contract.Config) []string {
	configs := store.LoadRepositoryConfigs(cfg.DataDir)
	repoCfg, ok := store.LookupRepositoryConfig(configs, cfg.RepoPath)
	if !ok || repoCfg.ExcludePatterns == "" || repoCfg.ExcludePatterns == "none" {
		return nil
	}
	var excludes []string
	for _, fragment := range strings.Split(repoCfg.ExcludePatterns, ",") {
		if fragment = strings.TrimSpace(fragment); fragment != "" {
			excludes = append(excludes, fragment)
		}
	}
	return excludes
}

// filterFiles drops excluded paths and enforces the file bound.
func filterFiles(files []schema.FileConflict, excludes []string, maxFiles int) []schema.FileConflict {
	kept := files[:0]
	for i := range files {
		if len(kept) >= maxFiles {
			contract.Verbose().Debug("file bound reached", zap.Int("max_files", maxFiles))
			break
		}
		if pathExcluded(files[i].Path, excludes) {
			contract.Verbose().Debug("excluding file", zap.String("path", files[i].Path))
			continue
		}
		kept = append(kept, files[i])
	}
	return kept
}

// pathExcluded reports whether a path matches any exclude fragment.
func pathExcluded(path string, excludes []string) bool {
	for _, fragment := range excludes {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

// attachDiffDetails copies hunk observations onto the numstat skeletons.
// Files missing from the unified diff keep zero hunks; that is diff
// noise, not an error.
func attachDiffDetails(files []schema.FileConflict, details map[string]*DiffDetail) {
	for i := range files {
		detail := details[files[i].Path]
		if detail == nil {
			continue
		}
		files[i].HunkCount = len(detail.Hunks)
		files[i].LineStart = detail.LineStart
		files[i].LineEnd = detail.LineEnd
		files[i].ProximityFactor = detail.ProximityFactor
		files[i].ChangedLines = detail.ChangedLines
	}
}

// logSkipped surfaces parser skip diagnostics in verbose mode.
func logSkipped(source string, skipped []schema.SkippedLine) {
	for _, s := range skipped {
		contract.Verbose().Debug("skipped input line",
			zap.String("source", source),
			zap.String("reason", s.Reason),
			zap.String("line", s.Line))
	}
}
