// Package core has the merge-risk analysis pipeline: diff parsing,
// scoring, aggregation and orchestration.
package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mergerisk/mergerisk/schema"
)

// Hunk proximity model: edits landing within ProximityWindow lines of
// the previous hunk's end accumulate ProximityMultiplier once per
// occurrence. Dense, adjacent edits are likelier to collide during a
// three-way merge.
const (
	ProximityWindow     = 10
	ProximityMultiplier = 1.3
)

// hunkHeaderRe matches "@@ -old_start[,old_count] +new_start[,new_count] @@".
var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// DiffDetail carries the per-file unified-diff observations consumed by
// the scoring engine.
type DiffDetail struct {
	Hunks           []schema.Hunk
	ChangedLines    []string
	ProximityFactor float64
	LineStart       int
	LineEnd         int
}

// ParseNumstat converts raw numstat output into file conflict skeletons.
// Lines that do not match the expected shape are skipped with a reason,
// never treated as errors; diff output carries arbitrary noise.
func ParseNumstat(raw []byte) ([]schema.FileConflict, []schema.SkippedLine) {
	var files []schema.FileConflict
	var skipped []schema.SkippedLine

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			skipped = append(skipped, schema.SkippedLine{Line: line, Reason: "fewer than 3 numstat fields"})
			continue
		}
		additions, okAdd := parseChangeCount(fields[0])
		deletions, okDel := parseChangeCount(fields[1])
		if !okAdd || !okDel {
			skipped = append(skipped, schema.SkippedLine{Line: line, Reason: "non-numeric change counts"})
			continue
		}
		// A path with embedded whitespace splits across fields; rejoin
		// everything after the two numeric columns.
		path := strings.Join(fields[2:], " ")
		files = append(files, schema.FileConflict{
			Path:            path,
			Extension:       schema.ExtensionOf(path),
			Additions:       additions,
			Deletions:       deletions,
			ProximityFactor: 1.0,
		})
	}
	return files, skipped
}

// parseChangeCount converts a numstat count, handling "-" (binary) as 0.
func parseChangeCount(s string) (int, bool) {
	if s == "-" {
		return 0, true
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ParseUnifiedDiff walks a multi-file unified diff and collects hunk
// boundaries, changed content lines and the proximity factor per file.
// Unrecognized lines outside a file section are skipped silently; that
// is the normal shape of diff output, not an anomaly.
func ParseUnifiedDiff(raw []byte) (map[string]*DiffDetail, []schema.SkippedLine) {
	details := make(map[string]*DiffDetail)
	var skipped []schema.SkippedLine

	var current *DiffDetail
	var removedPath string

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")

		switch {
		case strings.HasPrefix(line, "--- "):
			removedPath = stripDiffPrefix(strings.TrimPrefix(line, "--- "))

		case strings.HasPrefix(line, "+++ "):
			path := stripDiffPrefix(strings.TrimPrefix(line, "+++ "))
			if path == "" {
				// Deleted file: the new side is /dev/null, keep the old path.
				path = removedPath
			}
			if path == "" {
				skipped = append(skipped, schema.SkippedLine{Line: line, Reason: "file header without a usable path"})
				current = nil
				continue
			}
			if details[path] == nil {
				details[path] = &DiffDetail{ProximityFactor: 1.0}
			}
			current = details[path]

		case strings.HasPrefix(line, "@@"):
			if current == nil {
				skipped = append(skipped, schema.SkippedLine{Line: line, Reason: "hunk header before any file header"})
				continue
			}
			hunk, ok := parseHunkHeader(line)
			if !ok {
				skipped = append(skipped, schema.SkippedLine{Line: line, Reason: "malformed hunk header"})
				continue
			}
			if n := len(current.Hunks); n > 0 {
				prev := current.Hunks[n-1]
				prevEnd := prev.OldStart + prev.OldCount
				if hunk.OldStart >= prevEnd-ProximityWindow && hunk.OldStart <= prevEnd+ProximityWindow {
					current.ProximityFactor *= ProximityMultiplier
				}
			}
			current.Hunks = append(current.Hunks, hunk)
			if len(current.Hunks) == 1 {
				current.LineStart = hunk.NewStart
			}
			if end := hunk.NewStart + hunk.NewCount; end > current.LineEnd {
				current.LineEnd = end
			}

		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			if current != nil {
				current.ChangedLines = append(current.ChangedLines, line[1:])
			}

		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			if current != nil {
				current.ChangedLines = append(current.ChangedLines, line[1:])
			}
		}
	}
	return details, skipped
}

// parseHunkHeader extracts hunk boundaries; omitted counts default to 1.
func parseHunkHeader(line string) (schema.Hunk, bool) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return schema.Hunk{}, false
	}
	atoiDefault := func(s string) int {
		if s == "" {
			return 1
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return 1
		}
		return v
	}
	return schema.Hunk{
		OldStart: atoiDefault(m[1]),
		OldCount: atoiDefault(m[2]),
		NewStart: atoiDefault(m[3]),
		NewCount: atoiDefault(m[4]),
	}, true
}

// stripDiffPrefix removes the a/ or b/ prefix git puts on diff paths and
// maps /dev/null to the empty string.
func stripDiffPrefix(path string) string {
	path = strings.TrimSpace(path)
	if path == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		return path[2:]
	}
	return path
}
