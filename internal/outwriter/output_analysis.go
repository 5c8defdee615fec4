package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mergerisk/mergerisk/internal/contract"
	"github.com/mergerisk/mergerisk/internal/parquet"
	"github.com/mergerisk/mergerisk/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteAnalysis outputs the analysis, dispatching on the configured
// output format.
func WriteAnalysis(analysis *schema.ConflictAnalysis, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeAnalysisJSON(w, analysis)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeAnalysisCSV(w, analysis, fmtFloat, intFmt)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("%w: parquet output requires -o FILE", contract.ErrInvalidArgument)
		}
		if err := parquet.WriteAnalysis(analysis, cfg.OutputFile); err != nil {
			return err
		}
		if !cfg.Quiet {
			fmt.Fprintf(os.Stderr, "Wrote parquet to %s\n", cfg.OutputFile)
		}
		return nil
	default:
		return writeWithFile(cfg, func(w io.Writer) error {
			return writeAnalysisText(w, analysis, cfg, fmtFloat)
		}, "Wrote report")
	}
}

// riskLevel is the report-level band over the overall probability,
// coarser than per-file severity.
func riskLevel(probability float64) string {
	switch {
	case probability >= 0.8:
		return "HIGH"
	case probability >= 0.5:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// writeAnalysisText renders the human report: summary, risk
// distribution, per-file table, recommendations and strategy. The
// "Files analyzed" line is an interface contract relied on by calling
// scripts; keep the literal wording.
func writeAnalysisText(w io.Writer, analysis *schema.ConflictAnalysis, cfg *contract.Config, fmtFloat func(float64) string) error {
	fmt.Fprintf(w, "Merge Conflict Analysis Report\n")
	fmt.Fprintf(w, "==============================\n\n")
	fmt.Fprintf(w, "Repository:      %s\n", analysis.RepoPath)
	fmt.Fprintf(w, "Comparing:       %s -> %s\n", analysis.BaseRef, analysis.TargetRef)
	fmt.Fprintf(w, "Files analyzed: %d\n", analysis.FileCount)
	fmt.Fprintf(w, "Lines changed:   +%d / -%d\n", analysis.TotalAdditions, analysis.TotalDeletions)
	fmt.Fprintf(w, "Change regions:  %d\n", analysis.TotalHunks)
	fmt.Fprintf(w, "Conflict probability: %.0f%%\n", analysis.OverallProbability*100)
	fmt.Fprintf(w, "Risk level:      %s\n\n", riskLevel(analysis.OverallProbability))

	dist := analysis.Distribution()
	fmt.Fprintf(w, "Risk distribution:\n")
	for _, sev := range []schema.Severity{schema.SeverityCritical, schema.SeverityHigh, schema.SeverityMedium, schema.SeverityLow} {
		fmt.Fprintf(w, "  %-8s %d\n", sev, dist[sev])
	}
	fmt.Fprintln(w)

	if analysis.FileCount > 0 {
		if err := writeFileTable(w, analysis, cfg, fmtFloat); err != nil {
			return err
		}
		flagged := 0
		for i := range analysis.Files {
			if analysis.Files[i].Probability*100 >= float64(cfg.ScoreThreshold) {
				flagged++
			}
		}
		fmt.Fprintf(w, "%d file(s) at or above the score threshold (%d)\n\n", flagged, cfg.ScoreThreshold)
	}

	fmt.Fprintf(w, "Recommendations:\n%s\n\n", analysis.Recommendations)
	fmt.Fprintf(w, "Merge strategy:\n%s\n", analysis.Strategy)
	return nil
}

// writeFileTable renders the per-file risk table.
func writeFileTable(w io.Writer, analysis *schema.ConflictAnalysis, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Path", "+", "-", "Hunks", "Score", "Severity"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}

	var data [][]string
	for i := range analysis.Files {
		f := &analysis.Files[i]
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Path, getMaxTablePathWidth(cfg)),
			strconv.Itoa(f.Additions),
			strconv.Itoa(f.Deletions),
			strconv.Itoa(f.HunkCount),
			fmtFloat(f.Probability),
			label(f.Severity),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeAnalysisJSON writes the structured report. The layout is stable:
// a summary object, the severity distribution, and the files array,
// which is present (possibly empty) for any file count including zero.
func writeAnalysisJSON(w io.Writer, analysis *schema.ConflictAnalysis) error {
	type jsonSummary struct {
		RepoPath           string  `json:"repo_path"`
		BaseRef            string  `json:"base_ref"`
		TargetRef          string  `json:"target_ref"`
		FileCount          int     `json:"file_count"`
		TotalAdditions     int     `json:"total_additions"`
		TotalDeletions     int     `json:"total_deletions"`
		TotalHunks         int     `json:"total_hunks"`
		OverallProbability float64 `json:"overall_probability"`
		RiskLevel          string  `json:"risk_level"`
		Recommendations    string  `json:"recommendations"`
		Strategy           string  `json:"strategy"`
	}
	type jsonReport struct {
		Summary      jsonSummary             `json:"summary"`
		Distribution map[schema.Severity]int `json:"distribution"`
		Files        []schema.FileConflict   `json:"files"`
	}

	files := analysis.Files
	if files == nil {
		files = []schema.FileConflict{}
	}
	report := jsonReport{
		Summary: jsonSummary{
			RepoPath:           analysis.RepoPath,
			BaseRef:            analysis.BaseRef,
			TargetRef:          analysis.TargetRef,
			FileCount:          analysis.FileCount,
			TotalAdditions:     analysis.TotalAdditions,
			TotalDeletions:     analysis.TotalDeletions,
			TotalHunks:         analysis.TotalHunks,
			OverallProbability: analysis.OverallProbability,
			RiskLevel:          riskLevel(analysis.OverallProbability),
			Recommendations:    analysis.Recommendations,
			Strategy:           analysis.Strategy,
		},
		Distribution: analysis.Distribution(),
		Files:        files,
	}
	return writeJSON(w, report)
}

// writeAnalysisCSV writes one row per file. A zero-file analysis still
// produces a valid header-only document.
func writeAnalysisCSV(w io.Writer, analysis *schema.ConflictAnalysis, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"path",
		"additions",
		"deletions",
		"conflict_score",
		"extension",
		"severity",
		"hunks",
		"line_start",
		"line_end",
		"pattern_id",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i := range analysis.Files {
			f := &analysis.Files[i]
			rec := []string{
				f.Path,
				fmt.Sprintf(intFmt, f.Additions),
				fmt.Sprintf(intFmt, f.Deletions),
				fmtFloat(f.Probability),
				f.Extension,
				string(f.Severity),
				fmt.Sprintf(intFmt, f.HunkCount),
				fmt.Sprintf(intFmt, f.LineStart),
				fmt.Sprintf(intFmt, f.LineEnd),
				f.PatternID,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteHistory prints history records as a table, newest first.
func WriteHistory(records []schema.HistoryRecord, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return writeWithFile(cfg, func(w io.Writer) error {
		if len(records) == 0 {
			fmt.Fprintln(w, "No history records found.")
			return nil
		}
		table := tablewriter.NewWriter(w)
		table.Header([]string{"When", "Repository", "Branch", "Probability", "Files", "Conflicts", "Status"})
		var data [][]string
		for _, rec := range records {
			data = append(data, []string{
				rec.Timestamp.Format(contract.DateTimeFormat),
				contract.TruncatePath(rec.RepoPath, 40),
				rec.BranchName,
				fmtFloat(rec.OverallProbability),
				strconv.Itoa(rec.FileCount),
				strconv.Itoa(rec.ConflictCount),
				string(rec.Status),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	}, "Wrote history")
}

// WriteTables prints the loaded pattern and rule definitions.
func WriteTables(patterns []schema.ConflictPattern, rules []schema.RiskRule, cfg *contract.Config) error {
	return writeWithFile(cfg, func(w io.Writer) error {
		fmt.Fprintf(w, "Conflict patterns (%d):\n", len(patterns))
		pt := tablewriter.NewWriter(w)
		pt.Header([]string{"ID", "Extension", "Probability", "Base Score", "Modifiers", "Description"})
		var pdata [][]string
		for i := range patterns {
			p := &patterns[i]
			pdata = append(pdata, []string{
				p.ID, p.Extension,
				fmt.Sprintf("%.2f", p.Probability),
				strconv.Itoa(p.BaseScore),
				p.Modifiers, p.Description,
			})
		}
		if err := pt.Bulk(pdata); err != nil {
			return err
		}
		if err := pt.Render(); err != nil {
			return err
		}

		fmt.Fprintf(w, "\nRisk rules (%d):\n", len(rules))
		rt := tablewriter.NewWriter(w)
		rt.Header([]string{"ID", "Condition", "Value", "Multiplier", "Severity", "Description"})
		var rdata [][]string
		for i := range rules {
			r := &rules[i]
			rdata = append(rdata, []string{
				r.ID, string(r.ConditionType),
				fmt.Sprintf("%.0f", r.ConditionValue),
				fmt.Sprintf("%.2f", r.RiskMultiplier),
				string(r.Severity), r.Description,
			})
		}
		if err := rt.Bulk(rdata); err != nil {
			return err
		}
		return rt.Render()
	}, "Wrote tables")
}
