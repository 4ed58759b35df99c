package main

import (
	"fmt"
	"io"

	"github.com/boshu2/playbook/internal/curator"
	"github.com/boshu2/playbook/internal/formatter"
)

// printReport writes a run summary in the requested format. JSON output
// is machine-readable for scripting; anything else gets the human form.
func printReport(w io.Writer, v any, format string) error {
	if format == formatter.FormatJSON {
		return formatter.WriteJSON(w, v)
	}

	switch r := v.(type) {
	case analyzeReport:
		return printAnalyzeReport(w, r)
	case curator.Report:
		return printCurateReport(w, r)
	default:
		return formatter.WriteJSON(w, v)
	}
}

func printAnalyzeReport(w io.Writer, r analyzeReport) error {
	if r.Skipped {
		_, err := fmt.Fprintln(w, "Analysis skipped: candidate pool is locked.")
		return err
	}
	_, err := fmt.Fprintf(w,
		"Analyzed %d events: %d groups, %d candidates (%d merged, %d new). Pool size: %d.\n",
		r.Events, r.Groups, r.Candidates, r.Merged, r.Added, r.PoolTotal)
	return err
}

func printCurateReport(w io.Writer, r curator.Report) error {
	_, err := fmt.Fprintf(w,
		"Curated: %d promoted, %d merged, %d deduped. Pruned %d stale, %d low-success, %d overflow. Active: %d, pool: %d.\n",
		r.Promoted, r.MergedActive, r.DedupedActive,
		r.PrunedStale, r.PrunedLowSuccess, r.Overflow,
		r.ActiveTotal, r.PoolTotal)
	return err
}
