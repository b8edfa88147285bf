package experiment

import (
	"fmt"

	"gesher/internal/format"
)

// FormatResult renders the run outcome for console output: one line per
// combination plus totals.
func FormatResult(r *RunResult) string {
	tbl := format.NewTable(format.ASCII)
	tbl.Header("Profile", "Intervention", "Messages", "Ending")
	tbl.Columns(
		format.Column{Number: 1, Align: format.AlignLeft},
		format.Column{Number: 2, Align: format.AlignLeft},
		format.Column{Number: 3, Align: format.AlignRight},
		format.Column{Number: 4, Align: format.AlignLeft},
	)

	for _, s := range r.Successful {
		tbl.Row(s.ProfileID, s.Intervention, s.MessageCount, string(s.EndReason))
	}
	for _, f := range r.Failed {
		tbl.Row(f.ProfileID, f.Intervention, "-", "FAILED: "+format.Truncate(f.Error, 40))
	}
	tbl.Footer("TOTAL", fmt.Sprintf("%d planned", len(r.Planned)),
		fmt.Sprintf("%d ok", len(r.Successful)), fmt.Sprintf("%d failed", len(r.Failed)))

	header := fmt.Sprintf("=== Experiment %s ===\n", r.RunID)
	footer := fmt.Sprintf("Elapsed: %s\n", format.FmtDuration(r.EndedAt.Sub(r.StartedAt)))
	return header + tbl.String() + "\n" + footer
}
