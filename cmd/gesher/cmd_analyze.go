package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gesher/internal/metrics"
	"gesher/internal/profile"
)

var analyzeFlags struct {
	dir        string
	profileDir string
	csvPath    string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a conversations directory",
	Long: "Reduces every persisted conversation to a flat feature row, writes the CSV,\n" +
		"and prints per-intervention comparison tables.",
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.dir, "dir", "results", "Results directory (containing conversations/)")
	f.StringVar(&analyzeFlags.profileDir, "profile-dir", "profiles", "Profile directory for context columns")
	f.StringVar(&analyzeFlags.csvPath, "csv", "", "Write per-conversation rows to this CSV file")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	// Context columns degrade to zero values when profiles are unavailable;
	// the transcript features never depend on them.
	profiles, err := profile.NewLoader(analyzeFlags.profileDir).LoadAll()
	if err != nil {
		profiles = nil
	}

	analyzer := metrics.NewAnalyzer(profiles)
	rows, err := analyzer.AnalyzeDir(analyzeFlags.dir)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no conversations found under %s", analyzeFlags.dir)
	}

	out := cmd.OutOrStdout()
	if analyzeFlags.csvPath != "" {
		if err := metrics.WriteCSV(rows, analyzeFlags.csvPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Analysis saved to %s (%d conversations)\n\n", analyzeFlags.csvPath, len(rows))
	}

	fmt.Fprint(out, metrics.FormatSummary(metrics.Summarize(rows)))
	return nil
}
