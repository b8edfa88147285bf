package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gesher/internal/config"
	"gesher/internal/format"
	"gesher/internal/intervention"
	"gesher/internal/profile"
)

var statusFlags struct {
	configPath string
	profileDir string
	testMode   bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the planned run against the quota ceilings",
	Long: "Prints the combination count and estimated token spend of a planned run\n" +
		"next to the configured provider quota ceilings.",
	RunE: runStatus,
}

func init() {
	f := statusCmd.Flags()
	f.StringVar(&statusFlags.configPath, "config", "", "Path to YAML config")
	f.StringVar(&statusFlags.profileDir, "profile-dir", "", "Profile directory (overrides config)")
	f.BoolVar(&statusFlags.testMode, "test", false, "Plan for test mode (3 combinations)")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(statusFlags.configPath)
	if err != nil {
		return err
	}
	if statusFlags.profileDir != "" {
		cfg.ProfileDir = statusFlags.profileDir
	}

	profiles, err := profile.NewLoader(cfg.ProfileDir).LoadAll()
	if err != nil {
		return err
	}

	combinations := len(profiles) * len(intervention.All())
	if statusFlags.testMode && combinations > 3 {
		combinations = 3
	}
	estTokens := combinations * cfg.EstTokensPerConversation
	estRequests := combinations * cfg.Conversation.HardLimit

	tbl := format.NewTable(format.ASCII)
	tbl.Header("Resource", "Planned", "Ceiling")
	tbl.Columns(
		format.Column{Number: 1, Align: format.AlignLeft},
		format.Column{Number: 2, Align: format.AlignRight},
		format.Column{Number: 3, Align: format.AlignRight},
	)
	tbl.Row("Profiles", len(profiles), "")
	tbl.Row("Combinations", combinations, "")
	tbl.Row("Requests (worst case)", estRequests, fmt.Sprintf("%d/day", cfg.Limits.RequestsPerDay))
	tbl.Row("Tokens (estimated)", format.FmtTokens(estTokens), format.FmtTokens(cfg.Limits.TokensPerMinute)+"/min")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tbl.String())
	if estRequests > cfg.Limits.RequestsPerDay {
		fmt.Fprintf(out, "Warning: worst-case request count exceeds the daily ceiling; the run will span multiple days.\n")
	}
	return nil
}
