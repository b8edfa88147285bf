package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gesher/internal/config"
	"gesher/internal/experiment"
	"gesher/internal/profile"
	"gesher/internal/provider"
	"gesher/internal/ratelimit"
	"gesher/internal/simulate"
)

var runFlags struct {
	configPath string
	profileDir string
	outDir     string
	profiles   []string
	testMode   bool
	seed       int64
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the conversation experiment",
	Long: "Runs the profile-by-intervention cross-product sequentially. Per-combination\n" +
		"failures are recorded and skipped; the run fails only when nothing completes.",
	RunE: runExperiment,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.configPath, "config", "", "Path to YAML config (defaults apply when omitted)")
	f.StringVar(&runFlags.profileDir, "profile-dir", "", "Profile directory (overrides config)")
	f.StringVar(&runFlags.outDir, "out", "", "Output directory (overrides config)")
	f.StringSliceVar(&runFlags.profiles, "profiles", nil, "Explicit profile IDs to run (default: all)")
	f.BoolVar(&runFlags.testMode, "test", false, "Test mode: 3 combinations across stance groups")
	f.Int64Var(&runFlags.seed, "seed", 0, "Shuffle seed (0 = time-based)")
}

func runExperiment(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(runFlags.configPath)
	if err != nil {
		return err
	}
	if runFlags.profileDir != "" {
		cfg.ProfileDir = runFlags.profileDir
	}
	if runFlags.outDir != "" {
		cfg.OutputDir = runFlags.outDir
	}

	key, err := provider.ReadAPIKey(cfg.Provider.APIKeyFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := provider.New(cfg.Provider.BaseURL, key,
		provider.WithTimeout(cfg.ProviderTimeout()))
	if err != nil {
		return err
	}
	limiter := ratelimit.New(cfg.Limits.RequestsPerMinute, cfg.Limits.TokensPerMinute, cfg.Limits.RequestsPerDay)
	sim := simulate.New(client, limiter, cfg.Conversation, cfg.Provider.Model)
	loader := profile.NewLoader(cfg.ProfileDir)
	tracker := experiment.NewTracker()

	var opts []experiment.Option
	if runFlags.seed != 0 {
		opts = append(opts, experiment.WithSeed(runFlags.seed))
	}
	ctrl := experiment.NewController(cfg, sim, limiter, loader, tracker, cfg.OutputDir, opts...)

	result, err := ctrl.Run(ctx, experiment.RunOptions{
		TestMode: runFlags.testMode,
		Profiles: runFlags.profiles,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, experiment.FormatResult(result))
	fmt.Fprint(out, experiment.FormatUsage(tracker.Summary()))

	if len(result.Successful) == 0 {
		return fmt.Errorf("no conversations completed (%d failed)", len(result.Failed))
	}
	return nil
}
