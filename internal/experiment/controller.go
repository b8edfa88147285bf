package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"gesher/internal/config"
	"gesher/internal/intervention"
	"gesher/internal/logging"
	"gesher/internal/profile"
	"gesher/internal/provider"
	"gesher/internal/ratelimit"
	"gesher/internal/simulate"
)

// checkpointAfterFailures triggers a crash-insurance log flush once this many
// combination failures have accumulated.
const checkpointAfterFailures = 3

// testModeCombinations caps the schedule when running in test mode.
const testModeCombinations = 3

// testStanceGroups are the stance groups test mode samples one profile from.
var testStanceGroups = []string{"left", "center_left", "center"}

// RunOptions selects what the experiment covers.
type RunOptions struct {
	TestMode bool
	Profiles []string // explicit profile IDs; overrides test-mode selection
}

// Controller drives the full factorial of profile-by-intervention
// combinations, strictly sequentially, with failure isolation and
// conservative pacing layered on top of the rate limiter.
type Controller struct {
	cfg     config.Config
	sim     *simulate.Simulator
	limiter *ratelimit.Limiter
	loader  *profile.Loader
	tracker *Tracker
	outDir  string

	rng    *rand.Rand
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithSeed makes the combination shuffle deterministic.
func WithSeed(seed int64) Option {
	return func(c *Controller) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithSleep overrides pacing sleeps. Tests use this to avoid real waiting.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Controller) { c.sleep = fn }
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController wires an experiment controller. The caller owns the handles;
// there are no ambient singletons.
func NewController(
	cfg config.Config,
	sim *simulate.Simulator,
	limiter *ratelimit.Limiter,
	loader *profile.Loader,
	tracker *Tracker,
	outDir string,
	opts ...Option,
) *Controller {
	c := &Controller{
		cfg:     cfg,
		sim:     sim,
		limiter: limiter,
		loader:  loader,
		tracker: tracker,
		outDir:  outDir,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   sleepCtx,
		logger:  logging.New("experiment"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the experiment. Per-combination failures are recorded and
// skipped; only configuration-fatal conditions (no profiles, no matching
// selection) abort the run. The returned result is also flushed to
// <out>/logs as JSON.
func (c *Controller) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	profiles, err := c.selectProfiles(opts)
	if err != nil {
		return nil, err
	}

	interventions := intervention.All()
	combos := c.schedule(profiles, interventions, opts.TestMode)

	result := &RunResult{
		RunID:     uuid.NewString(),
		TestMode:  opts.TestMode,
		Planned:   combos,
		StartedAt: time.Now(),
	}

	c.logger.Info("starting experiment",
		"run_id", result.RunID, "profiles", len(profiles),
		"interventions", len(interventions), "combinations", len(combos))

	for i, combo := range combos {
		if ctx.Err() != nil {
			break
		}

		c.logger.Info("running combination",
			"index", i+1, "total", len(combos),
			"profile", combo.ProfileID, "intervention", combo.Intervention)

		rec, err := c.runOne(ctx, profiles[combo.ProfileID], combo)
		if err != nil {
			// An operator interrupt is not a combination failure; flush what
			// completed and stop.
			if ctx.Err() != nil {
				c.logger.Warn("run interrupted", "error", ctx.Err())
				break
			}
			c.logger.Error("combination failed",
				"profile", combo.ProfileID, "intervention", combo.Intervention, "error", err)
			result.Failed = append(result.Failed, FailureRecord{
				ProfileID:    combo.ProfileID,
				Intervention: combo.Intervention,
				Error:        err.Error(),
			})

			if len(result.Failed) >= checkpointAfterFailures {
				if path, serr := SaveLog(result, c.outDir); serr != nil {
					c.logger.Warn("checkpoint flush failed", "error", serr)
				} else {
					c.logger.Warn("failure burst, checkpoint flushed",
						"failed", len(result.Failed), "path", path)
				}
			}

			if c.isRateLimitSignal(err) {
				cooldown := time.Duration(c.cfg.Pacing.CooldownSec) * time.Second
				c.logger.Warn("rate-limit signal surfaced, cooling down", "cooldown", cooldown)
				if serr := c.sleep(ctx, cooldown); serr != nil {
					break
				}
			}
			continue
		}

		result.Successful = append(result.Successful, *rec)
		c.logger.Info("combination complete",
			"profile", combo.ProfileID, "messages", rec.MessageCount, "reason", rec.EndReason)

		if i < len(combos)-1 {
			if err := c.pace(ctx, i+1); err != nil {
				break
			}
		}
	}

	result.EndedAt = time.Now()
	if path, err := SaveLog(result, c.outDir); err != nil {
		c.logger.Warn("final log flush failed", "error", err)
	} else {
		c.logger.Info("experiment log saved", "path", path)
	}

	c.logger.Info("experiment finished",
		"successful", len(result.Successful), "failed", len(result.Failed))
	return result, nil
}

// runOne drives a single combination through the simulator and persists the
// conversation. The rate limiter is consulted with the coarse
// conversation-level token estimate; per-call admission happens inside the
// simulator.
func (c *Controller) runOne(ctx context.Context, p *profile.Profile, combo Combination) (*SuccessRecord, error) {
	iv, err := intervention.ByName(combo.Intervention)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx, c.cfg.EstTokensPerConversation); err != nil {
		return nil, err
	}

	start := time.Now()
	conv, err := c.sim.Simulate(ctx, p, iv)
	if err != nil {
		return nil, err
	}

	path, err := simulate.Save(conv, c.outDir)
	if err != nil {
		return nil, fmt.Errorf("persist conversation: %w", err)
	}

	if c.tracker != nil {
		est := c.cfg.EstTokensPerConversation
		c.tracker.Record(UsageRecord{
			ProfileID:    combo.ProfileID,
			Intervention: combo.Intervention,
			PromptTokens: est * 3 / 4,
			OutputTokens: est - est*3/4,
			WallClock:    time.Since(start),
			At:           start,
		})
	}

	return &SuccessRecord{
		ProfileID:    combo.ProfileID,
		Intervention: combo.Intervention,
		MessageCount: conv.Metadata.MessageCount,
		EndReason:    conv.Metadata.EndReason,
		Path:         path,
	}, nil
}

// selectProfiles loads and filters the profile set. An empty result is
// configuration-fatal.
func (c *Controller) selectProfiles(opts RunOptions) (map[string]*profile.Profile, error) {
	all, err := c.loader.LoadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no profiles found in %s", c.cfg.ProfileDir)
	}

	if len(opts.Profiles) > 0 {
		selected := make(map[string]*profile.Profile)
		for _, id := range opts.Profiles {
			p, ok := all[id]
			if !ok {
				return nil, fmt.Errorf("profile %q not found", id)
			}
			selected[id] = p
		}
		return selected, nil
	}

	if opts.TestMode {
		selected := make(map[string]*profile.Profile)
		ids := profile.IDs(all)
		for _, group := range testStanceGroups {
			for _, id := range ids {
				if strings.Contains(id, group) {
					selected[id] = all[id]
					break
				}
			}
		}
		if len(selected) == 0 {
			return nil, fmt.Errorf("test mode found no profiles for stance groups %v", testStanceGroups)
		}
		return selected, nil
	}

	return all, nil
}

// schedule builds the shuffled cross-product, truncated in test mode.
// Randomized order avoids order confounds across the run.
func (c *Controller) schedule(profiles map[string]*profile.Profile, ivs []intervention.Intervention, testMode bool) []Combination {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	combos := make([]Combination, 0, len(ids)*len(ivs))
	for _, id := range ids {
		for _, iv := range ivs {
			combos = append(combos, Combination{ProfileID: id, Intervention: iv.Name})
		}
	}

	c.rng.Shuffle(len(combos), func(i, j int) {
		combos[i], combos[j] = combos[j], combos[i]
	})

	if testMode && len(combos) > testModeCombinations {
		combos = combos[:testModeCombinations]
	}
	return combos
}

// pace applies the fixed inter-conversation delays: a short gap after every
// conversation, a longer pause after every Nth.
func (c *Controller) pace(ctx context.Context, completed int) error {
	if c.cfg.Pacing.LongPauseEvery > 0 && completed%c.cfg.Pacing.LongPauseEvery == 0 {
		d := time.Duration(c.cfg.Pacing.LongPauseEverySec) * time.Second
		c.logger.Info("long pause", "after", completed, "duration", d)
		return c.sleep(ctx, d)
	}
	return c.sleep(ctx, time.Duration(c.cfg.Pacing.BetweenConversationsSec)*time.Second)
}

// isRateLimitSignal reports whether a combination error warrants the long
// cooldown. A spent daily quota is terminal; cooling down will not recover it.
func (c *Controller) isRateLimitSignal(err error) bool {
	if errors.Is(err, ratelimit.ErrDailyLimit) {
		return false
	}
	return provider.IsQuota(err) || strings.Contains(strings.ToLower(err.Error()), "rate limit")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
