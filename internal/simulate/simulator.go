package simulate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gesher/internal/config"
	"gesher/internal/intervention"
	"gesher/internal/logging"
	"gesher/internal/profile"
	"gesher/internal/provider"
	"gesher/internal/ratelimit"
)

// Admitter is the admission primitive the simulator consults before every
// provider call; Record is called once per admitted call. Satisfied by
// *ratelimit.Limiter.
type Admitter interface {
	Wait(ctx context.Context, estTokens int) error
	Record(tokensUsed int)
}

// Per-role generation parameters.
const (
	agentTemperature = 0.8
	agentMaxTokens   = 300

	subjectTemperature = 0.85
	subjectMaxTokens   = 250

	topP = 0.9

	// retryBuffer pads the provider-advised delay before the next attempt.
	retryBuffer = 2 * time.Second
)

// defaultOpeningResponse is used when a profile carries no scripted opener.
const defaultOpeningResponse = "קשה לי עם כל המצב הזה"

// Simulator drives conversations against one provider client, gated by the
// rate limiter. It is not safe for concurrent use; the experiment runs
// conversations strictly sequentially.
type Simulator struct {
	client  provider.Client
	limiter Admitter
	hint    provider.RetryHint
	cfg     config.Conversation
	model   string

	rng    *rand.Rand
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSeed makes turn-level randomness (openings, soft endings, closings)
// deterministic.
func WithSeed(seed int64) Option {
	return func(s *Simulator) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithSleep overrides the retry/backoff sleep. Tests use this to avoid real
// waiting.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Simulator) { s.sleep = fn }
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithRetryHint overrides the retry-delay heuristic.
func WithRetryHint(h provider.RetryHint) Option {
	return func(s *Simulator) { s.hint = h }
}

// New creates a Simulator.
func New(client provider.Client, limiter Admitter, cfg config.Conversation, model string, opts ...Option) *Simulator {
	s := &Simulator{
		client:  client,
		limiter: limiter,
		hint:    provider.NewRegexHint(0),
		cfg:     cfg,
		model:   model,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   sleepCtx,
		logger:  logging.New("simulate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate runs one complete conversation. Turn-level generation failures
// degrade to fallback text and never abort the conversation; only a spent
// daily quota or a cancelled context surfaces as an error.
func (s *Simulator) Simulate(ctx context.Context, p *profile.Profile, iv intervention.Intervention) (*Conversation, error) {
	c := newConversation(p.ID, iv.Name, time.Now())
	stance := intervention.SummarizeStance(p)

	s.logger.Info("starting conversation",
		"profile", p.ID, "intervention", iv.Name, "stance", stance.PoliticalLabel())

	for {
		phase := phaseFor(len(c.Turns))
		role := c.nextRole()

		text, err := s.nextTurn(ctx, role, phase, p, iv, stance, c)
		if err != nil {
			return nil, err
		}
		c.append(role, text, time.Now())

		if done, reason := s.shouldEnd(c); done {
			if reason != EndHardLimit {
				ack := subjectClosings[s.rng.Intn(len(subjectClosings))]
				c.append(RoleSubject, ack, time.Now())
			}
			c.finish(reason, time.Now())
			s.logger.Info("conversation finished",
				"profile", p.ID, "turns", len(c.Turns), "reason", reason)
			return c, nil
		}
	}
}

// nextTurn produces the text for one turn. The two scripted opening turns
// cost no provider call.
func (s *Simulator) nextTurn(
	ctx context.Context,
	role Role,
	phase Phase,
	p *profile.Profile,
	iv intervention.Intervention,
	stance intervention.Stance,
	c *Conversation,
) (string, error) {
	switch len(c.Turns) {
	case 0:
		return intervention.AgentOpenings[s.rng.Intn(len(intervention.AgentOpenings))], nil
	case 1:
		if p.Style.OpeningResponse != "" {
			return p.Style.OpeningResponse, nil
		}
		return defaultOpeningResponse, nil
	}

	if role == RoleAgent {
		prompt := buildAgentPrompt(iv, stance, phase, c.Turns)
		return s.generate(ctx, role, phase, prompt, agentTemperature, agentMaxTokens, p)
	}
	prompt := buildSubjectPrompt(p, phase, c.Turns, s.cfg.HistoryWindow)
	return s.generate(ctx, role, phase, prompt, subjectTemperature, subjectMaxTokens, p)
}

// generate performs one generation with bounded retry. Quota errors consult
// the retry-delay hint; exhausted attempts or non-quota errors degrade to a
// fallback line. Only terminal conditions (daily quota, cancelled context)
// return an error.
func (s *Simulator) generate(
	ctx context.Context,
	role Role,
	phase Phase,
	prompt string,
	temperature float64,
	maxTokens int,
	p *profile.Profile,
) (string, error) {
	req := provider.GenRequest{
		Model:           s.model,
		Prompt:          prompt,
		Temperature:     temperature,
		TopP:            topP,
		MaxOutputTokens: maxTokens,
	}

	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx, s.cfg.EstTokensPerReq); err != nil {
			if errors.Is(err, ratelimit.ErrDailyLimit) {
				return "", fmt.Errorf("admission for %s turn: %w", role, err)
			}
			return "", err // context cancelled
		}
		// The admitted attempt consumes quota whether or not it succeeds.
		s.limiter.Record(s.cfg.EstTokensPerReq)

		text, err := s.client.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		s.logger.Warn("generation attempt failed",
			"role", role, "attempt", attempt, "error", err)

		if provider.IsQuota(err) && attempt < s.cfg.MaxRetries {
			delay := s.hint.Delay(err) + retryBuffer
			s.logger.Info("quota exhausted, backing off", "delay", delay)
			if serr := s.sleep(ctx, delay); serr != nil {
				return "", serr
			}
		}
	}

	return s.fallback(role, phase, p), nil
}

// fallback picks the degraded line for a failed turn: a persona typical
// phrase for the subject when available, else the phase-keyed canned text.
func (s *Simulator) fallback(role Role, phase Phase, p *profile.Profile) string {
	if role == RoleSubject && len(p.Style.TypicalPhrases) > 0 {
		return p.Style.TypicalPhrases[s.rng.Intn(len(p.Style.TypicalPhrases))]
	}
	return fallbackText(role, phase)
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
