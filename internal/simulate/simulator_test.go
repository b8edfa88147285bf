package simulate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gesher/internal/config"
	"gesher/internal/intervention"
	"gesher/internal/logging"
	"gesher/internal/profile"
	"gesher/internal/provider"
	"gesher/internal/ratelimit"
)

// scriptClient replays a per-call script. Calls are counted across the whole
// conversation, generated turns only.
type scriptClient struct {
	calls int
	fn    func(call int, req provider.GenRequest) (string, error)
}

func (c *scriptClient) Generate(_ context.Context, req provider.GenRequest) (string, error) {
	c.calls++
	return c.fn(c.calls, req)
}

// admitAll is an Admitter that never blocks.
type admitAll struct{}

func (admitAll) Wait(context.Context, int) error { return nil }
func (admitAll) Record(int)                      {}

// admitNone simulates a spent daily quota.
type admitNone struct{}

func (admitNone) Wait(context.Context, int) error {
	return fmt.Errorf("daily limit reached: %w", ratelimit.ErrDailyLimit)
}
func (admitNone) Record(int) {}

func noSleep(context.Context, time.Duration) error { return nil }

func testConvCfg() config.Conversation {
	cfg := config.Default().Conversation
	cfg.SoftProbability = 0 // keep endings deterministic unless a test opts in
	return cfg
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		ID: "left_1",
		Basic: profile.BasicInfo{
			Age:             34,
			PoliticalStance: 2,
		},
		War: profile.WarPosition{
			PriorityPre: "החזרת החטופים",
			ActionPre:   "עסקה לשחרור חטופים",
		},
		Style: profile.Style{
			OpeningResponse: "קשה לי עם כל מה שקורה",
			TypicalPhrases:  []string{"זה פשוט כואב לי"},
		},
	}
}

func newTestSimulator(client provider.Client, limiter Admitter, cfg config.Conversation) *Simulator {
	return New(client, limiter, cfg, "test-model",
		WithSeed(42),
		WithSleep(noSleep),
		WithLogger(logging.Discard()),
	)
}

func sharedIdentity(t *testing.T) intervention.Intervention {
	t.Helper()
	iv, err := intervention.ByName(intervention.SharedIdentity)
	if err != nil {
		t.Fatal(err)
	}
	return iv
}

func TestNaturalEndingAtMinimum(t *testing.T) {
	// Every generated turn carries a closing phrase, but the policy only
	// honours it once the turn count reaches the natural minimum.
	client := &scriptClient{fn: func(int, provider.GenRequest) (string, error) {
		return "מסכים, תודה על השיחה", nil
	}}
	cfg := testConvCfg()
	s := newTestSimulator(client, admitAll{}, cfg)

	c, err := s.Simulate(context.Background(), testProfile(), sharedIdentity(t))
	if err != nil {
		t.Fatal(err)
	}

	if c.Metadata.EndReason != EndNatural {
		t.Fatalf("ending = %s, want %s", c.Metadata.EndReason, EndNatural)
	}
	// The ending fires at NaturalMin, plus at most one acknowledgment turn.
	if got := c.Metadata.MessageCount; got < cfg.NaturalMin || got > cfg.NaturalMin+1 {
		t.Fatalf("message count = %d, want %d..%d", got, cfg.NaturalMin, cfg.NaturalMin+1)
	}
	if c.Metadata.MessageCount != len(c.Turns) {
		t.Fatalf("metadata count %d != %d turns", c.Metadata.MessageCount, len(c.Turns))
	}
}

func TestSoftEndingFiresPastMinimum(t *testing.T) {
	// No turn ever carries a closing phrase; with certain per-turn
	// probability the soft ending must fire as soon as the count reaches the
	// soft minimum, plus at most one acknowledgment turn.
	client := &scriptClient{fn: func(int, provider.GenRequest) (string, error) {
		return "אני עדיין חושב שזה מסובך", nil
	}}
	cfg := testConvCfg()
	cfg.SoftProbability = 1
	s := newTestSimulator(client, admitAll{}, cfg)

	c, err := s.Simulate(context.Background(), testProfile(), sharedIdentity(t))
	if err != nil {
		t.Fatal(err)
	}

	if c.Metadata.EndReason != EndSoft {
		t.Fatalf("ending = %s, want %s", c.Metadata.EndReason, EndSoft)
	}
	if got := c.Metadata.MessageCount; got < cfg.SoftMin || got > cfg.SoftMin+1 {
		t.Fatalf("message count = %d, want %d..%d", got, cfg.SoftMin, cfg.SoftMin+1)
	}
	if c.Turns[len(c.Turns)-1].Role != RoleSubject {
		t.Fatal("soft ending did not close with a subject acknowledgment")
	}
}

func TestHardLimitExactCeiling(t *testing.T) {
	client := &scriptClient{fn: func(int, provider.GenRequest) (string, error) {
		return "אני עדיין חושב שזה מסובך", nil
	}}
	cfg := testConvCfg()
	cfg.HardLimit = 4
	s := newTestSimulator(client, admitAll{}, cfg)

	c, err := s.Simulate(context.Background(), testProfile(), sharedIdentity(t))
	if err != nil {
		t.Fatal(err)
	}

	if c.Metadata.EndReason != EndHardLimit {
		t.Fatalf("ending = %s, want %s", c.Metadata.EndReason, EndHardLimit)
	}
	if len(c.Turns) != 4 {
		t.Fatalf("turns = %d, want exactly 4", len(c.Turns))
	}
}

func TestStrictAlternation(t *testing.T) {
	client := &scriptClient{fn: func(int, provider.GenRequest) (string, error) {
		return "בוא נסיים את השיחה", nil
	}}
	s := newTestSimulator(client, admitAll{}, testConvCfg())

	c, err := s.Simulate(context.Background(), testProfile(), sharedIdentity(t))
	if err != nil {
		t.Fatal(err)
	}

	if c.Turns[0].Role != RoleAgent {
		t.Fatalf("first turn role = %s, want %s", c.Turns[0].Role, RoleAgent)
	}
	violations := 0
	for i := 1; i < len(c.Turns); i++ {
		if c.Turns[i].Role == c.Turns[i-1].Role {
			violations++
			if i != len(c.Turns)-1 || c.Turns[i].Role != RoleSubject {
				t.Fatalf("alternation broken at turn %d (%s after %s)", i, c.Turns[i].Role, c.Turns[i-1].Role)
			}
		}
	}
	if violations > 1 {
		t.Fatalf("alternation violations = %d, want at most 1 trailing acknowledgment", violations)
	}
}

func TestQuotaOnEverySecondCallStillCompletes(t *testing.T) {
	// Quota failure on every 2nd call; the retry loop must absorb each one
	// and the conversation must complete without a single fallback being
	// the cause of an abort.
	client := &scriptClient{fn: func(call int, _ provider.GenRequest) (string, error) {
		if call%2 == 0 {
			return "", &provider.QuotaError{Payload: `{"retryDelay": "1s"}`}
		}
		return "יש בזה משהו", nil
	}}
	cfg := testConvCfg()
	cfg.HardLimit = 8
	s := newTestSimulator(client, admitAll{}, cfg)

	c, err := s.Simulate(context.Background(), testProfile(), sharedIdentity(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Turns) != 8 {
		t.Fatalf("turns = %d, want 8", len(c.Turns))
	}
}

func TestGenerationFailureDegradesToFallback(t *testing.T) {
	// Non-quota errors burn all attempts and degrade to a canned line; the
	// conversation keeps going.
	client := &scriptClient{fn: func(int, provider.GenRequest) (string, error) {
		return "", errors.New("boom")
	}}
	cfg := testConvCfg()
	cfg.HardLimit = 4
	s := newTestSimulator(client, admitAll{}, cfg)

	c, err := s.Simulate(context.Background(), testProfile(), sharedIdentity(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Turns) != 4 {
		t.Fatalf("turns = %d, want 4", len(c.Turns))
	}
	// The subject fallback draws from the persona's typical phrases.
	if got := c.Turns[3].Text; got != "זה פשוט כואב לי" {
		t.Fatalf("subject fallback = %q, want typical phrase", got)
	}
}

func TestDailyLimitAbortsConversation(t *testing.T) {
	client := &scriptClient{fn: func(int, provider.GenRequest) (string, error) {
		return "בסדר", nil
	}}
	s := newTestSimulator(client, admitNone{}, testConvCfg())

	_, err := s.Simulate(context.Background(), testProfile(), sharedIdentity(t))
	if !errors.Is(err, ratelimit.ErrDailyLimit) {
		t.Fatalf("error = %v, want ErrDailyLimit", err)
	}
}

func TestScriptedOpeningsCostNoProviderCalls(t *testing.T) {
	client := &scriptClient{fn: func(int, provider.GenRequest) (string, error) {
		return "נכון", nil
	}}
	cfg := testConvCfg()
	cfg.HardLimit = 4
	s := newTestSimulator(client, admitAll{}, cfg)

	c, err := s.Simulate(context.Background(), testProfile(), sharedIdentity(t))
	if err != nil {
		t.Fatal(err)
	}
	if c.Turns[1].Text != "קשה לי עם כל מה שקורה" {
		t.Fatalf("subject opening = %q, want profile opening response", c.Turns[1].Text)
	}
	if client.calls != 2 {
		t.Fatalf("provider calls = %d, want 2 (openings are scripted)", client.calls)
	}
}

func TestPhaseProgression(t *testing.T) {
	cases := []struct {
		turns int
		want  Phase
	}{
		{0, PhaseActive},
		{15, PhaseActive},
		{16, PhasePreClosure},
		{17, PhasePreClosure},
		{18, PhaseSoftClosure},
		{19, PhaseSoftClosure},
		{20, PhaseClosure},
		{21, PhaseClosure},
		{22, PhaseFinal},
		{23, PhaseFinal},
	}
	for _, tc := range cases {
		if got := phaseFor(tc.turns); got != tc.want {
			t.Errorf("phaseFor(%d) = %s, want %s", tc.turns, got, tc.want)
		}
	}
}
