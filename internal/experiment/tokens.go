package experiment

import (
	"sort"
	"sync"
	"time"

	"gesher/internal/format"
)

// UsageRecord captures the estimated token cost of one conversation. The
// figures are the same coarse estimates fed to the rate limiter; they are
// never reconciled against provider-reported usage.
type UsageRecord struct {
	ProfileID    string        `json:"profile_id"`
	Intervention string        `json:"intervention"`
	PromptTokens int           `json:"prompt_tokens"`
	OutputTokens int           `json:"output_tokens"`
	WallClock    time.Duration `json:"wall_clock"`
	At           time.Time     `json:"timestamp"`
}

// CostConfig holds pricing for cost estimation (USD per million tokens).
type CostConfig struct {
	InputPricePerMToken  float64
	OutputPricePerMToken float64
}

// DefaultCostConfig returns flash-class pricing.
func DefaultCostConfig() CostConfig {
	return CostConfig{
		InputPricePerMToken:  0.10,
		OutputPricePerMToken: 0.40,
	}
}

// InterventionUsage aggregates usage for one intervention.
type InterventionUsage struct {
	Conversations int   `json:"conversations"`
	PromptTokens  int   `json:"prompt_tokens"`
	OutputTokens  int   `json:"output_tokens"`
	TotalTokens   int   `json:"total_tokens"`
	WallClockMs   int64 `json:"wall_clock_ms"`
}

// UsageSummary is the aggregate view of estimated token spend for a run.
type UsageSummary struct {
	Conversations   int                          `json:"conversations"`
	PromptTokens    int                          `json:"prompt_tokens"`
	OutputTokens    int                          `json:"output_tokens"`
	TotalTokens     int                          `json:"total_tokens"`
	CostUSD         float64                      `json:"cost_usd"`
	WallClock       time.Duration                `json:"wall_clock"`
	PerIntervention map[string]InterventionUsage `json:"per_intervention"`
}

// Tracker records and summarizes per-conversation token estimates.
type Tracker struct {
	mu      sync.Mutex
	records []UsageRecord
	cost    CostConfig
}

// NewTracker creates a Tracker with default pricing.
func NewTracker() *Tracker {
	return &Tracker{cost: DefaultCostConfig()}
}

// Record appends a usage record.
func (t *Tracker) Record(r UsageRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, r)
}

// Summary computes the aggregate usage summary.
func (t *Tracker) Summary() UsageSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := UsageSummary{PerIntervention: make(map[string]InterventionUsage)}
	for _, r := range t.records {
		s.Conversations++
		s.PromptTokens += r.PromptTokens
		s.OutputTokens += r.OutputTokens
		s.WallClock += r.WallClock

		iu := s.PerIntervention[r.Intervention]
		iu.Conversations++
		iu.PromptTokens += r.PromptTokens
		iu.OutputTokens += r.OutputTokens
		iu.TotalTokens += r.PromptTokens + r.OutputTokens
		iu.WallClockMs += r.WallClock.Milliseconds()
		s.PerIntervention[r.Intervention] = iu
	}
	s.TotalTokens = s.PromptTokens + s.OutputTokens

	inputCost := float64(s.PromptTokens) / 1_000_000 * t.cost.InputPricePerMToken
	outputCost := float64(s.OutputTokens) / 1_000_000 * t.cost.OutputPricePerMToken
	s.CostUSD = inputCost + outputCost

	return s
}

// FormatUsage renders the estimated token bill for console output.
func FormatUsage(s UsageSummary) string {
	tbl := format.NewTable(format.ASCII)
	tbl.Header("Intervention", "Conversations", "Tokens", "Time")
	tbl.Columns(
		format.Column{Number: 1, Align: format.AlignLeft},
		format.Column{Number: 2, Align: format.AlignRight},
		format.Column{Number: 3, Align: format.AlignRight},
		format.Column{Number: 4, Align: format.AlignRight},
	)

	names := make([]string, 0, len(s.PerIntervention))
	for name := range s.PerIntervention {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		iu := s.PerIntervention[name]
		tbl.Row(name, iu.Conversations, format.FmtTokens(iu.TotalTokens),
			format.FmtDuration(time.Duration(iu.WallClockMs)*time.Millisecond))
	}
	tbl.Footer("TOTAL", s.Conversations, format.FmtTokens(s.TotalTokens), format.FmtDuration(s.WallClock))

	return "=== Estimated token spend ===\n" + tbl.String() + "\n"
}
