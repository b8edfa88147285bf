package metrics

import (
	"fmt"
	"sort"

	"gesher/internal/format"
	"gesher/internal/simulate"
)

// GroupSummary holds per-intervention mean metrics.
type GroupSummary struct {
	Intervention  string
	Conversations int

	MeanMessages     float64
	MeanAgreement    float64
	MeanDisagreement float64
	MeanEmpathy      float64
	MeanSharedRefs   float64
	MeanEmotion      float64

	TopicConsistency float64

	// Effectiveness is a transparent heuristic differentiator, not a causal
	// estimate: (2*agreement + 3*empathy - disagreement) / mean messages.
	Effectiveness     float64
	NaturalEndingRate float64
}

// Summarize groups rows by intervention and computes mean metrics plus the
// effectiveness score. Returned groups are sorted by intervention name.
func Summarize(rows []Row) []GroupSummary {
	byIntervention := make(map[string][]Row)
	for _, r := range rows {
		byIntervention[r.Intervention] = append(byIntervention[r.Intervention], r)
	}

	names := make([]string, 0, len(byIntervention))
	for name := range byIntervention {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]GroupSummary, 0, len(names))
	for _, name := range names {
		group := byIntervention[name]
		n := float64(len(group))

		s := GroupSummary{Intervention: name, Conversations: len(group)}
		nonHard := 0
		for _, r := range group {
			s.MeanMessages += float64(r.TotalMessages)
			s.MeanAgreement += float64(r.AgreementSignals)
			s.MeanDisagreement += float64(r.DisagreementSignal)
			s.MeanEmpathy += float64(r.EmpathyExpressions)
			s.MeanSharedRefs += float64(r.SharedIdentityRefs)
			s.MeanEmotion += r.EmotionLevel
			s.TopicConsistency += r.TopicConsistency
			if r.EndReason != string(simulate.EndHardLimit) {
				nonHard++
			}
		}
		s.MeanMessages /= n
		s.MeanAgreement /= n
		s.MeanDisagreement /= n
		s.MeanEmpathy /= n
		s.MeanSharedRefs /= n
		s.MeanEmotion /= n
		s.TopicConsistency /= n
		s.NaturalEndingRate = float64(nonHard) / n

		if s.MeanMessages > 0 {
			s.Effectiveness = (s.MeanAgreement*2 + s.MeanEmpathy*3 - s.MeanDisagreement) / s.MeanMessages
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// FormatSummary renders the per-intervention comparison for console output.
func FormatSummary(summaries []GroupSummary) string {
	tbl := format.NewTable(format.ASCII)
	tbl.Header("Intervention", "Convs", "Msgs", "Agree", "Empathy", "Disagree", "Effect", "Natural", "On-topic")
	tbl.Columns(
		format.Column{Number: 1, Align: format.AlignLeft},
		format.Column{Number: 2, Align: format.AlignRight},
		format.Column{Number: 3, Align: format.AlignRight},
		format.Column{Number: 4, Align: format.AlignRight},
		format.Column{Number: 5, Align: format.AlignRight},
		format.Column{Number: 6, Align: format.AlignRight},
		format.Column{Number: 7, Align: format.AlignRight},
		format.Column{Number: 8, Align: format.AlignRight},
		format.Column{Number: 9, Align: format.AlignRight},
	)

	for _, s := range summaries {
		tbl.Row(
			s.Intervention,
			s.Conversations,
			fmt.Sprintf("%.1f", s.MeanMessages),
			fmt.Sprintf("%.2f", s.MeanAgreement),
			fmt.Sprintf("%.2f", s.MeanEmpathy),
			fmt.Sprintf("%.2f", s.MeanDisagreement),
			fmt.Sprintf("%.3f", s.Effectiveness),
			fmt.Sprintf("%.0f%%", s.NaturalEndingRate*100),
			fmt.Sprintf("%.0f%%", s.TopicConsistency*100),
		)
	}

	return "=== Intervention comparison ===\n" + tbl.String() + "\n"
}
