package intervention

import "gesher/internal/profile"

// Stance is the threshold summary of a subject's position used to direct the
// agent toward the complementary view. Pure function of the profile.
type Stance struct {
	IsRight             bool
	IsLeft              bool
	IsCenter            bool
	PrioritizesHostages bool
	PrioritizesSecurity bool
	WantsDeal           bool
	WantsMilitary       bool
}

// Categorical values the war-position fields are tested against.
const (
	priorityHostages = "החזרת החטופים"
	prioritySecurity = "מיטוט חמאס"
	actionDeal       = "עסקה לשחרור חטופים"
	actionMilitary   = "מבצע צבאי לכיבוש עזה"
)

// SummarizeStance derives the stance summary from a profile. The numeric
// scale runs 1 (left) to 5 (right); 3 is center.
func SummarizeStance(p *profile.Profile) Stance {
	return Stance{
		IsRight:             p.Basic.PoliticalStance >= 4,
		IsLeft:              p.Basic.PoliticalStance <= 2,
		IsCenter:            p.Basic.PoliticalStance == 3,
		PrioritizesHostages: p.War.PriorityPre == priorityHostages,
		PrioritizesSecurity: p.War.PriorityPre == prioritySecurity,
		WantsDeal:           p.War.ActionPre == actionDeal,
		WantsMilitary:       p.War.ActionPre == actionMilitary,
	}
}

// PoliticalLabel renders the stance axis for prompt context.
func (s Stance) PoliticalLabel() string {
	switch {
	case s.IsRight:
		return "RIGHT"
	case s.IsLeft:
		return "LEFT"
	default:
		return "CENTER"
	}
}

// PriorityLabel renders the war-priority axis for prompt context.
func (s Stance) PriorityLabel() string {
	switch {
	case s.PrioritizesHostages:
		return "Hostages"
	case s.PrioritizesSecurity:
		return "Security/Hamas elimination"
	default:
		return "Unclear"
	}
}

// PreferenceLabel renders the preferred-action axis for prompt context.
func (s Stance) PreferenceLabel() string {
	switch {
	case s.WantsDeal:
		return "Negotiation/Deal"
	case s.WantsMilitary:
		return "Military action"
	default:
		return "Unclear"
	}
}
