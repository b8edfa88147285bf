package simulate

// Canned Hebrew fallback lines used when generation fails past its retry
// budget. Keyed by phase so degraded turns still fit the conversation arc.

var agentFallbacks = map[Phase]string{
	PhaseActive:      "אני מבין את העמדה שלך. זה באמת מצב מורכב.",
	PhasePreClosure:  "נראה שאנחנו נוגעים בנקודות חשובות פה.",
	PhaseSoftClosure: "למרות הבדלי הדעות, אני מעריך את הפתיחות שלך.",
	PhaseClosure:     "תודה על השיחה הכנה. זה חשוב שאנחנו מדברים.",
	PhaseFinal:       "היה חשוב לשמוע את הזווית שלך. תודה.",
}

var subjectFallbacks = map[Phase]string{
	PhaseActive:      "זה מסובך. קשה לי עם כל המצב.",
	PhasePreClosure:  "כן, יש הרבה מה לחשוב עליו.",
	PhaseSoftClosure: "אני מבין מאיפה אתה בא.",
	PhaseClosure:     "תודה על השיחה.",
	PhaseFinal:       "היה מעניין.",
}

// fallbackText returns the phase-appropriate canned line for a role.
func fallbackText(role Role, phase Phase) string {
	if role == RoleAgent {
		if t, ok := agentFallbacks[phase]; ok {
			return t
		}
		return "אני מבין."
	}
	if t, ok := subjectFallbacks[phase]; ok {
		return t
	}
	return "נכון."
}
