package simulate

import (
	"fmt"
	"strings"

	"gesher/internal/intervention"
	"gesher/internal/profile"
)

// renderHistory formats turns as "Agent:/Subject:" lines. A non-positive
// window includes the full transcript.
func renderHistory(turns []Turn, window int) string {
	if window > 0 && len(turns) > window {
		turns = turns[len(turns)-window:]
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		label := "Subject"
		if t.Role == RoleAgent {
			label = "Agent"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, t.Text))
	}
	return strings.Join(lines, "\n")
}

// buildAgentPrompt assembles the agent-side generation prompt: intervention
// template, phase guidance, the conversation so far, and the stance summary
// directing the agent to the complementary position.
func buildAgentPrompt(iv intervention.Intervention, stance intervention.Stance, phase Phase, turns []Turn) string {
	var b strings.Builder

	b.WriteString(iv.Prompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Current conversation phase: %s\n%s\n", phase, phase.agentInstruction())
	b.WriteString("\nConversation so far:\n")
	b.WriteString(renderHistory(turns, 0))
	b.WriteString("\n\nUser profile context:\n")
	fmt.Fprintf(&b, "- Political stance: %s\n", stance.PoliticalLabel())
	fmt.Fprintf(&b, "- Prioritizes: %s\n", stance.PriorityLabel())
	fmt.Fprintf(&b, "- Prefers: %s\n", stance.PreferenceLabel())
	b.WriteString("\nIMPORTANT: You must present the OPPOSITE view from theirs while building bridges.\n")
	b.WriteString("\nGenerate the next agent response in Hebrew. Keep it natural and conversational.\n")
	b.WriteString("Response should be 2-4 sentences maximum.\n")

	return b.String()
}

// buildSubjectPrompt assembles the subject-side prompt from persona
// attributes and a bounded recent-history window.
func buildSubjectPrompt(p *profile.Profile, phase Phase, turns []Turn, window int) string {
	var b strings.Builder

	b.WriteString("You are playing the role of an Israeli with these characteristics:\n")
	fmt.Fprintf(&b, "- Age: %d\n", p.Basic.Age)
	fmt.Fprintf(&b, "- Gender: %s\n", p.Basic.Gender)
	fmt.Fprintf(&b, "- Political stance: %d (1=left, 5=right)\n", p.Basic.PoliticalStance)
	fmt.Fprintf(&b, "- War priority: %s\n", p.War.PriorityPre)
	fmt.Fprintf(&b, "- Preferred action: %s\n", p.War.ActionPre)
	if len(p.Style.TypicalPhrases) > 0 {
		fmt.Fprintf(&b, "\nYour typical phrases: %s\n", strings.Join(p.Style.TypicalPhrases, " | "))
	}
	b.WriteString("\nRecent conversation:\n")
	b.WriteString(renderHistory(turns, window))
	fmt.Fprintf(&b, "\n\nCurrent phase: %s\n", phase)
	b.WriteString("\nGenerate your next response in Hebrew. Be consistent with your political position.\n")
	b.WriteString("Keep it natural and emotional. 2-3 sentences maximum.\n")
	if phase.windingDown() {
		b.WriteString("If the conversation is winding down, you can acknowledge this naturally.\n")
	}

	return b.String()
}
