package metrics

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gesher/internal/profile"
	"gesher/internal/simulate"
)

func conv(profileID, iv string, reason simulate.EndReason, texts ...string) *simulate.Conversation {
	c := &simulate.Conversation{
		ProfileID:    profileID,
		Intervention: iv,
		Metadata: simulate.Metadata{
			MessageCount: len(texts),
			EndReason:    reason,
		},
	}
	for i, text := range texts {
		role := simulate.RoleAgent
		if i%2 == 1 {
			role = simulate.RoleSubject
		}
		c.Turns = append(c.Turns, simulate.Turn{Role: role, Text: text})
	}
	return c
}

func TestPhraseCountsAreExactSubstringPerTurn(t *testing.T) {
	a := NewAnalyzer(nil)

	// The empathy phrase appears in two separate turns: count is exactly 2.
	c := conv("left_1", "control", simulate.EndNatural,
		"אני מבין את הכאב שלך",
		"טוב שאתה אומר את זה, אני מבין",
		"בוא נמשיך",
	)
	r := a.AnalyzeConversation(c)
	if r.EmpathyExpressions != 2 {
		t.Fatalf("empathy = %d, want 2", r.EmpathyExpressions)
	}

	// Two distinct agreement phrases in one turn count separately.
	c = conv("left_1", "control", simulate.EndNatural,
		"נכון, יש לך נקודה",
	)
	r = a.AnalyzeConversation(c)
	if r.AgreementSignals != 2 {
		t.Fatalf("agreement = %d, want 2 (two distinct phrases)", r.AgreementSignals)
	}

	// A near-miss is not a match; counting is exact-substring.
	c = conv("left_1", "control", simulate.EndNatural, "אני מסביר את עצמי")
	r = a.AnalyzeConversation(c)
	if r.AgreementSignals != 0 || r.EmpathyExpressions != 0 {
		t.Fatalf("near-miss matched: agreement=%d empathy=%d", r.AgreementSignals, r.EmpathyExpressions)
	}
}

func TestAlternationRatio(t *testing.T) {
	a := NewAnalyzer(nil)

	// Strict alternation: every consecutive pair switches roles.
	c := conv("left_1", "control", simulate.EndHardLimit, "א", "ב", "ג", "ד")
	if r := a.AnalyzeConversation(c); r.AlternationRatio != 1 {
		t.Fatalf("alternation = %f, want 1", r.AlternationRatio)
	}

	// A trailing subject acknowledgment breaks one of three transitions.
	c = conv("left_1", "control", simulate.EndNatural, "א", "ב", "ג")
	c.Turns = append(c.Turns, simulate.Turn{Role: simulate.RoleSubject, Text: "תודה"})
	r := a.AnalyzeConversation(c)
	if want := 2.0 / 3.0; math.Abs(r.AlternationRatio-want) > 1e-9 {
		t.Fatalf("alternation = %f, want %f", r.AlternationRatio, want)
	}

	// Degenerate cases never divide by zero.
	c = conv("left_1", "control", simulate.EndHardLimit, "א")
	if r := a.AnalyzeConversation(c); r.AlternationRatio != 0 {
		t.Fatalf("single-turn alternation = %f, want 0", r.AlternationRatio)
	}
}

func TestEmotionLevelCapped(t *testing.T) {
	a := NewAnalyzer(nil)
	c := conv("left_1", "control", simulate.EndHardLimit,
		"מאוד מאוד קשה!!! נורא!!!!",
	)
	r := a.AnalyzeConversation(c)
	if r.EmotionLevel != 1 {
		t.Fatalf("emotion = %f, want capped at 1", r.EmotionLevel)
	}
}

func TestTopicConsistency(t *testing.T) {
	a := NewAnalyzer(nil)
	c := conv("left_1", "control", simulate.EndHardLimit,
		"המלחמה בעזה קשה",
		"מה דעתך על מזג האוויר",
		"החטופים חייבים לחזור",
		"נדבר מחר",
	)
	r := a.AnalyzeConversation(c)
	if r.TopicConsistency != 0.5 {
		t.Fatalf("topic consistency = %f, want 0.5", r.TopicConsistency)
	}
}

func TestProfileContextColumns(t *testing.T) {
	profiles := map[string]*profile.Profile{
		"left_1": {
			ID: "left_1",
			Basic: profile.BasicInfo{
				Age:             41,
				Gender:          "נקבה",
				PoliticalStance: 2,
			},
			Behavior: profile.Behavior{MilitaryServiceRecent: "לא"},
			War: profile.WarPosition{
				PriorityPre: "החזרת החטופים",
				ActionPre:   "עסקה לשחרור חטופים",
			},
		},
	}
	a := NewAnalyzer(profiles)

	r := a.AnalyzeConversation(conv("left_1", "control", simulate.EndNatural, "שלום"))
	if r.PoliticalStance != 2 || r.Age != 41 || r.WarPriority != "החזרת החטופים" {
		t.Fatalf("context columns not joined: %+v", r)
	}

	// Unknown profile leaves zero values but still computes transcript features.
	r = a.AnalyzeConversation(conv("ghost_9", "control", simulate.EndNatural, "שלום"))
	if r.PoliticalStance != 0 || r.TotalMessages != 1 {
		t.Fatalf("unknown-profile row wrong: %+v", r)
	}
}

func TestSummarizeEffectiveness(t *testing.T) {
	rows := []Row{
		{Intervention: "control", TotalMessages: 10, AgreementSignals: 2, EmpathyExpressions: 3, DisagreementSignal: 1, EndReason: "natural_ending"},
		{Intervention: "control", TotalMessages: 10, AgreementSignals: 4, EmpathyExpressions: 1, DisagreementSignal: 3, EndReason: "hard_limit"},
	}

	summaries := Summarize(rows)
	if len(summaries) != 1 {
		t.Fatalf("groups = %d, want 1", len(summaries))
	}
	s := summaries[0]

	// Means: agree 3, empathy 2, disagree 2, messages 10.
	// Effectiveness = (3*2 + 2*3 - 2) / 10 = 1.0.
	if math.Abs(s.Effectiveness-1.0) > 1e-9 {
		t.Errorf("effectiveness = %f, want 1.0", s.Effectiveness)
	}
	if s.NaturalEndingRate != 0.5 {
		t.Errorf("natural ending rate = %f, want 0.5", s.NaturalEndingRate)
	}
}

func TestAnalyzeDirAndCSV(t *testing.T) {
	dir := t.TempDir()

	c := conv("left_1", "control", simulate.EndNatural,
		"המלחמה קשה לכולנו", "אני מבין אותך", "תודה על השיחה")
	c.Metadata.EndedAt = time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	if _, err := simulate.Save(c, dir); err != nil {
		t.Fatal(err)
	}

	a := NewAnalyzer(nil)
	rows, err := a.AnalyzeDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []Row{{
		ProfileID:          "left_1",
		Intervention:       "control",
		TotalMessages:      3,
		AgentMessages:      2,
		SubjectMessages:    1,
		EndReason:          "natural_ending",
		AgreementSignals:   0,
		DisagreementSignal: 0,
		EmpathyExpressions: 1,
		SharedIdentityRefs: 1,
		EmotionLevel:       rows[0].EmotionLevel,
		AvgMessageLength:   rows[0].AvgMessageLength,
		AlternationRatio:   1,
		TopicConsistency:   1.0 / 3.0,
	}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	csvPath := filepath.Join(t.TempDir(), "analysis.csv")
	if err := WriteCSV(rows, csvPath); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("CSV is empty")
	}
}
