package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleProfile = `# demo subject
basic_info:
age: 42
gender: נקבה
political_stance: 2
religiosity: 3

political_behavior:
military_service_recent: לא
protest_participation: כן

civic_data:
trust_political_system: 4
influence_sources: [חדשות, רשתות חברתיות]

war_position:
war_priority_pre: החזרת החטופים
israel_action_pre: עסקה לשחרור חטופים

conversation_style:
opening_response: קשה לי עם המצב הזה
typical_phrases:
- זה כואב לי
- אי אפשר להמשיך ככה
emotion_level: high

feeling_thermometer_pre:
right: 30
left: 80

social_distance_pre:
neighbor: 2
`

func TestParseFullProfile(t *testing.T) {
	p, err := Parse("left_1", sampleProfile)
	if err != nil {
		t.Fatal(err)
	}

	if p.ID != "left_1" {
		t.Errorf("ID = %q, want left_1", p.ID)
	}
	if p.Basic.Age != 42 || p.Basic.PoliticalStance != 2 || p.Basic.Religiosity != 3 {
		t.Errorf("basic info = %+v", p.Basic)
	}
	if p.Behavior.MilitaryServiceRecent != "לא" {
		t.Errorf("military service = %q", p.Behavior.MilitaryServiceRecent)
	}
	if diff := cmp.Diff([]string{"חדשות", "רשתות חברתיות"}, p.Civic.InfluenceSources); diff != "" {
		t.Errorf("influence sources (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"זה כואב לי", "אי אפשר להמשיך ככה"}, p.Style.TypicalPhrases); diff != "" {
		t.Errorf("typical phrases (-want +got):\n%s", diff)
	}
	if p.War.PriorityPre != "החזרת החטופים" {
		t.Errorf("war priority = %q", p.War.PriorityPre)
	}
	if p.FeelingThermometer["left"] != 80 {
		t.Errorf("thermometer = %v", p.FeelingThermometer)
	}
	if p.SocialDistance["neighbor"] != 2 {
		t.Errorf("social distance = %v", p.SocialDistance)
	}
}

func TestParseDefaultsForMissingFields(t *testing.T) {
	p, err := Parse("center_1", "basic_info:\ngender: זכר\n")
	if err != nil {
		t.Fatal(err)
	}
	if p.Basic.Age != 30 {
		t.Errorf("default age = %d, want 30", p.Basic.Age)
	}
	if p.Basic.PoliticalStance != 3 {
		t.Errorf("default stance = %d, want 3", p.Basic.PoliticalStance)
	}
	if p.Civic.TrustPoliticalSystem != 5 {
		t.Errorf("default trust = %d, want 5", p.Civic.TrustPoliticalSystem)
	}
}

func TestParseRejectsUnknownSection(t *testing.T) {
	_, err := Parse("x", "secret_section:\nkey: value\n")
	if err == nil {
		t.Fatal("Parse accepted an unknown section")
	}
}

func TestParseSectionGrammar(t *testing.T) {
	secs := parseSections("a:\nk: v\n- item2\n\n# comment\nb:\nn: 7\nflag: true\nlist: [x, \"y\"]\n")

	a := secs.section("a")
	if diff := cmp.Diff([]string{"v", "item2"}, a.list("k")); diff != "" {
		t.Errorf("list promotion (-want +got):\n%s", diff)
	}

	b := secs.section("b")
	if b.intOr("n", 0) != 7 {
		t.Errorf("int coercion = %v", b["n"])
	}
	if v, ok := b["flag"].(bool); !ok || !v {
		t.Errorf("bool coercion = %v", b["flag"])
	}
	if diff := cmp.Diff([]string{"x", "y"}, b.list("list")); diff != "" {
		t.Errorf("bracket list (-want +got):\n%s", diff)
	}
}

func TestGroup(t *testing.T) {
	cases := map[string]string{
		"left_1":        "left",
		"center_left_2": "center",
		"solo":          "solo",
	}
	for id, want := range cases {
		if got := GroupOf(id); got != want {
			t.Errorf("GroupOf(%q) = %q, want %q", id, got, want)
		}
		p := &Profile{ID: id}
		if got := p.Group(); got != want {
			t.Errorf("Group(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"left_1.txt":   sampleProfile,
		"center_1.txt": "basic_info:\nage: 25\n",
		"notes.md":     "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	profiles, err := NewLoader(dir).LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"center_1", "left_1"}, IDs(profiles)); diff != "" {
		t.Fatalf("profile IDs (-want +got):\n%s", diff)
	}
}
