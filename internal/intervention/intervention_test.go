package intervention

import (
	"strings"
	"testing"

	"gesher/internal/profile"
)

func TestAllIsClosedAndOrdered(t *testing.T) {
	ivs := All()
	want := []string{SharedIdentity, MisperceptionCorrection, Control}
	if len(ivs) != len(want) {
		t.Fatalf("interventions = %d, want %d", len(ivs), len(want))
	}
	for i, name := range want {
		if ivs[i].Name != name {
			t.Errorf("All()[%d] = %s, want %s", i, ivs[i].Name, name)
		}
		if ivs[i].Prompt == "" {
			t.Errorf("%s has an empty prompt", name)
		}
	}
}

func TestByName(t *testing.T) {
	iv, err := ByName(MisperceptionCorrection)
	if err != nil {
		t.Fatal(err)
	}
	if iv.Name != MisperceptionCorrection {
		t.Fatalf("Name = %s", iv.Name)
	}
	if _, err := ByName("mystery"); err == nil {
		t.Fatal("ByName accepted an unknown intervention")
	}
}

func TestSummarizeStance(t *testing.T) {
	cases := []struct {
		name   string
		stance int
		want   string
	}{
		{"left", 1, "LEFT"},
		{"left boundary", 2, "LEFT"},
		{"center", 3, "CENTER"},
		{"right boundary", 4, "RIGHT"},
		{"right", 5, "RIGHT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &profile.Profile{Basic: profile.BasicInfo{PoliticalStance: tc.stance}}
			if got := SummarizeStance(p).PoliticalLabel(); got != tc.want {
				t.Fatalf("label = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestStancePriorityAndPreference(t *testing.T) {
	p := &profile.Profile{
		Basic: profile.BasicInfo{PoliticalStance: 2},
		War: profile.WarPosition{
			PriorityPre: "החזרת החטופים",
			ActionPre:   "עסקה לשחרור חטופים",
		},
	}
	s := SummarizeStance(p)
	if !s.PrioritizesHostages || s.PrioritizesSecurity {
		t.Errorf("priority flags = %+v", s)
	}
	if !s.WantsDeal || s.WantsMilitary {
		t.Errorf("action flags = %+v", s)
	}
	if s.PriorityLabel() != "Hostages" {
		t.Errorf("priority label = %s", s.PriorityLabel())
	}
	if s.PreferenceLabel() != "Negotiation/Deal" {
		t.Errorf("preference label = %s", s.PreferenceLabel())
	}

	// Unfamiliar categorical values stay unclassified, not misclassified.
	p.War = profile.WarPosition{PriorityPre: "אחר", ActionPre: "אחר"}
	s = SummarizeStance(p)
	if s.PriorityLabel() != "Unclear" || s.PreferenceLabel() != "Unclear" {
		t.Errorf("labels = %s / %s, want Unclear", s.PriorityLabel(), s.PreferenceLabel())
	}
}

func TestPromptsCarryHebrewFraming(t *testing.T) {
	for _, iv := range All() {
		if !strings.Contains(iv.Prompt, "Hebrew") && !strings.Contains(iv.Prompt, "עברית") {
			t.Errorf("%s prompt does not pin the conversation language", iv.Name)
		}
	}
}
