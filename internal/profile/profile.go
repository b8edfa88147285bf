// Package profile loads synthetic subject profiles from flat text files.
// One file per subject, line-oriented grammar:
//
//	section:
//	key: value
//	- list item
//
// Values are coerced: "[...]" becomes a list, digit-only strings become
// integers, "true"/"false" become booleans, everything else stays a string.
// Section names are validated against a closed set.
package profile

import (
	"fmt"
)

// Profile is the typed subject record. Fields the source files omit keep
// their documented defaults.
type Profile struct {
	ID       string
	Basic    BasicInfo
	Behavior Behavior
	Civic    Civic
	War      WarPosition
	Style    Style

	// Survey-style affect measures, consumed as context only.
	FeelingThermometer map[string]int
	SocialDistance     map[string]int
}

// BasicInfo holds demographics and the 1..5 political-stance scale
// (1 = left, 5 = right; default 3 = center).
type BasicInfo struct {
	Age             int
	Gender          string
	MaritalStatus   string
	Region          string
	Religiosity     int
	Education       string
	PoliticalStance int
}

// Behavior holds political-participation attributes.
type Behavior struct {
	LastElectionVote       string
	PolarizationPerception string
	ProtestParticipation   string
	MilitaryServiceRecent  string
	VotingFrequency        string
	PoliticalDiscussions   string
	SocialMediaActivity    string
}

// Civic holds trust and efficacy attitudes (0..10 scales, default 5).
type Civic struct {
	TrustPoliticalSystem int
	PoliticalEfficacy    int
	PoliticalAnxiety     int
	InfluenceSources     []string
}

// WarPosition holds the subject's pre-conversation war stance.
type WarPosition struct {
	PriorityPre string // e.g. "החזרת החטופים" or "מיטוט חמאס"
	ActionPre   string // e.g. "עסקה לשחרור חטופים" or "מבצע צבאי לכיבוש עזה"
}

// Style holds conversation-style hints used for prompts and fallbacks.
type Style struct {
	OpeningResponse string
	TypicalPhrases  []string
	EmotionLevel    string
}

// GroupOf returns the stance group a profile ID belongs to for balance
// accounting: the leading token of the ID ("left_2" -> "left").
func GroupOf(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '_' {
			return id[:i]
		}
	}
	return id
}

// Group returns the stance group of the profile's ID.
func (p *Profile) Group() string {
	return GroupOf(p.ID)
}

// fromSections populates a typed Profile from parsed raw sections.
func fromSections(id string, secs sections) (*Profile, error) {
	for name := range secs {
		if !knownSections[name] {
			return nil, fmt.Errorf("profile %s: unknown section %q", id, name)
		}
	}

	basic := secs.section("basic_info")
	behavior := secs.section("political_behavior")
	civic := secs.section("civic_data")
	war := secs.section("war_position")
	style := secs.section("conversation_style")

	p := &Profile{
		ID: id,
		Basic: BasicInfo{
			Age:             basic.intOr("age", 30),
			Gender:          basic.str("gender"),
			MaritalStatus:   basic.str("marital_status"),
			Region:          basic.str("region"),
			Religiosity:     basic.intOr("religiosity", 1),
			Education:       basic.str("education"),
			PoliticalStance: basic.intOr("political_stance", 3),
		},
		Behavior: Behavior{
			LastElectionVote:       behavior.str("last_election_vote"),
			PolarizationPerception: behavior.str("polarization_perception"),
			ProtestParticipation:   behavior.str("protest_participation"),
			MilitaryServiceRecent:  behavior.str("military_service_recent"),
			VotingFrequency:        behavior.str("voting_frequency"),
			PoliticalDiscussions:   behavior.str("political_discussions"),
			SocialMediaActivity:    behavior.str("social_media_activity"),
		},
		Civic: Civic{
			TrustPoliticalSystem: civic.intOr("trust_political_system", 5),
			PoliticalEfficacy:    civic.intOr("political_efficacy", 5),
			PoliticalAnxiety:     civic.intOr("political_anxiety", 5),
			InfluenceSources:     civic.list("influence_sources"),
		},
		War: WarPosition{
			PriorityPre: war.str("war_priority_pre"),
			ActionPre:   war.str("israel_action_pre"),
		},
		Style: Style{
			OpeningResponse: style.str("opening_response"),
			TypicalPhrases:  style.list("typical_phrases"),
			EmotionLevel:    style.str("emotion_level"),
		},
		FeelingThermometer: secs.section("feeling_thermometer_pre").intMap(),
		SocialDistance:     secs.section("social_distance_pre").intMap(),
	}
	return p, nil
}

// knownSections is the closed set of section names the parser accepts.
var knownSections = map[string]bool{
	"basic_info":              true,
	"political_behavior":      true,
	"civic_data":              true,
	"war_position":            true,
	"conversation_style":      true,
	"feeling_thermometer_pre": true,
	"social_distance_pre":     true,
}
