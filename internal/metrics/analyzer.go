// Package metrics turns a transcript corpus into per-conversation feature
// rows and per-intervention aggregates. Every feature is a pure function of
// transcript text and metadata; nothing here feeds back into the simulator.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"gesher/internal/profile"
	"gesher/internal/simulate"
)

// analyzeParallelism bounds concurrent file loads in AnalyzeDir.
const analyzeParallelism = 8

// Row is one conversation reduced to a flat feature vector, suitable for a
// CSV line feeding downstream statistical analysis.
type Row struct {
	ProfileID    string
	Intervention string

	// Profile context, zero-valued when the profile set is not attached.
	PoliticalStance int
	Age             int
	Gender          string
	MilitaryService string
	WarPriority     string
	IsraelAction    string

	TotalMessages   int
	AgentMessages   int
	SubjectMessages int
	EndReason       string

	AgreementSignals   int
	DisagreementSignal int
	EmpathyExpressions int
	SharedIdentityRefs int
	EmotionLevel       float64

	AvgMessageLength float64
	AlternationRatio float64
	TopicConsistency float64
}

// Analyzer computes feature rows over a conversations directory. Attaching a
// profile set fills the profile-context columns; without it the transcript
// columns still compute, since persisted conversations carry only the
// profile ID.
type Analyzer struct {
	profiles map[string]*profile.Profile
}

// NewAnalyzer creates an Analyzer. profiles may be nil.
func NewAnalyzer(profiles map[string]*profile.Profile) *Analyzer {
	return &Analyzer{profiles: profiles}
}

// AnalyzeConversation computes the feature row for one conversation.
func (a *Analyzer) AnalyzeConversation(c *simulate.Conversation) Row {
	r := Row{
		ProfileID:    c.ProfileID,
		Intervention: c.Intervention,
		EndReason:    string(c.Metadata.EndReason),

		TotalMessages:   len(c.Turns),
		AgentMessages:   countRole(c.Turns, simulate.RoleAgent),
		SubjectMessages: countRole(c.Turns, simulate.RoleSubject),

		AgreementSignals:   countPhrases(c.Turns, agreementPhrases),
		DisagreementSignal: countPhrases(c.Turns, disagreementPhrases),
		EmpathyExpressions: countPhrases(c.Turns, empathyPhrases),
		SharedIdentityRefs: countPhrases(c.Turns, sharedIdentityPhrases),
		EmotionLevel:       emotionLevel(c.Turns),

		AvgMessageLength: avgMessageLength(c.Turns),
		AlternationRatio: alternationRatio(c.Turns),
		TopicConsistency: topicConsistency(c.Turns),
	}

	if p, ok := a.profiles[c.ProfileID]; ok {
		r.PoliticalStance = p.Basic.PoliticalStance
		r.Age = p.Basic.Age
		r.Gender = p.Basic.Gender
		r.MilitaryService = p.Behavior.MilitaryServiceRecent
		r.WarPriority = p.War.PriorityPre
		r.IsraelAction = p.War.ActionPre
	}
	return r
}

// AnalyzeDir loads every conversation artifact under dir/conversations and
// reduces each to a row. Loads run in a bounded group; rows come back in
// stable filename order.
func (a *Analyzer) AnalyzeDir(dir string) ([]Row, error) {
	convDir := filepath.Join(dir, "conversations")
	entries, err := os.ReadDir(convDir)
	if err != nil {
		return nil, fmt.Errorf("read conversations dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(convDir, e.Name()))
	}
	sort.Strings(paths)

	rows := make([]Row, len(paths))
	var g errgroup.Group
	g.SetLimit(analyzeParallelism)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			c, err := simulate.Load(path)
			if err != nil {
				return err
			}
			rows[i] = a.AnalyzeConversation(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func countRole(turns []simulate.Turn, role simulate.Role) int {
	n := 0
	for _, t := range turns {
		if t.Role == role {
			n++
		}
	}
	return n
}

// countPhrases counts lexicon membership per turn per phrase. The same phrase
// in two turns counts twice; two distinct phrases in one turn count twice.
func countPhrases(turns []simulate.Turn, phrases []string) int {
	n := 0
	for _, t := range turns {
		for _, phrase := range phrases {
			if strings.Contains(t.Text, phrase) {
				n++
			}
		}
	}
	return n
}

// emotionLevel counts marker occurrences, normalized by message count and
// capped at 1.
func emotionLevel(turns []simulate.Turn) float64 {
	if len(turns) == 0 {
		return 0
	}
	total := 0
	for _, t := range turns {
		for _, marker := range emotionMarkers {
			total += strings.Count(t.Text, marker)
		}
	}
	level := float64(total) / float64(len(turns)) / 2
	if level > 1 {
		return 1
	}
	return level
}

func avgMessageLength(turns []simulate.Turn) float64 {
	if len(turns) == 0 {
		return 0
	}
	total := 0
	for _, t := range turns {
		total += len([]rune(t.Text))
	}
	return float64(total) / float64(len(turns))
}

// alternationRatio is the fraction of consecutive turn pairs that switch
// roles. A structural measure, not a naturalness judgment.
func alternationRatio(turns []simulate.Turn) float64 {
	if len(turns) < 2 {
		return 0
	}
	transitions := 0
	for i := 1; i < len(turns); i++ {
		if turns[i].Role != turns[i-1].Role {
			transitions++
		}
	}
	return float64(transitions) / float64(len(turns)-1)
}

// topicConsistency is the fraction of turns containing any topic keyword.
func topicConsistency(turns []simulate.Turn) float64 {
	if len(turns) == 0 {
		return 0
	}
	onTopic := 0
	for _, t := range turns {
		for _, kw := range topicKeywords {
			if strings.Contains(t.Text, kw) {
				onTopic++
				break
			}
		}
	}
	return float64(onTopic) / float64(len(turns))
}
