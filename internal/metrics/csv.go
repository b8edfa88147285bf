package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

var csvHeader = []string{
	"profile_id", "intervention",
	"political_stance", "age", "gender", "military_service",
	"war_priority", "israel_action",
	"total_messages", "agent_messages", "subject_messages", "ending_reason",
	"agreement_signals", "disagreement_signals", "empathy_expressions",
	"shared_identity_refs", "emotion_level",
	"avg_message_length", "alternation_ratio", "topic_consistency",
}

// WriteCSV writes one flat record per row, for downstream statistical
// analysis outside this tool.
func WriteCSV(rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.ProfileID, r.Intervention,
			strconv.Itoa(r.PoliticalStance), strconv.Itoa(r.Age), r.Gender, r.MilitaryService,
			r.WarPriority, r.IsraelAction,
			strconv.Itoa(r.TotalMessages), strconv.Itoa(r.AgentMessages),
			strconv.Itoa(r.SubjectMessages), r.EndReason,
			strconv.Itoa(r.AgreementSignals), strconv.Itoa(r.DisagreementSignal),
			strconv.Itoa(r.EmpathyExpressions), strconv.Itoa(r.SharedIdentityRefs),
			strconv.FormatFloat(r.EmotionLevel, 'f', 3, 64),
			strconv.FormatFloat(r.AvgMessageLength, 'f', 1, 64),
			strconv.FormatFloat(r.AlternationRatio, 'f', 3, 64),
			strconv.FormatFloat(r.TopicConsistency, 'f', 3, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
