// Package experiment runs the balanced profile-by-intervention cross-product
// through the conversation simulator, isolating per-combination failures and
// checkpointing progress to disk.
package experiment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gesher/internal/simulate"
)

// Combination is one planned (profile, intervention) cell.
type Combination struct {
	ProfileID    string `json:"profile_id"`
	Intervention string `json:"intervention"`
}

// SuccessRecord describes one completed conversation.
type SuccessRecord struct {
	ProfileID    string             `json:"profile_id"`
	Intervention string             `json:"intervention"`
	MessageCount int                `json:"message_count"`
	EndReason    simulate.EndReason `json:"ending_reason"`
	Path         string             `json:"file_path"`
}

// FailureRecord describes one failed combination; the batch continues past it.
type FailureRecord struct {
	ProfileID    string `json:"profile_id"`
	Intervention string `json:"intervention"`
	Error        string `json:"error"`
}

// RunResult is the experiment log: planned combinations, outcomes, timing.
// Mutated incrementally per combination, flushed on failure bursts and at
// completion.
type RunResult struct {
	RunID      string          `json:"run_id"`
	TestMode   bool            `json:"test_mode"`
	Planned    []Combination   `json:"planned"`
	Successful []SuccessRecord `json:"successful"`
	Failed     []FailureRecord `json:"failed"`
	StartedAt  time.Time       `json:"start_time"`
	EndedAt    time.Time       `json:"end_time"`
}

// SaveLog writes the experiment log as one JSON document under dir/logs,
// keyed by timestamp. Safe to call repeatedly; each flush is a new file.
func SaveLog(r *RunResult, dir string) (string, error) {
	logDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", fmt.Errorf("create logs dir: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(logDir, fmt.Sprintf("experiment_log_%s.json", stamp))

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal experiment log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write experiment log: %w", err)
	}
	return path, nil
}

// LoadLog reads a persisted experiment log.
func LoadLog(path string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment log: %w", err)
	}
	var r RunResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse experiment log %s: %w", path, err)
	}
	return &r, nil
}
