// Package simulate drives one two-party dialogue between an agent persona
// (carrying an intervention strategy) and a subject persona (carrying a
// profile) to a natural or forced ending.
package simulate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Role identifies which side produced a turn.
type Role string

const (
	RoleAgent   Role = "agent"
	RoleSubject Role = "subject"
)

// EndReason is the terminal tag on a finished conversation.
type EndReason string

const (
	EndHardLimit EndReason = "hard_limit"
	EndNatural   EndReason = "natural_ending"
	EndSoft      EndReason = "soft_ending"
)

// Turn is one role-attributed, timestamped utterance. Append-only.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Metadata describes a finished conversation.
type Metadata struct {
	StartedAt    time.Time `json:"start_time"`
	EndedAt      time.Time `json:"end_time"`
	MessageCount int       `json:"message_count"`
	EndReason    EndReason `json:"ending_reason"`
}

// Conversation is created at simulation start, mutated only by appending
// turns, and becomes immutable once finished.
type Conversation struct {
	ProfileID    string   `json:"profile_id"`
	Intervention string   `json:"intervention"`
	Turns        []Turn   `json:"turns"`
	Metadata     Metadata `json:"metadata"`
}

func newConversation(profileID, intervention string, start time.Time) *Conversation {
	return &Conversation{
		ProfileID:    profileID,
		Intervention: intervention,
		Metadata:     Metadata{StartedAt: start},
	}
}

func (c *Conversation) append(role Role, text string, at time.Time) {
	c.Turns = append(c.Turns, Turn{Role: role, Text: text, Timestamp: at})
}

func (c *Conversation) finish(reason EndReason, at time.Time) {
	c.Metadata.EndedAt = at
	c.Metadata.MessageCount = len(c.Turns)
	c.Metadata.EndReason = reason
}

// lastText returns the text of the most recent turn, or "".
func (c *Conversation) lastText() string {
	if len(c.Turns) == 0 {
		return ""
	}
	return c.Turns[len(c.Turns)-1].Text
}

// nextRole returns who speaks next under strict alternation; the agent opens.
func (c *Conversation) nextRole() Role {
	if len(c.Turns) == 0 || c.Turns[len(c.Turns)-1].Role == RoleSubject {
		return RoleAgent
	}
	return RoleSubject
}

// Save writes the finished conversation as one JSON document under
// dir/conversations, keyed by timestamp, profile, and intervention.
// Returns the file path.
func Save(c *Conversation, dir string) (string, error) {
	outDir := filepath.Join(dir, "conversations")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create conversations dir: %w", err)
	}

	stamp := c.Metadata.EndedAt.Format("20060102_150405")
	name := fmt.Sprintf("%s_%s_%s.json", stamp, c.ProfileID, c.Intervention)
	path := filepath.Join(outDir, name)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal conversation: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write conversation: %w", err)
	}
	return path, nil
}

// Load reads a persisted conversation document.
func Load(path string) (*Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read conversation: %w", err)
	}
	var c Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse conversation %s: %w", path, err)
	}
	return &c, nil
}
