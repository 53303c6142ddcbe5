package summary

import "time"

// Priority levels assigned to summarized emails.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// EmailSummary is the structured result of summarizing a single email.
type EmailSummary struct {
	EmailID     string    `yaml:"email_id"`
	Subject     string    `yaml:"subject"`
	Sender      string    `yaml:"sender"`
	Date        string    `yaml:"date"`
	Summary     string    `yaml:"summary"`
	KeyPoints   []string  `yaml:"key_points,omitempty"`
	ActionItems []string  `yaml:"action_items,omitempty"`
	Priority    string    `yaml:"priority"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Fallback    bool      `yaml:"fallback,omitempty"`
}
