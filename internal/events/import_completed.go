package events

import "time"

const (
	ImportCompletedTopic     = "ops.import.completed.v1"
	ImportCompletedEventType = "import.completed"
)

type ImportCompletedEvent struct {
	EventType  string    `json:"event_type"`
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind"`
	CompanyID  string    `json:"company_id"`
	StartedBy  string    `json:"started_by"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	OccurredAt time.Time `json:"occurred_at"`
}
