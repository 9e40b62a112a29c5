package events

import "time"

const (
	ApprovalDecidedTopic     = "ops.approval.decided.v1"
	ApprovalDecidedEventType = "approval.decided"
)

// Approval kinds carried in ApprovalDecidedEvent.Kind.
const (
	KindOvertime    = "overtime"
	KindLeave       = "leave"
	KindCashAdvance = "cash_advance"
	KindLiquidation = "liquidation"
)

type ApprovalDecidedEvent struct {
	EventType   string    `json:"event_type"`
	Kind        string    `json:"kind"`
	EntityID    string    `json:"entity_id"`
	CompanyID   string    `json:"company_id"`
	RequesterID string    `json:"requester_id"`
	DecidedBy   string    `json:"decided_by"`
	Level       int       `json:"level,omitempty"`
	Decision    string    `json:"decision"`
	FinalStatus string    `json:"final_status,omitempty"`
	Comment     string    `json:"comment,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
