package ticket

import "cerven-ot/internal/shared/patch"

type CreateTicketRequest struct {
	StoreID      string `json:"store_id" binding:"required,uuid"`
	Title        string `json:"title" binding:"required,max=255"`
	Description  string `json:"description"`
	Severity     string `json:"severity" binding:"required,oneof=sev1 sev2 sev3 sev4"`
	ReportedDate string `json:"reported_date"`
	AssignedTo   string `json:"assigned_to" binding:"omitempty,uuid"`
}

// UpdateTicketRequest is a partial update. Absent keys are left alone and
// null clears a nullable column. ID is only read on PUT /tickets/update.
type UpdateTicketRequest struct {
	ID string `json:"id"`

	Title        patch.Field[string] `json:"title"`
	Description  patch.Field[string] `json:"description"`
	Severity     patch.Field[string] `json:"severity"`
	Status       patch.Field[string] `json:"status"`
	AssignedTo   patch.Field[string] `json:"assigned_to"`
	ReportedDate patch.Field[string] `json:"reported_date"`

	AckDate       patch.Field[string] `json:"ack_date"`
	AckTime       patch.Field[string] `json:"ack_time"`
	RespondedDate patch.Field[string] `json:"responded_date"`
	RespondedTime patch.Field[string] `json:"responded_time"`
	AttendedDate  patch.Field[string] `json:"attended_date"`
	WorkEndTime   patch.Field[string] `json:"work_end_time"`
	Pause1Start   patch.Field[string] `json:"pause1_start"`
	Pause1End     patch.Field[string] `json:"pause1_end"`
	Pause2Start   patch.Field[string] `json:"pause2_start"`
	Pause2End     patch.Field[string] `json:"pause2_end"`
	ResolvedDate  patch.Field[string] `json:"resolved_date"`
	ResolvedTime  patch.Field[string] `json:"resolved_time"`
}

type TicketResponse struct {
	ID           string  `json:"id"`
	CompanyID    string  `json:"company_id"`
	StoreID      string  `json:"store_id"`
	StoreCode    string  `json:"store_code,omitempty"`
	StoreName    string  `json:"store_name,omitempty"`
	TicketNumber string  `json:"ticket_number"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Severity     string  `json:"severity"`
	Status       string  `json:"status"`
	ReportedBy   *string `json:"reported_by"`
	AssignedTo   *string `json:"assigned_to"`
	ReportedDate *string `json:"reported_date"`

	AckDate       *string `json:"ack_date"`
	AckTime       *string `json:"ack_time"`
	RespondedDate *string `json:"responded_date"`
	RespondedTime *string `json:"responded_time"`
	AttendedDate  *string `json:"attended_date"`
	WorkEndTime   *string `json:"work_end_time"`
	Pause1Start   *string `json:"pause1_start"`
	Pause1End     *string `json:"pause1_end"`
	Pause2Start   *string `json:"pause2_start"`
	Pause2End     *string `json:"pause2_end"`
	ResolvedDate  *string `json:"resolved_date"`
	ResolvedTime  *string `json:"resolved_time"`

	SLACountHrs *float64 `json:"sla_count_hrs"`
	SLAStatus   *string  `json:"sla_status"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
