package liquidation

type ItemRequest struct {
	ExpenseDate string `json:"expense_date" binding:"required"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Transport   int64  `json:"transport" binding:"gte=0"`
	Meals       int64  `json:"meals" binding:"gte=0"`
	Lodging     int64  `json:"lodging" binding:"gte=0"`
	Others      int64  `json:"others" binding:"gte=0"`
	Remarks     string `json:"remarks"`
}

type CreateLiquidationRequest struct {
	CashAdvanceID string        `json:"cash_advance_id" binding:"required,uuid"`
	Items         []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

type RejectLiquidationRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
}

type ItemResponse struct {
	ExpenseDate string `json:"expense_date"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Transport   int64  `json:"transport"`
	Meals       int64  `json:"meals"`
	Lodging     int64  `json:"lodging"`
	Others      int64  `json:"others"`
	Remarks     string `json:"remarks"`
	Total       int64  `json:"total"`
}

type LiquidationResponse struct {
	ID              string         `json:"id"`
	CompanyID       string         `json:"company_id"`
	CashAdvanceID   string         `json:"cash_advance_id"`
	EmployeeID      string         `json:"employee_id"`
	EmployeeName    string         `json:"employee_name,omitempty"`
	AdvanceAmount   int64          `json:"advance_amount"`
	TotalExpenses   int64          `json:"total_expenses"`
	ReturnToCompany int64          `json:"return_to_company"`
	Reimbursement   int64          `json:"reimbursement"`
	Status          string         `json:"status"`
	DecidedBy       *string        `json:"decided_by,omitempty"`
	DecidedAt       *string        `json:"decided_at,omitempty"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	Items           []ItemResponse `json:"items"`
	CreatedAt       string         `json:"created_at,omitempty"`
}
