package cashadvance

type CreateCashAdvanceRequest struct {
	Type    string `json:"type" binding:"required,oneof=personal support reimbursement"`
	Amount  int64  `json:"amount" binding:"required,gt=0"`
	Purpose string `json:"purpose"`
}

type RejectCashAdvanceRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
}

type CashAdvanceResponse struct {
	ID                string  `json:"id"`
	CompanyID         string  `json:"company_id"`
	EmployeeID        string  `json:"employee_id"`
	EmployeeName      string  `json:"employee_name,omitempty"`
	Type              string  `json:"type"`
	Amount            int64   `json:"amount"`
	Purpose           string  `json:"purpose"`
	RequesterPosition string  `json:"requester_position"`
	Status            string  `json:"status"`
	DecidedBy         *string `json:"decided_by,omitempty"`
	DecidedAt         *string `json:"decided_at,omitempty"`
	RejectionReason   *string `json:"rejection_reason,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
}
