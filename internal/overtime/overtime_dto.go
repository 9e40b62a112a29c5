package overtime

type CreateOvertimeRequest struct {
	AttendanceID   string  `json:"attendance_id" binding:"required,uuid"`
	RequestedHours float64 `json:"requested_hours" binding:"required,gt=0"`
	Reason         string  `json:"reason" binding:"max=1000"`
}

type ReviewOvertimeRequest struct {
	OvertimeID string `json:"overtime_id" binding:"required,uuid"`
	Level      int    `json:"level" binding:"required,oneof=1 2"`
	Action     string `json:"action" binding:"required,oneof=approve reject"`
	Comment    string `json:"comment" binding:"max=1000"`
}

type LevelResponse struct {
	Status     string  `json:"status"`
	Reviewer   *string `json:"reviewer,omitempty"`
	ReviewedAt *string `json:"reviewed_at,omitempty"`
	Comment    *string `json:"comment,omitempty"`
}

type OvertimeResponse struct {
	ID             string        `json:"id"`
	CompanyID      string        `json:"company_id"`
	EmployeeID     string        `json:"employee_id"`
	EmployeeName   string        `json:"employee_name,omitempty"`
	AttendanceID   string        `json:"attendance_id"`
	RequestedHours float64       `json:"requested_hours"`
	Reason         string        `json:"reason,omitempty"`
	Level1         LevelResponse `json:"level1"`
	Level2         LevelResponse `json:"level2"`
	FinalStatus    *string       `json:"final_status"`
	Status         string        `json:"status"`
	ApprovedAt     *string       `json:"approved_at,omitempty"`
	Reviewer       *string       `json:"reviewer,omitempty"`
	CreatedAt      string        `json:"created_at"`
}
