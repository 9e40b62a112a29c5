package employee

type EmployeeResponse struct {
	ID               string `json:"id"`
	CompanyID        string `json:"company_id"`
	EmployeeNumber   string `json:"employee_number,omitempty"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	EmploymentStatus string `json:"employment_status,omitempty"`
	PositionID       string `json:"position_id,omitempty"`
	Position         string `json:"position,omitempty"`
}

type ProfileResponse struct {
	EmployeeID string `json:"employee_id"`
	CompanyID  string `json:"company_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Position   string `json:"position,omitempty"`
}
