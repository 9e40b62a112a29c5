package overtime

import (
	"time"

	"github.com/google/uuid"
)

type OvertimeRequest struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID        uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID       uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;index"`
	AttendanceID     uuid.UUID  `gorm:"column:attendance_id;type:uuid;not null;uniqueIndex"`
	RequestedHours   float64    `gorm:"column:requested_hours;type:numeric(5,2);not null"`
	Reason           string     `gorm:"column:reason;type:text"`
	Level1Status     string     `gorm:"column:level1_status;type:varchar(20);not null;default:pending"`
	Level1Reviewer   *uuid.UUID `gorm:"column:level1_reviewer;type:uuid"`
	Level1ReviewedAt *time.Time `gorm:"column:level1_reviewed_at"`
	Level1Comment    *string    `gorm:"column:level1_comment;type:text"`
	Level2Status     string     `gorm:"column:level2_status;type:varchar(20);not null;default:pending"`
	Level2Reviewer   *uuid.UUID `gorm:"column:level2_reviewer;type:uuid"`
	Level2ReviewedAt *time.Time `gorm:"column:level2_reviewed_at"`
	Level2Comment    *string    `gorm:"column:level2_comment;type:text"`
	FinalStatus      *string    `gorm:"column:final_status;type:varchar(20)"`
	Status           string     `gorm:"column:status;type:varchar(20);not null;default:pending"`
	ApprovedAt       *time.Time `gorm:"column:approved_at"`
	Reviewer         *uuid.UUID `gorm:"column:reviewer;type:uuid"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`

	Employee *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (OvertimeRequest) TableName() string {
	return "overtime_requests"
}

type EmployeeRef struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName string    `gorm:"column:full_name"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}
