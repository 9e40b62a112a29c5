package cashadvance

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePersonal      = "personal"
	TypeSupport       = "support"
	TypeReimbursement = "reimbursement"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// CashAdvance amounts are in minor currency units.
type CashAdvance struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID         uuid.UUID `gorm:"type:uuid;not null;index:idx_cash_advances_company_status"`
	EmployeeID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Type              string    `gorm:"type:varchar(20);not null"`
	Amount            int64     `gorm:"not null"`
	Purpose           string    `gorm:"type:text"`
	RequesterPosition string    `gorm:"type:varchar(100)"`

	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_cash_advances_company_status"`
	DecidedBy       *uuid.UUID `gorm:"type:uuid"`
	DecidedAt       *time.Time
	RejectionReason *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Employee *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (CashAdvance) TableName() string {
	return "cash_advances"
}

type EmployeeRef struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName string    `gorm:"column:full_name"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}

func validType(t string) bool {
	switch t {
	case TypePersonal, TypeSupport, TypeReimbursement:
		return true
	}
	return false
}
