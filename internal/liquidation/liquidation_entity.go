package liquidation

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Amounts are minor currency units.
type Liquidation struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID         uuid.UUID `gorm:"type:uuid;not null;index:idx_liquidations_company_status"`
	CashAdvanceID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_liquidations_active_advance,where:status <> 'rejected'"`
	EmployeeID        uuid.UUID `gorm:"type:uuid;not null;index"`
	RequesterPosition string    `gorm:"type:varchar(100)"`

	AdvanceAmount   int64 `gorm:"not null"`
	TotalExpenses   int64 `gorm:"not null"`
	ReturnToCompany int64 `gorm:"not null;default:0"`
	Reimbursement   int64 `gorm:"not null;default:0"`

	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_liquidations_company_status"`
	DecidedBy       *uuid.UUID `gorm:"type:uuid"`
	DecidedAt       *time.Time
	RejectionReason *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Items    []LiquidationItem `gorm:"foreignKey:LiquidationID"`
	Employee *EmployeeRef      `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Liquidation) TableName() string {
	return "liquidations"
}

type LiquidationItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LiquidationID uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpenseDate   time.Time `gorm:"type:date;not null"`
	Origin        string    `gorm:"type:varchar(150)"`
	Destination   string    `gorm:"type:varchar(150)"`
	Transport     int64     `gorm:"not null;default:0"`
	Meals         int64     `gorm:"not null;default:0"`
	Lodging       int64     `gorm:"not null;default:0"`
	Others        int64     `gorm:"not null;default:0"`
	Remarks       string    `gorm:"type:text"`
	Total         int64     `gorm:"not null;default:0"`
}

func (LiquidationItem) TableName() string {
	return "liquidation_items"
}

type EmployeeRef struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName string    `gorm:"column:full_name"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}

// Settle splits the difference between the advance and the expenses.
// Exactly one of the results is non-zero unless they are equal.
func Settle(advance, total int64) (returnToCompany, reimbursement int64) {
	if advance > total {
		return advance - total, 0
	}
	return 0, total - advance
}

func (i LiquidationItem) lineTotal() int64 {
	return i.Transport + i.Meals + i.Lodging + i.Others
}
