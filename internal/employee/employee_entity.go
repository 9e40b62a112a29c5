package employee

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;index"`
	PositionID       *uuid.UUID `gorm:"type:uuid"`
	EmployeeNumber   string     `gorm:"type:varchar(30)"`
	FullName         string
	Email            string `gorm:"uniqueIndex"`
	Phone            string
	EmploymentStatus string `gorm:"type:varchar(20);default:'active'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`

	Position *Position `gorm:"foreignKey:PositionID;references:ID"`
}

type Position struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;index"`
	Name      string
}

func (Position) TableName() string {
	return "positions"
}

// Profile is what the rest of the app needs to know about a caller or a
// notification recipient.
type Profile struct {
	EmployeeID       string
	CompanyID        string
	FullName         string
	Email            string
	EmploymentStatus string
	Role             string
	Position         string
}

// Active treats an unknown status as active; only an explicit non-ACTIVE
// status locks the employee out.
func (p Profile) Active() bool {
	return p.EmploymentStatus == "" || strings.EqualFold(p.EmploymentStatus, "ACTIVE")
}
