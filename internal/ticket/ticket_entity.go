package ticket

import (
	"strings"
	"time"

	"cerven-ot/internal/sla"

	"github.com/google/uuid"
)

const (
	SeveritySev1 = "sev1"
	SeveritySev2 = "sev2"
	SeveritySev3 = "sev3"
	SeveritySev4 = "sev4"
)

const (
	StatusOpen       = "open"
	StatusDispatched = "dispatched"
	StatusInProgress = "in_progress"
	StatusOnHold     = "on_hold"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// Ticket keeps its timeline fields as the text the client sent; the SLA
// columns are derived from them on every write.
type Ticket struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	StoreID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	TicketNumber string     `gorm:"type:varchar(20);not null"`
	Title        string     `gorm:"type:varchar(255);not null"`
	Description  string     `gorm:"type:text"`
	Severity     string     `gorm:"type:varchar(10);not null"`
	Status       string     `gorm:"type:varchar(20);not null;default:open"`
	ReportedBy   *uuid.UUID `gorm:"type:uuid"`
	AssignedTo   *uuid.UUID `gorm:"type:uuid"`
	ReportedDate *string    `gorm:"type:varchar(10)"`

	AckDate       *string `gorm:"type:varchar(10)"`
	AckTime       *string `gorm:"type:varchar(8)"`
	RespondedDate *string `gorm:"type:varchar(10)"`
	RespondedTime *string `gorm:"type:varchar(8)"`
	AttendedDate  *string `gorm:"type:varchar(10)"`
	WorkEndTime   *string `gorm:"type:varchar(8)"`
	Pause1Start   *string `gorm:"column:pause1_start;type:varchar(35)"`
	Pause1End     *string `gorm:"column:pause1_end;type:varchar(35)"`
	Pause2Start   *string `gorm:"column:pause2_start;type:varchar(35)"`
	Pause2End     *string `gorm:"column:pause2_end;type:varchar(35)"`
	ResolvedDate  *string `gorm:"type:varchar(10)"`
	ResolvedTime  *string `gorm:"type:varchar(8)"`

	SLACountHrs *float64 `gorm:"column:sla_count_hrs;type:numeric(8,2)"`
	SLAStatus   *string  `gorm:"column:sla_status;type:varchar(10)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Store *StoreRef `gorm:"foreignKey:StoreID"`
}

func (Ticket) TableName() string {
	return "tickets"
}

type StoreRef struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code string
	Name string
}

func (StoreRef) TableName() string {
	return "stores"
}

func validSeverity(v string) bool {
	switch v {
	case SeveritySev1, SeveritySev2, SeveritySev3, SeveritySev4:
		return true
	}
	return false
}

func validStatus(v string) bool {
	switch v {
	case StatusOpen, StatusDispatched, StatusInProgress, StatusOnHold, StatusResolved, StatusClosed:
		return true
	}
	return false
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func (t *Ticket) slaInput() sla.Input {
	return sla.Input{
		Severity:      t.Severity,
		AckDate:       deref(t.AckDate),
		AckTime:       deref(t.AckTime),
		RespondedDate: deref(t.RespondedDate),
		RespondedTime: deref(t.RespondedTime),
		AttendedDate:  deref(t.AttendedDate),
		WorkEndTime:   deref(t.WorkEndTime),
		Pause1Start:   deref(t.Pause1Start),
		Pause1End:     deref(t.Pause1End),
		Pause2Start:   deref(t.Pause2Start),
		Pause2End:     deref(t.Pause2End),
		ResolvedDate:  deref(t.ResolvedDate),
		ResolvedTime:  deref(t.ResolvedTime),
	}
}

// RecomputeSLA rewrites both derived columns, clearing them when their
// inputs are no longer complete.
func (t *Ticket) RecomputeSLA() error {
	res, err := sla.Calculate(t.slaInput())
	if err != nil {
		return err
	}
	t.SLACountHrs = res.CountHours
	t.SLAStatus = res.Status
	return nil
}

func normalizeCode(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}
