package ticket

import (
	"context"
	"database/sql"
	"errors"

	"cerven-ot/internal/shared/dbtx"
	"cerven-ot/internal/tenant"
	ticketerrors "cerven-ot/internal/ticket/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=ticket_repo.go -destination=mock/ticket_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, t *Ticket) error
	CreateBatch(ctx context.Context, tickets []Ticket) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Ticket, error)
	// FindForUpdate locks the row until the surrounding transaction ends.
	FindForUpdate(ctx context.Context, companyID, id string) (*Ticket, error)
	FindAll(ctx context.Context, companyID string, filter Filter) ([]Ticket, error)
	Update(ctx context.Context, t *Ticket) error
}

type Filter struct {
	Status   string
	Severity string
	StoreID  string
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, t *Ticket) error {
	return r.conn(ctx).Omit("Store").Create(t).Error
}

func (r *repository) CreateBatch(ctx context.Context, tickets []Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	return r.conn(ctx).Omit("Store").CreateInBatches(tickets, len(tickets)).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Ticket, error) {
	var t Ticket
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Store").
		First(&t, "id = ?", id).Error
	return &t, err
}

func (r *repository) FindForUpdate(ctx context.Context, companyID, id string) (*Ticket, error) {
	var t Ticket
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&t, "id = ?", id).Error
	return &t, err
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter Filter) ([]Ticket, error) {
	q := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Store")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}

	var rows []Ticket
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// Update writes every column so cleared fields become NULL.
func (r *repository) Update(ctx context.Context, t *Ticket) error {
	return r.conn(ctx).
		Model(t).
		Where("company_id = ?", t.CompanyID).
		Select("*").
		Omit("Store", "ID", "CompanyID", "TicketNumber", "CreatedAt").
		Updates(t).Error
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ticketerrors.ErrTicketNotFound
	}
	return err
}
