package cashadvance

import (
	"context"
	"database/sql"
	"errors"

	cashadvanceerrors "cerven-ot/internal/cashadvance/errors"
	"cerven-ot/internal/shared/dbtx"
	"cerven-ot/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=cash_advance_repo.go -destination=mock/cash_advance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *CashAdvance) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*CashAdvance, error)
	FindAll(ctx context.Context, companyID string, filter Filter) ([]CashAdvance, error)
	// UpdateDecision only writes while the row is still pending.
	UpdateDecision(ctx context.Context, a *CashAdvance) (bool, error)
}

type Filter struct {
	EmployeeID string
	Status     string
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

func (r *repository) Create(ctx context.Context, a *CashAdvance) error {
	return r.conn(ctx).Omit("Employee").Create(a).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*CashAdvance, error) {
	var a CashAdvance
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Employee").
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter Filter) ([]CashAdvance, error) {
	q := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Employee")
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var rows []CashAdvance
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateDecision(ctx context.Context, a *CashAdvance) (bool, error) {
	res := r.conn(ctx).
		Model(&CashAdvance{}).
		Where("id = ? AND company_id = ?", a.ID, a.CompanyID).
		Where("status = ?", StatusPending).
		Updates(map[string]any{
			"status":           a.Status,
			"decided_by":       a.DecidedBy,
			"decided_at":       a.DecidedAt,
			"rejection_reason": a.RejectionReason,
			"updated_at":       gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cashadvanceerrors.ErrCashAdvanceNotFound
	}
	return err
}
