package liquidation

import (
	"context"
	"database/sql"
	"errors"

	liquidationerrors "cerven-ot/internal/liquidation/errors"
	"cerven-ot/internal/shared/dbtx"
	"cerven-ot/internal/tenant"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const activeAdvanceIndex = "uq_liquidations_active_advance"

//go:generate mockgen -source=liquidation_repo.go -destination=mock/liquidation_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Liquidation) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Liquidation, error)
	FindAll(ctx context.Context, companyID string, filter Filter) ([]Liquidation, error)
	// LockAdvance takes a row lock on the cash advance for the rest of the
	// transaction, serializing filings against the same advance.
	LockAdvance(ctx context.Context, companyID, cashAdvanceID string) error
	// HasActiveForAdvance reports a pending or approved liquidation for the advance.
	HasActiveForAdvance(ctx context.Context, companyID, cashAdvanceID string) (bool, error)
	UpdateDecision(ctx context.Context, l *Liquidation) (bool, error)
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

// Create inserts the liquidation and its items.
func (r *repository) Create(ctx context.Context, l *Liquidation) error {
	return r.conn(ctx).Omit("Employee").Create(l).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Liquidation, error) {
	var l Liquidation
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("expense_date ASC") }).
		Preload("Employee").
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter Filter) ([]Liquidation, error) {
	q := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Items").
		Preload("Employee")
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var rows []Liquidation
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) LockAdvance(ctx context.Context, companyID, cashAdvanceID string) error {
	var ids []string
	err := r.conn(ctx).
		Table("cash_advances").
		Scopes(tenant.ScopeTable("cash_advances", companyID)).
		Where("cash_advances.id = ?", cashAdvanceID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Pluck("cash_advances.id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) HasActiveForAdvance(ctx context.Context, companyID, cashAdvanceID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Liquidation{}).
		Scopes(tenant.Scope(companyID)).
		Where("cash_advance_id = ?", cashAdvanceID).
		Where("status <> ?", StatusRejected).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) UpdateDecision(ctx context.Context, l *Liquidation) (bool, error) {
	res := r.conn(ctx).
		Model(&Liquidation{}).
		Where("id = ? AND company_id = ?", l.ID, l.CompanyID).
		Where("status = ?", StatusPending).
		Updates(map[string]any{
			"status":           l.Status,
			"decided_by":       l.DecidedBy,
			"decided_at":       l.DecidedAt,
			"rejection_reason": l.RejectionReason,
			"updated_at":       gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return liquidationerrors.ErrLiquidationNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == activeAdvanceIndex {
		return liquidationerrors.ErrActiveLiquidationExists
	}
	return err
}
