package overtime

import (
	"context"
	"database/sql"

	"cerven-ot/internal/shared/dbtx"
	"cerven-ot/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=overtime_repo.go -destination=mock/overtime_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *OvertimeRequest) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*OvertimeRequest, error)
	FindAll(ctx context.Context, companyID string, filter Filter) ([]OvertimeRequest, error)
	// UpdateDecision writes the decision fields only if the row is still in
	// the expected phase. It reports whether a row was updated.
	UpdateDecision(ctx context.Context, r *OvertimeRequest, expected Phase) (bool, error)
}

// Filter narrows FindAll. Empty fields match everything.
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

func (r *repository) Create(ctx context.Context, o *OvertimeRequest) error {
	return r.conn(ctx).Omit("Employee").Create(o).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*OvertimeRequest, error) {
	var row OvertimeRequest
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Employee").
		First(&row, "id = ?", id).Error
	return &row, err
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter Filter) ([]OvertimeRequest, error) {
	q := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Employee")
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var rows []OvertimeRequest
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateDecision(ctx context.Context, o *OvertimeRequest, expected Phase) (bool, error) {
	res := r.conn(ctx).
		Model(&OvertimeRequest{}).
		Where("id = ? AND company_id = ?", o.ID, o.CompanyID).
		Where("level1_status = ? AND level2_status = ?", expected.Level1, expected.Level2).
		Updates(map[string]any{
			"level1_status":      o.Level1Status,
			"level1_reviewer":    o.Level1Reviewer,
			"level1_reviewed_at": o.Level1ReviewedAt,
			"level1_comment":     o.Level1Comment,
			"level2_status":      o.Level2Status,
			"level2_reviewer":    o.Level2Reviewer,
			"level2_reviewed_at": o.Level2ReviewedAt,
			"level2_comment":     o.Level2Comment,
			"final_status":       o.FinalStatus,
			"status":             o.Status,
			"approved_at":        o.ApprovedAt,
			"reviewer":           o.Reviewer,
			"updated_at":         gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
