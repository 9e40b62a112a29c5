package employee

import (
	"context"
	"strings"

	"cerven-ot/internal/tenant"

	"gorm.io/gorm"
)

const defaultRole = "EMPLOYEE"

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error)
	FindProfile(ctx context.Context, companyID, employeeID string) (*Profile, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Position").
		Order("full_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error) {
	var row Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Position").
		First(&row, "id = ?", id).Error
	return &row, err
}

type profileRow struct {
	ID               string
	CompanyID        string
	FullName         string
	Email            string
	EmploymentStatus string
	Position         string
}

// FindProfile resolves the employee, their position name and their highest
// priority role within the company.
func (r *repository) FindProfile(ctx context.Context, companyID, employeeID string) (*Profile, error) {
	var row profileRow
	res := r.db.WithContext(ctx).
		Table("employees e").
		Select("e.id, e.company_id, e.full_name, e.email, e.employment_status, COALESCE(p.name, '') AS position").
		Joins("LEFT JOIN positions p ON p.id = e.position_id").
		Where("e.id = ?", employeeID).
		Where("e.company_id = ?", companyID).
		Where("e.deleted_at IS NULL").
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var roleName string
	err := r.db.WithContext(ctx).
		Table("employee_roles er").
		Select("roles.name").
		Joins("JOIN roles ON roles.id = er.role_id").
		Where("er.employee_id = ?", employeeID).
		Where("roles.company_id = ?", companyID).
		Order(`
			CASE UPPER(roles.name)
				WHEN 'SUPERADMIN' THEN 1
				WHEN 'ADMIN' THEN 2
				WHEN 'HR' THEN 3
				WHEN 'FINANCE' THEN 4
				WHEN 'MANAGER' THEN 5
				WHEN 'SUPERVISOR' THEN 6
				WHEN 'DISPATCHER' THEN 7
				WHEN 'TECHNICIAN' THEN 8
				WHEN 'EMPLOYEE' THEN 9
				ELSE 99
			END ASC`).
		Limit(1).
		Scan(&roleName).Error
	if err != nil {
		return nil, err
	}

	role := strings.ToUpper(strings.TrimSpace(roleName))
	if role == "" {
		role = defaultRole
	}

	return &Profile{
		EmployeeID:       row.ID,
		CompanyID:        row.CompanyID,
		FullName:         row.FullName,
		Email:            row.Email,
		EmploymentStatus: strings.ToUpper(row.EmploymentStatus),
		Role:             role,
		Position:         strings.TrimSpace(row.Position),
	}, nil
}
