package rbac

import (
	"cerven-ot/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetEmployeeRoles(companyID string) ([]EmployeeRoleRow, error)
	GetRolePermissions(companyID string) ([]RolePermissionRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// EmployeeRoleRow becomes a casbin grouping policy (employee, role, company).
type EmployeeRoleRow struct {
	EmployeeID string
	RoleID     string
}

// RolePermissionRow becomes a casbin policy (role, company, resource, action).
type RolePermissionRow struct {
	RoleID   string
	Resource string
	Action   string
}

// GetEmployeeRoles skips employees that were soft deleted, so a departed
// approver loses every grant at once.
func (r *repository) GetEmployeeRoles(companyID string) ([]EmployeeRoleRow, error) {
	var result []EmployeeRoleRow

	err := r.db.
		Table("employee_roles").
		Distinct("employee_roles.employee_id", "employee_roles.role_id").
		Joins("JOIN roles ON roles.id = employee_roles.role_id").
		Joins("JOIN employees ON employees.id = employee_roles.employee_id").
		Scopes(tenant.ScopeTable("roles", companyID)).
		Where("employees.deleted_at IS NULL").
		Scan(&result).Error

	return result, err
}

func (r *repository) GetRolePermissions(companyID string) ([]RolePermissionRow, error) {
	var result []RolePermissionRow

	err := r.db.
		Table("role_permissions").
		Distinct("role_permissions.role_id", "permissions.resource", "permissions.action").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Scopes(tenant.ScopeTable("roles", companyID)).
		Scan(&result).Error

	return result, err
}
