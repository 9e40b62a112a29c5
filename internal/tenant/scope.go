// Package tenant restricts queries to one company.
package tenant

import (
	"strings"

	"gorm.io/gorm"
)

// Scope filters on company_id. An empty company matches nothing, so a
// missing principal can never widen a query to every tenant.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return ScopeTable("", companyID)
}

// ScopeTable is Scope for joined queries where company_id is ambiguous.
func ScopeTable(table, companyID string) func(db *gorm.DB) *gorm.DB {
	column := "company_id"
	if table != "" {
		column = table + ".company_id"
	}
	return func(db *gorm.DB) *gorm.DB {
		if strings.TrimSpace(companyID) == "" {
			return db.Where("1 = 0")
		}
		return db.Where(column+" = ?", companyID)
	}
}
