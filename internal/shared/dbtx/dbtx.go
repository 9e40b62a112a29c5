// Package dbtx binds gorm sessions to a caller-owned *sql.Tx.
package dbtx

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Conn returns a gorm session for ctx. When tx is non-nil every statement
// built from the session runs on tx; gorm skips its own default
// transaction because *sql.Tx cannot begin another one.
func Conn(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	conn := db.WithContext(ctx)
	if tx != nil {
		conn.Statement.ConnPool = tx
	}
	return conn
}
