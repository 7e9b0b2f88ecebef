package models

import (
	"database/sql"
	"time"
)

// AuditFields mirrors the audit columns shared by ledger tables.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}

// Account is a row of the accounts table.
type Account struct {
	AccountID         int64          `db:"account_id"`
	Code              string         `db:"code"`
	Name              string         `db:"name"`
	AccountType       string         `db:"account_type"`
	NormalBalanceSide string         `db:"normal_balance_side"`
	ParentCode        sql.NullString `db:"parent_code"`
	IsHeader          bool           `db:"is_header"`
	IsActive          bool           `db:"is_active"`
	CarriesShu        bool           `db:"carries_shu"`
	AuditFields
}
