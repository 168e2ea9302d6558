package database

import (
	"context"
	"fmt"
	"strings"
)

// Tables are owned by the ingestion pipeline; Migrate only guarantees the
// shape and indexes the read paths depend on.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS bank_connections (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		institution_id   TEXT NOT NULL,
		institution_name TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT 'ACTIVE',
		deleted_at       TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bank_connections_user
		ON bank_connections (user_id) WHERE deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS bank_accounts (
		id                  TEXT PRIMARY KEY,
		bank_connection_id  TEXT NOT NULL REFERENCES bank_connections (id),
		external_account_id TEXT NOT NULL,
		name                TEXT NOT NULL,
		official_name       TEXT,
		type                TEXT NOT NULL,
		subtype             TEXT,
		mask                TEXT,
		current_balance     BIGINT,
		available_balance   BIGINT,
		currency            TEXT NOT NULL DEFAULT 'USD',
		created_at          TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bank_accounts_connection
		ON bank_accounts (bank_connection_id)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id                      TEXT PRIMARY KEY,
		bank_account_id         TEXT NOT NULL REFERENCES bank_accounts (id),
		external_transaction_id TEXT NOT NULL,
		amount                  BIGINT NOT NULL,
		currency                TEXT NOT NULL,
		date                    DATE NOT NULL,
		name                    TEXT NOT NULL,
		merchant_name           TEXT,
		pending                 BOOLEAN NOT NULL DEFAULT FALSE,
		category                JSONB NOT NULL DEFAULT '[]',
		payment_channel         TEXT,
		created_at              TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_account_date
		ON transactions (bank_account_id, date DESC, id DESC)`,
}

// sqliteSchema mirrors postgresSchema with column types the sqlite3 driver
// maps back to Go values (TIMESTAMP/DATE to time.Time).
var sqliteSchema = func() []string {
	out := make([]string, len(postgresSchema))
	r := strings.NewReplacer("TIMESTAMPTZ", "TIMESTAMP", "JSONB", "TEXT")
	for i, stmt := range postgresSchema {
		out[i] = r.Replace(stmt)
	}
	return out
}()

// Migrate creates the tables and indexes if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	stmts := postgresSchema
	if db.dialect == DialectSQLite {
		stmts = sqliteSchema
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
