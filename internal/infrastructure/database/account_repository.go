package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"finlink/internal/domain/account"
)

const accountColumns = `
	a.id, a.bank_connection_id, a.external_account_id, a.name, a.official_name,
	a.type, a.subtype, a.mask, a.current_balance, a.available_balance, a.currency,
	a.created_at, a.updated_at,
	c.id, c.user_id, c.institution_id, c.institution_name, c.status, c.deleted_at, c.created_at`

// AccountRepository implements account.Reader. The owner is always read
// through the join to bank_connections.
type AccountRepository struct {
	q       Querier
	dialect Dialect
}

// NewAccountRepository creates an account repository over a DB or a read transaction
func NewAccountRepository(q Querier, dialect Dialect) *AccountRepository {
	return &AccountRepository{q: q, dialect: dialect}
}

// FindByID retrieves an account and its connection by the account ID
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*account.Account, error) {
	query := `
		SELECT` + accountColumns + `
		FROM bank_accounts a
		JOIN bank_connections c ON c.id = a.bank_connection_id
		WHERE a.id = ?
	`

	acc, err := scanAccount(r.q.QueryRowContext(ctx, rebind(r.dialect, query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// ListForUser retrieves the user's accounts under connections that are not
// soft-deleted, newest first
func (r *AccountRepository) ListForUser(ctx context.Context, userID string, filter account.Filter) ([]*account.Account, error) {
	where := []string{"c.user_id = ?", "c.deleted_at IS NULL"}
	args := []any{userID}

	if filter.RequireActive {
		where = append(where, "c.status = ?")
		args = append(args, string(account.StatusActive))
	}
	if filter.Currency != "" {
		where = append(where, "a.currency = ?")
		args = append(args, filter.Currency)
	}

	query := `
		SELECT` + accountColumns + `
		FROM bank_accounts a
		JOIN bank_connections c ON c.id = a.bank_connection_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY a.created_at DESC, a.id DESC
	`

	rows, err := r.q.QueryContext(ctx, rebind(r.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*account.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

func scanAccount(row Row) (*account.Account, error) {
	var acc account.Account
	var officialName, subtype, mask sql.NullString
	var current, available sql.NullInt64
	var status string
	var deletedAt sql.NullTime

	err := row.Scan(
		&acc.ID, &acc.ConnectionID, &acc.ExternalID, &acc.Name, &officialName,
		&acc.Type, &subtype, &mask, &current, &available, &acc.Currency,
		&acc.CreatedAt, &acc.UpdatedAt,
		&acc.Connection.ID, &acc.Connection.UserID, &acc.Connection.InstitutionID,
		&acc.Connection.InstitutionName, &status, &deletedAt, &acc.Connection.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	acc.OfficialName = stringPtr(officialName)
	acc.Subtype = stringPtr(subtype)
	acc.Mask = stringPtr(mask)
	acc.CurrentBalance = int64Ptr(current)
	acc.AvailableBalance = int64Ptr(available)
	acc.Connection.Status = account.ConnectionStatus(status)
	if deletedAt.Valid {
		t := deletedAt.Time
		acc.Connection.DeletedAt = &t
	}

	return &acc, nil
}

// Helper functions

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func int64Ptr(i sql.NullInt64) *int64 {
	if !i.Valid {
		return nil
	}
	return &i.Int64
}
