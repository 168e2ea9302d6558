package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

type connectionFixture struct {
	ID        string
	UserID    string
	Status    string
	DeletedAt *time.Time
}

type accountFixture struct {
	ID           string
	ConnectionID string
	Name         string
	Mask         *string
	Currency     string
	Available    *int64
	Current      *int64
	CreatedAt    time.Time
}

func insertConnection(t *testing.T, db *DB, c connectionFixture) {
	t.Helper()
	if c.Status == "" {
		c.Status = "ACTIVE"
	}
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO bank_connections (id, user_id, institution_id, institution_name, status, deleted_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, "ins_"+c.ID, "Bank "+c.ID, c.Status, c.DeletedAt, baseTime,
	)
	require.NoError(t, err)
}

func insertAccount(t *testing.T, db *DB, a accountFixture) {
	t.Helper()
	if a.Currency == "" {
		a.Currency = "USD"
	}
	if a.Name == "" {
		a.Name = "Account " + a.ID
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = baseTime
	}
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO bank_accounts (id, bank_connection_id, external_account_id, name, type, mask,
		                            current_balance, available_balance, currency, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ConnectionID, "ext_"+a.ID, a.Name, "depository", a.Mask,
		a.Current, a.Available, a.Currency, a.CreatedAt, a.CreatedAt,
	)
	require.NoError(t, err)
}

// insertTransactions adds n transactions to an account. Transaction i
// (1-based) is dated i days before baseTime, so txn 1 is the newest.
func insertTransactions(t *testing.T, db *DB, accountID string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -i)
		_, err := db.ExecContext(context.Background(),
			`INSERT INTO transactions (id, bank_account_id, external_transaction_id, amount, currency,
			                           date, name, merchant_name, pending, category, payment_channel, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fmt.Sprintf("%s-txn-%04d", accountID, i), accountID, fmt.Sprintf("ext-%d", i),
			int64(-i*125), "USD", date, fmt.Sprintf("Purchase %d", i), nil, i%5 == 0,
			`["Food and Drink","Restaurants"]`, "in store", baseTime,
		)
		require.NoError(t, err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
