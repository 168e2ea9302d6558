package database

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlink/internal/domain/account"
)

func seedAccounts(t *testing.T, db *DB) {
	t.Helper()
	deleted := baseTime.Add(-time.Hour)

	insertConnection(t, db, connectionFixture{ID: "c-active", UserID: "u1"})
	insertConnection(t, db, connectionFixture{ID: "c-disabled", UserID: "u1", Status: "DISABLED"})
	insertConnection(t, db, connectionFixture{ID: "c-deleted", UserID: "u1", DeletedAt: &deleted})
	insertConnection(t, db, connectionFixture{ID: "c-other", UserID: "u2"})

	insertAccount(t, db, accountFixture{ID: "a-checking", ConnectionID: "c-active", Mask: ptr("0000"),
		Available: ptr[int64](10000), Current: ptr[int64](10500), CreatedAt: baseTime})
	insertAccount(t, db, accountFixture{ID: "a-savings", ConnectionID: "c-active",
		Available: ptr[int64](2500), Current: ptr[int64](2500), CreatedAt: baseTime.Add(time.Hour)})
	insertAccount(t, db, accountFixture{ID: "a-euro", ConnectionID: "c-active", Currency: "EUR",
		Available: ptr[int64](900), Current: nil, CreatedAt: baseTime.Add(2 * time.Hour)})
	insertAccount(t, db, accountFixture{ID: "a-disabled", ConnectionID: "c-disabled",
		Available: ptr[int64](7777), Current: ptr[int64](7777), CreatedAt: baseTime.Add(3 * time.Hour)})
	insertAccount(t, db, accountFixture{ID: "a-deleted", ConnectionID: "c-deleted",
		Available: ptr[int64](5555), Current: ptr[int64](5555), CreatedAt: baseTime.Add(4 * time.Hour)})
	insertAccount(t, db, accountFixture{ID: "a-other", ConnectionID: "c-other",
		Available: ptr[int64](1), Current: ptr[int64](1)})
}

func accountIDs(accounts []*account.Account) []string {
	return lo.Map(accounts, func(a *account.Account, _ int) string { return a.ID })
}

func TestAccountRepository_FindByID(t *testing.T) {
	db := newTestDB(t)
	seedAccounts(t, db)
	repo := NewAccountRepository(db, db.Dialect())

	acc, err := repo.FindByID(context.Background(), "a-checking")
	require.NoError(t, err)

	assert.Equal(t, "a-checking", acc.ID)
	assert.Equal(t, "c-active", acc.ConnectionID)
	assert.Equal(t, "u1", acc.OwnerID())
	assert.Equal(t, account.StatusActive, acc.Connection.Status)
	assert.Nil(t, acc.Connection.DeletedAt)
	assert.Equal(t, "0000", lo.FromPtr(acc.Mask))
	assert.Equal(t, int64(10000), lo.FromPtr(acc.AvailableBalance))
	assert.Equal(t, int64(10500), lo.FromPtr(acc.CurrentBalance))
	assert.Nil(t, acc.OfficialName)
}

func TestAccountRepository_FindByID_IncludesDeletedMarker(t *testing.T) {
	db := newTestDB(t)
	seedAccounts(t, db)

	acc, err := NewAccountRepository(db, db.Dialect()).FindByID(context.Background(), "a-deleted")
	require.NoError(t, err)
	assert.True(t, acc.Connection.IsDeleted())
}

func TestAccountRepository_FindByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	seedAccounts(t, db)

	_, err := NewAccountRepository(db, db.Dialect()).FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestAccountRepository_ListForUser(t *testing.T) {
	db := newTestDB(t)
	seedAccounts(t, db)
	repo := NewAccountRepository(db, db.Dialect())

	tests := []struct {
		name   string
		userID string
		filter account.Filter
		want   []string
	}{
		{
			name:   "listing excludes deleted connections only, newest first",
			userID: "u1",
			want:   []string{"a-disabled", "a-euro", "a-savings", "a-checking"},
		},
		{
			name:   "active filter",
			userID: "u1",
			filter: account.Filter{RequireActive: true},
			want:   []string{"a-euro", "a-savings", "a-checking"},
		},
		{
			name:   "balance selection",
			userID: "u1",
			filter: account.Filter{RequireActive: true, Currency: "USD"},
			want:   []string{"a-savings", "a-checking"},
		},
		{
			name:   "other user",
			userID: "u2",
			want:   []string{"a-other"},
		},
		{
			name:   "unknown user",
			userID: "u3",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts, err := repo.ListForUser(context.Background(), tt.userID, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, accountIDs(accounts))
		})
	}
}

func TestTransactionRepository_ListAndCount(t *testing.T) {
	db := newTestDB(t)
	seedAccounts(t, db)
	insertTransactions(t, db, "a-checking", 12)
	insertTransactions(t, db, "a-savings", 3)
	repo := NewTransactionRepository(db, db.Dialect())
	ctx := context.Background()

	page, err := repo.ListByAccountID(ctx, "a-checking", 5, 5)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, "a-checking-txn-0006", page[0].ID)
	assert.Equal(t, "a-checking-txn-0010", page[4].ID)

	first := page[4]
	assert.Equal(t, "a-checking", first.AccountID)
	assert.Equal(t, int64(-1250), first.Amount)
	assert.Equal(t, "2024-05-22", first.Date.Format(time.DateOnly))
	assert.True(t, first.Pending)
	assert.Equal(t, []string{"Food and Drink", "Restaurants"}, first.Category)
	assert.Equal(t, "in store", lo.FromPtr(first.PaymentChannel))
	assert.Nil(t, first.MerchantName)

	total, err := repo.CountByAccountID(ctx, "a-checking")
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)

	empty, err := repo.ListByAccountID(ctx, "a-checking", 5, 50)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	none, err := repo.CountByAccountID(ctx, "a-euro")
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestTransactionRepository_TiesBrokenByID(t *testing.T) {
	db := newTestDB(t)
	seedAccounts(t, db)
	ctx := context.Background()

	sameDay := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"t-b", "t-c", "t-a"} {
		_, err := db.ExecContext(ctx,
			`INSERT INTO transactions (id, bank_account_id, external_transaction_id, amount, currency, date, name)
			 VALUES (?, 'a-savings', ?, 100, 'USD', ?, 'coffee')`, id, "ext-"+id, sameDay)
		require.NoError(t, err)
	}

	txns, err := NewTransactionRepository(db, db.Dialect()).ListByAccountID(ctx, "a-savings", 10, 0)
	require.NoError(t, err)

	ids := make([]string, 0, len(txns))
	for _, txn := range txns {
		ids = append(ids, txn.ID)
		assert.Equal(t, []string{}, txn.Category)
	}
	assert.Equal(t, []string{"t-c", "t-b", "t-a"}, ids)
}

func TestDecodeCategory(t *testing.T) {
	got, err := decodeCategory(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)

	got, err = decodeCategory([]byte(`null`))
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)

	got, err = decodeCategory([]byte(`["Travel","Airlines"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Travel", "Airlines"}, got)

	_, err = decodeCategory([]byte(`{`))
	assert.Error(t, err)
}
