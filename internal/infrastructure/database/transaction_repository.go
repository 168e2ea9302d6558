package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"finlink/internal/domain/transaction"
)

// TransactionRepository implements transaction.Reader. It embeds the account
// repository so ownership lookups run on the same Querier.
type TransactionRepository struct {
	*AccountRepository
}

// NewTransactionRepository creates a transaction repository over a DB or a read transaction
func NewTransactionRepository(q Querier, dialect Dialect) *TransactionRepository {
	return &TransactionRepository{AccountRepository: NewAccountRepository(q, dialect)}
}

// ListByAccountID retrieves one window of an account's transactions,
// newest date first with ID as the tie-breaker
func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT id, bank_account_id, external_transaction_id, amount, currency, date, name,
		       merchant_name, pending, category, payment_channel, created_at
		FROM transactions
		WHERE bank_account_id = ?
		ORDER BY date DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.q.QueryContext(ctx, rebind(r.dialect, query), accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*transaction.Transaction{}
	for rows.Next() {
		var t transaction.Transaction
		var merchantName, paymentChannel sql.NullString
		var category []byte

		err := rows.Scan(
			&t.ID, &t.AccountID, &t.ExternalID, &t.Amount, &t.Currency, &t.Date, &t.Name,
			&merchantName, &t.Pending, &category, &paymentChannel, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		t.MerchantName = stringPtr(merchantName)
		t.PaymentChannel = stringPtr(paymentChannel)
		t.Category, err = decodeCategory(category)
		if err != nil {
			return nil, fmt.Errorf("failed to decode category of transaction %s: %w", t.ID, err)
		}

		transactions = append(transactions, &t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// CountByAccountID counts all transactions on an account
func (r *TransactionRepository) CountByAccountID(ctx context.Context, accountID string) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE bank_account_id = ?`

	var count int64
	err := r.q.QueryRowContext(ctx, rebind(r.dialect, query), accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

func decodeCategory(raw []byte) ([]string, error) {
	category := []string{}
	if len(raw) == 0 {
		return category, nil
	}
	if err := json.Unmarshal(raw, &category); err != nil {
		return nil, err
	}
	if category == nil {
		category = []string{}
	}
	return category, nil
}
