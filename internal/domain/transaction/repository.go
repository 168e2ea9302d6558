package transaction

import (
	"context"

	"finlink/internal/domain/account"
)

// Reader defines the transaction queries available inside a read transaction.
// It embeds account.Reader so the ownership check and the page fetch share
// one snapshot.
type Reader interface {
	account.Reader

	// ListByAccountID returns at most limit transactions ordered by date
	// descending, then ID descending
	ListByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*Transaction, error)

	// CountByAccountID counts every transaction on the account
	CountByAccountID(ctx context.Context, accountID string) (int64, error)
}

// Store runs a group of reads against one consistent snapshot.
type Store interface {
	ReadTx(ctx context.Context, fn func(r Reader) error) error
}
