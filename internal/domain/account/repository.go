package account

import "context"

// Reader defines the read-only account queries.
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Reader interface {
	// FindByID returns the account joined with its connection, or ErrAccountNotFound
	FindByID(ctx context.Context, id string) (*Account, error)

	// ListForUser returns the user's accounts under non-deleted connections,
	// most recently created first
	ListForUser(ctx context.Context, userID string, filter Filter) ([]*Account, error)
}

// Store runs a group of reads against one consistent snapshot.
type Store interface {
	ReadTx(ctx context.Context, fn func(r Reader) error) error
}
