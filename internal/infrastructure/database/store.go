package database

import (
	"context"

	"finlink/internal/domain/account"
	"finlink/internal/domain/transaction"
)

// AccountStore implements account.Store on top of DB.ReadTx.
type AccountStore struct {
	db *DB
}

func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) ReadTx(ctx context.Context, fn func(r account.Reader) error) error {
	return s.db.ReadTx(ctx, func(q Querier) error {
		return fn(NewAccountRepository(q, s.db.dialect))
	})
}

// TransactionStore implements transaction.Store on top of DB.ReadTx.
type TransactionStore struct {
	db *DB
}

func NewTransactionStore(db *DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) ReadTx(ctx context.Context, fn func(r transaction.Reader) error) error {
	return s.db.ReadTx(ctx, func(q Querier) error {
		return fn(NewTransactionRepository(q, s.db.dialect))
	})
}
