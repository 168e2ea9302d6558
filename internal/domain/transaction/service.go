package transaction

import (
	"context"

	"finlink/internal/domain/account"
)

// Service pages through the transactions of accounts the caller owns
type Service struct {
	store Store
}

// NewService creates a new transaction service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListTransactions returns one page of an account's transactions. The
// account is resolved and ownership checked before any transaction query
// runs; all reads share one read transaction so total and rows agree.
func (s *Service) ListTransactions(ctx context.Context, userID, accountID string, page, pageSize int) (*Page, error) {
	if userID == "" {
		return nil, account.ErrMissingCaller
	}

	var result *Page
	err := s.store.ReadTx(ctx, func(r Reader) error {
		if _, err := account.Resolve(ctx, r, userID, accountID); err != nil {
			return err
		}

		w := Sanitize(page, pageSize)

		txns, err := r.ListByAccountID(ctx, accountID, w.PageSize, w.Offset())
		if err != nil {
			return err
		}
		total, err := r.CountByAccountID(ctx, accountID)
		if err != nil {
			return err
		}

		if txns == nil {
			txns = []*Transaction{}
		}
		result = &Page{
			Transactions: txns,
			Total:        total,
			Page:         w.Page,
			PageSize:     w.PageSize,
			HasMore:      w.HasMore(total),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
