package account

import (
	"cmp"
	"context"
	"slices"

	"github.com/samber/lo"
)

// Service contains the business logic for account reads
type Service struct {
	store  Store
	policy Policy
}

// NewService creates a new account service
func NewService(store Store, policy Policy) *Service {
	return &Service{store: store, policy: policy}
}

// ListAccounts retrieves every account visible to the user
func (s *Service) ListAccounts(ctx context.Context, userID string) ([]*Account, error) {
	if userID == "" {
		return nil, ErrMissingCaller
	}

	var accounts []*Account
	err := s.store.ReadTx(ctx, func(r Reader) error {
		var err error
		accounts, err = r.ListForUser(ctx, userID, Filter{RequireActive: s.policy.ListRequiresActive})
		return err
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetAccount retrieves an account by ID and verifies user ownership
func (s *Service) GetAccount(ctx context.Context, userID, accountID string) (*Account, error) {
	if userID == "" {
		return nil, ErrMissingCaller
	}

	var acc *Account
	err := s.store.ReadTx(ctx, func(r Reader) error {
		var err error
		acc, err = Resolve(ctx, r, userID, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// ConsolidatedBalance sums the balances of the user's eligible accounts in
// one currency. An empty currency means DefaultCurrency.
func (s *Service) ConsolidatedBalance(ctx context.Context, userID, currency string) (*ConsolidatedBalance, error) {
	if userID == "" {
		return nil, ErrMissingCaller
	}
	currency = NormalizeCurrency(currency)

	var accounts []*Account
	err := s.store.ReadTx(ctx, func(r Reader) error {
		var err error
		accounts, err = r.ListForUser(ctx, userID, Filter{
			Currency:      currency,
			RequireActive: s.policy.BalanceRequiresActive,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return Consolidate(currency, accounts), nil
}

// Consolidate builds the balance summary for already-selected accounts.
// Missing balances count as zero; accounts are ordered by ID.
func Consolidate(currency string, accounts []*Account) *ConsolidatedBalance {
	summaries := lo.Map(accounts, func(a *Account, _ int) BalanceSummary {
		return BalanceSummary{
			ID:               a.ID,
			Name:             a.Name,
			Mask:             a.Mask,
			AvailableBalance: lo.FromPtr(a.AvailableBalance),
			CurrentBalance:   lo.FromPtr(a.CurrentBalance),
		}
	})
	slices.SortFunc(summaries, func(a, b BalanceSummary) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return &ConsolidatedBalance{
		TotalAvailable: lo.SumBy(summaries, func(b BalanceSummary) int64 { return b.AvailableBalance }),
		TotalCurrent:   lo.SumBy(summaries, func(b BalanceSummary) int64 { return b.CurrentBalance }),
		Currency:       currency,
		AccountCount:   len(summaries),
		Accounts:       summaries,
	}
}
