package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"finlink/internal/domain/account"
	"finlink/internal/infrastructure/database"
	"finlink/internal/interfaces/batch"
	httphandlers "finlink/internal/interfaces/http"
)

const defaultWorkerCount = 4

type userBalance struct {
	UserID  string                                    `json:"userId"`
	Balance *httphandlers.ConsolidatedBalanceResponse `json:"balance,omitempty"`
	Error   string                                    `json:"error,omitempty"`
}

// balanceJob computes one user's consolidated balance and stores the outcome
// in the shared report.
type balanceJob struct {
	svc      *account.Service
	userID   string
	currency string
	report   *balanceReport
}

func (j balanceJob) Key() string { return "balance:" + j.userID }

func (j balanceJob) Execute(ctx context.Context) error {
	balance, err := j.svc.ConsolidatedBalance(ctx, j.userID, j.currency)
	if err != nil {
		j.report.add(userBalance{UserID: j.userID, Error: err.Error()})
		return err
	}
	resp := httphandlers.ToConsolidatedBalanceResponse(balance)
	j.report.add(userBalance{UserID: j.userID, Balance: &resp})
	return nil
}

// Cancel records a job the pool discarded before it ran.
func (j balanceJob) Cancel(err error) {
	j.report.add(userBalance{UserID: j.userID, Error: "not run: " + err.Error()})
}

// balanceReport keeps the first outcome recorded per user.
type balanceReport struct {
	mu   sync.Mutex
	rows map[string]userBalance
}

func newBalanceReport() *balanceReport {
	return &balanceReport{rows: make(map[string]userBalance)}
}

func (r *balanceReport) add(row userBalance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.UserID]; ok {
		return
	}
	r.rows[row.UserID] = row
}

// fillMissing adds an error row for every user with no outcome yet.
func (r *balanceReport) fillMissing(userIDs []string, reason string) {
	for _, userID := range userIDs {
		r.add(userBalance{UserID: userID, Error: reason})
	}
}

// sorted returns the rows ordered by user ID.
func (r *balanceReport) sorted() []userBalance {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := lo.Values(r.rows)
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (a *app) balancesCmd() *cobra.Command {
	var userIDs []string
	var currency string
	var workers int
	var timeout, deadline time.Duration

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Compute consolidated balances for several users concurrently",
		Example: `  admin balances --users u1,u2,u3 --currency EUR
  admin balances --users u1,u2 --workers 8 -o yaml
  admin balances --users u1,u2 --deadline 2m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			users := lo.Uniq(lo.Compact(userIDs))

			return a.withDB(cmd.Context(), func(db *database.DB) error {
				svc := a.accountService(db)
				report := newBalanceReport()

				pool := batch.NewPool(cmd.Context(), workers, len(users), timeout)
				pool.Start()
				for _, userID := range users {
					if err := pool.Submit(balanceJob{svc: svc, userID: userID, currency: currency, report: report}); err != nil {
						report.add(userBalance{UserID: userID, Error: err.Error()})
					}
				}
				if !pool.ShutdownWithTimeout(deadline) {
					report.fillMissing(users, "did not finish before deadline")
				}

				return render(cmd.OutOrStdout(), a.output, report.sorted())
			})
		},
	}
	cmd.Flags().StringSliceVar(&userIDs, "users", nil, "Comma-separated user IDs")
	cmd.Flags().StringVar(&currency, "currency", account.DefaultCurrency, "ISO 4217 currency code")
	cmd.Flags().IntVar(&workers, "workers", defaultWorkerCount, "Number of concurrent workers")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Per-user timeout")
	cmd.Flags().DurationVar(&deadline, "deadline", 5*time.Minute, "Limit on the whole run")
	cmd.MarkFlagRequired("users")
	return cmd
}
