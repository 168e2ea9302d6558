package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"finlink/internal/domain/account"
)

// AccountService is the read surface of account.Service used by the handler.
type AccountService interface {
	ListAccounts(ctx context.Context, userID string) ([]*account.Account, error)
	GetAccount(ctx context.Context, userID, accountID string) (*account.Account, error)
	ConsolidatedBalance(ctx context.Context, userID, currency string) (*account.ConsolidatedBalance, error)
}

type AccountHandler struct {
	accounts AccountService
	validate *validator.Validate
}

func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Mount registers the account routes. The static consolidated-balance route
// takes precedence over {id} in chi's radix tree.
func (h *AccountHandler) Mount(r chi.Router) {
	r.Get("/bank-accounts", h.HandleListAccounts)
	r.Get("/bank-accounts/consolidated-balance", h.HandleConsolidatedBalance)
	r.Get("/bank-accounts/{id}", h.HandleGetAccount)
}

type AccountResponse struct {
	ID                        string  `json:"id"`
	ConnectionID              string  `json:"connectionId"`
	InstitutionName           string  `json:"institutionName"`
	ConnectionStatus          string  `json:"connectionStatus"`
	Name                      string  `json:"name"`
	OfficialName              *string `json:"officialName"`
	Type                      string  `json:"type"`
	Subtype                   *string `json:"subtype"`
	Mask                      *string `json:"mask"`
	CurrentBalance            *int64  `json:"currentBalance"`
	AvailableBalance          *int64  `json:"availableBalance"`
	FormattedCurrentBalance   *string `json:"formattedCurrentBalance"`
	FormattedAvailableBalance *string `json:"formattedAvailableBalance"`
	Currency                  string  `json:"currency"`
	CreatedAt                 string  `json:"createdAt"`
	UpdatedAt                 string  `json:"updatedAt"`
}

type BalanceSummaryResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Mask             *string `json:"mask"`
	AvailableBalance int64   `json:"availableBalance"`
	CurrentBalance   int64   `json:"currentBalance"`
}

type ConsolidatedBalanceResponse struct {
	TotalAvailable          int64                    `json:"totalAvailable"`
	TotalCurrent            int64                    `json:"totalCurrent"`
	FormattedTotalAvailable string                   `json:"formattedTotalAvailable"`
	FormattedTotalCurrent   string                   `json:"formattedTotalCurrent"`
	Currency                string                   `json:"currency"`
	AccountCount            int                      `json:"accountCount"`
	Accounts                []BalanceSummaryResponse `json:"accounts"`
}

// HandleListAccounts returns the caller's accounts
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	accounts, err := h.accounts.ListAccounts(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, lo.Map(accounts, func(acc *account.Account, _ int) AccountResponse {
		return ToAccountResponse(acc)
	}))
}

// HandleGetAccount returns one account after the ownership check
func (h *AccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	acc, err := h.accounts.GetAccount(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ToAccountResponse(acc))
}

// HandleConsolidatedBalance sums the caller's balances in one currency
func (h *AccountHandler) HandleConsolidatedBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	currency := account.NormalizeCurrency(r.URL.Query().Get("currency"))
	if err := h.validate.Var(currency, "iso4217"); err != nil {
		writeError(w, r, http.StatusBadRequest, "currency must be an ISO 4217 code")
		return
	}

	balance, err := h.accounts.ConsolidatedBalance(r.Context(), userID, currency)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ToConsolidatedBalanceResponse(balance))
}

// ToAccountResponse maps an account to its wire shape.
func ToAccountResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:                        acc.ID,
		ConnectionID:              acc.ConnectionID,
		InstitutionName:           acc.Connection.InstitutionName,
		ConnectionStatus:          string(acc.Connection.Status),
		Name:                      acc.Name,
		OfficialName:              acc.OfficialName,
		Type:                      acc.Type,
		Subtype:                   acc.Subtype,
		Mask:                      acc.Mask,
		CurrentBalance:            acc.CurrentBalance,
		AvailableBalance:          acc.AvailableBalance,
		FormattedCurrentBalance:   formatOptionalAmount(acc.CurrentBalance, acc.Currency),
		FormattedAvailableBalance: formatOptionalAmount(acc.AvailableBalance, acc.Currency),
		Currency:                  acc.Currency,
		CreatedAt:                 acc.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:                 acc.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func ToConsolidatedBalanceResponse(b *account.ConsolidatedBalance) ConsolidatedBalanceResponse {
	return ConsolidatedBalanceResponse{
		TotalAvailable:          b.TotalAvailable,
		TotalCurrent:            b.TotalCurrent,
		FormattedTotalAvailable: formatAmount(b.TotalAvailable, b.Currency),
		FormattedTotalCurrent:   formatAmount(b.TotalCurrent, b.Currency),
		Currency:                b.Currency,
		AccountCount:            b.AccountCount,
		Accounts: lo.Map(b.Accounts, func(s account.BalanceSummary, _ int) BalanceSummaryResponse {
			return BalanceSummaryResponse{
				ID:               s.ID,
				Name:             s.Name,
				Mask:             s.Mask,
				AvailableBalance: s.AvailableBalance,
				CurrentBalance:   s.CurrentBalance,
			}
		}),
	}
}
