package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"finlink/internal/domain/transaction"
)

// TransactionService is the read surface of transaction.Service used by the handler.
type TransactionService interface {
	ListTransactions(ctx context.Context, userID, accountID string, page, pageSize int) (*transaction.Page, error)
}

type TransactionHandler struct {
	transactions TransactionService
}

func NewTransactionHandler(transactions TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

func (h *TransactionHandler) Mount(r chi.Router) {
	r.Get("/bank-accounts/{id}/transactions", h.HandleListTransactions)
}

type TransactionResponse struct {
	ID              string   `json:"id"`
	AccountID       string   `json:"accountId"`
	Amount          int64    `json:"amount"`
	FormattedAmount string   `json:"formattedAmount"`
	Currency        string   `json:"currency"`
	Date            string   `json:"date"`
	Name            string   `json:"name"`
	MerchantName    *string  `json:"merchantName"`
	Pending         bool     `json:"pending"`
	Category        []string `json:"category"`
	PaymentChannel  *string  `json:"paymentChannel"`
}

type TransactionPageResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"pageSize"`
	HasMore      bool                  `json:"hasMore"`
}

// HandleListTransactions returns one page of an account's transactions.
// page and pageSize default to 1 and 20; out-of-range values are clamped by
// the pager rather than rejected.
func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	page := queryInt(query.Get("page"), transaction.FirstPage)
	pageSize := queryInt(query.Get("pageSize"), transaction.DefaultPageSize)

	result, err := h.transactions.ListTransactions(r.Context(), userID, chi.URLParam(r, "id"), page, pageSize)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ToTransactionPageResponse(result))
}

// queryInt parses an integer query parameter. Absent or non-numeric values
// yield def. Numbers outside the int range saturate so the pager clamps them.
func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return def
	}
	return n
}

// ToTransactionPageResponse maps a page to its wire shape. The transactions
// slice is never nil.
func ToTransactionPageResponse(p *transaction.Page) TransactionPageResponse {
	return TransactionPageResponse{
		Transactions: lo.Map(p.Transactions, func(txn *transaction.Transaction, _ int) TransactionResponse {
			return ToTransactionResponse(txn)
		}),
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
		HasMore:  p.HasMore,
	}
}

func ToTransactionResponse(txn *transaction.Transaction) TransactionResponse {
	category := txn.Category
	if category == nil {
		category = []string{}
	}

	return TransactionResponse{
		ID:              txn.ID,
		AccountID:       txn.AccountID,
		Amount:          txn.Amount,
		FormattedAmount: formatAmount(txn.Amount, txn.Currency),
		Currency:        txn.Currency,
		Date:            txn.Date.Format(time.DateOnly),
		Name:            txn.Name,
		MerchantName:    txn.MerchantName,
		Pending:         txn.Pending,
		Category:        category,
		PaymentChannel:  txn.PaymentChannel,
	}
}
