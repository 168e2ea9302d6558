package transaction

import (
	"time"
)

// Transaction is one posted or pending movement on a bank account.
// Amount is signed and expressed in minor currency units.
type Transaction struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"accountId"`
	ExternalID     string    `json:"externalId"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Date           time.Time `json:"date"`
	Name           string    `json:"name"`
	MerchantName   *string   `json:"merchantName,omitempty"`
	Pending        bool      `json:"pending"`
	Category       []string  `json:"category"`
	PaymentChannel *string   `json:"paymentChannel,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Page is one window of an account's transactions. Page and PageSize are
// the sanitized values actually used for the query.
type Page struct {
	Transactions []*Transaction `json:"transactions"`
	Total        int64          `json:"total"`
	Page         int            `json:"page"`
	PageSize     int            `json:"pageSize"`
	HasMore      bool           `json:"hasMore"`
}
