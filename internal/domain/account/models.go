package account

import (
	"errors"
	"strings"
	"time"
)

// DefaultCurrency is used when a balance request does not name one.
const DefaultCurrency = "USD"

// ConnectionStatus is the lifecycle state of a bank connection.
type ConnectionStatus string

const (
	StatusActive   ConnectionStatus = "ACTIVE"
	StatusDisabled ConnectionStatus = "DISABLED"
	StatusError    ConnectionStatus = "ERROR"
)

// Domain errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrMissingCaller   = errors.New("caller identity is required")
)

// Connection links one user to one financial institution.
type Connection struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	InstitutionID   string           `json:"institutionId"`
	InstitutionName string           `json:"institutionName"`
	Status          ConnectionStatus `json:"status"`
	DeletedAt       *time.Time       `json:"deletedAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// IsDeleted reports whether the connection carries a soft-delete marker.
func (c Connection) IsDeleted() bool {
	return c.DeletedAt != nil
}

// Account is a single account under a bank connection. Balances are in
// minor currency units; a nil balance means the institution did not report one.
type Account struct {
	ID               string     `json:"id"`
	ConnectionID     string     `json:"connectionId"`
	ExternalID       string     `json:"externalId"`
	Name             string     `json:"name"`
	OfficialName     *string    `json:"officialName,omitempty"`
	Type             string     `json:"type"`
	Subtype          *string    `json:"subtype,omitempty"`
	Mask             *string    `json:"mask,omitempty"`
	CurrentBalance   *int64     `json:"currentBalance"`
	AvailableBalance *int64     `json:"availableBalance"`
	Currency         string     `json:"currency"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	Connection       Connection `json:"connection"`
}

// OwnerID returns the user that owns the account through its connection.
func (a *Account) OwnerID() string {
	return a.Connection.UserID
}

// Filter narrows a per-user account listing. Soft-deleted connections are
// always excluded.
type Filter struct {
	Currency      string
	RequireActive bool
}

// Policy decides which connection states each read path accepts.
type Policy struct {
	BalanceRequiresActive bool
	ListRequiresActive    bool
}

// DefaultPolicy filters balances to ACTIVE connections and leaves listings
// unfiltered by status.
func DefaultPolicy() Policy {
	return Policy{BalanceRequiresActive: true}
}

// BalanceSummary is one account's contribution to a consolidated balance.
type BalanceSummary struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Mask             *string `json:"mask,omitempty"`
	AvailableBalance int64   `json:"availableBalance"`
	CurrentBalance   int64   `json:"currentBalance"`
}

// ConsolidatedBalance sums balances across a user's eligible accounts in one currency.
type ConsolidatedBalance struct {
	TotalAvailable int64            `json:"totalAvailable"`
	TotalCurrent   int64            `json:"totalCurrent"`
	Currency       string           `json:"currency"`
	AccountCount   int              `json:"accountCount"`
	Accounts       []BalanceSummary `json:"accounts"`
}

// NormalizeCurrency upper-cases a currency code and applies the default.
func NormalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}
