package account

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	authzMeter      = otel.Meter("finlink/authz")
	authzDenials, _ = authzMeter.Int64Counter("authz.denials",
		metric.WithDescription("Account access attempts denied by ownership check"),
	)
)

// Decision is the outcome of an ownership check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize compares the caller with the account's owner. A nil account is
// denied with reason "not found"; callers report it as ErrAccountNotFound.
func Authorize(callerUserID string, acc *Account) Decision {
	if acc == nil {
		return Decision{Reason: "not found"}
	}
	if acc.OwnerID() != callerUserID {
		return Decision{Reason: "not owner"}
	}
	return Decision{Allowed: true}
}

// Enforce runs Authorize and turns a denial into ErrForbidden. The true owner
// is written to the audit log only.
func Enforce(ctx context.Context, callerUserID string, acc *Account) error {
	d := Authorize(callerUserID, acc)
	if d.Allowed {
		return nil
	}
	if acc == nil {
		return ErrAccountNotFound
	}

	zerolog.Ctx(ctx).Warn().
		Str("event", "authorization_denied").
		Str("caller_id", callerUserID).
		Str("resource_id", acc.ID).
		Str("owner_id", acc.OwnerID()).
		Str("reason", d.Reason).
		Msg("account access denied")
	authzDenials.Add(ctx, 1, metric.WithAttributes(attribute.String("resource", "bank_account")))

	return ErrForbidden
}

// Resolve looks up an account for a caller: not found first, then ownership.
// Accounts under a soft-deleted connection are reported as not found.
func Resolve(ctx context.Context, r Reader, callerUserID, accountID string) (*Account, error) {
	acc, err := r.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc == nil || acc.Connection.IsDeleted() {
		return nil, ErrAccountNotFound
	}
	if err := Enforce(ctx, callerUserID, acc); err != nil {
		return nil, err
	}
	return acc, nil
}
