package account

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownedBy(userID, accountID string) *Account {
	return &Account{
		ID:           accountID,
		ConnectionID: "conn-" + userID,
		Currency:     "USD",
		Connection:   Connection{ID: "conn-" + userID, UserID: userID, Status: StatusActive},
	}
}

func TestAuthorize(t *testing.T) {
	users := []string{"user-a", "user-b", "user-c"}

	for _, owner := range users {
		acc := ownedBy(owner, "acc-"+owner)
		for _, caller := range users {
			d := Authorize(caller, acc)
			if caller == owner {
				assert.True(t, d.Allowed, "owner %s must be allowed", owner)
				assert.Empty(t, d.Reason)
			} else {
				assert.False(t, d.Allowed, "caller %s must be denied for %s's account", caller, owner)
				assert.NotEmpty(t, d.Reason)
			}
		}
	}
}

func TestAuthorize_NilAccount(t *testing.T) {
	d := Authorize("user-a", nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, "not found", d.Reason)

	err := Enforce(context.Background(), "user-a", nil)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestEnforce_LogsDenialForAudit(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())

	err := Enforce(ctx, "intruder", ownedBy("owner-1", "acc-9"))

	require.ErrorIs(t, err, ErrForbidden)
	assert.NotContains(t, err.Error(), "owner-1")
	assert.Contains(t, buf.String(), `"caller_id":"intruder"`)
	assert.Contains(t, buf.String(), `"resource_id":"acc-9"`)
	assert.Contains(t, buf.String(), `"owner_id":"owner-1"`)
}

func TestEnforce_AllowsOwnerSilently(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	require.NoError(t, Enforce(ctx, "owner-1", ownedBy("owner-1", "acc-1")))
	assert.Empty(t, buf.String())
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	deletedAt := time.Now()
	dbErr := errors.New("connection reset")

	tests := []struct {
		name    string
		caller  string
		find    func(ctx context.Context, id string) (*Account, error)
		wantErr error
	}{
		{
			name:   "owner",
			caller: "u1",
			find: func(ctx context.Context, id string) (*Account, error) {
				return ownedBy("u1", id), nil
			},
		},
		{
			name:   "missing account is not found even for strangers",
			caller: "u2",
			find: func(ctx context.Context, id string) (*Account, error) {
				return nil, ErrAccountNotFound
			},
			wantErr: ErrAccountNotFound,
		},
		{
			name:   "other owner",
			caller: "u2",
			find: func(ctx context.Context, id string) (*Account, error) {
				return ownedBy("u1", id), nil
			},
			wantErr: ErrForbidden,
		},
		{
			name:   "soft-deleted connection",
			caller: "u2",
			find: func(ctx context.Context, id string) (*Account, error) {
				acc := ownedBy("u1", id)
				acc.Connection.DeletedAt = &deletedAt
				return acc, nil
			},
			wantErr: ErrAccountNotFound,
		},
		{
			name:   "store failure propagates",
			caller: "u1",
			find: func(ctx context.Context, id string) (*Account, error) {
				return nil, dbErr
			},
			wantErr: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := Resolve(ctx, &MockReader{FindByIDFunc: tt.find}, tt.caller, "acc-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, acc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "acc-1", acc.ID)
		})
	}
}
