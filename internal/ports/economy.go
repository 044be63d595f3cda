package ports

import "context"

// WalletUpdate represents a single currency change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort defines the interface for managing game currency.
type EconomyPort interface {
	// GetBalance retrieves the current gold balance for a user.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies the settlement of a finished round. Landlord
	// settlements are zero-sum, so either every change lands or the caller
	// logs the failure for reconciliation.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
