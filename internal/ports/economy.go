package ports

import "context"

// WalletUpdate is a single gold change for one user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort manages the gold currency backing table stakes.
type EconomyPort interface {
	// GetBalance retrieves the current gold balance for a user.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies multiple wallet changes atomically. Used to
	// settle the table when a game completes.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
