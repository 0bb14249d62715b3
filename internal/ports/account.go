package ports

import "context"

// AccountPort updates account profile fields.
type AccountPort interface {
	// UpdateProfile applies the given username and display name to the
	// account identified by userID.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
