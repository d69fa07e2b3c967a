package keydate

import "context"

// Repository abstracts persistence for key-date definitions.  Implementations
// live under internal/infrastructure/database.
type Repository interface {
	// FindActive returns every active definition in the catalog.
	FindActive(ctx context.Context) ([]*Definition, error)

	// FindActiveByName looks up one active definition by its unique name.
	// Returns ErrCodeKeyDateNotFound when no such definition exists.
	FindActiveByName(ctx context.Context, name string) (*Definition, error)
}
