package store

import "context"

// HealthStore provides health check operations
type HealthStore interface {
	// CheckConnectivity runs a trivial query against the database,
	// giving up when ctx is done.
	CheckConnectivity(ctx context.Context) error
}
