// Package store provides storage abstractions for the ctrack server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints to be decoupled from the specific database implementation.
// This enables easier testing with mocks.
//
// # Available Stores
//
//   - LibraryStore: reference library search, lookup and seeding
//   - AssessmentsStore: assessment upsert, lookup and history
//   - HealthStore: database connectivity checks
//
// # Usage
//
//	library := gormstore.NewLibraryStore(db)
//	control, err := library.Get("AC-2")
//	if err != nil {
//	    if errors.Is(err, store.ErrControlNotFound) {
//	        // Handle not found
//	    }
//	}
package store
