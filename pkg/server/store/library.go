package store

import (
	"errors"

	"github.com/doodlesbykumbi/ctrack/pkg/model"
)

// SearchLimit caps the number of controls returned by LibraryStore.Search
const SearchLimit = 50

// ErrControlNotFound is returned when no control has the requested identifier
var ErrControlNotFound = errors.New("control not found")

// LibraryStore abstracts the reference library of control definitions
type LibraryStore interface {
	// Search returns up to SearchLimit controls whose identifier or name
	// contains query, case-insensitively. An empty query matches every row.
	Search(query string) ([]model.ControlReference, error)

	// Get returns the control with exactly this identifier.
	// Returns ErrControlNotFound if there is none.
	Get(identifier string) (*model.ControlReference, error)

	// IsEmpty reports whether the library holds no controls.
	IsEmpty() (bool, error)

	// Insert adds controls in a single transaction.
	Insert(controls []model.ControlReference) error
}
