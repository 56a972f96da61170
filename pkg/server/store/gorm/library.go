package gorm

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ctrack/pkg/model"
	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
)

// insertBatchSize keeps a batch well under SQLite's bound-parameter limit
const insertBatchSize = 200

// Ensure LibraryStore implements store.LibraryStore
var _ store.LibraryStore = (*LibraryStore)(nil)

// LibraryStore implements store.LibraryStore using GORM
type LibraryStore struct {
	db *gorm.DB
}

// NewLibraryStore creates a new LibraryStore
func NewLibraryStore(db *gorm.DB) *LibraryStore {
	return &LibraryStore{db: db}
}

// Search returns up to store.SearchLimit controls whose identifier or name
// contains query, ignoring case. LIKE wildcards in query match literally.
func (s *LibraryStore) Search(query string) ([]model.ControlReference, error) {
	// Both sides go through the database's LOWER so they fold the same way
	pattern := "%" + escapeLike(query) + "%"

	controls := []model.ControlReference{}
	err := s.db.
		Where(`LOWER(identifier) LIKE LOWER(?) ESCAPE '\' OR LOWER(name) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern).
		Order("id").
		Limit(store.SearchLimit).
		Find(&controls).Error
	if err != nil {
		return nil, err
	}
	return controls, nil
}

// Get returns the control whose identifier equals identifier exactly.
func (s *LibraryStore) Get(identifier string) (*model.ControlReference, error) {
	var control model.ControlReference
	err := s.db.Where("identifier = ?", identifier).Order("id").First(&control).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrControlNotFound
		}
		return nil, err
	}
	return &control, nil
}

// IsEmpty reports whether the library has no rows.
func (s *LibraryStore) IsEmpty() (bool, error) {
	var control model.ControlReference
	err := s.db.Select("id").Take(&control).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// Insert adds all controls and commits once.
func (s *LibraryStore) Insert(controls []model.ControlReference) error {
	if len(controls) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(controls, insertBatchSize).Error
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
