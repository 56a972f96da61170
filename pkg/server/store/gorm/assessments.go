package gorm

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/ctrack/pkg/model"
	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
)

// Ensure AssessmentsStore implements store.AssessmentsStore
var _ store.AssessmentsStore = (*AssessmentsStore)(nil)

// updatedOnConflict are the columns a repeated submission overwrites.
// category and framework keep the values from the first submission.
var updatedOnConflict = []string{
	"score",
	"implementation_statement",
	"remediation_plan",
	"last_updated",
}

// AssessmentsStore implements store.AssessmentsStore using GORM
type AssessmentsStore struct {
	db              *gorm.DB
	framework       string
	defaultCategory string
	now             func() time.Time
}

// AssessmentsOption configures an AssessmentsStore
type AssessmentsOption func(*AssessmentsStore)

// WithFramework sets the framework tag for new assessments
func WithFramework(framework string) AssessmentsOption {
	return func(s *AssessmentsStore) {
		if framework != "" {
			s.framework = framework
		}
	}
}

// WithDefaultCategory sets the category used when a submission has none
func WithDefaultCategory(category string) AssessmentsOption {
	return func(s *AssessmentsStore) {
		if category != "" {
			s.defaultCategory = category
		}
	}
}

// WithClock replaces time.Now for last_updated
func WithClock(now func() time.Time) AssessmentsOption {
	return func(s *AssessmentsStore) {
		s.now = now
	}
}

// NewAssessmentsStore creates a new AssessmentsStore
func NewAssessmentsStore(db *gorm.DB, opts ...AssessmentsOption) *AssessmentsStore {
	s := &AssessmentsStore{
		db:              db,
		framework:       model.DefaultFramework,
		defaultCategory: model.DefaultCategory,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit upserts on (ref_id, audit_year) in one statement, so two first
// submissions racing for the same pair cannot both insert. Concurrent
// updates are last-writer-wins.
func (s *AssessmentsStore) Submit(input store.AssessmentInput) error {
	category := input.Category
	if category == "" {
		category = s.defaultCategory
	}

	assessment := model.Assessment{
		AuditYear:               input.AuditYear,
		Framework:               s.framework,
		RefID:                   input.RefID,
		Score:                   input.Score,
		ImplementationStatement: input.ImplementationStatement,
		RemediationPlan:         input.RemediationPlan,
		Category:                category,
		LastUpdated:             s.now().UTC(),
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ref_id"}, {Name: "audit_year"}},
		DoUpdates: clause.AssignmentColumns(updatedOnConflict),
	}).Create(&assessment).Error
}

// Find returns the assessment for exactly (refID, auditYear).
func (s *AssessmentsStore) Find(refID string, auditYear int) (*model.Assessment, error) {
	var assessment model.Assessment
	err := s.db.Where("ref_id = ? AND audit_year = ?", refID, auditYear).First(&assessment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrAssessmentNotFound
		}
		return nil, err
	}
	return &assessment, nil
}

// ListAll returns all assessments ordered by audit_year descending, then ref_id.
func (s *AssessmentsStore) ListAll() ([]model.Assessment, error) {
	assessments := []model.Assessment{}
	err := s.db.Order("audit_year desc").Order("ref_id").Find(&assessments).Error
	if err != nil {
		return nil, err
	}
	return assessments, nil
}
