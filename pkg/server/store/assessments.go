package store

import (
	"errors"

	"github.com/doodlesbykumbi/ctrack/pkg/model"
)

// ErrAssessmentNotFound is returned when no assessment exists for a (ref_id, audit_year) pair
var ErrAssessmentNotFound = errors.New("assessment not found")

// AssessmentInput is a submitted self-evaluation
type AssessmentInput struct {
	AuditYear               int
	RefID                   string
	Score                   int
	ImplementationStatement string
	RemediationPlan         *string
	// Category is only applied when the assessment is created
	Category string
}

// AssessmentsStore abstracts assessment storage operations
type AssessmentsStore interface {
	// Submit creates the assessment for (RefID, AuditYear) or, if one
	// exists, overwrites its score, statement, remediation plan and
	// timestamp.
	Submit(input AssessmentInput) error

	// Find returns the assessment for an exact (refID, auditYear) pair.
	// Returns ErrAssessmentNotFound if there is none.
	Find(refID string, auditYear int) (*model.Assessment, error)

	// ListAll returns every assessment, most recent audit year first.
	ListAll() ([]model.Assessment, error)
}
