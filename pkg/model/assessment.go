package model

import (
	"time"
)

const (
	// DefaultFramework is the framework tag stamped on new assessments.
	DefaultFramework = "NIST"
	// DefaultCategory is used when a submission does not name a category.
	DefaultCategory = "General"
)

// Assessment is the self-evaluation of one control for one audit year.
// (RefID, AuditYear) is unique; see idx_assessments_ref_year.
type Assessment struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	AuditYear               int       `gorm:"not null;uniqueIndex:idx_assessments_ref_year,priority:2" json:"audit_year"`
	Framework               string    `gorm:"not null" json:"framework"`
	RefID                   string    `gorm:"column:ref_id;not null;uniqueIndex:idx_assessments_ref_year,priority:1" json:"ref_id"`
	Score                   int       `gorm:"not null" json:"score"`
	ImplementationStatement string    `gorm:"not null" json:"implementation_statement"`
	RemediationPlan         *string   `json:"remediation_plan"`
	Category                string    `gorm:"not null" json:"category"`
	LastUpdated             time.Time `gorm:"not null" json:"last_updated"`
}

func (a Assessment) TableName() string {
	return "assessments"
}
