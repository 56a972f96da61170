package model

// ControlReference is one control definition from the reference library,
// e.g. NIST SP 800-53 "AC-2 Account Management".
type ControlReference struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Identifier  string  `gorm:"not null;index:idx_control_references_identifier" json:"identifier"`
	Name        string  `gorm:"not null" json:"name"`
	ControlText string  `gorm:"not null" json:"control_text"`
	Discussion  *string `json:"discussion"`
	Related     *string `json:"related"`
}

func (c ControlReference) TableName() string {
	return "control_references"
}
