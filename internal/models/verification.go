package models

import "time"

const (
	// DecisionVerified records an accepted claim.
	DecisionVerified = "verified"
	// DecisionRejected records a declined claim.
	DecisionRejected = "rejected"
)

// Verification is the append-only audit record of one faculty decision on one
// submission. Rows are never updated or deleted; the table is the complete
// decision history regardless of the current submission state.
type Verification struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	SubmissionID  uint       `gorm:"not null;index" json:"submission_id"`
	FacultyID     uint       `gorm:"not null" json:"faculty_id"`
	Decision      string     `gorm:"size:16;not null" json:"decision"`
	AwardedPoints *int       `json:"awarded_points"`
	Notes         string     `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	Submission    Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
