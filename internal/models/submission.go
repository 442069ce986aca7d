package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// SubmissionStatusPending indicates the claim awaits a faculty decision.
	SubmissionStatusPending = "pending"
	// SubmissionStatusVerified indicates the claim was accepted and points awarded.
	SubmissionStatusVerified = "verified"
	// SubmissionStatusRejected indicates the claim was declined.
	SubmissionStatusRejected = "rejected"
)

// Submission is a student's claim of a completed activity. It starts pending
// and transitions exactly once to verified or rejected. VerifiedPoints is
// non-nil iff the status is verified; the points cache is derived from these
// two columns and from nothing else.
type Submission struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	UserID         uint              `gorm:"not null;index" json:"user_id"`
	ActivityTypeID *uint             `json:"activity_type_id"`
	Title          string            `gorm:"size:255;not null" json:"title"`
	Description    string            `gorm:"type:text" json:"description"`
	ClaimedPoints  int               `gorm:"not null" json:"claimed_points"`
	FileRef        string            `gorm:"size:512" json:"file_ref"`
	Status         string            `gorm:"size:32;not null;index" json:"status"`
	VerifiedPoints *int              `json:"verified_points"`
	VerifiedBy     *uint             `json:"verified_by"`
	VerifiedAt     *time.Time        `json:"verified_at"`
	FacultyNotes   string            `gorm:"type:text" json:"faculty_notes"`
	Metadata       datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	User           User              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
	ActivityType   *ActivityType     `json:"activity_type"`
	Verifications  []Verification    `json:"verifications"`
}

// IsDecided reports whether the submission already received a faculty decision.
func (s Submission) IsDecided() bool {
	return s.Status != SubmissionStatusPending
}
