package models

import "time"

const (
	// RoleStudent marks accounts that can submit activity claims.
	RoleStudent = "student"
	// RoleFaculty marks accounts that can verify or reject claims.
	RoleFaculty = "faculty"
)

// User represents an account in the verification system. The role is fixed
// at creation time; no update path exists for it.
type User struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"size:255;not null" json:"name"`
	Email        string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"size:255;not null" json:"-"`
	Role         string       `gorm:"size:16;not null" json:"role"`
	Department   string       `gorm:"size:255" json:"department"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Submissions  []Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsFaculty reports whether the user may decide submissions.
func (u User) IsFaculty() bool {
	return u.Role == RoleFaculty
}

// IsStudent reports whether the user may create submissions.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}
