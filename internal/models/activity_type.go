package models

import "time"

// ActivityType is a catalog entry describing a recognised kind of activity
// and the points it is usually worth. Submissions may reference one but are
// not required to.
type ActivityType struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Key           string    `gorm:"size:64;uniqueIndex;not null" json:"key"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	DefaultPoints int       `gorm:"not null;default:0" json:"default_points"`
	Description   string    `gorm:"type:text" json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
