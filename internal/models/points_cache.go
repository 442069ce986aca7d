package models

import "time"

// PointsCache is the materialized per-user total of verified points used by
// leaderboard reads. It is derived state: the authoritative value is the sum
// of VerifiedPoints over that user's verified submissions, and the
// reconciliation job may rewrite any row at any time.
type PointsCache struct {
	UserID      uint      `gorm:"primaryKey" json:"user_id"`
	TotalPoints int       `gorm:"not null;default:0" json:"total_points"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps the singular name used by the leaderboard queries.
func (PointsCache) TableName() string {
	return "points_cache"
}
