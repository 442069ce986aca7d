package dto

import "time"

// LeaderboardEntry is one ranked row. UserID and SubmissionsURL are only
// populated for faculty callers; student callers see name and points.
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	Name           string `json:"name"`
	Points         int    `json:"points"`
	UserID         *uint  `json:"user_id,omitempty"`
	SubmissionsURL string `json:"submissions_url,omitempty"`
}

// LeaderboardResponse wraps the ranked entries.
type LeaderboardResponse struct {
	Entries     []LeaderboardEntry `json:"entries"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// ReconcileResult reports a completed points-cache rebuild.
type ReconcileResult struct {
	Corrected  int       `json:"corrected"`
	FinishedAt time.Time `json:"finished_at"`
}
