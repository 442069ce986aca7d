package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/presta-go-api/internal/models"
)

// LeaderboardEntry is one row of the ranked totals query.
type LeaderboardEntry struct {
	UserID      uint   `json:"user_id"`
	Name        string `json:"name"`
	TotalPoints int    `json:"total_points"`
}

// PointsRepository reads the materialized totals and owns the rebuild path.
type PointsRepository interface {
	GetTotal(ctx context.Context, userID uint) (int, error)
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	TopFromSubmissions(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	RebuildAll(ctx context.Context) (int, error)
}

type pointsRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPointsRepository constructs the points repository.
func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db, now: time.Now}
}

func (r *pointsRepository) GetTotal(ctx context.Context, userID uint) (int, error) {
	var cache models.PointsCache
	err := r.db.WithContext(ctx).First(&cache, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return cache.TotalPoints, nil
}

// Top reads the leaderboard from the cache table. Ties are broken by
// ascending user id so the ordering is deterministic and matches
// TopFromSubmissions for identical underlying data.
func (r *pointsRepository) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := r.db.WithContext(ctx).
		Table("points_cache").
		Select("points_cache.user_id, users.name, points_cache.total_points").
		Joins("JOIN users ON users.id = points_cache.user_id").
		Order("points_cache.total_points DESC, points_cache.user_id ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// TopFromSubmissions computes the same ranking directly from the source of
// truth, bypassing the cache. Used by tests and by reconciliation reporting.
func (r *pointsRepository) TopFromSubmissions(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := r.db.WithContext(ctx).
		Table("submissions").
		Select("submissions.user_id, users.name, SUM(submissions.verified_points) AS total_points").
		Joins("JOIN users ON users.id = submissions.user_id").
		Where("submissions.status = ?", models.SubmissionStatusVerified).
		Group("submissions.user_id, users.name").
		Order("total_points DESC, submissions.user_id ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// RebuildAll recomputes every cached total from verified submissions and
// returns how many rows had to change. Running it twice in a row leaves the
// table untouched the second time.
func (r *pointsRepository) RebuildAll(ctx context.Context) (int, error) {
	changed := 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		type aggregate struct {
			UserID uint
			Total  int
		}

		var totals []aggregate
		if err := tx.Model(&models.Submission{}).
			Select("user_id, SUM(verified_points) AS total").
			Where("status = ?", models.SubmissionStatusVerified).
			Group("user_id").
			Scan(&totals).Error; err != nil {
			return err
		}

		var cached []models.PointsCache
		if err := tx.Find(&cached).Error; err != nil {
			return err
		}

		current := make(map[uint]int, len(cached))
		for _, row := range cached {
			current[row.UserID] = row.TotalPoints
		}

		want := make(map[uint]struct{}, len(totals))
		for _, total := range totals {
			want[total.UserID] = struct{}{}

			existing, ok := current[total.UserID]
			if ok && existing == total.Total {
				continue
			}

			changed++
			row := models.PointsCache{
				UserID:      total.UserID,
				TotalPoints: total.Total,
				UpdatedAt:   r.now(),
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"total_points", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}

		// Cache rows whose user no longer has any verified submission are
		// stale and must go, otherwise the cached and on-the-fly leaderboards
		// diverge.
		for userID := range current {
			if _, ok := want[userID]; ok {
				continue
			}
			changed++
			if err := tx.Delete(&models.PointsCache{}, "user_id = ?", userID).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return changed, nil
}
