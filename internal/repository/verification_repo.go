package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/presta-go-api/internal/models"
)

// ErrNotPending signals that the compare-and-set on the submission status
// found the row already decided. The caller lost the race (or retried a
// finished decision) and no write happened.
var ErrNotPending = errors.New("submission is not pending")

// DecideParams captures one faculty decision applied to a pending submission.
type DecideParams struct {
	SubmissionID  uint
	FacultyID     uint
	Decision      string
	AwardedPoints *int
	Notes         string
	DecidedAt     time.Time
}

// VerificationRepository owns the decision transaction and the audit trail.
type VerificationRepository interface {
	// Decide performs the whole decision as one transaction: a conditional
	// status update guarded on the row still being pending, an audit insert,
	// and an atomic points-cache increment when the claim is verified.
	// Either all three apply or none do.
	Decide(ctx context.Context, params DecideParams) (models.Submission, error)
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.Verification, error)
}

type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository constructs the verification repository.
func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Decide(ctx context.Context, params DecideParams) (models.Submission, error) {
	var decided models.Submission

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":        params.Decision,
			"verified_by":   params.FacultyID,
			"verified_at":   params.DecidedAt,
			"faculty_notes": params.Notes,
		}
		if params.Decision == models.DecisionVerified && params.AwardedPoints != nil {
			updates["verified_points"] = *params.AwardedPoints
		}

		// Compare-and-set: only the first decision can move the row out of
		// pending. A zero rows-affected result means a concurrent decider won
		// or the submission does not exist.
		result := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", params.SubmissionID, models.SubmissionStatusPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Submission{}).
				Where("id = ?", params.SubmissionID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrNotPending
		}

		if err := tx.First(&decided, params.SubmissionID).Error; err != nil {
			return err
		}

		audit := models.Verification{
			SubmissionID:  params.SubmissionID,
			FacultyID:     params.FacultyID,
			Decision:      params.Decision,
			AwardedPoints: params.AwardedPoints,
			Notes:         params.Notes,
			CreatedAt:     params.DecidedAt,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		if params.Decision == models.DecisionVerified && params.AwardedPoints != nil {
			cache := models.PointsCache{
				UserID:      decided.UserID,
				TotalPoints: *params.AwardedPoints,
			}
			// Increment in the database, not read-modify-write, so decisions
			// on different submissions of the same user never lose an update.
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"total_points": gorm.Expr("points_cache.total_points + ?", *params.AwardedPoints),
					"updated_at":   params.DecidedAt,
				}),
			}).Create(&cache).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return models.Submission{}, err
	}

	return decided, nil
}

func (r *verificationRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.Verification, error) {
	var verifications []models.Verification
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&verifications).Error; err != nil {
		return nil, err
	}

	return verifications, nil
}
