package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/presta-go-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	UserID         *uint
	ActivityTypeID *uint
	Status         *string
}

// StatusCounts aggregates a user's submissions per lifecycle state.
type StatusCounts struct {
	Pending  int64
	Verified int64
	Rejected int64
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	ListPending(ctx context.Context) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	CountByStatus(ctx context.Context, userID uint) (StatusCounts, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("User").
		Preload("ActivityType").
		Preload("Verifications")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.ActivityTypeID != nil {
		query = query.Where("activity_type_id = ?", *filter.ActivityTypeID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var submissions []models.Submission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// ListPending returns the review queue, oldest claims first.
func (r *submissionRepository) ListPending(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Where("status = ?", models.SubmissionStatusPending).
		Order("created_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) CountByStatus(ctx context.Context, userID uint) (StatusCounts, error) {
	type row struct {
		Status string
		Total  int64
	}

	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, err
	}

	counts := StatusCounts{}
	for _, entry := range rows {
		switch entry.Status {
		case models.SubmissionStatusPending:
			counts.Pending = entry.Total
		case models.SubmissionStatusVerified:
			counts.Verified = entry.Total
		case models.SubmissionStatusRejected:
			counts.Rejected = entry.Total
		}
	}

	return counts, nil
}
