package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/presta-go-api/internal/models"
)

// ActivityTypeRepository manages the activity catalog.
type ActivityTypeRepository interface {
	List(ctx context.Context) ([]models.ActivityType, error)
	GetByID(ctx context.Context, id uint) (models.ActivityType, error)
	Create(ctx context.Context, activityType *models.ActivityType) error
}

type activityTypeRepository struct {
	db *gorm.DB
}

// NewActivityTypeRepository constructs the catalog repository.
func NewActivityTypeRepository(db *gorm.DB) ActivityTypeRepository {
	return &activityTypeRepository{db: db}
}

func (r *activityTypeRepository) List(ctx context.Context) ([]models.ActivityType, error) {
	var types []models.ActivityType
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&types).Error; err != nil {
		return nil, err
	}

	return types, nil
}

func (r *activityTypeRepository) GetByID(ctx context.Context, id uint) (models.ActivityType, error) {
	var activityType models.ActivityType
	if err := r.db.WithContext(ctx).First(&activityType, id).Error; err != nil {
		return models.ActivityType{}, err
	}

	return activityType, nil
}

func (r *activityTypeRepository) Create(ctx context.Context, activityType *models.ActivityType) error {
	return r.db.WithContext(ctx).Create(activityType).Error
}
