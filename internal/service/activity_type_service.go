package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/presta-go-api/internal/dto"
	"github.com/noah-isme/presta-go-api/internal/models"
	"github.com/noah-isme/presta-go-api/internal/repository"
)

// ErrActivityTypeExists indicates a duplicate catalog key.
var ErrActivityTypeExists = errors.New("activity type key already exists")

// ActivityTypeService manages the activity catalog.
type ActivityTypeService interface {
	List(ctx context.Context) ([]dto.ActivityTypeResponse, error)
	Create(ctx context.Context, payload dto.ActivityTypeCreateRequest) (dto.ActivityTypeResponse, error)
}

type activityTypeService struct {
	types     repository.ActivityTypeRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewActivityTypeService constructs the catalog service.
func NewActivityTypeService(typeRepo repository.ActivityTypeRepository, validate *validator.Validate, logger zerolog.Logger) ActivityTypeService {
	return &activityTypeService{
		types:     typeRepo,
		validator: validate,
		logger:    logger.With().Str("component", "activity_type_service").Logger(),
	}
}

func (s *activityTypeService) List(ctx context.Context) ([]dto.ActivityTypeResponse, error) {
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewActivityTypeResponseSlice(types), nil
}

func (s *activityTypeService) Create(ctx context.Context, payload dto.ActivityTypeCreateRequest) (dto.ActivityTypeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ActivityTypeResponse{}, err
	}

	existing, err := s.types.List(ctx)
	if err != nil {
		return dto.ActivityTypeResponse{}, err
	}
	key := strings.ToLower(strings.TrimSpace(payload.Key))
	for _, activityType := range existing {
		if activityType.Key == key {
			return dto.ActivityTypeResponse{}, ErrActivityTypeExists
		}
	}

	activityType := models.ActivityType{
		Key:           key,
		Title:         strings.TrimSpace(payload.Title),
		DefaultPoints: payload.DefaultPoints,
		Description:   payload.Description,
	}

	if err := s.types.Create(ctx, &activityType); err != nil {
		return dto.ActivityTypeResponse{}, err
	}

	s.logger.Info().Str("key", activityType.Key).Msg("activity type created")

	return dto.NewActivityTypeResponse(activityType), nil
}
