package dto

import (
	"time"

	"github.com/noah-isme/presta-go-api/internal/models"
)

// ActivityTypeCreateRequest describes the payload for a new catalog entry.
type ActivityTypeCreateRequest struct {
	Key           string `json:"key" validate:"required,min=2,max=64,lowercase"`
	Title         string `json:"title" validate:"required,min=3,max=255"`
	DefaultPoints int    `json:"default_points" validate:"gte=0"`
	Description   string `json:"description" validate:"omitempty,max=4000"`
}

// ActivityTypeResponse is the public view of a catalog entry.
type ActivityTypeResponse struct {
	ID            uint      `json:"id"`
	Key           string    `json:"key"`
	Title         string    `json:"title"`
	DefaultPoints int       `json:"default_points"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewActivityTypeResponse converts an ActivityType model into a DTO.
func NewActivityTypeResponse(model models.ActivityType) ActivityTypeResponse {
	return ActivityTypeResponse{
		ID:            model.ID,
		Key:           model.Key,
		Title:         model.Title,
		DefaultPoints: model.DefaultPoints,
		Description:   model.Description,
		CreatedAt:     model.CreatedAt,
	}
}

// NewActivityTypeResponseSlice converts catalog models into DTOs.
func NewActivityTypeResponseSlice(types []models.ActivityType) []ActivityTypeResponse {
	responses := make([]ActivityTypeResponse, 0, len(types))
	for _, activityType := range types {
		responses = append(responses, NewActivityTypeResponse(activityType))
	}

	return responses
}
