package dto

import (
	"time"

	"github.com/noah-isme/presta-go-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for a new claim.
// ClaimedPoints may be omitted when an activity type is referenced; the
// catalog default is used instead.
type SubmissionCreateRequest struct {
	UserID         uint   `form:"-" validate:"required,gt=0"`
	Title          string `form:"title" validate:"required,min=3,max=255"`
	Description    string `form:"description" validate:"omitempty,max=4000"`
	ClaimedPoints  int    `form:"claimed_points" validate:"gte=0"`
	ActivityTypeID *uint  `form:"activity_type_id" validate:"omitempty,gt=0"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	UserID         *uint   `query:"user_id"`
	ActivityTypeID *uint   `query:"activity_type_id"`
	Status         *string `query:"status" validate:"omitempty,oneof=pending verified rejected"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID             uint                   `json:"id"`
	UserID         uint                   `json:"user_id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	ClaimedPoints  int                    `json:"claimed_points"`
	FileURL        string                 `json:"file_url"`
	Status         string                 `json:"status"`
	VerifiedPoints *int                   `json:"verified_points"`
	VerifiedBy     *uint                  `json:"verified_by"`
	VerifiedAt     *time.Time             `json:"verified_at"`
	FacultyNotes   string                 `json:"faculty_notes"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	User           UserLite               `json:"user"`
	ActivityType   *ActivityTypeLite      `json:"activity_type,omitempty"`
	Verifications  []VerificationResponse `json:"verifications,omitempty"`
}

// UserLite summarizes an account without exposing contact details.
type UserLite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ActivityTypeLite summarizes a catalog entry in submission responses.
type ActivityTypeLite struct {
	ID            uint   `json:"id"`
	Key           string `json:"key"`
	Title         string `json:"title"`
	DefaultPoints int    `json:"default_points"`
}

// DashboardResponse aggregates a student's own standing.
type DashboardResponse struct {
	Pending     int64                `json:"pending"`
	Verified    int64                `json:"verified"`
	Rejected    int64                `json:"rejected"`
	TotalPoints int                  `json:"total_points"`
	Recent      []SubmissionResponse `json:"recent"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:             model.ID,
		UserID:         model.UserID,
		Title:          model.Title,
		Description:    model.Description,
		ClaimedPoints:  model.ClaimedPoints,
		FileURL:        model.FileRef,
		Status:         model.Status,
		VerifiedPoints: model.VerifiedPoints,
		VerifiedBy:     model.VerifiedBy,
		VerifiedAt:     model.VerifiedAt,
		FacultyNotes:   model.FacultyNotes,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}

	if model.User.ID != 0 {
		response.User = UserLite{
			ID:   model.User.ID,
			Name: model.User.Name,
			Role: model.User.Role,
		}
	}

	if model.ActivityType != nil && model.ActivityType.ID != 0 {
		response.ActivityType = &ActivityTypeLite{
			ID:            model.ActivityType.ID,
			Key:           model.ActivityType.Key,
			Title:         model.ActivityType.Title,
			DefaultPoints: model.ActivityType.DefaultPoints,
		}
	}

	if len(model.Verifications) > 0 {
		verifications := make([]VerificationResponse, 0, len(model.Verifications))
		for _, entry := range model.Verifications {
			verifications = append(verifications, NewVerificationResponse(entry))
		}
		response.Verifications = verifications
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
