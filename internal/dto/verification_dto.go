package dto

import (
	"time"

	"github.com/noah-isme/presta-go-api/internal/models"
)

// DecisionRequest is the payload for deciding a pending submission.
// AwardedPoints is required for a verified decision and must be absent for a
// rejection.
type DecisionRequest struct {
	Decision      string `json:"decision" validate:"required,oneof=verified rejected"`
	AwardedPoints *int   `json:"awarded_points" validate:"omitempty,gte=0"`
	Notes         string `json:"notes" validate:"omitempty,max=4000"`
}

// VerificationResponse serializes one audit trail entry.
type VerificationResponse struct {
	ID            uint      `json:"id"`
	SubmissionID  uint      `json:"submission_id"`
	FacultyID     uint      `json:"faculty_id"`
	Decision      string    `json:"decision"`
	AwardedPoints *int      `json:"awarded_points"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewVerificationResponse converts a Verification model into a DTO.
func NewVerificationResponse(model models.Verification) VerificationResponse {
	return VerificationResponse{
		ID:            model.ID,
		SubmissionID:  model.SubmissionID,
		FacultyID:     model.FacultyID,
		Decision:      model.Decision,
		AwardedPoints: model.AwardedPoints,
		Notes:         model.Notes,
		CreatedAt:     model.CreatedAt,
	}
}

// NewVerificationResponseSlice converts verification models into DTOs.
func NewVerificationResponseSlice(verifications []models.Verification) []VerificationResponse {
	responses := make([]VerificationResponse, 0, len(verifications))
	for _, verification := range verifications {
		responses = append(responses, NewVerificationResponse(verification))
	}

	return responses
}
