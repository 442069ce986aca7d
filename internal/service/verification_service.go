package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/presta-go-api/internal/dto"
	"github.com/noah-isme/presta-go-api/internal/models"
	"github.com/noah-isme/presta-go-api/internal/observability"
	"github.com/noah-isme/presta-go-api/internal/repository"
)

// ErrFacultyRequired indicates the decider does not hold the faculty role.
var ErrFacultyRequired = errors.New("only faculty can decide submissions")

// ErrInvalidTransition indicates a decision on a submission that already left
// the pending state.
var ErrInvalidTransition = errors.New("submission already decided")

// ErrInvalidDecision indicates the decision and awarded points combination
// violates the verified/points invariant.
var ErrInvalidDecision = errors.New("decision and awarded points do not match")

// Actor represents the authenticated account performing an operation.
type Actor struct {
	ID   uint
	Role string
}

// EventPublisher broadcasts decision events to downstream consumers.
type EventPublisher interface {
	Publish(subject string, payload interface{}) error
}

// VerificationService enforces the pending -> {verified, rejected} transition
// and keeps the audit trail and points cache consistent with it.
type VerificationService interface {
	Decide(ctx context.Context, submissionID uint, payload dto.DecisionRequest, actor Actor) (dto.SubmissionResponse, error)
	History(ctx context.Context, submissionID uint) ([]dto.VerificationResponse, error)
}

type verificationService struct {
	verifications repository.VerificationRepository
	users         repository.UserRepository
	validator     *validator.Validate
	publisher     EventPublisher
	logger        zerolog.Logger
	now           func() time.Time
}

// NewVerificationService constructs the verification service.
func NewVerificationService(verificationRepo repository.VerificationRepository, userRepo repository.UserRepository, validate *validator.Validate, publisher EventPublisher, logger zerolog.Logger) VerificationService {
	return &verificationService{
		verifications: verificationRepo,
		users:         userRepo,
		validator:     validate,
		publisher:     publisher,
		logger:        logger.With().Str("component", "verification_service").Logger(),
		now:           time.Now,
	}
}

func (s *verificationService) Decide(ctx context.Context, submissionID uint, payload dto.DecisionRequest, actor Actor) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/presta-go-api/internal/service/verification")
	ctx, span := tracer.Start(ctx, "verification.decide", trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.Int64("verification.submission_id", int64(submissionID)),
		attribute.Int64("verification.faculty_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	// verified requires points, rejected forbids them. The database invariant
	// (verified_points non-null iff verified) follows from rejecting every
	// other combination here.
	switch payload.Decision {
	case models.DecisionVerified:
		if payload.AwardedPoints == nil || *payload.AwardedPoints < 0 {
			span.SetStatus(codes.Error, "points_required")
			return dto.SubmissionResponse{}, ErrInvalidDecision
		}
	case models.DecisionRejected:
		if payload.AwardedPoints != nil {
			span.SetStatus(codes.Error, "points_forbidden")
			return dto.SubmissionResponse{}, ErrInvalidDecision
		}
	}

	faculty, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "faculty_not_found")
			return dto.SubmissionResponse{}, ErrFacultyRequired
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	if !faculty.IsFaculty() {
		span.SetStatus(codes.Error, "not_faculty")
		return dto.SubmissionResponse{}, ErrFacultyRequired
	}

	decided, err := s.verifications.Decide(ctx, repository.DecideParams{
		SubmissionID:  submissionID,
		FacultyID:     actor.ID,
		Decision:      payload.Decision,
		AwardedPoints: payload.AwardedPoints,
		Notes:         payload.Notes,
		DecidedAt:     s.now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		case errors.Is(err, repository.ErrNotPending):
			span.SetStatus(codes.Error, "invalid_transition")
			return dto.SubmissionResponse{}, ErrInvalidTransition
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "decision_failed")
			return dto.SubmissionResponse{}, err
		}
	}

	observability.Decisions().WithLabelValues(payload.Decision).Inc()

	event := zerolog.Dict().
		Uint("submission_id", decided.ID).
		Uint("user_id", decided.UserID).
		Str("decision", payload.Decision)
	s.logger.Info().Dict("decision", event).Msg("submission decided")

	if s.publisher != nil {
		payload := map[string]interface{}{
			"submission_id": decided.ID,
			"user_id":       decided.UserID,
			"faculty_id":    actor.ID,
			"decision":      decided.Status,
			"points":        decided.VerifiedPoints,
		}
		if err := s.publisher.Publish("presta.submission.decided", payload); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", decided.ID).Msg("failed to publish decision event")
		}
	}

	span.SetAttributes(attribute.String("verification.decision", decided.Status))

	return dto.NewSubmissionResponse(decided), nil
}

func (s *verificationService) History(ctx context.Context, submissionID uint) ([]dto.VerificationResponse, error) {
	verifications, err := s.verifications.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	return dto.NewVerificationResponseSlice(verifications), nil
}
