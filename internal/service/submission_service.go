package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/presta-go-api/internal/dto"
	"github.com/noah-isme/presta-go-api/internal/models"
	"github.com/noah-isme/presta-go-api/internal/repository"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrUserNotFound indicates the referenced account does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrStudentRequired indicates the acting account cannot create submissions.
var ErrStudentRequired = errors.New("only students can submit activity claims")

// ErrActivityTypeNotFound indicates an unknown catalog reference.
var ErrActivityTypeNotFound = errors.New("activity type not found")

// ErrForbidden indicates the caller may not read the requested submission.
var ErrForbidden = errors.New("submission belongs to another student")

// FileUploader stores proof files and returns an opaque locator.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionService orchestrates the claim lifecycle up to the decision.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	ListPending(ctx context.Context) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error)
	Dashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	types       repository.ActivityTypeRepository
	points      repository.PointsRepository
	validator   *validator.Validate
	uploader    FileUploader
	logger      zerolog.Logger
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, userRepo repository.UserRepository, typeRepo repository.ActivityTypeRepository, pointsRepo repository.PointsRepository, validate *validator.Validate, uploader FileUploader, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		users:       userRepo,
		types:       typeRepo,
		points:      pointsRepo,
		validator:   validate,
		uploader:    uploader,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Submit(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if file == nil {
		return dto.SubmissionResponse{}, fmt.Errorf("proof file is required")
	}

	user, err := s.users.GetByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrUserNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if !user.IsStudent() {
		return dto.SubmissionResponse{}, ErrStudentRequired
	}

	claimedPoints := payload.ClaimedPoints
	if payload.ActivityTypeID != nil {
		activityType, err := s.types.GetByID(ctx, *payload.ActivityTypeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SubmissionResponse{}, ErrActivityTypeNotFound
			}
			return dto.SubmissionResponse{}, err
		}
		if claimedPoints == 0 {
			claimedPoints = activityType.DefaultPoints
		}
	}

	if err := validateProofType(file); err != nil {
		return dto.SubmissionResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	fileRef, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to upload proof file: %w", err)
	}

	submission := models.Submission{
		UserID:         payload.UserID,
		ActivityTypeID: payload.ActivityTypeID,
		Title:          payload.Title,
		Description:    payload.Description,
		ClaimedPoints:  claimedPoints,
		FileRef:        fileRef,
		Status:         models.SubmissionStatusPending,
		Metadata:       datatypes.JSONMap{"original_filename": file.Filename},
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	// Reload with associations
	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", created.ID).
		Uint("user_id", created.UserID).
		Int("claimed_points", created.ClaimedPoints).
		Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		UserID:         filter.UserID,
		ActivityTypeID: filter.ActivityTypeID,
		Status:         filter.Status,
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListPending(ctx context.Context) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	// Students may only read their own claims.
	if actor.Role != models.RoleFaculty && submission.UserID != actor.ID {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Dashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	counts, err := s.submissions.CountByStatus(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	total, err := s.points.GetTotal(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	recent, err := s.submissions.List(ctx, repository.SubmissionFilter{UserID: &userID})
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return dto.DashboardResponse{
		Pending:     counts.Pending,
		Verified:    counts.Verified,
		Rejected:    counts.Rejected,
		TotalPoints: total,
		Recent:      dto.NewSubmissionResponseSlice(recent),
	}, nil
}

func validateProofType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{"application/pdf", "application/zip", "application/x-zip-compressed", "image/png", "image/jpeg"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("unsupported file type: %s", mime.String())
}
