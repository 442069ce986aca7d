package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/presta-go-api/internal/dto"
	"github.com/noah-isme/presta-go-api/internal/middleware"
	"github.com/noah-isme/presta-go-api/internal/service"
	"github.com/noah-isme/presta-go-api/internal/utils"
)

// SubmissionHandler manages submission endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("", middleware.WithAuth(h.create, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
	router.Get("", middleware.WithAuth(h.list, middleware.AuthOptions{Role: middleware.AuthRoleFaculty}))
	router.Get("/mine", middleware.WithAuth(h.listOwn, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
	router.Get("/pending", middleware.WithAuth(h.pending, middleware.AuthOptions{Role: middleware.AuthRoleFaculty}))
	router.Get("/:id", middleware.WithAuth(h.get, middleware.AuthOptions{RequireUser: true}))
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	payload := dto.SubmissionCreateRequest{
		UserID:      userIDFromContext(c),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}

	if points, err := parseFormInt(c, "claimed_points"); err == nil {
		payload.ClaimedPoints = points
	} else {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if typeID, err := parseFormUint(c, "activity_type_id"); err == nil {
		payload.ActivityTypeID = typeID
	} else {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "proof file is required")
	}

	submission, err := h.service.Submit(c.Context(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "submission created", submission)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	filter := dto.SubmissionFilter{}
	if userID, err := parseQueryUint(c, "user_id"); err == nil && userID != nil {
		filter.UserID = userID
	}
	if typeID, err := parseQueryUint(c, "activity_type_id"); err == nil && typeID != nil {
		filter.ActivityTypeID = typeID
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}

	submissions, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) listOwn(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	filter := dto.SubmissionFilter{UserID: &userID}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}

	submissions, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) pending(c *fiber.Ctx) error {
	submissions, err := h.service.ListPending(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "pending submissions retrieved", submissions)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Get(c.Context(), id, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

// Dashboard serves the authenticated student's own standing.
func (h *SubmissionHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrActivityTypeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "activity type not found")
	case errors.Is(err, service.ErrStudentRequired):
		return utils.SendError(c, fiber.StatusForbidden, "only students can submit activity claims")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
