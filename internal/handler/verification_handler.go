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

// VerificationHandler exposes the faculty decision and audit endpoints.
type VerificationHandler struct {
	service service.VerificationService
	logger  zerolog.Logger
}

// NewVerificationHandler builds a verification handler instance.
func NewVerificationHandler(service service.VerificationService, logger zerolog.Logger) *VerificationHandler {
	return &VerificationHandler{
		service: service,
		logger:  logger.With().Str("component", "verification_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *VerificationHandler) Register(router fiber.Router) {
	router.Post("/:id/decision", middleware.WithAuth(h.decide, middleware.AuthOptions{Role: middleware.AuthRoleFaculty}))
	router.Get("/:id/verifications", middleware.WithAuth(h.history, middleware.AuthOptions{Role: middleware.AuthRoleFaculty}))
}

func (h *VerificationHandler) decide(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Decide(c.Context(), id, payload, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission decided", submission)
}

func (h *VerificationHandler) history(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	verifications, err := h.service.History(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "verification history retrieved", verifications)
}

func (h *VerificationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusConflict, "submission already decided")
	case errors.Is(err, service.ErrInvalidDecision):
		return utils.SendError(c, fiber.StatusBadRequest, "decision and awarded points do not match")
	case errors.Is(err, service.ErrFacultyRequired):
		return utils.SendError(c, fiber.StatusForbidden, "only faculty can decide submissions")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
