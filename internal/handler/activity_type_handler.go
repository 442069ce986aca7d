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

// ActivityTypeHandler manages the activity catalog endpoints.
type ActivityTypeHandler struct {
	service service.ActivityTypeService
	logger  zerolog.Logger
}

// NewActivityTypeHandler builds a catalog handler instance.
func NewActivityTypeHandler(service service.ActivityTypeService, logger zerolog.Logger) *ActivityTypeHandler {
	return &ActivityTypeHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_type_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ActivityTypeHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", middleware.WithAuth(h.create, middleware.AuthOptions{Role: middleware.AuthRoleFaculty}))
}

func (h *ActivityTypeHandler) list(c *fiber.Ctx) error {
	types, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "activity types retrieved", types)
}

func (h *ActivityTypeHandler) create(c *fiber.Ctx) error {
	var payload dto.ActivityTypeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	activityType, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "activity type created", activityType)
}

func (h *ActivityTypeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrActivityTypeExists):
		return utils.SendError(c, fiber.StatusConflict, "activity type key already exists")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
