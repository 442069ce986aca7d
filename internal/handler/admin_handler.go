package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/presta-go-api/internal/middleware"
	"github.com/noah-isme/presta-go-api/internal/service"
	"github.com/noah-isme/presta-go-api/internal/utils"
)

// AdminHandler exposes operational endpoints restricted to faculty.
type AdminHandler struct {
	reconciler service.ReconcileService
	logger     zerolog.Logger
}

// NewAdminHandler builds an admin handler instance.
func NewAdminHandler(reconciler service.ReconcileService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		reconciler: reconciler,
		logger:     logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Post("/reconcile", middleware.WithAuth(h.reconcile, middleware.AuthOptions{Role: middleware.AuthRoleFaculty}))
}

func (h *AdminHandler) reconcile(c *fiber.Ctx) error {
	result, err := h.reconciler.Reconcile(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("reconciliation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "reconciliation failed")
	}

	return utils.SendSuccess(c, "points cache reconciled", result)
}
