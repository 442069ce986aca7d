package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/presta-go-api/internal/service"
	"github.com/noah-isme/presta-go-api/internal/utils"
)

// LeaderboardHandler serves the ranked totals.
type LeaderboardHandler struct {
	service service.LeaderboardService
	logger  zerolog.Logger
}

// NewLeaderboardHandler builds a leaderboard handler instance.
func NewLeaderboardHandler(service service.LeaderboardService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("", h.top)
}

func (h *LeaderboardHandler) top(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	leaderboard, err := h.service.TopN(c.Context(), limit, userRoleFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "leaderboard retrieved", leaderboard)
}
