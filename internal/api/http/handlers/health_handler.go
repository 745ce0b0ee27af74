package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lizardlabs/ticketbot/internal/discord"
	"github.com/lizardlabs/ticketbot/internal/persistence"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	dc     *discord.Client
	cache  *persistence.GuildCache
	logger *zap.Logger
}

// NewHealthHandler constructs the handler. cache may be nil when redis is not
// configured.
func NewHealthHandler(dc *discord.Client, cache *persistence.GuildCache, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{dc: dc, cache: cache, logger: logger}
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready reports whether the bot can serve interactions: the Discord API must
// be reachable and, when configured, redis must answer a ping.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := h.dc.GetGateway(ctx); err != nil {
		h.logger.Warn("readiness check failed: discord unreachable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"reason": "discord api unreachable",
		})
	}
	if err := h.cache.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed: redis unreachable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"reason": "redis unreachable",
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
