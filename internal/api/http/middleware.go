package http

import (
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RegisterMiddlewares attaches global middlewares such as panic recovery and
// request logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger) {
	app.Use(recoveryMiddleware(logger))
	app.Use(requestLogger(logger))
}

func recoveryMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = c.SendStatus(fiber.StatusInternalServerError)
			}
		}()
		return c.Next()
	}
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)))
		return err
	}
}
