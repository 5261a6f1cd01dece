package middleware

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pulseboard/internal/apperr"
)

// CronAuth middleware validates the shared secret for cron endpoints.
// Expects: Authorization: Bearer <secret>
func CronAuth(secret string, logger *slog.Logger) fiber.Handler {
	reject := func(c *fiber.Ctx, authErr *apperr.AuthorizationError) error {
		logger.Warn("Rejecting cron request",
			slog.String("path", c.Path()),
			slog.Any("error", authErr))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": authErr.Reason,
			"code":  "AUTHORIZATION_ERROR",
		})
	}

	return func(c *fiber.Ctx) error {
		if secret == "" {
			return reject(c, apperr.NewAuthorizationError("cron secret not configured"))
		}

		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return reject(c, apperr.NewAuthorizationError("expected Authorization: Bearer <secret>"))
		}

		provided := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return reject(c, apperr.NewAuthorizationError("invalid cron secret"))
		}

		return c.Next()
	}
}
