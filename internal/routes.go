// Package internal contains core application functionality
package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	v1 "pulseboard/api/v1"
	"pulseboard/internal/config"
	"pulseboard/internal/http"
	"pulseboard/internal/http/middleware"
)

// publicCORSConfig is the standard CORS configuration for public endpoints.
// The widget runs on the community site, so cross-origin access stays open.
var publicCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,DELETE,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent",
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()

	// Rate limiting would interfere with testing, so it only applies in
	// production.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Heartbeats fire on every page view plus a periodic timer, so the limit
	// stays generous.
	publicRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(120),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// No Sec-Fetch-Site check: writes arrive cross-origin from the website's
	// embedded widget, which the strict default would reject.
	publicAPIConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		EnableSecFetchSite: cartridge.Bool(false),
		WriteConcurrency:   false,
		CustomMiddleware:   []fiber.Handler{publicRateLimiter},
		CORSConfig:         publicCORSConfig,
	}

	logger := srv.GetLogger()

	cronConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{
			middleware.CronAuth(cfg.CronSecret, logger),
		},
	}

	// === HEALTH ===
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === PUBLIC API ROUTES ===
	srv.Post("/x/api/v1/presence", v1.HeartbeatHandler, publicAPIConfig)
	srv.Delete("/x/api/v1/presence", v1.RemovePresenceHandler, publicAPIConfig)
	srv.Get("/x/api/v1/presence", v1.GetPresenceHandler, publicAPIConfig)

	srv.Get("/x/api/v1/activity", v1.GetActivityHandler, publicAPIConfig)
	srv.Post("/x/api/v1/activity", v1.CreateActivityHandler, publicAPIConfig)

	srv.Post("/x/api/v1/jobs/click", v1.CreateJobClickHandler, publicAPIConfig)
	srv.Get("/x/api/v1/jobs/clicks", v1.GetJobClicksHandler, publicAPIConfig)

	srv.Post("/x/api/v1/links/click", v1.CreateLinkClickHandler, publicAPIConfig)
	srv.Get("/x/api/v1/links/clicks", v1.GetLinkClicksHandler, publicAPIConfig)

	srv.Post("/x/api/v1/blog/view", v1.CreateBlogViewHandler, publicAPIConfig)
	srv.Get("/x/api/v1/blog/views", v1.GetBlogViewsHandler, publicAPIConfig)

	srv.Get("/x/api/v1/identity", v1.GetIdentityHandler, publicAPIConfig)

	for _, path := range []string{
		"/x/api/v1/presence",
		"/x/api/v1/activity",
		"/x/api/v1/jobs/click",
		"/x/api/v1/links/click",
		"/x/api/v1/blog/view",
		"/x/api/v1/identity",
	} {
		srv.Options(path, func(ctx *cartridge.Context) error {
			return ctx.SendStatus(fiber.StatusNoContent)
		}, publicAPIConfig)
	}

	// === CRON ROUTES ===
	srv.Get("/cron/daily-analytics", http.DailyAnalyticsCronAction, cronConfig)
	srv.Get("/cron/diagnostics", http.DiagnosticsCronAction, cronConfig)
}
