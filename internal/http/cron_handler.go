package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"pulseboard/internal/activity"
	"pulseboard/internal/clicks"
	"pulseboard/internal/config"
	"pulseboard/internal/presence"
	"pulseboard/internal/rollup"
	"pulseboard/internal/views"
)

// DailyAnalyticsCronAction runs the rollup for yesterday in the reference
// timezone. Idempotent: re-invocation after a pre-existing row returns the
// stored row unchanged.
func DailyAnalyticsCronAction(ctx *cartridge.Context) error {
	cfg := ctx.Config.(*config.Config)
	db := ctx.DBManager.GetConnection()
	loc := cfg.GetReferenceLocation()

	row, computed, err := rollup.ComputeDay(db, ctx.Logger, time.Now().UTC(), 1, loc)
	if err != nil {
		ctx.Logger.Error("Cron rollup failed", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute daily rollup",
			"code":  "ROLLUP_ERROR",
		})
	}

	return ctx.Status(http.StatusOK).JSON(fiber.Map{
		"date":       row.Date,
		"visitors":   row.Visitors,
		"blogViews":  row.BlogViews,
		"linkClicks": row.LinkClicks,
		"jobClicks":  row.JobClicks,
		"computed":   computed,
	})
}

// DiagnosticsCronAction probes the store and reports raw error detail.
// Unlike the public endpoints this one intentionally echoes errors, so it
// stays behind the cron secret.
func DiagnosticsCronAction(ctx *cartridge.Context) error {
	db := ctx.DBManager.GetConnection()

	checks := fiber.Map{}
	healthy := true

	if sqlDB, err := db.DB(); err != nil {
		checks["ping"] = err.Error()
		healthy = false
	} else if err := sqlDB.Ping(); err != nil {
		checks["ping"] = err.Error()
		healthy = false
	} else {
		checks["ping"] = "ok"
	}

	for _, tableCheck := range []struct {
		name  string
		model interface{}
	}{
		{"presence_records", &presence.Record{}},
		{"activity_events", &activity.Event{}},
		{"job_clicks", &clicks.JobClick{}},
		{"link_clicks", &clicks.LinkClick{}},
		{"blog_views", &views.BlogView{}},
		{"daily_analytics", &rollup.DailyAnalytics{}},
	} {
		var count int64
		if err := db.Model(tableCheck.model).Count(&count).Error; err != nil {
			checks[tableCheck.name] = err.Error()
			healthy = false
		} else {
			checks[tableCheck.name] = count
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusInternalServerError
	}

	return ctx.Status(status).JSON(fiber.Map{
		"healthy":   healthy,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
