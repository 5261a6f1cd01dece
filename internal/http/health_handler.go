package http

import (
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"pulseboard/internal/config"
	"pulseboard/internal/rollup"
	"pulseboard/internal/timeframe"
)

// HealthStatus is the public health check response. It stays coarse on
// purpose; per-table detail lives behind the cron-secret diagnostics
// endpoint.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	DBStatus  string    `json:"db_status"`
	Rollup    string    `json:"rollup"`
}

// HealthIndexAction reports liveness: database reachability plus whether
// yesterday's rollup row has been written yet. A missing row only marks the
// rollup as pending; the status degrades on database errors alone.
func HealthIndexAction(ctx *cartridge.Context) error {
	cfg := ctx.Config.(*config.Config)

	health := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		DBStatus:  "ok",
		Rollup:    "ok",
	}

	db := ctx.DBManager.GetConnection()
	if db == nil {
		health.DBStatus = "error"
		ctx.Logger.Error("Database connection unavailable")
	} else if sqlDB, err := db.DB(); err != nil {
		health.DBStatus = "error"
		ctx.Logger.Error("Database connection error", slog.Any("error", err))
	} else if err := sqlDB.Ping(); err != nil {
		health.DBStatus = "error"
		ctx.Logger.Error("Database ping failed", slog.Any("error", err))
	}

	if health.DBStatus != "ok" {
		health.Status = "degraded"
		health.Rollup = "unknown"
		return ctx.JSON(health)
	}

	loc := cfg.GetReferenceLocation()
	yesterday := timeframe.DateKey(timeframe.DayStart(time.Now().UTC(), 1, loc), loc)
	if _, err := rollup.GetByDate(db, yesterday); err != nil {
		health.Rollup = "pending"
	}

	return ctx.JSON(health)
}
