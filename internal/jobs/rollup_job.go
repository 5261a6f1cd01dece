package jobs

import (
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"

	"pulseboard/internal/config"
	"pulseboard/internal/rollup"
)

// RollupJob computes the daily analytics row for the previous day in the
// reference timezone. ComputeDay is idempotent, so repeated runs are cheap.
type RollupJob struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewRollupJob(dbManager cartridge.DBManager, logger *slog.Logger, cfg *config.Config) *RollupJob {
	return &RollupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

func (j *RollupJob) Run() error {
	db := j.dbManager.GetConnection()
	loc := j.cfg.GetReferenceLocation()

	row, computed, err := rollup.ComputeDay(db, j.logger, time.Now().UTC(), 1, loc)
	if err != nil {
		j.logger.Error("Daily rollup failed", slog.Any("error", err))
		return err
	}

	if computed {
		j.logger.Info("Daily rollup computed",
			slog.String("date", row.Date),
			slog.Int64("visitors", row.Visitors),
			slog.Int64("blog_views", row.BlogViews),
			slog.Int64("link_clicks", row.LinkClicks),
			slog.Int64("job_clicks", row.JobClicks))
	} else {
		j.logger.Debug("Daily rollup already present", slog.String("date", row.Date))
	}

	return nil
}
