package jobs

import (
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"

	"pulseboard/internal/clicks"
	"pulseboard/internal/config"
	"pulseboard/internal/views"
)

// CleanupJob trims raw click and view rows past the retention window.
// Daily rollup rows and activity events are never deleted.
type CleanupJob struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewCleanupJob(dbManager cartridge.DBManager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run removes raw event rows older than the retention period.
// Aggregates are preserved in daily_analytics, so the raw rows only need to
// cover the rollup backfill horizon.
func (j *CleanupJob) Run() error {
	retentionDays := j.cfg.ClickRetentionDays
	db := j.dbManager.GetConnection()
	cutoffDate := time.Now().UTC().AddDate(0, 0, -retentionDays)

	j.logger.Info("Starting cleanup of old raw events",
		slog.Int("retention_days", retentionDays),
		slog.Time("cutoff_date", cutoffDate))

	targets := []struct {
		name   string
		column string
		model  interface{}
	}{
		{"job_clicks", "clicked_at", &clicks.JobClick{}},
		{"link_clicks", "clicked_at", &clicks.LinkClick{}},
		{"blog_views", "viewed_at", &views.BlogView{}},
	}

	for _, target := range targets {
		deleted, err := j.deleteInBatches(db, target.column, target.model, cutoffDate)
		if err != nil {
			j.logger.Error("Failed to delete old rows",
				slog.String("table", target.name),
				slog.Any("error", err))
			return err
		}
		if deleted > 0 {
			j.logger.Info("Cleaned up old rows",
				slog.String("table", target.name),
				slog.Int64("deleted_count", deleted))
		}
	}

	return nil
}

// deleteInBatches removes matching rows in chunks to avoid locking the
// database for too long.
func (j *CleanupJob) deleteInBatches(db *gorm.DB, column string, model interface{}, cutoff time.Time) (int64, error) {
	batchSize := 1000
	totalDeleted := int64(0)

	for {
		result := db.Where(column+" < ?", cutoff).
			Limit(batchSize).
			Delete(model)

		if result.Error != nil {
			return totalDeleted, result.Error
		}

		totalDeleted += result.RowsAffected

		if result.RowsAffected < int64(batchSize) {
			break
		}

		// Small delay between batches to prevent database lock contention
		time.Sleep(100 * time.Millisecond)
	}

	return totalDeleted, nil
}
