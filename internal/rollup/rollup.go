// Package rollup computes one immutable analytics row per calendar day in
// the reference timezone. Rows are created exactly once (skip-if-exists) so
// the single-day job and the N-day backfill are both safe to re-run.
package rollup

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"pulseboard/internal/apperr"
	"pulseboard/internal/clicks"
	"pulseboard/internal/presence"
	"pulseboard/internal/timeframe"
	"pulseboard/internal/views"
)

// DailyAnalytics is the per-calendar-day aggregate row. Date is the
// YYYY-MM-DD key in the reference timezone; a row is never updated after
// creation.
type DailyAnalytics struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Date       string    `gorm:"size:10;not null;uniqueIndex" json:"date"`
	Visitors   int64     `gorm:"not null;default:0" json:"visitors"`
	BlogViews  int64     `gorm:"not null;default:0" json:"blogViews"`
	LinkClicks int64     `gorm:"not null;default:0" json:"linkClicks"`
	JobClicks  int64     `gorm:"not null;default:0" json:"jobClicks"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (DailyAnalytics) TableName() string {
	return "daily_analytics"
}

// ComputeDay aggregates the calendar day daysAgo days before now and inserts
// its row. If the row already exists it is returned unchanged (created =
// false) without recomputing — idempotent-create, never overwrite.
func ComputeDay(db *gorm.DB, logger *slog.Logger, now time.Time, daysAgo int, loc *time.Location) (*DailyAnalytics, bool, error) {
	if daysAgo < 0 {
		return nil, false, fmt.Errorf("daysAgo must be >= 0, got %d", daysAgo)
	}

	start, end := timeframe.DayRange(now, daysAgo, loc)
	dateKey := timeframe.DateKey(start, loc)

	var existing DailyAnalytics
	err := db.Where("date = ?", dateKey).First(&existing).Error
	if err == nil {
		logger.Debug("Daily analytics row already exists, skipping",
			slog.String("date", dateKey))
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to check daily analytics for %s: %w", dateKey, err)
	}

	visitors, err := presence.DistinctVisitors(db, start, end)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count visitors for %s: %w", dateKey, err)
	}

	blogViews, err := views.CountInRange(db, "", start, end)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count blog views for %s: %w", dateKey, err)
	}

	linkClicks, err := clicks.CountLinkClicks(db, "", start, end)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count link clicks for %s: %w", dateKey, err)
	}

	jobClicks, err := clicks.CountJobClicks(db, "", start, end)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count job clicks for %s: %w", dateKey, err)
	}

	row := &DailyAnalytics{
		Date:       dateKey,
		Visitors:   visitors,
		BlogViews:  blogViews,
		LinkClicks: linkClicks,
		JobClicks:  jobClicks,
		CreatedAt:  time.Now().UTC(),
	}

	if err := db.Create(row).Error; err != nil {
		// Two concurrent runs can both pass the exists check; the unique
		// constraint on date is the backstop. The loser reads the winner's
		// row and treats the collision as a benign duplicate.
		var winner DailyAnalytics
		if readErr := db.Where("date = ?", dateKey).First(&winner).Error; readErr == nil {
			logger.Info("Lost daily analytics insert race, keeping existing row",
				slog.String("date", dateKey))
			return &winner, false, nil
		}
		return nil, false, fmt.Errorf("failed to insert daily analytics for %s: %w", dateKey, err)
	}

	logger.Info("Computed daily analytics",
		slog.String("date", dateKey),
		slog.Int64("visitors", visitors),
		slog.Int64("blog_views", blogViews),
		slog.Int64("link_clicks", linkClicks),
		slog.Int64("job_clicks", jobClicks))

	return row, true, nil
}

// Backfill runs the per-day rollup for daysAgo 1..days, strictly
// sequentially. A failure aborts the run; days already written stay
// persisted, so a re-run resumes at the first missing day without
// double-counting.
func Backfill(db *gorm.DB, logger *slog.Logger, now time.Time, days int, loc *time.Location) (int, error) {
	if days <= 0 {
		return 0, fmt.Errorf("backfill days must be positive, got %d", days)
	}

	created := 0
	for daysAgo := 1; daysAgo <= days; daysAgo++ {
		_, wasCreated, err := ComputeDay(db, logger, now, daysAgo, loc)
		if err != nil {
			return created, fmt.Errorf("backfill aborted at daysAgo=%d: %w", daysAgo, err)
		}
		if wasCreated {
			created++
		}
	}

	logger.Info("Backfill completed",
		slog.Int("days", days),
		slog.Int("created", created))

	return created, nil
}

// GetByDate returns the stored row for a date key.
func GetByDate(db *gorm.DB, dateKey string) (*DailyAnalytics, error) {
	var row DailyAnalytics
	if err := db.Where("date = ?", dateKey).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("daily analytics", dateKey)
		}
		return nil, fmt.Errorf("querying daily analytics for %s: %w", dateKey, err)
	}
	return &row, nil
}
