// Package presence tracks which anonymous visitors are currently active on
// which logical pages. Records expire lazily: every live-count read sweeps
// rows older than the liveness window before aggregating, so no background
// sweep is needed.
package presence

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pulseboard/internal/apperr"
)

// BlogBucket is the logical bucket all blog pages collapse into when
// aggregating. Storage keeps the full page key; the collapse is
// presentation-level only.
const BlogBucket = "blog"

// Record marks a visitor as recently active on a page.
// At most one record exists per (visitor, page) pair.
type Record struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	VisitorID  string    `gorm:"size:64;not null;uniqueIndex:idx_presence_visitor_page" json:"visitor_id"`
	Page       string    `gorm:"size:255;not null;uniqueIndex:idx_presence_visitor_page" json:"page"`
	Country    string    `gorm:"size:100" json:"country"`
	LastSeenAt time.Time `gorm:"not null;index" json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Record) TableName() string {
	return "presence_records"
}

// Snapshot holds live presence counts after an expiry sweep.
type Snapshot struct {
	Pages     map[string]int
	Countries map[string]int
	Total     int
}

// HeartbeatInput defines the input required to record a heartbeat.
type HeartbeatInput struct {
	VisitorID string
	Page      string
	Country   string
	Now       time.Time
}

// RecordHeartbeat upserts the presence record for (visitor, page) and bumps
// LastSeenAt. Concurrent heartbeats for the same pair race harmlessly into a
// last-write-wins update; the unique index keeps the pair singular.
func RecordHeartbeat(db *gorm.DB, logger *slog.Logger, input *HeartbeatInput) error {
	if strings.TrimSpace(input.VisitorID) == "" {
		return apperr.NewValidationError("visitorId", "is required")
	}
	if strings.TrimSpace(input.Page) == "" {
		return apperr.NewValidationError("page", "is required")
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	assignments := map[string]interface{}{"last_seen_at": now}
	if input.Country != "" {
		assignments["country"] = input.Country
	}

	record := Record{
		VisitorID:  input.VisitorID,
		Page:       input.Page,
		Country:    input.Country,
		LastSeenAt: now,
		CreatedAt:  now,
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "visitor_id"}, {Name: "page"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&record).Error
	if err != nil {
		logger.Error("Failed to upsert presence record",
			slog.String("visitor_id", input.VisitorID),
			slog.String("page", input.Page),
			slog.Any("error", err))
		return fmt.Errorf("failed to upsert presence record: %w", err)
	}

	return nil
}

// Remove deletes presence record(s) for a visitor. With page empty it
// removes every record for that visitor (page-leave is best effort; callers
// may discard the error).
func Remove(db *gorm.DB, logger *slog.Logger, visitorID, page string) error {
	if strings.TrimSpace(visitorID) == "" {
		return apperr.NewValidationError("visitorId", "is required")
	}

	query := db.Where("visitor_id = ?", visitorID)
	if page != "" {
		query = query.Where("page = ?", page)
	}

	if err := query.Delete(&Record{}).Error; err != nil {
		logger.Error("Failed to remove presence record",
			slog.String("visitor_id", visitorID),
			slog.String("page", page),
			slog.Any("error", err))
		return fmt.Errorf("failed to remove presence record: %w", err)
	}

	return nil
}

// LiveCounts deletes records older than the liveness window, then groups the
// survivors by page and by country. The sweep must run before the grouping;
// the two steps are strictly ordered but not atomic.
func LiveCounts(db *gorm.DB, logger *slog.Logger, now time.Time, window time.Duration) (*Snapshot, error) {
	// last_seen_at is stored as UTC text, so the cutoff must bind as UTC too
	cutoff := now.UTC().Add(-window)

	result := db.Where("last_seen_at < ?", cutoff).Delete(&Record{})
	if result.Error != nil {
		logger.Error("Failed to sweep stale presence records", slog.Any("error", result.Error))
		return nil, fmt.Errorf("failed to sweep stale presence records: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		logger.Debug("Swept stale presence records",
			slog.Int64("deleted", result.RowsAffected),
			slog.Time("cutoff", cutoff))
	}

	var rows []Record
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load presence records: %w", err)
	}

	snapshot := &Snapshot{
		Pages:     make(map[string]int),
		Countries: make(map[string]int),
	}
	for _, row := range rows {
		snapshot.Pages[bucketForPage(row.Page)]++
		if row.Country != "" {
			snapshot.Countries[row.Country]++
		}
		snapshot.Total++
	}

	return snapshot, nil
}

// DistinctVisitors counts distinct visitor IDs with activity inside the
// half-open interval [start, end). Used by the daily rollup.
func DistinctVisitors(db *gorm.DB, start, end time.Time) (int64, error) {
	var count int64
	err := db.Model(&Record{}).
		Where("last_seen_at >= ? AND last_seen_at < ?", start.UTC(), end.UTC()).
		Distinct("visitor_id").
		Count(&count).Error
	return count, err
}

// bucketForPage collapses "blog" and "blog/<slug>" into the blog bucket.
func bucketForPage(page string) string {
	if page == BlogBucket || strings.HasPrefix(page, BlogBucket+"/") {
		return BlogBucket
	}
	return page
}
