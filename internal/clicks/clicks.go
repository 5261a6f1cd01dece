// Package clicks stores append-only click logs for the job board and the
// links page, and answers the count / group-by / recent-N queries behind the
// click analytics endpoints. No update or delete is exposed.
package clicks

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"pulseboard/internal/apperr"
)

// RecentLimit caps the recent-clicks listing.
const RecentLimit = 100

// JobClick records one click on a job posting
type JobClick struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID     string    `gorm:"size:100;not null;index" json:"job_id"`
	Company   string    `gorm:"size:255;not null;index" json:"company"`
	Title     string    `gorm:"size:255" json:"title"`
	ClickedAt time.Time `gorm:"not null;index" json:"clicked_at"`
}

// TableName specifies the table name for GORM
func (JobClick) TableName() string {
	return "job_clicks"
}

// LinkClick records one click on a curated resource link
type LinkClick struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LinkID    string    `gorm:"size:100;not null;index" json:"link_id"`
	Label     string    `gorm:"size:255" json:"label"`
	ClickedAt time.Time `gorm:"not null;index" json:"clicked_at"`
}

// TableName specifies the table name for GORM
func (LinkClick) TableName() string {
	return "link_clicks"
}

// CompanyClicks is one group-by row for job clicks
type CompanyClicks struct {
	Company string `json:"company"`
	Clicks  int64  `json:"clicks"`
}

// LinkClicks is one group-by row for link clicks
type LinkClicks struct {
	LinkID string `json:"linkId"`
	Clicks int64  `json:"clicks"`
}

// RecordJobClick appends one immutable job click row.
func RecordJobClick(db *gorm.DB, click *JobClick) error {
	if strings.TrimSpace(click.JobID) == "" {
		return apperr.NewValidationError("id", "is required")
	}
	if strings.TrimSpace(click.Company) == "" {
		return apperr.NewValidationError("company", "is required")
	}

	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}
	click.ClickedAt = click.ClickedAt.UTC()

	if err := db.Create(click).Error; err != nil {
		return fmt.Errorf("failed to record job click: %w", err)
	}
	return nil
}

// RecordLinkClick appends one immutable link click row.
func RecordLinkClick(db *gorm.DB, click *LinkClick) error {
	if strings.TrimSpace(click.LinkID) == "" {
		return apperr.NewValidationError("id", "is required")
	}

	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}
	click.ClickedAt = click.ClickedAt.UTC()

	if err := db.Create(click).Error; err != nil {
		return fmt.Errorf("failed to record link click: %w", err)
	}
	return nil
}

// CountJobClicks counts job clicks, optionally filtered by company and
// bounded by [start, end). Zero times leave that side unbounded.
func CountJobClicks(db *gorm.DB, company string, start, end time.Time) (int64, error) {
	query := db.Model(&JobClick{})
	if company != "" {
		query = query.Where("company = ?", company)
	}
	query = applyTimeRange(query, "clicked_at", start, end)

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountLinkClicks counts link clicks, optionally filtered by link id.
func CountLinkClicks(db *gorm.DB, linkID string, start, end time.Time) (int64, error) {
	query := db.Model(&LinkClick{})
	if linkID != "" {
		query = query.Where("link_id = ?", linkID)
	}
	query = applyTimeRange(query, "clicked_at", start, end)

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// GroupedJobClicks returns per-company click counts ordered by count descending.
func GroupedJobClicks(db *gorm.DB, start, end time.Time) ([]CompanyClicks, error) {
	var rows []CompanyClicks
	query := applyTimeRange(db.Model(&JobClick{}), "clicked_at", start, end)
	err := query.
		Select("company, COUNT(*) as clicks").
		Group("company").
		Order("clicks DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group job clicks: %w", err)
	}
	return rows, nil
}

// GroupedLinkClicks returns per-link click counts ordered by count descending.
func GroupedLinkClicks(db *gorm.DB, start, end time.Time) ([]LinkClicks, error) {
	var rows []LinkClicks
	query := applyTimeRange(db.Model(&LinkClick{}), "clicked_at", start, end)
	err := query.
		Select("link_id, COUNT(*) as clicks").
		Group("link_id").
		Order("clicks DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group link clicks: %w", err)
	}
	return rows, nil
}

// RecentJobClicks returns the most recent job clicks, event time descending.
func RecentJobClicks(db *gorm.DB, company string, limit int) ([]JobClick, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}

	query := db.Model(&JobClick{})
	if company != "" {
		query = query.Where("company = ?", company)
	}

	var rows []JobClick
	err := query.Order("clicked_at DESC, id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent job clicks: %w", err)
	}
	return rows, nil
}

// RecentLinkClicks returns the most recent link clicks, event time descending.
func RecentLinkClicks(db *gorm.DB, linkID string, limit int) ([]LinkClick, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}

	query := db.Model(&LinkClick{})
	if linkID != "" {
		query = query.Where("link_id = ?", linkID)
	}

	var rows []LinkClick
	err := query.Order("clicked_at DESC, id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent link clicks: %w", err)
	}
	return rows, nil
}

// applyTimeRange narrows query to [start, end) on column; a zero bound stays
// unbounded. Bounds are rebased to UTC to match the stored timestamp text.
func applyTimeRange(query *gorm.DB, column string, start, end time.Time) *gorm.DB {
	if !start.IsZero() {
		query = query.Where(column+" >= ?", start.UTC())
	}
	if !end.IsZero() {
		query = query.Where(column+" < ?", end.UTC())
	}
	return query
}
