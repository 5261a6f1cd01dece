// Package views stores the append-only blog view log used by the daily
// rollup and the per-post view queries.
package views

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"pulseboard/internal/apperr"
)

// RecentLimit caps the recent-views listing.
const RecentLimit = 100

// BlogView records one view of a blog post
type BlogView struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug     string    `gorm:"size:255;not null;index" json:"slug"`
	Title    string    `gorm:"size:255" json:"title"`
	ViewedAt time.Time `gorm:"not null;index" json:"viewed_at"`
}

// TableName specifies the table name for GORM
func (BlogView) TableName() string {
	return "blog_views"
}

// SlugViews is one group-by row for blog views
type SlugViews struct {
	Slug  string `json:"slug"`
	Views int64  `json:"views"`
}

// RecordView appends one immutable blog view row.
func RecordView(db *gorm.DB, view *BlogView) error {
	if strings.TrimSpace(view.Slug) == "" {
		return apperr.NewValidationError("slug", "is required")
	}

	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now()
	}
	view.ViewedAt = view.ViewedAt.UTC()

	if err := db.Create(view).Error; err != nil {
		return fmt.Errorf("failed to record blog view: %w", err)
	}
	return nil
}

// CountInRange counts blog views inside [start, end). Zero times leave that
// side unbounded.
func CountInRange(db *gorm.DB, slug string, start, end time.Time) (int64, error) {
	query := db.Model(&BlogView{})
	if slug != "" {
		query = query.Where("slug = ?", slug)
	}
	query = applyTimeRange(query, start, end)

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// GroupedBySlug returns per-post view counts ordered by count descending.
func GroupedBySlug(db *gorm.DB, start, end time.Time) ([]SlugViews, error) {
	query := db.Model(&BlogView{})
	query = applyTimeRange(query, start, end)

	var rows []SlugViews
	err := query.
		Select("slug, COUNT(*) as views").
		Group("slug").
		Order("views DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group blog views: %w", err)
	}
	return rows, nil
}

// RecentViews returns the most recent blog views, event time descending.
func RecentViews(db *gorm.DB, slug string, limit int) ([]BlogView, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}

	query := db.Model(&BlogView{})
	if slug != "" {
		query = query.Where("slug = ?", slug)
	}

	var rows []BlogView
	err := query.Order("viewed_at DESC, id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent blog views: %w", err)
	}
	return rows, nil
}

// applyTimeRange narrows query to [start, end) on viewed_at. Bounds are
// rebased to UTC to match the stored timestamp text.
func applyTimeRange(query *gorm.DB, start, end time.Time) *gorm.DB {
	if !start.IsZero() {
		query = query.Where("viewed_at >= ?", start.UTC())
	}
	if !end.IsZero() {
		query = query.Where("viewed_at < ?", end.UTC())
	}
	return query
}
