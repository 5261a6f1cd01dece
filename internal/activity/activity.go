// Package activity stores the append-only community activity feed: micro
// wins, lesson completions and click/view echoes. Events are never updated
// or deleted; only the most recent N are ever read.
package activity

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pulseboard/internal/apperr"
)

// EventType represents the type of activity event
type EventType string

const (
	EventMicroWin       EventType = "micro_win"
	EventLessonComplete EventType = "lesson_complete"
	EventJobClick       EventType = "job_click"
	EventLinkClick      EventType = "link_click"
	EventBlogView       EventType = "blog_view"
)

// MaxMessageLength is the longest message stored; longer input is truncated.
const MaxMessageLength = 500

// Event is one row in the community activity feed. Metadata is an opaque
// JSON value stored as text and echoed back without inspection.
type Event struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Type      EventType       `gorm:"size:50;not null;index" json:"type"`
	Message   string          `gorm:"size:500;not null" json:"message"`
	Metadata  json.RawMessage `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "activity_events"
}

// TodayStats aggregates today's event counts for the activity endpoint.
type TodayStats struct {
	CompletionsToday int64 `json:"completionsToday"`
	MicroWinsToday   int64 `json:"microWinsToday"`
	JobClicksToday   int64 `json:"jobClicksToday"`
	LinkClicksToday  int64 `json:"linkClicksToday"`
}

// ValidEventTypes returns all valid activity event types
func ValidEventTypes() []EventType {
	return []EventType{
		EventMicroWin,
		EventLessonComplete,
		EventJobClick,
		EventLinkClick,
		EventBlogView,
	}
}

// IsValidEventType checks if the given type is valid
func IsValidEventType(t EventType) bool {
	for _, valid := range ValidEventTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// CreateEvent appends an activity event. Unknown types are rejected and
// nothing is persisted; overlong messages are truncated to MaxMessageLength.
func CreateEvent(db *gorm.DB, event *Event) error {
	if !IsValidEventType(event.Type) {
		return apperr.NewValidationError("type", fmt.Sprintf("unknown activity type %q", event.Type))
	}
	if event.Message == "" {
		return apperr.NewValidationError("message", "is required")
	}

	if runes := []rune(event.Message); len(runes) > MaxMessageLength {
		event.Message = string(runes[:MaxMessageLength])
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.CreatedAt = event.CreatedAt.UTC()

	if err := db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create activity event: %w", err)
	}
	return nil
}

// RecentEvents returns the most recent events, newest first.
func RecentEvents(db *gorm.DB, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	var events []Event
	err := db.Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}
	return events, nil
}

// StatsInRange counts per-type events inside [start, end). The activity
// endpoint calls it with the current reference-timezone day window. Bounds
// are rebased to UTC to match the stored timestamp text.
func StatsInRange(db *gorm.DB, start, end time.Time) (*TodayStats, error) {
	stats := &TodayStats{}
	start, end = start.UTC(), end.UTC()

	counts := []struct {
		eventType EventType
		dest      *int64
	}{
		{EventLessonComplete, &stats.CompletionsToday},
		{EventMicroWin, &stats.MicroWinsToday},
		{EventJobClick, &stats.JobClicksToday},
		{EventLinkClick, &stats.LinkClicksToday},
	}

	for _, c := range counts {
		err := db.Model(&Event{}).
			Where("type = ? AND created_at >= ? AND created_at < ?", c.eventType, start, end).
			Count(c.dest).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count %s events: %w", c.eventType, err)
		}
	}

	return stats, nil
}
