package clicks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pulseboard/internal/apperr"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&JobClick{}, &LinkClick{}))
	return db
}

func TestRecordJobClickValidation(t *testing.T) {
	db := setupTestDB(t)

	var validationErr *apperr.ValidationError
	require.ErrorAs(t, RecordJobClick(db, &JobClick{Company: "Acme"}), &validationErr)
	require.ErrorAs(t, RecordJobClick(db, &JobClick{JobID: "j1"}), &validationErr)

	var count int64
	db.Model(&JobClick{}).Count(&count)
	assert.Zero(t, count)

	require.NoError(t, RecordJobClick(db, &JobClick{JobID: "j1", Company: "Acme", Title: "Backend Engineer"}))
	db.Model(&JobClick{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGroupedLinkClicksOrdering(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, RecordLinkClick(db, &LinkClick{LinkID: "L1", Label: "Newsletter"}))
	}
	require.NoError(t, RecordLinkClick(db, &LinkClick{LinkID: "L2", Label: "Discord"}))

	rows, err := GroupedLinkClicks(db, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, LinkClicks{LinkID: "L1", Clicks: 3}, rows[0])
	assert.Equal(t, LinkClicks{LinkID: "L2", Clicks: 1}, rows[1])
}

func TestCountJobClicksInRange(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		base.Add(-time.Hour),     // before range
		base.Add(time.Hour),      // inside
		base.Add(2 * time.Hour),  // inside
		base.Add(24 * time.Hour), // at end, excluded
	}
	for _, ts := range times {
		require.NoError(t, RecordJobClick(db, &JobClick{JobID: "j1", Company: "Acme", ClickedAt: ts}))
	}
	require.NoError(t, RecordJobClick(db, &JobClick{JobID: "j2", Company: "Globex", ClickedAt: base.Add(time.Hour)}))

	count, err := CountJobClicks(db, "Acme", base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// unbounded count includes everything
	count, err = CountJobClicks(db, "", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestCountJobClicksWithOffsetBounds(t *testing.T) {
	db := setupTestDB(t)

	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)

	// A UTC-stored click must match a window whose bounds carry the
	// reference timezone's -06:00 offset.
	clickedAt := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	require.NoError(t, RecordJobClick(db, &JobClick{JobID: "j1", Company: "Acme", ClickedAt: clickedAt}))

	dayStart := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
	count, err := CountJobClicks(db, "", dayStart, dayStart.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRecentJobClicks(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, RecordJobClick(db, &JobClick{
			JobID:     "j1",
			Company:   "Acme",
			ClickedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	rows, err := RecentJobClicks(db, "Acme", 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].ClickedAt.After(rows[1].ClickedAt))
	assert.True(t, rows[1].ClickedAt.After(rows[2].ClickedAt))
}

func TestRecentLinkClicksFilter(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, RecordLinkClick(db, &LinkClick{LinkID: "L1"}))
	require.NoError(t, RecordLinkClick(db, &LinkClick{LinkID: "L2"}))

	rows, err := RecentLinkClicks(db, "L2", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "L2", rows[0].LinkID)
}
