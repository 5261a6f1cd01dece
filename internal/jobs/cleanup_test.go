package jobs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/activity"
	"pulseboard/internal/clicks"
	"pulseboard/internal/config"
	"pulseboard/internal/jobs"
	"pulseboard/internal/testsupport"
	"pulseboard/internal/views"
)

func TestCleanupJobTrimsOldRawRows(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	cfg := config.GetConfig()
	cfg.ClickRetentionDays = 30

	now := time.Now().UTC()
	old := now.AddDate(0, 0, -60)
	recent := now.AddDate(0, 0, -5)

	require.NoError(t, db.Create(&clicks.JobClick{JobID: "j1", Company: "Old Co", ClickedAt: old}).Error)
	require.NoError(t, db.Create(&clicks.JobClick{JobID: "j2", Company: "New Co", ClickedAt: recent}).Error)
	require.NoError(t, db.Create(&clicks.LinkClick{LinkID: "l1", ClickedAt: old}).Error)
	require.NoError(t, db.Create(&views.BlogView{Slug: "old-post", ViewedAt: old}).Error)
	require.NoError(t, db.Create(&views.BlogView{Slug: "new-post", ViewedAt: recent}).Error)

	// Feed entries are permanent regardless of age
	require.NoError(t, db.Create(&activity.Event{
		Type:      activity.EventMicroWin,
		Message:   "ancient win",
		CreatedAt: old,
	}).Error)

	job := jobs.NewCleanupJob(testsupport.NewTestDBManager(db), logger, cfg)
	require.NoError(t, job.Run())

	countRows := func(model interface{}) int64 {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		return count
	}

	assert.Equal(t, int64(1), countRows(&clicks.JobClick{}))
	assert.Equal(t, int64(0), countRows(&clicks.LinkClick{}))
	assert.Equal(t, int64(1), countRows(&views.BlogView{}))
	assert.Equal(t, int64(1), countRows(&activity.Event{}))

	var keptClick clicks.JobClick
	require.NoError(t, db.First(&keptClick).Error)
	assert.Equal(t, "New Co", keptClick.Company)
}
