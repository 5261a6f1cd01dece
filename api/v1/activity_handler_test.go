package v1_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/activity"
	"pulseboard/internal/testsupport"
)

func TestCreateActivityHandler(t *testing.T) {
	t.Run("creates a feed entry", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		req := httptest.NewRequest("POST", "/x/api/v1/activity", marshalBody(t, map[string]interface{}{
			"type":    "micro_win",
			"message": "Deployed my first service today!",
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "micro_win", body["type"])
		assert.NotZero(t, body["id"])

		var event activity.Event
		require.NoError(t, db.First(&event).Error)
		assert.Equal(t, activity.EventMicroWin, event.Type)
	})

	t.Run("passes structured metadata through opaquely", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		req := httptest.NewRequest("POST", "/x/api/v1/activity", marshalBody(t, map[string]interface{}{
			"type":    "micro_win",
			"message": "Shipped the wall widget",
			"metadata": map[string]interface{}{
				"source": "wall",
				"streak": 3,
			},
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var event activity.Event
		require.NoError(t, db.First(&event).Error)

		var metadata map[string]interface{}
		require.NoError(t, json.Unmarshal(event.Metadata, &metadata))
		assert.Equal(t, "wall", metadata["source"])
		assert.Equal(t, float64(3), metadata["streak"])
	})

	t.Run("truncates long messages", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		long := strings.Repeat("x", 800)
		req := httptest.NewRequest("POST", "/x/api/v1/activity", marshalBody(t, map[string]interface{}{
			"type":    "lesson_complete",
			"message": long,
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var event activity.Event
		require.NoError(t, db.First(&event).Error)
		assert.Len(t, event.Message, activity.MaxMessageLength)
	})

	t.Run("rejects unknown event types", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		req := httptest.NewRequest("POST", "/x/api/v1/activity", marshalBody(t, map[string]interface{}{
			"type":    "mega_win",
			"message": "nope",
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var count int64
		require.NoError(t, db.Model(&activity.Event{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestGetActivityHandler(t *testing.T) {
	t.Run("returns feed, presence buckets, locations and stats", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		now := time.Now().UTC()
		testsupport.SeedActivityEvent(t, db, activity.EventMicroWin, "Got the job!", now.Add(-1*time.Minute))
		testsupport.SeedActivityEvent(t, db, activity.EventLessonComplete, "Finished module 3", now.Add(-2*time.Minute))
		testsupport.SeedPresence(t, db, "visitor-a", "jobs", "us", now)
		testsupport.SeedPresence(t, db, "visitor-b", "blog/posting", "gb", now)

		req := httptest.NewRequest("GET", "/x/api/v1/activity", nil)
		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)

		activities, ok := body["activities"].([]interface{})
		require.True(t, ok)
		require.Len(t, activities, 2)
		newest := activities[0].(map[string]interface{})
		assert.Equal(t, "Got the job!", newest["message"])

		buckets, ok := body["presence"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(1), buckets["jobs"])
		assert.Equal(t, float64(1), buckets["blog"])
		assert.Equal(t, float64(0), buckets["home"])
		assert.Equal(t, float64(2), buckets["total"])

		locations, ok := body["locations"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(1), locations["United States"])
		assert.Equal(t, float64(1), locations["United Kingdom"])

		stats, ok := body["stats"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(1), stats["microWinsToday"])
		assert.Equal(t, float64(1), stats["completionsToday"])
		assert.Equal(t, float64(0), stats["jobClicksToday"])
	})

	t.Run("rejects a negative limit", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		req := httptest.NewRequest("GET", "/x/api/v1/activity?limit=-3", nil)
		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("caps the feed at the requested limit", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		now := time.Now().UTC()
		for i := 0; i < 5; i++ {
			testsupport.SeedActivityEvent(t, db, activity.EventMicroWin, "win", now.Add(-time.Duration(i)*time.Minute))
		}

		req := httptest.NewRequest("GET", "/x/api/v1/activity?limit=2", nil)
		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		activities, ok := body["activities"].([]interface{})
		require.True(t, ok)
		assert.Len(t, activities, 2)
	})
}
