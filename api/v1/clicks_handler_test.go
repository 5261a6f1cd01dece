package v1_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/clicks"
	"pulseboard/internal/testsupport"
)

func TestJobClickHandlers(t *testing.T) {
	t.Run("records a job click", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		req := httptest.NewRequest("POST", "/x/api/v1/jobs/click", marshalBody(t, map[string]interface{}{
			"id":      "job-42",
			"company": "Stripe",
			"title":   "Backend Engineer",
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var click clicks.JobClick
		require.NoError(t, db.First(&click).Error)
		assert.Equal(t, "Stripe", click.Company)
		assert.False(t, click.ClickedAt.IsZero())
	})

	t.Run("rejects a click without a company", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		req := httptest.NewRequest("POST", "/x/api/v1/jobs/click", marshalBody(t, map[string]interface{}{
			"id": "job-42",
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("aggregates clicks by company", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		for _, company := range []string{"Stripe", "Stripe", "Stripe", "Datadog"} {
			require.NoError(t, clicks.RecordJobClick(db, &clicks.JobClick{
				JobID:   "job-x",
				Company: company,
				Title:   "Engineer",
			}))
		}

		req := httptest.NewRequest("GET", "/x/api/v1/jobs/clicks", nil)
		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, float64(4), body["totalClicks"])

		byCompany, ok := body["clicksByCompany"].([]interface{})
		require.True(t, ok)
		require.Len(t, byCompany, 2)

		top := byCompany[0].(map[string]interface{})
		assert.Equal(t, "Stripe", top["company"])
		assert.Equal(t, float64(3), top["clicks"])

		recent, ok := body["recentClicks"].([]interface{})
		require.True(t, ok)
		assert.Len(t, recent, 4)
	})

	t.Run("rejects a malformed start date", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		req := httptest.NewRequest("GET", "/x/api/v1/jobs/clicks?startDate=06-01-2025", nil)
		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLinkClickHandlers(t *testing.T) {
	t.Run("records a link click", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		req := httptest.NewRequest("POST", "/x/api/v1/links/click", marshalBody(t, map[string]interface{}{
			"id":    "link-discord",
			"label": "Community Discord",
		}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("aggregates clicks by link", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		for _, linkID := range []string{"L1", "L1", "L1", "L2"} {
			require.NoError(t, clicks.RecordLinkClick(db, &clicks.LinkClick{
				LinkID: linkID,
				Label:  "Link " + linkID,
			}))
		}

		req := httptest.NewRequest("GET", "/x/api/v1/links/clicks", nil)
		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, float64(4), body["totalClicks"])

		byLink, ok := body["clicksByLink"].([]interface{})
		require.True(t, ok)
		require.Len(t, byLink, 2)

		top := byLink[0].(map[string]interface{})
		assert.Equal(t, "L1", top["linkId"])
		assert.Equal(t, float64(3), top["clicks"])
	})

	t.Run("filters by link id", func(t *testing.T) {
		db := testsupport.SetupTestDB(t)
		app := testsupport.CreateMinimalTestApp(t, db)

		for _, linkID := range []string{"L1", "L1", "L2"} {
			require.NoError(t, clicks.RecordLinkClick(db, &clicks.LinkClick{LinkID: linkID}))
		}

		req := httptest.NewRequest("GET", "/x/api/v1/links/clicks?linkId=L2", nil)
		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, float64(1), body["totalClicks"])

		recent, ok := body["recentClicks"].([]interface{})
		require.True(t, ok)
		assert.Len(t, recent, 1)
	})
}
