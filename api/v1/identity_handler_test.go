package v1_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/testsupport"
)

func TestGetIdentityHandler(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)

	req := httptest.NewRequest("GET", "/x/api/v1/identity", nil)
	resp, err := app.Test(req, 30000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)

	visitorID, ok := body["visitorId"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(visitorID)
	assert.NoError(t, err, "visitor id should be a UUID")

	alias, ok := body["alias"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, alias)

	// Two requests provision two distinct identities
	req2 := httptest.NewRequest("GET", "/x/api/v1/identity", nil)
	resp2, err := app.Test(req2, 30000)
	require.NoError(t, err)
	body2 := decodeBody(t, resp2)
	assert.NotEqual(t, visitorID, body2["visitorId"])
}
