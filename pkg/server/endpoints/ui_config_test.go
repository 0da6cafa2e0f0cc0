package endpoints

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagkeep/flagkeep/pkg/config"
)

func TestUIConfig(t *testing.T) {
	ts := newTestServer(t)
	ts.cfg.Edition = "enterprise"
	ts.cfg.Flags = map[string]bool{config.FlagDoraMetrics: true, config.FlagChangeRequests: false}
	token := ts.viewer(t)

	rec := ts.do(http.MethodGet, "/api/admin/ui-config", token, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"version": "5.9.0",
		"edition": "enterprise",
		"segmentValuesLimit": 1000,
		"flags": {"doraMetrics": true, "changeRequests": false}
	}`, rec.Body.String())
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.viewer(t)

	rec := ts.do(http.MethodGet, "/api/admin/ui-config/admin-routes?pathname=/admin/roles/5/edit", token, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "users", body["group"])
	assert.Equal(t, "roles", body["activeTab"])
	assert.NotEmpty(t, body["routes"])
	assert.NotEmpty(t, body["tabs"])
}

func TestAdminRoutesBillingOnCloud(t *testing.T) {
	findBilling := func(body map[string]interface{}) map[string]interface{} {
		for _, r := range body["routes"].([]interface{}) {
			route := r.(map[string]interface{})
			if route["title"] == "Billing & invoices" {
				return route
			}
		}
		return nil
	}

	ts := newTestServer(t)
	token := ts.viewer(t)

	rec := ts.do(http.MethodGet, "/api/admin/ui-config/admin-routes", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	onPrem := findBilling(decodeJSON(t, rec))
	require.NotNil(t, onPrem)

	ts.cfg.Flags[config.FlagUnleashCloud] = true
	rec = ts.do(http.MethodGet, "/api/admin/ui-config/admin-routes", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cloud := findBilling(decodeJSON(t, rec))
	require.NotNil(t, cloud)
	assert.Equal(t, "/admin/billing", cloud["path"])
}

func TestNavigation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.viewer(t)

	rec := ts.do(http.MethodGet, "/api/admin/ui-config/navigation", token, "")

	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeJSON(t, rec)["items"].([]interface{})
	require.NotEmpty(t, items)

	dividers := 0
	for _, item := range items {
		entry := item.(map[string]interface{})
		if entry["divider"] == true {
			dividers++
			assert.Equal(t, "log", entry["group"])
		}
	}
	assert.Equal(t, 1, dividers)
}
