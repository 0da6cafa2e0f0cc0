package endpoints

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flagkeep/flagkeep/pkg/apierr"
	"github.com/flagkeep/flagkeep/pkg/config"
	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/permissions"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

func TestGetProjects(t *testing.T) {
	ts := newTestServer(t)
	token := ts.viewer(t)
	ts.projects.On("ListProjects", mock.Anything).Return([]store.ProjectSummary{
		{Project: model.Project{ID: "default", Name: "Default", CreatedAt: testTime}, FeatureCount: 4, MemberCount: 2},
	}, nil)

	rec := ts.do(http.MethodGet, "/api/admin/projects", token, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, float64(1), body["version"])
	project := body["projects"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "default", project["id"])
	assert.Equal(t, float64(4), project["featureCount"])
	assert.Equal(t, float64(2), project["memberCount"])
	assert.Equal(t, "open", project["mode"])
}

func TestValidateProjectID(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		exists bool
		status int
	}{
		{name: "free id", body: `{"id":"checkout"}`, status: http.StatusOK},
		{name: "taken id", body: `{"id":"checkout"}`, exists: true, status: http.StatusConflict},
		{name: "not url friendly", body: `{"id":"check out"}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			token := ts.login(t, 3, store.UserPermission{Permission: permissions.CreateProject})
			ts.projects.On("ProjectExists", mock.Anything, "checkout").Return(tt.exists, nil)

			rec := ts.do(http.MethodPost, "/api/admin/projects/validate", token, tt.body)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCreateProject(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, 3, store.UserPermission{Permission: permissions.CreateProject})

	ts.projects.On("ProjectExists", mock.Anything, "checkout").Return(false, nil)
	ts.projects.On("ListEnvironments", mock.Anything).Return([]string{"development", "production"}, nil)
	ts.projects.On("CreateProject", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
		return p.ID == "checkout" && p.Name == "Checkout" && p.Mode == model.ModeOpen
	}), []string{"development", "production"}, 3).Return(nil)

	rec := ts.do(http.MethodPost, "/api/admin/projects", token, `{"id":"checkout","name":"Checkout"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"projectId":"checkout"}`, rec.Body.String())
	ts.projects.AssertExpectations(t)
}

func TestUpdateProject(t *testing.T) {
	t.Run("needs the permission in that project", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.login(t, 3, store.UserPermission{Permission: permissions.UpdateProject, Project: "payments"})

		rec := ts.do(http.MethodPut, "/api/admin/projects/checkout", token, `{"id":"checkout","name":"Checkout"}`)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects a body for another project", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.admin(t)

		rec := ts.do(http.MethodPut, "/api/admin/projects/checkout", token, `{"id":"payments","name":"Payments"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("updates the project", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.login(t, 3, store.UserPermission{Permission: permissions.UpdateProject, Project: "checkout"})

		ts.projects.On("GetProject", mock.Anything, "checkout").Return(&model.Project{ID: "checkout", Name: "Old", Mode: model.ModeProtected}, nil)
		ts.projects.On("UpdateProject", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
			return p.Name == "Checkout" && p.Mode == model.ModeProtected
		})).Return(nil)

		rec := ts.do(http.MethodPut, "/api/admin/projects/checkout", token, `{"id":"checkout","name":"Checkout"}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		ts.projects.AssertExpectations(t)
	})
}

func TestGetProjectOverview(t *testing.T) {
	ts := newTestServer(t)
	token := ts.viewer(t)
	archivedAt := testTime.Add(-time.Hour)

	ts.projects.On("GetProject", mock.Anything, "checkout").Return(&model.Project{ID: "checkout", Name: "Checkout", Health: 100, CreatedAt: testTime}, nil)
	ts.projects.On("ProjectEnvironments", mock.Anything, "checkout").Return([]string{"production"}, nil)
	ts.projects.On("CountMembers", mock.Anything, "checkout").Return(3, nil)
	ts.projects.On("ListFeatures", mock.Anything, "checkout", true).Return([]model.Feature{
		{Name: "new-checkout", Project: "checkout", Type: "release", CreatedAt: testTime},
		{Name: "old-checkout", Project: "checkout", Type: "release", CreatedAt: testTime, ArchivedAt: &archivedAt},
	}, nil)

	rec := ts.do(http.MethodGet, "/api/admin/projects/checkout", token, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "Checkout", body["name"])
	assert.Equal(t, float64(3), body["members"])
	assert.Len(t, body["features"], 1)

	rec = ts.do(http.MethodGet, "/api/admin/projects/checkout?archived=true", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON(t, rec)["features"], 2)
}

func TestGetProjectOverviewNotFound(t *testing.T) {
	ts := newTestServer(t)
	token := ts.viewer(t)
	ts.projects.On("GetProject", mock.Anything, "missing").Return(nil, store.ErrProjectNotFound)

	rec := ts.do(http.MethodGet, "/api/admin/projects/missing", token, "")

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProjectDora(t *testing.T) {
	t.Run("flag disabled", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.viewer(t)

		rec := ts.do(http.MethodGet, "/api/admin/projects/default/dora", token, "")

		require.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, apierr.InvalidOperation, body.Name)
		assert.Equal(t, "Feature dora metrics is not enabled", body.Message)
	})

	t.Run("flag enabled", func(t *testing.T) {
		ts := newTestServer(t)
		ts.cfg = config.Default()
		ts.cfg.Flags[config.FlagDoraMetrics] = true
		token := ts.viewer(t)

		enabled := testTime.Add(3*24*time.Hour + time.Hour)
		ts.projects.On("ProjectExists", mock.Anything, "default").Return(true, nil)
		ts.projects.On("ListFeatures", mock.Anything, "default", true).Return([]model.Feature{
			{Name: "fast", CreatedAt: testTime, FirstEnabledAt: &enabled},
			{Name: "never-enabled", CreatedAt: testTime},
		}, nil)

		rec := ts.do(http.MethodGet, "/api/admin/projects/default/dora", token, "")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"projectAverage":3,"features":[{"name":"fast","timeToProduction":3}]}`, rec.Body.String())
	})
}

func TestDeleteProject(t *testing.T) {
	t.Run("default project", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.admin(t)

		rec := ts.do(http.MethodDelete, "/api/admin/projects/default", token, "")

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, apierr.InvalidOperation, decodeError(t, rec).Name)
	})

	t.Run("project with active features", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.admin(t)
		ts.projects.On("GetProject", mock.Anything, "checkout").Return(&model.Project{ID: "checkout"}, nil)
		ts.projects.On("CountActiveFeatures", mock.Anything, "checkout").Return(2, nil)

		rec := ts.do(http.MethodDelete, "/api/admin/projects/checkout", token, "")

		require.Equal(t, http.StatusForbidden, rec.Code)
		ts.projects.AssertNotCalled(t, "DeleteProject", mock.Anything, mock.Anything)
	})

	t.Run("empty project", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.login(t, 3, store.UserPermission{Permission: permissions.DeleteProject, Project: "checkout"})
		ts.projects.On("GetProject", mock.Anything, "checkout").Return(&model.Project{ID: "checkout"}, nil)
		ts.projects.On("CountActiveFeatures", mock.Anything, "checkout").Return(0, nil)
		ts.projects.On("DeleteProject", mock.Anything, "checkout").Return(nil)

		rec := ts.do(http.MethodDelete, "/api/admin/projects/checkout", token, "")

		require.Equal(t, http.StatusOK, rec.Code)
		ts.projects.AssertCalled(t, "DeleteProject", mock.Anything, "checkout")
	})
}

func TestGetProjectChangeRequests(t *testing.T) {
	t.Run("open change requests", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.viewer(t)
		ts.projects.On("ProjectExists", mock.Anything, "default").Return(true, nil)
		ts.changeRequests.On("ListChangeRequests", mock.Anything, "default", model.OpenChangeRequestStates).Return([]model.ChangeRequest{
			{ID: 1, Project: "default", Environment: "production", Title: "Enable checkout", State: model.ChangeRequestInReview, CreatedAt: testTime},
		}, nil)

		rec := ts.do(http.MethodGet, "/api/admin/projects/default/change-requests?state=open", token, "")

		require.Equal(t, http.StatusOK, rec.Code)
		requests := decodeJSON(t, rec)["changeRequests"].([]interface{})
		require.Len(t, requests, 1)
		assert.Equal(t, "In review", requests[0].(map[string]interface{})["state"])
	})

	t.Run("unknown state", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.viewer(t)

		rec := ts.do(http.MethodGet, "/api/admin/projects/default/change-requests?state=pending", token, "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
