package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

// TestNewClient tests the NewClient function with various configurations.
func TestNewClient(t *testing.T) {
	tests := []struct {
		name       string
		opts       *Options
		wantErr    bool
		validateFn func(t *testing.T, client Client)
	}{
		{
			name: "nil options",
			validateFn: func(t *testing.T, client Client) {
				apiClient, ok := client.(*APIClient)
				require.True(t, ok, "client should be an *APIClient")
				assert.Equal(t, DefaultOptions().BaseURL, apiClient.baseURL)
				assert.Equal(t, DefaultTimeout, apiClient.timeout)
			},
		},
		{
			name: "valid options",
			opts: &Options{BaseURL: "http://example.com/", Timeout: 10 * time.Second, WorkerToken: "t"},
			validateFn: func(t *testing.T, client Client) {
				apiClient := client.(*APIClient)
				assert.Equal(t, "http://example.com", apiClient.baseURL)
				assert.Equal(t, 10*time.Second, apiClient.timeout)
				assert.Equal(t, "t", apiClient.workerToken)
			},
		},
		{
			name:    "invalid base URL",
			opts:    &Options{BaseURL: "://invalid-url"},
			wantErr: true,
		},
		{
			name:    "relative base URL",
			opts:    &Options{BaseURL: "/api"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			if tt.validateFn != nil {
				tt.validateFn(t, client)
			}
		})
	}
}

// setupTestServer serves canned responses keyed by path
func setupTestServer(t *testing.T, token string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			assert.Empty(t, r.Header.Get(types.WorkerTokenHeader), "token is only sent to the worker protocol")
			_, _ = w.Write([]byte(`{"status":"healthy"}`))
		case "/scrapers/poll":
			assert.Equal(t, token, r.Header.Get(types.WorkerTokenHeader))
			var req types.PollRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.WorkerID == "idle" {
				_, _ = w.Write([]byte(`{"job":null}`))
				return
			}
			_, _ = w.Write([]byte(`{"job":{"id":4,"goalId":9,"searchTerm":"gmc sierra","category":"vehicle","attempts":1}}`))
		case "/scrapers/callback":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"acknowledged":false,"status":"error","error":"stale callback"}`))
		case "/api/v1/jobs/4":
			_, _ = w.Write([]byte(`{"slug":"success","data":{"id":4,"goalId":9,"status":"running","attempts":1,"trigger":"refresh"}}`))
		case "/api/v1/jobs/5":
			_, _ = w.Write([]byte(`{"slug":"not-found","error":"Job not found"}`))
		case "/api/v1/jobs":
			assert.Equal(t, "failed", r.URL.Query().Get("status"))
			assert.Equal(t, "9", r.URL.Query().Get("goalId"))
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			_, _ = w.Write([]byte(`{"rows":[{"id":4,"goalId":9,"status":"failed","attempts":2,"trigger":"nightly"}],"pagination":{"total":51,"page":2,"limit":50,"offset":50}}`))
		case "/api/v1/goals/9":
			_, _ = w.Write([]byte(`{"slug":"success","data":{"id":9,"category":"vehicle","statusBadge":"bogus"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"slug":"not-found","error":"no route"}`))
		}
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server, token string) Client {
	c, err := NewClient(&Options{BaseURL: srv.URL, Timeout: 5 * time.Second, WorkerToken: token})
	require.NoError(t, err)
	return c
}

func TestClient_WorkerProtocol(t *testing.T) {
	srv := setupTestServer(t, "s3cret")
	defer srv.Close()
	c := newTestClient(t, srv, "s3cret")
	ctx := context.Background()

	job, err := c.Poll(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, uint(4), job.ID)
	assert.Equal(t, models.CategoryVehicle, job.Category)

	job, err = c.Poll(ctx, "idle")
	require.NoError(t, err)
	assert.Nil(t, job)

	resp, err := c.Callback(ctx, types.CallbackRequest{JobID: 4, Status: types.CallbackSuccess})
	require.Error(t, err)
	var fiberErr *fiber.Error
	require.True(t, errors.As(err, &fiberErr))
	assert.Equal(t, http.StatusConflict, fiberErr.Code)
	assert.False(t, resp.Acknowledged)
	assert.Equal(t, "stale callback", resp.Error)
}

func TestClient_Endpoints(t *testing.T) {
	srv := setupTestServer(t, "")
	defer srv.Close()
	c := newTestClient(t, srv, "")
	ctx := context.Background()

	health, err := c.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health["status"])

	job, err := c.GetJob(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, job.Status)

	_, err = c.GetJob(ctx, 5)
	assert.ErrorContains(t, err, "not-found")

	status := models.JobStatusFailed
	list, err := c.GetJobs(ctx, 2, &models.ListOptions{Status: &status, GoalID: 9})
	require.NoError(t, err)
	require.Len(t, list.Rows, 1)
	assert.Equal(t, 51, list.Pagination.Total)

	_, err = c.GetGoal(ctx, 9)
	assert.ErrorContains(t, err, "invalid status badge")

	_, err = c.RefreshGoal(ctx, 77)
	var fiberErr *fiber.Error
	require.True(t, errors.As(err, &fiberErr))
	assert.Equal(t, http.StatusNotFound, fiberErr.Code)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := setupTestServer(t, "")
	defer srv.Close()
	c := newTestClient(t, srv, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.HealthCheck(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
