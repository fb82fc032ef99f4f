package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

func TestServer(t *testing.T) {
	api := newFakeAPI()
	a := newTestAgent(t, api, carmaxBackend())
	app := NewServer(context.Background(), a, "s3cret")

	send := func(body, token string) (int, DispatchResponse) {
		req := httptest.NewRequest(http.MethodPost, JobsPath, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set(types.WorkerTokenHeader, token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var out DispatchResponse
		_ = json.Unmarshal(raw, &out)
		return resp.StatusCode, out
	}

	status, _ := send(`{"jobId":5,"query":"gmc sierra"}`, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, out := send(`{"query":"gmc sierra"}`, "s3cret")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "error", out.Status)

	status, _ = send(`{"jobId":5}`, "s3cret")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = send(`{"jobId":`, "s3cret")
	assert.Equal(t, http.StatusBadRequest, status)

	status, out = send(`{"jobId":5,"query":"gmc sierra","retailerFilters":{"query":"gmc sierra","retailers":{}}}`, "s3cret")
	require.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, DispatchResponse{Status: "dispatched", JobID: 5}, out)

	a.Wait()
	callbacks := api.recorded()
	require.Len(t, callbacks, 1)
	assert.Equal(t, uint(5), callbacks[0].JobID)
	assert.Empty(t, callbacks[0].WorkerID, "pushed jobs are owned by the dispatcher")
	assert.Equal(t, types.CallbackSuccess, callbacks[0].Status)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
