package routes

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"health", HealthCheckURL(), "/health"},
		{"poll", ScraperPollURL(), "/scrapers/poll"},
		{"callback", ScraperCallbackURL(), "/scrapers/callback"},
		{"compile", CompileFiltersURL(), "/api/v1/filters/compile"},
		{"goal", GetGoalURL("7"), "/api/v1/goals/7"},
		{"sync goal", SyncGoalURL("7"), "/api/v1/goals/7"},
		{"candidate action", CandidateActionURL("7", "deny"), "/api/v1/goals/7/candidates/deny"},
		{"refresh", RefreshGoalURL("7"), "/api/v1/goals/7/refresh"},
		{"jobs", GetJobsURL(nil), "/api/v1/jobs"},
		{"jobs with query", GetJobsURL(url.Values{"status": {"failed"}}), "/api/v1/jobs?status=failed"},
		{"job", GetJobURL("3"), "/api/v1/jobs/3"},
		{"create job", CreateJobURL(), "/api/v1/jobs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	assert.Empty(t, BuildURL("NoSuchRoute", nil, nil))
}
