package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/candidates"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/client/mock"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/types"
)

// execute runs args against a fresh command tree backed by m
func execute(t *testing.T, m *mock.MockClient, args ...string) (string, error) {
	t.Helper()
	original := apiClient
	apiClient = m
	t.Cleanup(func() { apiClient = original })

	root := &cobra.Command{Use: "neon", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(NewJobsCmd(), NewGoalsCmd(), NewFiltersCmd(), NewAgentCmd())

	outputBuf := &bytes.Buffer{}
	root.SetOut(outputBuf)
	root.SetErr(outputBuf)
	root.SetArgs(args)
	err := root.Execute()
	return outputBuf.String(), err
}

func TestJobsCommands(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		m := &mock.MockClient{
			GetJobsFn: func(_ context.Context, page int, opts *models.ListOptions) (types.JobListResponse, error) {
				return types.JobListResponse{
					Rows: []models.ScrapeJob{
						{ID: 2, GoalID: 7, Status: models.JobStatusFailed, Attempts: 1, Error: "autotrader: navigation timeout"},
						{ID: 1, GoalID: 7, Status: models.JobStatusCompleted},
					},
					Pagination: types.PaginationResponse{Total: 2, Page: page},
				}, nil
			},
		}
		out, err := execute(t, m, "jobs", "list", "--page", "2", "--status", "failed", "--goal", "7")
		require.NoError(t, err)

		require.Len(t, m.GetJobsCalls, 1)
		call := m.GetJobsCalls[0]
		assert.Equal(t, 2, call.Page)
		assert.Equal(t, uint(7), call.Opts.GoalID)
		require.NotNil(t, call.Opts.Status)
		assert.Equal(t, models.JobStatusFailed, *call.Opts.Status)

		var output jobListOutput
		require.NoError(t, json.Unmarshal([]byte(out), &output))
		assert.Equal(t, 2, output.Total)
		require.Len(t, output.Jobs, 2)
		assert.Equal(t, "autotrader: navigation timeout", output.Jobs[0].Error)
	})

	t.Run("List rejects unknown status", func(t *testing.T) {
		m := &mock.MockClient{}
		_, err := execute(t, m, "jobs", "list", "--status", "stuck")
		assert.Error(t, err)
		assert.Empty(t, m.GetJobsCalls)
	})

	t.Run("Get", func(t *testing.T) {
		m := &mock.MockClient{}
		out, err := execute(t, m, "jobs", "get", "42")
		require.NoError(t, err)
		assert.Equal(t, []uint{42}, m.GetJobCalls)
		assert.Contains(t, out, `"id": 42`)

		_, err = execute(t, m, "jobs", "get", "abc")
		assert.EqualError(t, err, `invalid job id: "abc"`)
	})

	t.Run("Create", func(t *testing.T) {
		m := &mock.MockClient{
			CreateJobFn: func(_ context.Context, req types.JobCreateRequest) (types.EnqueueResponse, error) {
				return types.EnqueueResponse{Job: &models.ScrapeJob{ID: 9, GoalID: req.GoalID, Trigger: req.Trigger}, Created: true}, nil
			},
		}
		out, err := execute(t, m, "jobs", "create", "7", "--trigger", "nightly")
		require.NoError(t, err)
		require.Len(t, m.CreateJobCalls, 1)
		assert.Equal(t, models.JobTriggerNightly, m.CreateJobCalls[0].Trigger)
		assert.Contains(t, out, `"created": true`)

		_, err = execute(t, m, "jobs", "create", "7", "--trigger", "hourly")
		assert.Error(t, err)
		assert.Len(t, m.CreateJobCalls, 1)
	})

	t.Run("API error", func(t *testing.T) {
		m := &mock.MockClient{
			GetJobFn: func(context.Context, uint) (models.ScrapeJob, error) {
				return models.ScrapeJob{}, errors.New("not found")
			},
		}
		_, err := execute(t, m, "jobs", "get", "1")
		assert.EqualError(t, err, "error fetching job: not found")
	})
}

func TestGoalsCommands(t *testing.T) {
	goal := models.Goal{
		ID:          7,
		Title:       "Work truck",
		Category:    models.CategoryVehicle,
		StatusBadge: models.BadgeCandidatesFound,
		Candidates:  models.Candidates{{Name: "2023 GMC Sierra", Price: 61990, Retailer: "carmax", URL: "https://www.carmax.com/car/1"}},
	}

	t.Run("Get", func(t *testing.T) {
		m := &mock.MockClient{GetGoalFn: func(context.Context, uint) (models.Goal, error) { return goal, nil }}
		out, err := execute(t, m, "goals", "get", "7")
		require.NoError(t, err)

		var output goalOutput
		require.NoError(t, json.Unmarshal([]byte(out), &output))
		assert.Equal(t, "candidates_found", output.StatusBadge)
		require.Len(t, output.Candidates, 1)
		assert.Equal(t, 61990.0, output.Candidates[0].Price)
		assert.Empty(t, output.Denied)
	})

	t.Run("Sync", func(t *testing.T) {
		m := &mock.MockClient{}
		_, err := execute(t, m, "goals", "sync", "7",
			"--title", "Work truck",
			"--search-term", "2023 GMC Sierra 3500HD",
			"--filters", `{"make":"GMC","model":"Sierra","year":2023}`)
		require.NoError(t, err)
		require.Len(t, m.SyncGoalCalls, 1)
		req := m.SyncGoalCalls[0]
		assert.Equal(t, models.CategoryVehicle, req.Category)
		require.NotNil(t, req.SearchFilters)
		assert.Equal(t, "Sierra", req.SearchFilters.Model)

		_, err = execute(t, m, "goals", "sync", "7", "--filters", `{"maxPrice":-5}`)
		assert.Error(t, err)
		_, err = execute(t, m, "goals", "sync", "7", "--filters", `{`)
		assert.Error(t, err)
		assert.Len(t, m.SyncGoalCalls, 1)
	})

	t.Run("Refresh", func(t *testing.T) {
		m := &mock.MockClient{
			RefreshGoalFn: func(_ context.Context, id uint) (types.EnqueueResponse, error) {
				return types.EnqueueResponse{Job: &models.ScrapeJob{ID: 3, GoalID: id, Status: models.JobStatusPending}}, nil
			},
		}
		out, err := execute(t, m, "goals", "refresh", "7")
		require.NoError(t, err)
		assert.Equal(t, []uint{7}, m.RefreshGoalCalls)
		assert.Contains(t, out, `"created": false`)
	})

	t.Run("Candidate actions", func(t *testing.T) {
		m := &mock.MockClient{}
		for _, action := range []string{"deny", "restore", "shortlist", "unshortlist", "select"} {
			_, err := execute(t, m, "goals", action, "7", "https://www.carmax.com/car/1")
			require.NoError(t, err, action)
		}
		require.Len(t, m.CandidateActionCalls, 5)
		assert.Equal(t, candidates.ActionDeny, m.CandidateActionCalls[0].Action)
		assert.Equal(t, candidates.ActionSelect, m.CandidateActionCalls[4].Action)
		assert.Equal(t, "https://www.carmax.com/car/1", m.CandidateActionCalls[4].URL)

		_, err := execute(t, m, "goals", "deny", "7")
		assert.Error(t, err)
	})
}

func TestFiltersCompileCommand(t *testing.T) {
	m := &mock.MockClient{
		CompileFiltersFn: func(_ context.Context, d vehicle.Descriptor) (types.CompileResponse, error) {
			return types.CompileResponse{Retailers: map[string]*vehicle.RetailerFilter{
				"carmax": {URL: "https://www.carmax.com/cars/gmc/sierra-3500"},
			}}, nil
		},
	}

	out, err := execute(t, m, "filters", "compile", "2023 GMC Sierra 3500HD Denali", "--max-price", "80000", "--trims", "Denali,AT4")
	require.NoError(t, err)
	require.Len(t, m.CompileFiltersCalls, 1)
	d := m.CompileFiltersCalls[0]
	assert.Equal(t, "GMC", d.Make)
	assert.Equal(t, "Sierra", d.Model)
	assert.Equal(t, 2023, d.Year)
	assert.Equal(t, 80000, d.MaxPrice)
	assert.Equal(t, []string{"Denali", "AT4"}, d.Trims)
	assert.Contains(t, out, "sierra-3500")

	_, err = execute(t, m, "filters", "compile", "--make", "GMC")
	assert.ErrorContains(t, err, "make and model are required")
	assert.Len(t, m.CompileFiltersCalls, 1)
}

func TestAgentCommand_Config(t *testing.T) {
	t.Setenv("AGENT_CONFIG", "")
	_, err := execute(t, &mock.MockClient{}, "agent", "run")
	assert.ErrorContains(t, err, "agent config is required")

	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backends: []\n"), 0o600))
	_, err = execute(t, &mock.MockClient{}, "agent", "serve", "--config", path)
	assert.ErrorContains(t, err, "at least one backend")
}
