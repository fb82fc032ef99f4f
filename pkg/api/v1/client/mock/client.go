// Package mock provides a function-field implementation of client.Client
package mock

import (
	"context"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/candidates"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/client"
)

var _ client.Client = (*MockClient)(nil)

// MockClient implements the Client interface for testing
type MockClient struct {
	// Function fields that can be set to mock behavior
	HealthCheckFn     func(ctx context.Context) (map[string]string, error)
	PollFn            func(ctx context.Context, workerID string) (*types.PollJob, error)
	CallbackFn        func(ctx context.Context, req types.CallbackRequest) (types.CallbackResponse, error)
	CompileFiltersFn  func(ctx context.Context, d vehicle.Descriptor) (types.CompileResponse, error)
	GetGoalFn         func(ctx context.Context, id uint) (models.Goal, error)
	SyncGoalFn        func(ctx context.Context, id uint, req types.GoalSyncRequest) (types.GoalSyncResponse, error)
	CandidateActionFn func(ctx context.Context, id uint, action candidates.Action, url string) (models.Goal, error)
	RefreshGoalFn     func(ctx context.Context, id uint) (types.EnqueueResponse, error)
	GetJobsFn         func(ctx context.Context, page int, opts *models.ListOptions) (types.JobListResponse, error)
	GetJobFn          func(ctx context.Context, id uint) (models.ScrapeJob, error)
	CreateJobFn       func(ctx context.Context, req types.JobCreateRequest) (types.EnqueueResponse, error)

	// Call tracking for verification
	GetJobsCalls []struct {
		Page int
		Opts *models.ListOptions
	}
	GetJobCalls          []uint
	CreateJobCalls       []types.JobCreateRequest
	GetGoalCalls         []uint
	SyncGoalCalls        []types.GoalSyncRequest
	RefreshGoalCalls     []uint
	CandidateActionCalls []struct {
		ID     uint
		Action candidates.Action
		URL    string
	}
	CompileFiltersCalls  []vehicle.Descriptor
}

// HealthCheck implements client.Client
func (m *MockClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}
	return map[string]string{"status": "healthy"}, nil
}

// Poll implements client.Client
func (m *MockClient) Poll(ctx context.Context, workerID string) (*types.PollJob, error) {
	if m.PollFn != nil {
		return m.PollFn(ctx, workerID)
	}
	return nil, nil
}

// Callback implements client.Client
func (m *MockClient) Callback(ctx context.Context, req types.CallbackRequest) (types.CallbackResponse, error) {
	if m.CallbackFn != nil {
		return m.CallbackFn(ctx, req)
	}
	return types.CallbackResponse{Acknowledged: true, Status: req.Status}, nil
}

// CompileFilters implements client.Client
func (m *MockClient) CompileFilters(ctx context.Context, d vehicle.Descriptor) (types.CompileResponse, error) {
	m.CompileFiltersCalls = append(m.CompileFiltersCalls, d)
	if m.CompileFiltersFn != nil {
		return m.CompileFiltersFn(ctx, d)
	}
	return types.CompileResponse{}, nil
}

// GetGoal implements client.Client
func (m *MockClient) GetGoal(ctx context.Context, id uint) (models.Goal, error) {
	m.GetGoalCalls = append(m.GetGoalCalls, id)
	if m.GetGoalFn != nil {
		return m.GetGoalFn(ctx, id)
	}
	return models.Goal{ID: id}, nil
}

// SyncGoal implements client.Client
func (m *MockClient) SyncGoal(ctx context.Context, id uint, req types.GoalSyncRequest) (types.GoalSyncResponse, error) {
	m.SyncGoalCalls = append(m.SyncGoalCalls, req)
	if m.SyncGoalFn != nil {
		return m.SyncGoalFn(ctx, id, req)
	}
	return types.GoalSyncResponse{Goal: req.ToGoal(id)}, nil
}

// CandidateAction implements client.Client
func (m *MockClient) CandidateAction(ctx context.Context, id uint, action candidates.Action, url string) (models.Goal, error) {
	m.CandidateActionCalls = append(m.CandidateActionCalls, struct {
		ID     uint
		Action candidates.Action
		URL    string
	}{id, action, url})
	if m.CandidateActionFn != nil {
		return m.CandidateActionFn(ctx, id, action, url)
	}
	return models.Goal{ID: id}, nil
}

// RefreshGoal implements client.Client
func (m *MockClient) RefreshGoal(ctx context.Context, id uint) (types.EnqueueResponse, error) {
	m.RefreshGoalCalls = append(m.RefreshGoalCalls, id)
	if m.RefreshGoalFn != nil {
		return m.RefreshGoalFn(ctx, id)
	}
	return types.EnqueueResponse{}, nil
}

// GetJobs implements client.Client
func (m *MockClient) GetJobs(ctx context.Context, page int, opts *models.ListOptions) (types.JobListResponse, error) {
	m.GetJobsCalls = append(m.GetJobsCalls, struct {
		Page int
		Opts *models.ListOptions
	}{page, opts})
	if m.GetJobsFn != nil {
		return m.GetJobsFn(ctx, page, opts)
	}
	return types.JobListResponse{}, nil
}

// GetJob implements client.Client
func (m *MockClient) GetJob(ctx context.Context, id uint) (models.ScrapeJob, error) {
	m.GetJobCalls = append(m.GetJobCalls, id)
	if m.GetJobFn != nil {
		return m.GetJobFn(ctx, id)
	}
	return models.ScrapeJob{ID: id}, nil
}

// CreateJob implements client.Client
func (m *MockClient) CreateJob(ctx context.Context, req types.JobCreateRequest) (types.EnqueueResponse, error) {
	m.CreateJobCalls = append(m.CreateJobCalls, req)
	if m.CreateJobFn != nil {
		return m.CreateJobFn(ctx, req)
	}
	return types.EnqueueResponse{}, nil
}
