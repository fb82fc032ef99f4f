// Package client provides the API client for the candidate acquisition API
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/candidates"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/transport"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/routes"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client is the interface for API client
type Client interface {
	// Health Check
	HealthCheck(ctx context.Context) (map[string]string, error)

	// Worker protocol
	Poll(ctx context.Context, workerID string) (*types.PollJob, error)
	Callback(ctx context.Context, req types.CallbackRequest) (types.CallbackResponse, error)

	// Filter Endpoints
	CompileFilters(ctx context.Context, d vehicle.Descriptor) (types.CompileResponse, error)

	// Goal Endpoints
	GetGoal(ctx context.Context, id uint) (models.Goal, error)
	SyncGoal(ctx context.Context, id uint, req types.GoalSyncRequest) (types.GoalSyncResponse, error)
	CandidateAction(ctx context.Context, id uint, action candidates.Action, url string) (models.Goal, error)
	RefreshGoal(ctx context.Context, id uint) (types.EnqueueResponse, error)

	// Job Endpoints
	GetJobs(ctx context.Context, page int, opts *models.ListOptions) (types.JobListResponse, error)
	GetJob(ctx context.Context, id uint) (models.ScrapeJob, error)
	CreateJob(ctx context.Context, req types.JobCreateRequest) (types.EnqueueResponse, error)
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration

	// WorkerToken is sent on worker protocol calls
	WorkerToken string
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL     string
	timeout     time.Duration
	workerToken string
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &APIClient{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		timeout:     timeout,
		workerToken: opts.WorkerToken,
	}, nil
}

// executeRequest sends the request and decodes the response into response.
// Non-2xx responses become a *fiber.Error carrying the raw body.
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	headers := map[string]string{}
	if c.workerToken != "" && strings.HasPrefix(endpoint, routes.ScrapersPrefix) {
		headers[types.WorkerTokenHeader] = c.workerToken
	}

	raw, err := transport.Do(ctx, transport.Request{
		Method:  method,
		URL:     c.baseURL + endpoint,
		Headers: headers,
		Body:    body,
		Timeout: c.timeout,
	})
	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		return &fiber.Error{Code: statusErr.Code, Message: statusErr.Body}
	}
	if err != nil {
		return err
	}

	if response != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, response); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}

// executeSlugRequest unwraps the data of a slug envelope into response
func (c *APIClient) executeSlugRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	var envelope struct {
		Slug  types.Slug      `json:"slug"`
		Error string          `json:"error"`
		Data  json.RawMessage `json:"data"`
	}
	if err := c.executeRequest(ctx, method, endpoint, body, &envelope); err != nil {
		return err
	}
	if envelope.Slug != types.SuccessSlug {
		return fmt.Errorf("%s: %s", envelope.Slug, envelope.Error)
	}
	if response == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, response); err != nil {
		return fmt.Errorf("error decoding response data: %w", err)
	}
	return nil
}

func id(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

// HealthCheck checks the health of the API
func (c *APIClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	var response map[string]string
	err := c.executeRequest(ctx, http.MethodGet, routes.HealthCheckURL(), nil, &response)
	return response, err
}

// Poll claims the next job, or returns nil when the queue is empty
func (c *APIClient) Poll(ctx context.Context, workerID string) (*types.PollJob, error) {
	var response types.PollResponse
	err := c.executeRequest(ctx, http.MethodPost, routes.ScraperPollURL(), types.PollRequest{WorkerID: workerID}, &response)
	if err != nil {
		return nil, err
	}
	return response.Job, nil
}

// Callback reports a job outcome. A rejected callback returns the decoded
// response together with an error.
func (c *APIClient) Callback(ctx context.Context, req types.CallbackRequest) (types.CallbackResponse, error) {
	var response types.CallbackResponse
	err := c.executeRequest(ctx, http.MethodPost, routes.ScraperCallbackURL(), req, &response)

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		_ = json.Unmarshal([]byte(fiberErr.Message), &response)
	}
	return response, err
}

// CompileFilters compiles a descriptor for every retailer
func (c *APIClient) CompileFilters(ctx context.Context, d vehicle.Descriptor) (types.CompileResponse, error) {
	var response types.CompileResponse
	err := c.executeSlugRequest(ctx, http.MethodPost, routes.CompileFiltersURL(), types.CompileRequest{Descriptor: d}, &response)
	return response, err
}

// GetGoal retrieves a goal with its candidate partitions
func (c *APIClient) GetGoal(ctx context.Context, goalID uint) (models.Goal, error) {
	var response models.Goal
	err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetGoalURL(id(goalID)), nil, &response)
	return response, err
}

// SyncGoal creates or updates a goal
func (c *APIClient) SyncGoal(ctx context.Context, goalID uint, req types.GoalSyncRequest) (types.GoalSyncResponse, error) {
	var response types.GoalSyncResponse
	err := c.executeSlugRequest(ctx, http.MethodPut, routes.SyncGoalURL(id(goalID)), req, &response)
	return response, err
}

// CandidateAction applies a candidate action and returns the updated goal
func (c *APIClient) CandidateAction(ctx context.Context, goalID uint, action candidates.Action, link string) (models.Goal, error) {
	var response models.Goal
	endpoint := routes.CandidateActionURL(id(goalID), string(action))
	err := c.executeSlugRequest(ctx, http.MethodPost, endpoint, types.CandidateActionRequest{URL: link}, &response)
	return response, err
}

// RefreshGoal requests a refresh of the goal's candidates
func (c *APIClient) RefreshGoal(ctx context.Context, goalID uint) (types.EnqueueResponse, error) {
	var response types.EnqueueResponse
	err := c.executeSlugRequest(ctx, http.MethodPost, routes.RefreshGoalURL(id(goalID)), nil, &response)
	return response, err
}

// GetJobs lists jobs, filtered by the status and goal of opts
func (c *APIClient) GetJobs(ctx context.Context, page int, opts *models.ListOptions) (types.JobListResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if opts != nil {
		if opts.Status != nil {
			q.Set("status", opts.Status.String())
		}
		if opts.GoalID != 0 {
			q.Set("goalId", id(opts.GoalID))
		}
	}

	var response types.JobListResponse
	err := c.executeRequest(ctx, http.MethodGet, routes.GetJobsURL(q), nil, &response)
	return response, err
}

// GetJob retrieves a job by ID
func (c *APIClient) GetJob(ctx context.Context, jobID uint) (models.ScrapeJob, error) {
	var response models.ScrapeJob
	err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetJobURL(id(jobID)), nil, &response)
	return response, err
}

// CreateJob enqueues a scrape job
func (c *APIClient) CreateJob(ctx context.Context, req types.JobCreateRequest) (types.EnqueueResponse, error) {
	var response types.EnqueueResponse
	err := c.executeSlugRequest(ctx, http.MethodPost, routes.CreateJobURL(), req, &response)
	return response, err
}
