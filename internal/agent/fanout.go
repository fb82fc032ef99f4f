package agent

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// Search is one job as the agent sees it, whether polled or pushed
type Search struct {
	JobID           uint
	Query           string
	RetailerFilters *vehicle.FilterBundle
}

// BackendError is the failure of a single backend
type BackendError struct {
	Backend string
	Err     error
}

func (e BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

// Outcome is the merged result of one fan-out
type Outcome struct {
	Listings  []models.Listing
	Succeeded []string
	Errors    []BackendError
}

// Callback converts the outcome into the callback for job. The job succeeds
// when at least one backend did.
func (o Outcome) Callback(jobID uint, workerID string) types.CallbackRequest {
	req := types.CallbackRequest{
		JobID:    jobID,
		WorkerID: workerID,
		Status:   types.CallbackSuccess,
		Data:     o.Listings,
	}
	if req.Data == nil {
		req.Data = []models.Listing{}
	}
	if len(o.Succeeded) == 1 {
		req.Scraper = o.Succeeded[0]
	}
	if len(o.Succeeded) == 0 {
		req.Status = types.CallbackError
		req.Data = nil
		msgs := make([]string, 0, len(o.Errors))
		for _, e := range o.Errors {
			msgs = append(msgs, e.Error())
		}
		req.Error = strings.Join(msgs, "; ")
		if req.Error == "" {
			req.Error = "no backend could run"
		}
	}
	return req
}

// Runner fans a search out to every backend with staggered, jittered
// start delays
type Runner struct {
	backends []Backend
	stagger  time.Duration
	jitter   time.Duration
	timeout  time.Duration
	rand     func(n int64) int64
}

// NewRunner creates a fan-out runner
func NewRunner(backends []Backend, stagger, jitter, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	return &Runner{
		backends: backends,
		stagger:  stagger,
		jitter:   jitter,
		timeout:  timeout,
		rand:     rand.Int63n,
	}
}

// startDelay is index*stagger plus a random jitter in [0, jitter)
func (r *Runner) startDelay(index int) time.Duration {
	d := time.Duration(index) * r.stagger
	if r.jitter > 0 {
		d += time.Duration(r.rand(int64(r.jitter)))
	}
	return d
}

// Run executes every backend in parallel within the job timeout
func (r *Runner) Run(ctx context.Context, s Search) Outcome {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		backend  string
		listings []models.Listing
		err      error
	}
	results := make([]result, len(r.backends))

	var wg sync.WaitGroup
	for i, b := range r.backends {
		filter := s.RetailerFilters.Get(b.Retailer())
		if filter == nil {
			filter = vehicle.FreeTextFilter(s.Query)
		}
		wg.Add(1)
		go func(i int, b Backend, filter *vehicle.RetailerFilter, delay time.Duration) {
			defer wg.Done()
			results[i].backend = b.Name()
			if err := sleep(ctx, delay); err != nil {
				results[i].err = fmt.Errorf("not started: %w", err)
				return
			}
			start := time.Now()
			results[i].listings, results[i].err = b.Extract(ctx, s.Query, filter)
			logger.DebugWithFields("Backend finished", map[string]interface{}{
				"job_id":   s.JobID,
				"backend":  b.Name(),
				"listings": len(results[i].listings),
				"duration": time.Since(start).String(),
				"failed":   results[i].err != nil,
			})
		}(i, b, filter, r.startDelay(i))
	}
	wg.Wait()

	var out Outcome
	var listings []models.Listing
	for i, res := range results {
		if res.err != nil {
			out.Errors = append(out.Errors, BackendError{Backend: res.backend, Err: res.err})
			continue
		}
		out.Succeeded = append(out.Succeeded, res.backend)
		retailer := r.backends[i].Retailer().String()
		for _, l := range res.listings {
			if l.Retailer == "" {
				l.Retailer = retailer
			}
			listings = append(listings, l)
		}
	}
	out.Listings = dedupeByPrice(listings)
	return out
}

// dedupeByPrice keeps the first listing per url and orders the result by
// ascending price. Listings without a price go last.
func dedupeByPrice(listings []models.Listing) []models.Listing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		key := strings.TrimSpace(l.URL)
		if key != "" {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Price, out[j].Price
		if pi <= 0 || pj <= 0 {
			return pi > 0 && pj <= 0
		}
		return pi < pj
	})
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
