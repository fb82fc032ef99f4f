package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/compiler"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/repos"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/extractor"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// DefaultExtractTimeout bounds one extractor call
const DefaultExtractTimeout = 60 * time.Second

// Filters resolves the retailer filters a worker searches with
type Filters struct {
	goals     *repos.GoalRepository
	compiler  *compiler.Compiler
	extractor extractor.Extractor
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewFiltersService creates a filters service. ext may be nil, in which case
// goals fall back to compiled or free-text filters only.
func NewFiltersService(goals *repos.GoalRepository, c *compiler.Compiler, ext extractor.Extractor, timeout time.Duration) *Filters {
	if timeout <= 0 {
		timeout = DefaultExtractTimeout
	}
	return &Filters{goals: goals, compiler: c, extractor: ext, timeout: timeout}
}

// Compile compiles a descriptor for every retailer
func (s *Filters) Compile(d vehicle.Descriptor) map[string]*vehicle.RetailerFilter {
	return s.compiler.Compile(d)
}

// Resolve picks the filter for every retailer: the compiled structured
// descriptor first, then the cached extractor output, then a free-text
// search on the goal's query. A cache extracted for another query is ignored.
func (s *Filters) Resolve(goal *models.Goal) *vehicle.FilterBundle {
	query := SearchQuery(goal)

	var compiled map[string]*vehicle.RetailerFilter
	if goal.SearchFilters != nil {
		compiled = s.compiler.Compile(*goal.SearchFilters)
	}
	cached := goal.RetailerFilters
	if cached != nil && cached.Query != query {
		cached = nil
	}

	bundle := &vehicle.FilterBundle{
		Query:     query,
		Retailers: make(map[string]*vehicle.RetailerFilter, len(vehicle.Retailers())),
	}
	for _, id := range vehicle.Retailers() {
		if f := compiled[id.String()]; f != nil {
			bundle.Retailers[id.String()] = f
			continue
		}
		if f := cached.Get(id); f != nil {
			bundle.Retailers[id.String()] = f
			continue
		}
		bundle.Retailers[id.String()] = vehicle.FreeTextFilter(query)
	}
	return bundle
}

// Refresh runs the extractor for the goal and caches its output under the
// goal's query. On failure the previous cache is kept. If the search term
// changed while extracting, repos.ErrStaleFilters is returned and nothing is
// cached.
func (s *Filters) Refresh(ctx context.Context, goal *models.Goal) (*vehicle.FilterBundle, error) {
	if s.extractor == nil {
		return nil, extractor.ErrNoResult
	}
	query := SearchQuery(goal)
	if query == "" {
		return nil, extractor.ErrNoResult
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	extracted, err := s.extractor.Extract(ctx, query)
	if err != nil {
		return nil, err
	}
	if extracted == nil {
		return nil, extractor.ErrNoResult
	}
	bundle := *extracted
	bundle.Query = query
	if err := s.goals.SetRetailerFilters(ctx, goal.ID, goal.SearchTerm, &bundle); err != nil {
		return nil, err
	}
	goal.RetailerFilters = &bundle
	return &bundle, nil
}

// Warm refreshes the goal's cached filters in the background. It never
// blocks the caller and failures are only logged.
func (s *Filters) Warm(goal *models.Goal) {
	if s.extractor == nil {
		return
	}
	g := *goal
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		bundle, err := s.Refresh(context.Background(), &g)
		if errors.Is(err, repos.ErrStaleFilters) {
			logger.Debugf("Search term of goal %d changed during extraction, discarding filters", g.ID)
			return
		}
		if err != nil {
			logger.WarnWithFields("Filter extraction failed, keeping previous filters", map[string]interface{}{
				"goal_id": g.ID,
				"error":   err.Error(),
			})
			return
		}
		logger.InfoWithFields("Cached retailer filters", map[string]interface{}{
			"goal_id":  g.ID,
			"compiled": bundle.Compiled(),
		})
	}()
}

// Wait blocks until every background refresh has finished
func (s *Filters) Wait() {
	s.wg.Wait()
}

// SearchQuery is the free-text query for a goal
func SearchQuery(goal *models.Goal) string {
	if q := strings.TrimSpace(goal.SearchTerm); q != "" {
		return q
	}
	if goal.SearchFilters != nil {
		if q := strings.TrimSpace(goal.SearchFilters.String()); q != "" {
			return q
		}
	}
	return strings.TrimSpace(goal.Title)
}
