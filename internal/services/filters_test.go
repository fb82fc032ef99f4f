package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/repos"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

func TestResolve_IgnoresCacheOfAnotherQuery(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	goal := ts.createGoal(t, models.CategoryVehicle, func(g *models.Goal) {
		g.SearchTerm = "Toyota Tacoma"
		g.RetailerFilters = &vehicle.FilterBundle{
			Query:     "GMC Sierra",
			Retailers: map[string]*vehicle.RetailerFilter{"carmax": {URL: "https://www.carmax.com/cars/gmc/sierra"}},
		}
	})

	bundle := ts.Filters.Resolve(goal)
	assert.Equal(t, "Toyota Tacoma", bundle.Query)
	for _, id := range vehicle.Retailers() {
		f := bundle.Get(id)
		require.NotNil(t, f, id)
		assert.True(t, f.FreeText, id)
		assert.Equal(t, "Toyota Tacoma", f.Filters["query"], id)
	}
}

func TestRefresh_StampsQuery(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	ts.Extractor.bundle = &vehicle.FilterBundle{
		Query:     "sierra",
		Retailers: map[string]*vehicle.RetailerFilter{"carmax": {URL: "https://www.carmax.com/cars/gmc/sierra-3500"}},
	}
	ts.Extractor.err = nil
	goal := ts.createGoal(t, models.CategoryVehicle)

	bundle, err := ts.Filters.Refresh(ts.ctx, goal)
	require.NoError(t, err)
	assert.Equal(t, goal.SearchTerm, bundle.Query)
	assert.Equal(t, "sierra", ts.Extractor.bundle.Query)

	resolved := ts.Filters.Resolve(ts.goal(t, goal.ID))
	assert.Equal(t, "https://www.carmax.com/cars/gmc/sierra-3500", resolved.Get(vehicle.RetailerCarmax).URL)
}

func TestRefresh_DiscardsFiltersForChangedTerm(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	ts.Extractor.bundle = &vehicle.FilterBundle{
		Retailers: map[string]*vehicle.RetailerFilter{"carmax": {URL: "https://www.carmax.com/cars/gmc/sierra-3500"}},
	}
	ts.Extractor.err = nil
	goal := ts.createGoal(t, models.CategoryVehicle)
	snapshot := *goal

	// the term changes while the extraction for the old one is in flight
	goal.SearchTerm = "Toyota Tacoma"
	_, err := ts.Store.Goals.Upsert(ts.ctx, goal)
	require.NoError(t, err)

	_, err = ts.Filters.Refresh(ts.ctx, &snapshot)
	assert.ErrorIs(t, err, repos.ErrStaleFilters)
	assert.Nil(t, ts.goal(t, goal.ID).RetailerFilters)
}
