package candidates

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
)

func TestMergeExcludesDecidedURLs(t *testing.T) {
	goal := &models.Goal{
		DeniedCandidates:      models.Candidates{{URL: "a"}},
		ShortlistedCandidates: models.Candidates{{URL: "b"}},
	}
	result := Merge(goal, []models.Listing{{URL: "a"}, {URL: "b"}, {URL: "c"}}, "carmax")

	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "c", result.Candidates[0].URL)
	assert.Equal(t, 2, result.Excluded)
	assert.Equal(t, models.BadgeCandidatesFound, result.Badge)
}

func TestMergeDropsMissingURLAndDuplicates(t *testing.T) {
	goal := &models.Goal{Candidates: models.Candidates{{URL: "old"}}}
	result := Merge(goal, []models.Listing{
		{URL: "x", Name: "first", Price: 100},
		{URL: ""},
		{URL: "  "},
		{URL: "x", Name: "second"},
		{URL: "old"},
	}, "")

	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "first", result.Candidates[0].Name)
	assert.Equal(t, "old", result.Candidates[1].URL, "existing candidates are not excluded")
	assert.Equal(t, 2, result.Invalid)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 5, result.Received)
}

func TestMergeBadge(t *testing.T) {
	assert.Equal(t, models.BadgeNotFound, Merge(&models.Goal{}, nil, "").Badge)

	selected := &models.Goal{SelectedCandidateURL: "s", ShortlistedCandidates: models.Candidates{{URL: "s"}}}
	assert.Equal(t, models.BadgeInStock, Merge(selected, nil, "").Badge)
}

func TestFromListingDefaults(t *testing.T) {
	c := FromListing(models.Listing{
		Title:   "2023 GMC Sierra 3500HD",
		URL:     " https://www.carmax.com/car/123 ",
		Price:   45990,
		Mileage: 12000,
	}, "")

	assert.Equal(t, "2023 GMC Sierra 3500HD", c.Name)
	assert.Equal(t, "https://www.carmax.com/car/123", c.URL)
	assert.Equal(t, "carmax", c.Retailer)
	assert.Equal(t, DefaultCondition, c.Condition)
	assert.True(t, c.InStock)
	assert.Equal(t, []string{}, c.Features)
	assert.Equal(t, 12000, c.Mileage)
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceURL, []byte(c.URL)).String(), c.ID)

	again := FromListing(models.Listing{URL: "https://www.carmax.com/car/123"}, "")
	assert.Equal(t, c.ID, again.ID, "ids are stable across scrapes")

	inStock := false
	c = FromListing(models.Listing{ID: "L1", URL: "u", Retailer: "TrueCar", InStock: &inStock}, "carmax")
	assert.Equal(t, "L1", c.ID)
	assert.Equal(t, "TrueCar", c.Retailer)
	assert.False(t, c.InStock)

	c = FromListing(models.Listing{URL: "https://www.autotrader.com/x"}, "autotrader-worker")
	assert.Equal(t, "autotrader-worker", c.Retailer)
}

func TestRetailerFromURL(t *testing.T) {
	assert.Equal(t, "carmax", RetailerFromURL("https://www.carmax.com/car/1"))
	assert.Equal(t, "cargurus", RetailerFromURL("https://www.cargurus.co.uk/listing"))
	assert.Equal(t, "", RetailerFromURL("not a url"))
	assert.Equal(t, "", RetailerFromURL(""))
}
