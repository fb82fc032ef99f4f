package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

func TestCategoryIsSupported(t *testing.T) {
	assert.True(t, CategoryVehicle.IsSupported())
	assert.True(t, Category("Vehicle").IsSupported())
	assert.False(t, Category("furniture").IsSupported())
	assert.False(t, Category("").IsSupported())
}

func TestGoalBadgeFor(t *testing.T) {
	g := &Goal{}
	assert.Equal(t, BadgeNotFound, g.BadgeFor(nil))
	assert.Equal(t, BadgeCandidatesFound, g.BadgeFor(Candidates{{URL: "a"}}))

	g.SelectedCandidateURL = "b"
	assert.Equal(t, BadgeInStock, g.BadgeFor(nil))
}

func TestGoalValidate(t *testing.T) {
	tests := []struct {
		name    string
		goal    Goal
		wantErr bool
	}{
		{"valid", Goal{ID: 1, Category: CategoryVehicle, Status: GoalStatusActive}, false},
		{"missing id", Goal{Category: CategoryVehicle}, true},
		{"missing category", Goal{ID: 1}, true},
		{"bad status", Goal{ID: 1, Category: CategoryVehicle, Status: "paused"}, true},
		{"bad filters", Goal{ID: 1, Category: CategoryVehicle, SearchFilters: &vehicle.Descriptor{StartYear: 2024, EndYear: 2020}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.goal.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusBadgeJSON(t *testing.T) {
	var b StatusBadge
	require.NoError(t, json.Unmarshal([]byte(`"not_supported"`), &b))
	assert.Equal(t, BadgeNotSupported, b)
	assert.Error(t, json.Unmarshal([]byte(`"lost"`), &b))
}

func TestCandidatesLookup(t *testing.T) {
	cs := Candidates{{URL: "a"}, {URL: "b"}}
	assert.Equal(t, 1, cs.Index("b"))
	assert.Equal(t, -1, cs.Index("z"))
	assert.True(t, cs.Contains("a"))
	assert.Len(t, cs.URLs(), 2)
}

func TestListingNumbers(t *testing.T) {
	var l Listing
	require.NoError(t, json.Unmarshal([]byte(`{
		"url": "https://example.com/1",
		"price": "$45,990",
		"mileage": 12000,
		"rating": null,
		"reviewCount": "17 reviews"
	}`), &l))
	assert.Equal(t, Number(45990), l.Price)
	assert.Equal(t, Number(12000), l.Mileage)
	assert.Equal(t, Number(0), l.Rating)
	assert.Equal(t, Number(17), l.ReviewCount)

	assert.Error(t, json.Unmarshal([]byte(`{"price": true}`), &l))
	assert.Error(t, json.Unmarshal([]byte(`{"price": "1.2.3"}`), &l))
}
