// Package models contains the public aliases of the acquisition records.
// NOTE: These alias the internal definitions so external tools can decode
// API responses without importing internal packages.
package models

import (
	internalmodels "github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
)

// DefaultLimit is the max number of rows returned per listing API call
const DefaultLimit = internalmodels.DefaultLimit

// ListOptions represents pagination and filtering options for job listings
type ListOptions = internalmodels.ListOptions

// Goal is the acquisition view of a user goal (public alias)
type Goal = internalmodels.Goal

// Candidate is one marketplace listing matched against a goal (public alias)
type Candidate = internalmodels.Candidate

// Candidates is an ordered candidate partition (public alias)
type Candidates = internalmodels.Candidates

// Listing is a raw listing returned by a scraping worker (public alias)
type Listing = internalmodels.Listing

// Number decodes numbers and formatted strings such as "$45,990" (public alias)
type Number = internalmodels.Number

// Category is the kind of thing a goal is about (public alias)
type Category = internalmodels.Category

// CategoryVehicle is the only category the pipeline acquires candidates for
const CategoryVehicle = internalmodels.CategoryVehicle

// StatusBadge summarizes a goal's acquisition state (public alias)
type StatusBadge = internalmodels.StatusBadge

// Status badges (public aliases)
const (
	BadgePendingSearch   = internalmodels.BadgePendingSearch
	BadgeCandidatesFound = internalmodels.BadgeCandidatesFound
	BadgeInStock         = internalmodels.BadgeInStock
	BadgeNotFound        = internalmodels.BadgeNotFound
	BadgeNotSupported    = internalmodels.BadgeNotSupported
)

// ParseStatusBadge converts a string to a StatusBadge
func ParseStatusBadge(str string) (StatusBadge, error) {
	return internalmodels.ParseStatusBadge(str)
}
