package candidates

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
)

const (
	// DefaultCondition is used when a listing does not state one
	DefaultCondition = "used"
	// DefaultDelivery is used when a listing does not state a delivery estimate
	DefaultDelivery = "Contact seller"
)

// MergeResult is the outcome of folding scraped listings into a goal
type MergeResult struct {
	Candidates models.Candidates
	Badge      models.StatusBadge
	// Received is the number of listings the worker returned
	Received int
	// Excluded counts listings dropped because the user already denied or
	// shortlisted them
	Excluded int
	// Invalid counts listings dropped for lacking a url
	Invalid int
	// Duplicates counts repeated urls after the first occurrence
	Duplicates int
}

// Merge builds the goal's next active partition from scraped listings.
// Denied and shortlisted urls are excluded; listings without a url are
// dropped; the first occurrence of a url wins. The active partition is
// replaced wholesale, so stable listings survive re-scrapes.
func Merge(goal *models.Goal, listings []models.Listing, scraper string) MergeResult {
	excluded := goal.DeniedCandidates.URLs()
	for u := range goal.ShortlistedCandidates.URLs() {
		excluded[u] = struct{}{}
	}

	result := MergeResult{
		Candidates: make(models.Candidates, 0, len(listings)),
		Received:   len(listings),
	}
	seen := make(map[string]struct{}, len(listings))
	for _, l := range listings {
		link := strings.TrimSpace(l.URL)
		if link == "" {
			result.Invalid++
			continue
		}
		if _, ok := excluded[link]; ok {
			result.Excluded++
			continue
		}
		if _, ok := seen[link]; ok {
			result.Duplicates++
			continue
		}
		seen[link] = struct{}{}
		result.Candidates = append(result.Candidates, FromListing(l, scraper))
	}
	result.Badge = goal.BadgeFor(result.Candidates)
	return result
}

// FromListing maps a raw listing onto the candidate shape, filling defaults
func FromListing(l models.Listing, scraper string) models.Candidate {
	link := strings.TrimSpace(l.URL)
	c := models.Candidate{
		ID:                l.ID,
		Name:              firstNonEmpty(l.Name, l.Title),
		Price:             float64(l.Price),
		Retailer:          firstNonEmpty(l.Retailer, scraper, RetailerFromURL(link)),
		URL:               link,
		Image:             l.Image,
		Condition:         firstNonEmpty(l.Condition, DefaultCondition),
		Rating:            float64(l.Rating),
		ReviewCount:       int(l.ReviewCount),
		InStock:           true,
		EstimatedDelivery: firstNonEmpty(l.EstimatedDelivery, DefaultDelivery),
		Features:          l.Features,
		Mileage:           int(l.Mileage),
		Location:          l.Location,
	}
	if c.ID == "" {
		c.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
	}
	if l.InStock != nil {
		c.InStock = *l.InStock
	}
	if c.Features == nil {
		c.Features = []string{}
	}
	return c
}

// RetailerFromURL derives a retailer name from the registrable domain of the
// url, e.g. "https://www.carmax.com/car/1" gives "carmax"
func RetailerFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	suffix, _ := publicsuffix.PublicSuffix(domain)
	return strings.TrimSuffix(domain, "."+suffix)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
