package compiler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

const carmaxBaseURL = "https://www.carmax.com"

// compileCarmax nests make, model-series, trim and color as path segments.
// CarMax lists heavy duty trucks without the HD suffix.
func compileCarmax(t target) *vehicle.RetailerFilter {
	parts := []string{"cars", slug(t.make), t.modelSlug(false)}
	filters := t.baseFilters(false)

	if trim := t.firstTrim(); trim != "" {
		parts = append(parts, slug(trim))
		filters["trim"] = trim
	}
	if color := t.firstColor(); color != "" {
		parts = append(parts, color)
		filters["color"] = color
	}

	q := url.Values{}
	q.Set("showreservedcars", "false")
	if t.maxPrice > 0 {
		q.Set("price", fmt.Sprintf("-%d", t.maxPrice))
		filters["maxPrice"] = t.maxPrice
	}
	// No year filter in the CarMax path grammar; the worker filters on these.
	if t.startYear > 0 {
		filters["minYear"] = t.startYear
	}
	if t.endYear > 0 {
		filters["maxYear"] = t.endYear
	}

	return &vehicle.RetailerFilter{
		URL:     carmaxBaseURL + "/" + strings.Join(parts, "/") + "?" + q.Encode(),
		Filters: filters,
	}
}
