package compiler

import (
	"strings"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

const carvanaBaseURL = "https://www.carvana.com/cars/"

// compileCarvana returns the filter object the worker applies through the
// Carvana search UI. The model is spelled with spaces and without HD.
func compileCarvana(t target) *vehicle.RetailerFilter {
	filters := t.baseFilters(false)
	if len(t.trims) > 0 {
		filters["trims"] = append([]string(nil), t.trims...)
	}
	switch {
	case t.startYear > 0 && t.startYear == t.endYear:
		filters["year"] = t.startYear
	default:
		if t.startYear > 0 {
			filters["yearMin"] = t.startYear
		}
		if t.endYear > 0 {
			filters["yearMax"] = t.endYear
		}
	}
	if color := t.firstColor(); color != "" {
		filters["exteriorColor"] = strings.ToUpper(color[:1]) + color[1:]
	}
	if t.drive != "" {
		filters["drivetrain"] = strings.ToUpper(t.drive)
	}
	if t.maxPrice > 0 {
		filters["maxPrice"] = t.maxPrice
	}

	return &vehicle.RetailerFilter{
		URL:     carvanaBaseURL + slug(t.make) + "-" + t.modelSlug(false),
		Filters: filters,
	}
}
