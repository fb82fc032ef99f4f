package compiler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

const autotraderBaseURL = "https://www.autotrader.com/cars-for-sale/all-cars"

// autotraderMakeCodes lists makes whose code is not the upper-cased name
var autotraderMakeCodes = map[string]string{
	"chevrolet":     "CHEV",
	"chevy":         "CHEV",
	"mercedes-benz": "MB",
	"volkswagen":    "VOLKS",
	"land-rover":    "ROV",
	"alfa-romeo":    "ALFA",
}

var autotraderDriveGroups = map[string]string{
	drive4WD: "AWD4WD",
	driveAWD: "AWD4WD",
	driveFWD: "FWD",
	driveRWD: "RWD",
	drive2WD: "2WD",
}

func autotraderMakeCode(name string) string {
	if c, ok := autotraderMakeCodes[slug(name)]; ok {
		return c
	}
	return code(name)
}

// autotraderModelCode returns {MAKE}{SERIES}PU for trucks with a series and
// the upper-cased model name otherwise. The HD suffix is kept.
func autotraderModelCode(t target) string {
	if t.series != "" {
		return autotraderMakeCode(t.make) + t.series + "PU"
	}
	return code(t.model)
}

// compileAutotrader builds the makeCode/modelCode/trimCode query triple
func compileAutotrader(t target) *vehicle.RetailerFilter {
	makeCode := autotraderMakeCode(t.make)
	modelCode := autotraderModelCode(t)
	filters := t.baseFilters(true)
	filters["makeCode"] = makeCode
	filters["modelCode"] = modelCode

	q := url.Values{}
	q.Set("makeCode", makeCode)
	q.Set("modelCode", modelCode)
	if trim := t.firstTrim(); trim != "" {
		trimCode := modelCode + "|" + trim
		q.Set("trimCode", trimCode)
		filters["trimCode"] = trimCode
	}
	if t.startYear > 0 {
		q.Set("startYear", strconv.Itoa(t.startYear))
		filters["startYear"] = t.startYear
	}
	if t.endYear > 0 {
		q.Set("endYear", strconv.Itoa(t.endYear))
		filters["endYear"] = t.endYear
	}
	if len(t.colors) > 0 {
		colors := strings.ToUpper(strings.Join(t.colors, ","))
		q.Set("extColorsSimple", colors)
		filters["extColorsSimple"] = colors
	}
	if group, ok := autotraderDriveGroups[t.drive]; ok {
		q.Set("driveGroup", group)
		filters["driveGroup"] = group
	}
	if t.maxPrice > 0 {
		q.Set("maxPrice", strconv.Itoa(t.maxPrice))
		filters["maxPrice"] = t.maxPrice
	}
	q.Set("zip", t.zip)
	q.Set("searchRadius", strconv.Itoa(t.radius))
	filters["zip"] = t.zip
	filters["searchRadius"] = t.radius

	return &vehicle.RetailerFilter{
		URL:     autotraderBaseURL + "?" + q.Encode(),
		Filters: filters,
	}
}
