package compiler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

const cargurusBaseURL = "https://www.cargurus.com/search"

// cargurusBodyTypeGroups maps a body type to its CarGurus classification code
var cargurusBodyTypeGroups = map[string]string{
	bodyConvertible: "bg0",
	bodyCoupe:       "bg2",
	bodyHatchback:   "bg3",
	bodySedan:       "bg4",
	bodyWagon:       "bg5",
	bodySUV:         "bg6",
	bodyTruck:       "bg7",
	bodyVan:         "bg8",
}

var cargurusDrivetrains = map[string]string{
	drive4WD: "FOUR_WHEEL_DRIVE",
	driveAWD: "ALL_WHEEL_DRIVE",
	driveFWD: "FRONT_WHEEL_DRIVE",
	driveRWD: "REAR_WHEEL_DRIVE",
	drive2WD: "FOUR_BY_TWO",
}

// cargurusYears fills in the year window CarGurus requires. Without any year
// it searches DefaultYearWindow model years back from the current year.
func cargurusYears(t target, currentYear int) (int, int) {
	start, end := t.startYear, t.endYear
	switch {
	case start == 0 && end == 0:
		return currentYear - DefaultYearWindow, currentYear
	case end == 0:
		return start, currentYear
	case start == 0:
		return end - DefaultYearWindow, end
	}
	return start, end
}

// compileCargurus emits the filter object the worker resolves into CarGurus
// entity codes, plus a search URL seeded with the code-free parameters.
func compileCargurus(t target, currentYear int) *vehicle.RetailerFilter {
	start, end := cargurusYears(t, currentYear)
	filters := t.baseFilters(true)
	filters["yearMin"] = start
	filters["yearMax"] = end
	filters["zip"] = t.zip
	filters["distance"] = t.radius

	q := url.Values{}
	q.Set("zip", t.zip)
	q.Set("distance", strconv.Itoa(t.radius))
	q.Set("startYear", strconv.Itoa(start))
	q.Set("endYear", strconv.Itoa(end))

	if trim := t.firstTrim(); trim != "" {
		filters["trim"] = trim
	}
	if group, ok := cargurusBodyTypeGroups[t.body]; ok {
		q.Set("bodyTypeGroupIds", group)
		filters["bodyTypeGroup"] = group
	}
	if color := t.firstColor(); color != "" {
		filters["exteriorColor"] = strings.ToUpper(color)
	}
	if drive, ok := cargurusDrivetrains[t.drive]; ok {
		filters["drivetrain"] = drive
	}
	if t.maxPrice > 0 {
		q.Set("maxPrice", strconv.Itoa(t.maxPrice))
		filters["maxPrice"] = t.maxPrice
	}

	return &vehicle.RetailerFilter{
		URL:     cargurusBaseURL + "?" + q.Encode(),
		Filters: filters,
	}
}
