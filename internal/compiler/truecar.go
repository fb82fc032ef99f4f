package compiler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

const truecarBaseURL = "https://www.truecar.com/used-cars-for-sale/listings/"

// compileTruecar packs make, model-series and every recognized trim into a
// single mmt[] token: gmc_sierra-3500hd_denali-ultimate_denali.
func compileTruecar(t target) *vehicle.RetailerFilter {
	tokens := []string{slug(t.make), t.modelSlug(true)}
	for _, trim := range t.trims {
		tokens = append(tokens, slug(trim))
	}
	mmt := strings.Join(tokens, "_")

	filters := t.baseFilters(true)
	filters["mmt"] = mmt

	q := url.Values{}
	q.Add("mmt[]", mmt)
	if len(t.trims) > 0 {
		filters["trims"] = append([]string(nil), t.trims...)
	}
	if t.startYear > 0 {
		q.Set("yearLow", strconv.Itoa(t.startYear))
		filters["yearLow"] = t.startYear
	}
	if t.endYear > 0 {
		q.Set("yearHigh", strconv.Itoa(t.endYear))
		filters["yearHigh"] = t.endYear
	}
	if t.maxPrice > 0 {
		q.Set("price_high", strconv.Itoa(t.maxPrice))
		filters["budget"] = t.maxPrice
	}
	if t.body != "" {
		q.Add("bodyStyles[]", t.body)
		filters["bodyStyle"] = t.body
	}
	switch t.drive {
	case drive4WD, driveAWD:
		q.Add("driveTrain[]", "4WD")
		filters["drivetrain"] = "4WD"
	case drive2WD, driveRWD, driveFWD:
		q.Add("driveTrain[]", "2WD")
		filters["drivetrain"] = "2WD"
	}
	q.Set("postalCode", t.zip)
	q.Set("searchRadius", strconv.Itoa(t.radius))
	filters["postalCode"] = t.zip
	filters["searchRadius"] = t.radius

	return &vehicle.RetailerFilter{
		URL:     truecarBaseURL + "?" + q.Encode(),
		Filters: filters,
	}
}
