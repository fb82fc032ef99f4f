package compiler

import (
	"sort"
	"strings"
)

// knownTrims is the trim vocabulary recognized across retailers
var knownTrims = []string{
	"Denali Ultimate", "Denali", "AT4X", "AT4", "SLE", "SLT", "Elevation", "Pro",
	"Platinum", "King Ranch", "Lariat", "Limited", "XLT", "XL", "Tremor", "Raptor",
	"High Country", "LTZ", "LT", "Custom", "WT", "Trail Boss", "Z71",
	"Longhorn", "Laramie", "Big Horn", "Rebel", "Tradesman", "TRX",
}

// trimsByLength holds knownTrims ordered longest first so "Denali Ultimate"
// wins over "Denali" and "XLT" over "XL".
var trimsByLength = func() []string {
	out := append([]string(nil), knownTrims...)
	sort.SliceStable(out, func(i, j int) bool {
		return len(squash(out[i])) > len(squash(out[j]))
	})
	return out
}()

// colorPalette maps recognized color words to their canonical name
var colorPalette = map[string]string{
	"black":  "black",
	"white":  "white",
	"gray":   "gray",
	"grey":   "gray",
	"silver": "silver",
	"blue":   "blue",
	"red":    "red",
	"green":  "green",
	"brown":  "brown",
	"beige":  "beige",
	"tan":    "beige",
	"gold":   "gold",
	"orange": "orange",
	"yellow": "yellow",
	"purple": "purple",
}

// Canonical body types
const (
	bodyTruck       = "truck"
	bodySUV         = "suv"
	bodySedan       = "sedan"
	bodyCoupe       = "coupe"
	bodyConvertible = "convertible"
	bodyHatchback   = "hatchback"
	bodyWagon       = "wagon"
	bodyVan         = "van"
)

// bodyKeywords is checked in order; the first keyword contained in the body
// style wins.
var bodyKeywords = []struct {
	keyword string
	body    string
}{
	{"convertible", bodyConvertible},
	{"cabriolet", bodyConvertible},
	{"dual rear wheel", bodyTruck},
	{"dually", bodyTruck},
	{"pickup", bodyTruck},
	{"truck", bodyTruck},
	{" ton", bodyTruck},
	{" cab", bodyTruck},
	{"suv", bodySUV},
	{"crossover", bodySUV},
	{"sedan", bodySedan},
	{"coupe", bodyCoupe},
	{"hatchback", bodyHatchback},
	{"wagon", bodyWagon},
	{"van", bodyVan},
}

// Canonical drivetrains
const (
	drive4WD = "4wd"
	driveAWD = "awd"
	driveFWD = "fwd"
	driveRWD = "rwd"
	drive2WD = "2wd"
)

var drivetrainAliases = map[string]string{
	"4wd":             drive4WD,
	"4x4":             drive4WD,
	"fourwheeldrive":  drive4WD,
	"awd":             driveAWD,
	"allwheeldrive":   driveAWD,
	"fwd":             driveFWD,
	"frontwheeldrive": driveFWD,
	"rwd":             driveRWD,
	"rearwheeldrive":  driveRWD,
	"2wd":             drive2WD,
	"4x2":             drive2WD,
	"twowheeldrive":   drive2WD,
}

// squash lowercases s and removes spaces, hyphens and underscores
func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '-', '_', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MatchTrims returns the recognized trims in input order, deduplicated
func MatchTrims(trims []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range trims {
		if name := matchTrim(t); name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func matchTrim(t string) string {
	needle := squash(t)
	if needle == "" {
		return ""
	}
	for _, known := range trimsByLength {
		if strings.Contains(needle, squash(known)) {
			return known
		}
	}
	return ""
}

// MatchColors returns the recognized palette colors in input order.
// Unrecognized colors are dropped.
func MatchColors(colors []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range colors {
		name := matchColor(c)
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func matchColor(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if name, ok := colorPalette[c]; ok {
		return name
	}
	for _, word := range strings.Fields(c) {
		if name, ok := colorPalette[word]; ok {
			return name
		}
	}
	return ""
}

func matchBodyType(style string) string {
	style = " " + strings.ToLower(strings.TrimSpace(style))
	if strings.TrimSpace(style) == "" {
		return ""
	}
	for _, k := range bodyKeywords {
		if strings.Contains(style, k.keyword) {
			return k.body
		}
	}
	return ""
}

func matchDrivetrain(d string) string {
	return drivetrainAliases[squash(d)]
}

// Trims returns the trim vocabulary, longest names first
func Trims() []string {
	return append([]string(nil), trimsByLength...)
}
