package extractor

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/compiler"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

var (
	radiusPattern   = regexp.MustCompile(`within\s+(\d+)\s+miles?\s+of\s+(\d{5})\b`)
	zipNearPattern  = regexp.MustCompile(`(?:near|around|zip|of)\s+(\d{5})\b`)
	zipPattern      = regexp.MustCompile(`\b(\d{5})\b`)
	yearPattern     = regexp.MustCompile(`(^|[^$\d])((?:19[89]|20\d)\d)\b`)
	yearPlusPattern = regexp.MustCompile(`\b((?:19[89]|20\d)\d)\s*(?:\+|or newer|and newer|and up)`)
	pricePattern    = regexp.MustCompile(`(?:under|below|less than|max|up to)\s*\$?\s*(\d[\d,]*)(k)?\b`)
	seriesToken     = regexp.MustCompile(`\b(1500|2500|3500)\s?(hd)?\b`)
)

var makeAliases = map[string]string{
	"gmc":       "GMC",
	"ford":      "Ford",
	"chevrolet": "Chevrolet",
	"chevy":     "Chevrolet",
	"toyota":    "Toyota",
	"honda":     "Honda",
	"jeep":      "Jeep",
	"ram":       "Ram",
	"nissan":    "Nissan",
	"tesla":     "Tesla",
}

// knownModels is checked in order; longer names come before their prefixes
var knownModels = []struct {
	pattern *regexp.Regexp
	name    string
	make    string
}{
	{regexp.MustCompile(`\bgrand cherokee\b`), "Grand Cherokee", "Jeep"},
	{regexp.MustCompile(`\bsierra\b`), "Sierra", "GMC"},
	{regexp.MustCompile(`\byukon\b`), "Yukon", "GMC"},
	{regexp.MustCompile(`\bcanyon\b`), "Canyon", "GMC"},
	{regexp.MustCompile(`\bsilverado\b`), "Silverado", "Chevrolet"},
	{regexp.MustCompile(`\btahoe\b`), "Tahoe", "Chevrolet"},
	{regexp.MustCompile(`\bsuburban\b`), "Suburban", "Chevrolet"},
	{regexp.MustCompile(`\bcolorado\b`), "Colorado", "Chevrolet"},
	{regexp.MustCompile(`\bf-?150\b`), "F-150", "Ford"},
	{regexp.MustCompile(`\bf-?250\b`), "F-250", "Ford"},
	{regexp.MustCompile(`\bf-?350\b`), "F-350", "Ford"},
	{regexp.MustCompile(`\branger\b`), "Ranger", "Ford"},
	{regexp.MustCompile(`\bbronco\b`), "Bronco", "Ford"},
	{regexp.MustCompile(`\bexplorer\b`), "Explorer", "Ford"},
	{regexp.MustCompile(`\btacoma\b`), "Tacoma", "Toyota"},
	{regexp.MustCompile(`\btundra\b`), "Tundra", "Toyota"},
	{regexp.MustCompile(`\b4runner\b`), "4Runner", "Toyota"},
	{regexp.MustCompile(`\brav4\b`), "RAV4", "Toyota"},
	{regexp.MustCompile(`\bcamry\b`), "Camry", "Toyota"},
	{regexp.MustCompile(`\bcivic\b`), "Civic", "Honda"},
	{regexp.MustCompile(`\baccord\b`), "Accord", "Honda"},
	{regexp.MustCompile(`\bcr-?v\b`), "CR-V", "Honda"},
	{regexp.MustCompile(`\bwrangler\b`), "Wrangler", "Jeep"},
	{regexp.MustCompile(`\bgladiator\b`), "Gladiator", "Jeep"},
	{regexp.MustCompile(`\bfrontier\b`), "Frontier", "Nissan"},
}

var bodyPhrases = []string{"dual rear wheel", "dually", "3/4 ton", "1/2 ton", "crew cab", "pickup", "truck", "suv", "sedan", "coupe", "convertible", "hatchback", "wagon", "van"}

var drivetrainPhrases = []struct {
	phrases []string
	value   string
}{
	{[]string{"4wd", "4 wd", "4x4", "four wheel drive", "four-wheel drive"}, "4WD"},
	{[]string{"awd", "all wheel drive", "all-wheel drive"}, "AWD"},
	{[]string{"2wd", "2 wd", "4x2", "two wheel drive"}, "2WD"},
	{[]string{"fwd", "front wheel drive", "front-wheel drive"}, "FWD"},
	{[]string{"rwd", "rear wheel drive", "rear-wheel drive"}, "RWD"},
}

var trimPatterns = func() []struct {
	pattern *regexp.Regexp
	name    string
} {
	trims := compiler.Trims()
	out := make([]struct {
		pattern *regexp.Regexp
		name    string
	}, 0, len(trims))
	for _, t := range trims {
		expr := `(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(t), " ", `[\s-]+`) + `\b`
		out = append(out, struct {
			pattern *regexp.Regexp
			name    string
		}{regexp.MustCompile(expr), t})
	}
	return out
}()

// Pattern is the offline extractor. It recognizes common makes, models,
// trims, years, prices, colors, drivetrains and locations.
type Pattern struct {
	compiler *compiler.Compiler
}

// NewPattern creates a Pattern extractor
func NewPattern(c *compiler.Compiler) *Pattern {
	return &Pattern{compiler: c}
}

// Extract implements Extractor
func (p *Pattern) Extract(ctx context.Context, query string) (*vehicle.FilterBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return compile(p.compiler, query, Parse(query))
}

// Parse reads a structured descriptor out of a free-text query
func Parse(query string) vehicle.Descriptor {
	q := strings.ToLower(query)
	d := vehicle.Descriptor{
		Zip:    compiler.DefaultZip,
		Radius: compiler.DefaultRadius,
	}

	if m := pricePattern.FindStringSubmatch(q); m != nil {
		price, _ := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if m[2] != "" {
			price *= 1000
		}
		d.MaxPrice = price
	}

	// a five digit price is not a zip code
	loc := pricePattern.ReplaceAllString(q, " ")
	if m := radiusPattern.FindStringSubmatch(loc); m != nil {
		d.Radius, _ = strconv.Atoi(m[1])
		d.Zip = m[2]
	} else if m := zipNearPattern.FindStringSubmatch(loc); m != nil {
		d.Zip = m[1]
	} else if m := zipPattern.FindStringSubmatch(loc); m != nil {
		d.Zip = m[1]
	}

	parseYears(q, &d)

	d.Colors = compiler.MatchColors(strings.FieldsFunc(q, func(r rune) bool {
		return r == ' ' || r == ',' || r == '/'
	}))

	for _, dt := range drivetrainPhrases {
		if containsAny(q, dt.phrases) {
			d.Drivetrain = dt.value
			break
		}
	}

	for _, phrase := range bodyPhrases {
		if strings.Contains(q, phrase) {
			d.BodyStyle = phrase
			break
		}
	}

	for _, m := range knownModels {
		if m.pattern.MatchString(q) {
			d.Model = m.name
			d.Make = m.make
			break
		}
	}
	if d.Make == "" {
		for _, word := range strings.Fields(q) {
			if name, ok := makeAliases[strings.Trim(word, ",.")]; ok {
				d.Make = name
				break
			}
		}
	}

	if m := seriesToken.FindStringSubmatch(q); m != nil {
		d.Series = m[1]
		if m[2] != "" {
			d.Series += "HD"
		}
	}

	rest := query
	for _, t := range trimPatterns {
		if loc := t.pattern.FindStringIndex(rest); loc != nil {
			d.Trims = append(d.Trims, t.name)
			rest = rest[:loc[0]] + " " + rest[loc[1]:]
		}
	}
	return d
}

func parseYears(q string, d *vehicle.Descriptor) {
	if m := yearPlusPattern.FindStringSubmatch(q); m != nil {
		d.StartYear, _ = strconv.Atoi(m[1])
		return
	}

	seen := map[int]bool{}
	var years []int
	for _, m := range yearPattern.FindAllStringSubmatch(q, -1) {
		y, _ := strconv.Atoi(m[2])
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	switch {
	case len(years) == 1:
		d.Year = years[0]
	case len(years) >= 2:
		d.StartYear = years[0]
		d.EndYear = years[len(years)-1]
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
