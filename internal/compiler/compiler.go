// Package compiler turns a structured vehicle descriptor into one search URL
// and filter object per supported retailer.
//
// Compilation never performs I/O and is deterministic: the same descriptor
// (and the same clock year) always produces byte-identical output.
package compiler

import (
	"fmt"
	"strings"
	"time"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

const (
	// DefaultZip is the search location used when the descriptor has none
	DefaultZip = "94002"
	// DefaultRadius is the search radius in miles used when the descriptor has none
	DefaultRadius = 500
	// DefaultYearWindow is how many model years back a retailer that requires
	// a year range searches by default
	DefaultYearWindow = 4
)

type retailerFunc func(t target) *vehicle.RetailerFilter

// Compiler compiles vehicle descriptors into retailer filters
type Compiler struct {
	now func() time.Time
}

// Option configures a Compiler
type Option func(*Compiler)

// WithClock sets the clock used to derive default year windows
func WithClock(now func() time.Time) Option {
	return func(c *Compiler) {
		c.now = now
	}
}

// New creates a Compiler
func New(opts ...Option) *Compiler {
	c := &Compiler{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Compiler) retailer(id vehicle.RetailerID) retailerFunc {
	switch id {
	case vehicle.RetailerCarmax:
		return compileCarmax
	case vehicle.RetailerAutotrader:
		return compileAutotrader
	case vehicle.RetailerTruecar:
		return compileTruecar
	case vehicle.RetailerCargurus:
		year := c.now().Year()
		return func(t target) *vehicle.RetailerFilter {
			return compileCargurus(t, year)
		}
	case vehicle.RetailerCarvana:
		return compileCarvana
	}
	return nil
}

// Compile returns a filter for every supported retailer. Retailers the
// descriptor cannot be compiled for map to nil.
func (c *Compiler) Compile(d vehicle.Descriptor) map[string]*vehicle.RetailerFilter {
	out := make(map[string]*vehicle.RetailerFilter, len(vehicle.Retailers()))
	t, ok := newTarget(d)
	for _, id := range vehicle.Retailers() {
		if !ok {
			out[id.String()] = nil
			continue
		}
		out[id.String()] = c.retailer(id)(t)
	}
	return out
}

// CompileRetailer compiles d for a single retailer
func (c *Compiler) CompileRetailer(id vehicle.RetailerID, d vehicle.Descriptor) (*vehicle.RetailerFilter, error) {
	fn := c.retailer(id)
	if fn == nil {
		return nil, fmt.Errorf("unsupported retailer: %s", id)
	}
	t, ok := newTarget(d)
	if !ok {
		return nil, nil
	}
	return fn(t), nil
}

// Bundle compiles d and pairs the result with the originating search query
func (c *Compiler) Bundle(query string, d vehicle.Descriptor) *vehicle.FilterBundle {
	if strings.TrimSpace(query) == "" {
		query = d.String()
	}
	return &vehicle.FilterBundle{
		Query:     query,
		Retailers: c.Compile(d),
	}
}

// target is the normalized form of a descriptor every retailer compiles from
type target struct {
	make      string
	model     string
	series    string
	trims     []string
	colors    []string
	body      string
	drive     string
	startYear int
	endYear   int
	maxPrice  int
	zip       string
	radius    int
}

func newTarget(d vehicle.Descriptor) (target, bool) {
	if !d.HasIdentity() {
		return target{}, false
	}
	series := InferSeries(d.Series, d.BodyStyle, d.Model)
	start, end := d.YearRange()
	t := target{
		make:      strings.TrimSpace(d.Make),
		model:     baseModel(d.Model, series),
		series:    series,
		trims:     MatchTrims(d.Trims),
		colors:    MatchColors(d.Colors),
		body:      matchBodyType(d.BodyStyle),
		drive:     matchDrivetrain(d.Drivetrain),
		startYear: start,
		endYear:   end,
		maxPrice:  d.MaxPrice,
		zip:       strings.TrimSpace(d.Zip),
		radius:    d.Radius,
	}
	if t.zip == "" {
		t.zip = DefaultZip
	}
	if t.radius == 0 {
		t.radius = DefaultRadius
	}
	return t, true
}

// modelName joins the base model and the series, e.g. "Sierra 3500HD"
func (t target) modelName(keepHD bool) string {
	series := t.series
	if !keepHD {
		series = stripHD(series)
	}
	return strings.TrimSpace(strings.Join([]string{t.model, series}, " "))
}

func (t target) modelSlug(keepHD bool) string {
	return slug(t.modelName(keepHD))
}

func (t target) firstTrim() string {
	if len(t.trims) == 0 {
		return ""
	}
	return t.trims[0]
}

func (t target) firstColor() string {
	if len(t.colors) == 0 {
		return ""
	}
	return t.colors[0]
}

// baseFilters returns the filter keys every retailer carries
func (t target) baseFilters(keepHD bool) map[string]interface{} {
	return map[string]interface{}{
		"make":  t.make,
		"model": t.modelName(keepHD),
	}
}

// slug lowercases s and joins its alphanumeric runs with hyphens
func slug(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		}
		return ' '
	}, strings.ToLower(s))
	return strings.Join(strings.Fields(mapped), "-")
}

// code uppercases s and keeps only letters and digits
func code(s string) string {
	return strings.ToUpper(strings.ReplaceAll(slug(s), "-", ""))
}
