package vehicle

// RetailerID identifies a supported marketplace
type RetailerID string

// Supported retailers
const (
	// RetailerCarmax nests make/model-series/trim/color as path segments
	RetailerCarmax RetailerID = "carmax"
	// RetailerAutotrader uses a makeCode/modelCode/trimCode query triple
	RetailerAutotrader RetailerID = "autotrader"
	// RetailerTruecar uses a single mmt[] token
	RetailerTruecar RetailerID = "truecar"
	// RetailerCargurus needs a year window and a body type group
	RetailerCargurus RetailerID = "cargurus"
	// RetailerCarvana is driven by a filter object
	RetailerCarvana RetailerID = "carvana"
)

// Retailers returns every supported retailer in a stable order
func Retailers() []RetailerID {
	return []RetailerID{
		RetailerCarmax,
		RetailerAutotrader,
		RetailerTruecar,
		RetailerCargurus,
		RetailerCarvana,
	}
}

// String returns the retailer id
func (r RetailerID) String() string {
	return string(r)
}

// IsValid reports whether r is a supported retailer
func (r RetailerID) IsValid() bool {
	for _, id := range Retailers() {
		if id == r {
			return true
		}
	}
	return false
}

// RetailerFilter is the search target handed to the scraping worker for one
// retailer.
type RetailerFilter struct {
	URL     string                 `json:"url"`
	Filters map[string]interface{} `json:"filters"`
	// FreeText marks a filter built from the raw search term only
	FreeText bool `json:"freeText,omitempty"`
}

// FilterBundle is the per-retailer filter set for one search.
// A nil entry means no structured filter could be built for that retailer.
type FilterBundle struct {
	Query     string                     `json:"query"`
	Retailers map[string]*RetailerFilter `json:"retailers"`
	Error     string                     `json:"error,omitempty"`
}

// FreeTextFilter returns the fallback filter for a plain text search
func FreeTextFilter(query string) *RetailerFilter {
	return &RetailerFilter{
		Filters:  map[string]interface{}{"query": query},
		FreeText: true,
	}
}

// Get returns the filter for a retailer, or nil
func (b *FilterBundle) Get(id RetailerID) *RetailerFilter {
	if b == nil || b.Retailers == nil {
		return nil
	}
	return b.Retailers[id.String()]
}

// Compiled counts the retailers with a structured filter
func (b *FilterBundle) Compiled() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, f := range b.Retailers {
		if f != nil && !f.FreeText {
			n++
		}
	}
	return n
}
