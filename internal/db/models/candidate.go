package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Candidate is one marketplace listing matched against a goal.
// URL is the natural key across all candidate partitions.
type Candidate struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Price             float64    `json:"price"`
	Retailer          string     `json:"retailer"`
	URL               string     `json:"url"`
	Image             string     `json:"image"`
	Condition         string     `json:"condition"`
	Rating            float64    `json:"rating"`
	ReviewCount       int        `json:"reviewCount"`
	InStock           bool       `json:"inStock"`
	EstimatedDelivery string     `json:"estimatedDelivery"`
	Features          []string   `json:"features"`
	Mileage           int        `json:"mileage,omitempty"`
	Location          string     `json:"location,omitempty"`
	DeniedAt          *time.Time `json:"deniedAt,omitempty"`
	ShortlistedAt     *time.Time `json:"shortlistedAt,omitempty"`
}

// Candidates is an ordered candidate partition
type Candidates []Candidate

// MarshalJSON encodes an empty partition as [] rather than null
func (cs Candidates) MarshalJSON() ([]byte, error) {
	if cs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Candidate(cs))
}

// Index returns the position of the candidate with the given url, or -1
func (cs Candidates) Index(url string) int {
	for i := range cs {
		if cs[i].URL == url {
			return i
		}
	}
	return -1
}

// Contains reports whether a candidate with the given url is present
func (cs Candidates) Contains(url string) bool {
	return cs.Index(url) >= 0
}

// URLs returns the set of urls in the partition
func (cs Candidates) URLs() map[string]struct{} {
	out := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		out[c.URL] = struct{}{}
	}
	return out
}

// Listing is a raw listing as returned by a scraping worker. Numeric fields
// accept numbers or formatted strings such as "$45,990".
type Listing struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name,omitempty"`
	Title             string   `json:"title,omitempty"`
	Price             Number   `json:"price,omitempty"`
	Mileage           Number   `json:"mileage,omitempty"`
	Retailer          string   `json:"retailer,omitempty"`
	URL               string   `json:"url"`
	Image             string   `json:"image,omitempty"`
	Location          string   `json:"location,omitempty"`
	Condition         string   `json:"condition,omitempty"`
	Rating            Number   `json:"rating,omitempty"`
	ReviewCount       Number   `json:"reviewCount,omitempty"`
	InStock           *bool    `json:"inStock,omitempty"`
	EstimatedDelivery string   `json:"estimatedDelivery,omitempty"`
	Features          []string `json:"features,omitempty"`
	// Error is set by extraction scripts that report failure in-band
	Error string `json:"error,omitempty"`
}

// Number is a float that also decodes from formatted strings
type Number float64

// UnmarshalJSON implements json.Unmarshaler for Number
func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*n = 0
		return nil
	case string:
		parsed, err := parseNumber(v)
		if err != nil {
			return err
		}
		*n = Number(parsed)
		return nil
	default:
		return fmt.Errorf("invalid number: %s", string(data))
	}
}

// parseNumber keeps the digits and the decimal point of a formatted value
func parseNumber(s string) (float64, error) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, nil
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return f, nil
}
