// Package vehicle holds the vehicle search vocabulary shared by the filter
// compiler, the filter extractor and the persisted goal record.
package vehicle

import (
	"fmt"
	"strings"
)

// Descriptor is a structured vehicle purchase intent
type Descriptor struct {
	Make       string   `json:"make,omitempty"`
	Model      string   `json:"model,omitempty"`
	Year       int      `json:"year,omitempty"`
	StartYear  int      `json:"startYear,omitempty"`
	EndYear    int      `json:"endYear,omitempty"`
	Series     string   `json:"series,omitempty"`
	Trims      []string `json:"trims,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	BodyStyle  string   `json:"bodyStyle,omitempty"`
	Drivetrain string   `json:"drivetrain,omitempty"`
	MaxPrice   int      `json:"maxPrice,omitempty"`
	Zip        string   `json:"zip,omitempty"`
	Radius     int      `json:"radius,omitempty"`
}

// HasIdentity reports whether both make and model are present
func (d Descriptor) HasIdentity() bool {
	return strings.TrimSpace(d.Make) != "" && strings.TrimSpace(d.Model) != ""
}

// YearRange returns the requested model year window. A single year pins both
// ends. Zero means the bound is open.
func (d Descriptor) YearRange() (int, int) {
	if d.Year > 0 {
		return d.Year, d.Year
	}
	return d.StartYear, d.EndYear
}

// Validate checks the numeric fields for obviously invalid input
func (d Descriptor) Validate() error {
	if d.Year < 0 || d.StartYear < 0 || d.EndYear < 0 {
		return fmt.Errorf("year cannot be negative")
	}
	if d.StartYear > 0 && d.EndYear > 0 && d.StartYear > d.EndYear {
		return fmt.Errorf("startYear %d is after endYear %d", d.StartYear, d.EndYear)
	}
	if d.MaxPrice < 0 {
		return fmt.Errorf("maxPrice cannot be negative")
	}
	if d.Radius < 0 {
		return fmt.Errorf("radius cannot be negative")
	}
	return nil
}

// String renders the descriptor as a human readable search phrase
func (d Descriptor) String() string {
	parts := make([]string, 0, 6)
	if d.Year > 0 {
		parts = append(parts, fmt.Sprint(d.Year))
	} else if d.StartYear > 0 || d.EndYear > 0 {
		parts = append(parts, fmt.Sprintf("%d-%d", d.StartYear, d.EndYear))
	}
	for _, s := range []string{d.Make, d.Model, d.Series} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, d.Trims...)
	return strings.Join(parts, " ")
}
