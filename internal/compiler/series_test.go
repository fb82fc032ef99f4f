package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferSeries(t *testing.T) {
	tests := []struct {
		name      string
		series    string
		bodyStyle string
		model     string
		want      string
	}{
		{"explicit wins", "2500 hd", "dually", "Sierra 3500HD", "2500HD"},
		{"dually", "", "dually", "Sierra", "3500HD"},
		{"dual rear wheel", "", "Crew Cab Dual Rear Wheel", "Silverado", "3500HD"},
		{"three quarter ton", "", "3/4 ton pickup", "Ram", "2500HD"},
		{"half ton", "", "1/2 ton", "F", "1500"},
		{"model token", "", "", "Sierra 3500HD", "3500HD"},
		{"model token spaced", "", "", "Silverado 2500 HD", "2500HD"},
		{"model token plain", "", "pickup", "Ram 1500", "1500"},
		{"hyphenated model", "", "", "F-150", ""},
		{"no series", "", "suv", "Tahoe", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferSeries(tt.series, tt.bodyStyle, tt.model))
		})
	}
}

func TestBaseModel(t *testing.T) {
	assert.Equal(t, "Sierra", baseModel("Sierra 3500HD", "3500HD"))
	assert.Equal(t, "Sierra", baseModel("Sierra 3500", "3500HD"))
	assert.Equal(t, "Sierra 2500", baseModel("Sierra 2500", "3500HD"))
	assert.Equal(t, "Sierra", baseModel("Sierra", "3500HD"))
	assert.Equal(t, "Ram 1500", baseModel(" Ram 1500 ", ""))
}

func TestMatchTrims(t *testing.T) {
	got := MatchTrims([]string{"denali ultimate", "sle", "xlt", "nonsense", "Denali", "DENALI"})
	assert.Equal(t, []string{"Denali Ultimate", "SLE", "XLT", "Denali"}, got)
	assert.Equal(t, []string{"King Ranch"}, MatchTrims([]string{"king-ranch"}))
	assert.Empty(t, MatchTrims([]string{"", "  "}))
}

func TestMatchColors(t *testing.T) {
	got := MatchColors([]string{"Summit White", "grey", "Chartreuse", "black", "white"})
	assert.Equal(t, []string{"white", "gray", "black"}, got)
	assert.Empty(t, MatchColors([]string{"teal"}))
}

func TestMatchBodyTypeAndDrivetrain(t *testing.T) {
	assert.Equal(t, bodyTruck, matchBodyType("Crew Cab Pickup"))
	assert.Equal(t, bodyTruck, matchBodyType("3/4 ton"))
	assert.Equal(t, bodySUV, matchBodyType("Mid-size SUV"))
	assert.Equal(t, bodyConvertible, matchBodyType("Cabriolet convertible"))
	assert.Equal(t, "", matchBodyType(""))

	assert.Equal(t, drive4WD, matchDrivetrain("4x4"))
	assert.Equal(t, driveAWD, matchDrivetrain("All-Wheel Drive"))
	assert.Equal(t, "", matchDrivetrain("hover"))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "sierra-3500hd", slug("Sierra 3500HD"))
	assert.Equal(t, "mercedes-benz", slug("Mercedes-Benz"))
	assert.Equal(t, "f-150", slug(" F-150 "))
	assert.Equal(t, "RAV4", code("rav-4"))
}
