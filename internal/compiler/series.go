package compiler

import (
	"regexp"
	"strings"
)

// seriesPattern finds a 3-4 digit series token, optionally suffixed HD, that
// stands on its own inside a model name ("Sierra 3500HD", "Ram 2500").
var seriesPattern = regexp.MustCompile(`(?i)(?:^|\s)(\d{3,4})(?:\s?(hd))?(?:\s|$)`)

// InferSeries returns the series for a vehicle. An explicit series wins,
// then the body style, then a series token inside the model name.
func InferSeries(series, bodyStyle, model string) string {
	if s := normalizeSeries(series); s != "" {
		return s
	}
	if s := seriesFromBodyStyle(bodyStyle); s != "" {
		return s
	}
	s, _ := seriesFromModel(model)
	return s
}

func normalizeSeries(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

func seriesFromBodyStyle(style string) string {
	style = strings.ToLower(style)
	switch {
	case strings.Contains(style, "dually"), strings.Contains(style, "dual rear wheel"):
		return "3500HD"
	case strings.Contains(style, "3/4 ton"):
		return "2500HD"
	case strings.Contains(style, "1/2 ton"):
		return "1500"
	}
	return ""
}

// seriesFromModel extracts the series token from a model name and returns it
// with the model name that remains once the token is removed.
func seriesFromModel(model string) (string, string) {
	m := seriesPattern.FindStringSubmatchIndex(model)
	if m == nil {
		return "", strings.TrimSpace(model)
	}
	series := model[m[2]:m[3]]
	if m[4] >= 0 {
		series += "HD"
	}
	rest := strings.Fields(model[:m[0]] + " " + model[m[1]:])
	return series, strings.Join(rest, " ")
}

// baseModel strips a series token from the model name when it matches the
// resolved series, so the series is not rendered twice.
func baseModel(model, series string) string {
	token, rest := seriesFromModel(model)
	if token == "" || series == "" {
		return strings.TrimSpace(model)
	}
	if stripHD(token) == stripHD(series) {
		return rest
	}
	return strings.TrimSpace(model)
}

func stripHD(series string) string {
	return strings.TrimSuffix(strings.ToUpper(series), "HD")
}
