package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "  timeout  ", n: 10, want: "timeout"},
		{name: "exact", in: "timeout", n: 7, want: "timeout"},
		{name: "ascii", in: "navigation timeout", n: 10, want: "navigation"},
		{name: "inside a rune", in: "prix 45 990 €", n: 13, want: "prix 45 990 "},
		{name: "rune boundary", in: "€€€", n: 6, want: "€€"},
		{name: "zero", in: "€", n: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tt.n)
		})
	}

	long := strings.Repeat("é", 1500)
	got := truncate(long, 2001)
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, 2000)
}
