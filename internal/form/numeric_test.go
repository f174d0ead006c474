package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fp(v float64) *float64 { return &v }

func TestFormatYears(t *testing.T) {
	testCases := []struct {
		name  string
		years string
		c     Constraints
		want  string
	}{
		{"plain", "3", Constraints{}, "3"},
		{"fractional truncates", "2.7", Constraints{}, "2"},
		{"clamped to min", "0", Constraints{Min: fp(2)}, "2"},
		{"clamped to max", "12", Constraints{Max: fp(10)}, "10"},
		{"default ceiling", "150", Constraints{}, "99"},
		{"never negative", "-4", Constraints{}, "0"},
		{"unparsable degrades", "plenty", Constraints{}, "1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatYears(tc.years, tc.c))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		c     Constraints
		want  string
	}{
		{"integer step", "30000", Constraints{Step: "1"}, "30000"},
		{"decimal step", "2.5", Constraints{Step: "0.5"}, "2.50"},
		{"below min integer", "1", Constraints{Min: fp(5), Step: "1"}, "6"},
		{"below min decimal", "1", Constraints{Min: fp(5), Step: "0.5"}, "5.50"},
		{"unparsable passes through", "n/a", Constraints{}, "n/a"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatNumber(tc.value, tc.c))
		})
	}
}
