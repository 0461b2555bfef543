package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationHours(t *testing.T) {
	ref := yearStart(DefaultBaseYear)
	tests := []struct {
		in   string
		want int
	}{
		{"P0Y", 0},
		{"PT0H", 0},
		{"P1M", 744},
		{"P2M", 1416},
		{"P12M", 8760},
		{"P1Y", 8760},
		{"P1D", 24},
		{"P1W", 168},
		{"PT1H", 1},
		{"PT90M", 1},
		{"P1DT12H", 36},
		{"P1Y1D", 8784},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			d, err := ParseDuration(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.HoursFrom(ref))
		})
	}
}

func TestParseDurationErrors(t *testing.T) {
	for _, in := range []string{"", "P", "1M", "PT", "P1", "PM", "P1X", "PT1D", "P1.5M"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDuration(in)
			assert.Error(t, err)
		})
	}
}

func TestHoursInYear(t *testing.T) {
	assert.Equal(t, 8760, hoursInYear(2010))
	assert.Equal(t, 8784, hoursInYear(2012))
}
