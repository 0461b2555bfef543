package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s, err := NewSet(
		Spec{Name: "raininess", SpatialResolution: "national", TemporalResolution: "annual", Units: "mm"},
		Spec{Name: "plants", SpatialResolution: "national", TemporalResolution: "annual", Units: "count"},
	)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"raininess", "plants"}, s.Names(), "insertion order is preserved")
	assert.True(t, s.Has("plants"))
	assert.False(t, s.Has("water"))

	spec, ok := s.Get("raininess")
	require.True(t, ok)
	assert.Equal(t, "mm", spec.Units)

	err = s.Add(Spec{Name: "plants"})
	assert.ErrorIs(t, err, ErrDuplicatePort)
	assert.ErrorContains(t, s.Add(Spec{}), "must not be empty")
}

func TestNilSet(t *testing.T) {
	var s *Set
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Names())
	assert.False(t, s.Has("anything"))
}

func TestSameBasis(t *testing.T) {
	a := Spec{Name: "a", SpatialResolution: "lad", TemporalResolution: "months", Units: "ml"}
	assert.True(t, a.SameBasis(Spec{Name: "b", SpatialResolution: "lad", TemporalResolution: "months"}))
	assert.False(t, a.SameBasis(Spec{Name: "b", SpatialResolution: "lad", TemporalResolution: "seasons"}))
	assert.Equal(t, "a[lad/months, ml]", a.String())
}

func TestMustSetPanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() { MustSet(Spec{Name: "x"}, Spec{Name: "x"}) })
}
