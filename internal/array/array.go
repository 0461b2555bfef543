package array

import (
	"fmt"
	"math"
	"sort"
)

// Default tolerances used by AllClose when callers do not configure their own.
const (
	DefaultRelativeTolerance = 1e-5
	DefaultAbsoluteTolerance = 1e-8
)

// Array is a dense region x interval matrix of values.
type Array [][]float64

// Data maps a port name to its value.
type Data map[string]Array

// Zeros returns a regions x intervals array filled with zero.
func Zeros(regions, intervals int) Array {
	a := make(Array, regions)
	for r := range a {
		a[r] = make([]float64, intervals)
	}
	return a
}

// Scalar returns a 1x1 array holding v.
func Scalar(v float64) Array {
	return Array{{v}}
}

// Shape returns the number of rows (regions) and columns (intervals). Ragged
// arrays report the width of their first row.
func (a Array) Shape() (int, int) {
	if len(a) == 0 {
		return 0, 0
	}
	return len(a), len(a[0])
}

// Clone returns a deep copy of the array.
func (a Array) Clone() Array {
	if a == nil {
		return nil
	}
	out := make(Array, len(a))
	for r, row := range a {
		out[r] = append([]float64(nil), row...)
	}
	return out
}

// Sum returns the sum of all elements.
func (a Array) Sum() float64 {
	var total float64
	for _, row := range a {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Validate reports an error if the array is ragged or does not match the
// expected shape. A negative expectation skips that axis.
func (a Array) Validate(regions, intervals int) error {
	if regions >= 0 && len(a) != regions {
		return fmt.Errorf("array has %d regions, expected %d", len(a), regions)
	}
	width := -1
	for r, row := range a {
		if width < 0 {
			width = len(row)
		}
		if len(row) != width {
			return fmt.Errorf("array is ragged: row %d has %d intervals, row 0 has %d", r, len(row), width)
		}
	}
	if intervals >= 0 && len(a) > 0 && width != intervals {
		return fmt.Errorf("array has %d intervals, expected %d", width, intervals)
	}
	return nil
}

// AllClose reports whether a and b have the same shape and every pair of
// elements satisfies |a-b| <= atol + rtol*|b|. NaN never compares close.
func AllClose(a, b Array, rtol, atol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for r := range a {
		if len(a[r]) != len(b[r]) {
			return false
		}
		for i := range a[r] {
			x, y := a[r][i], b[r][i]
			if math.IsNaN(x) || math.IsNaN(y) {
				return false
			}
			if math.IsInf(x, 0) || math.IsInf(y, 0) {
				if x != y {
					return false
				}
				continue
			}
			if math.Abs(x-y) > atol+rtol*math.Abs(y) {
				return false
			}
		}
	}
	return true
}

// Names returns the port names of d in sorted order.
func (d Data) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of d.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for name, a := range d {
		out[name] = a.Clone()
	}
	return out
}

// AllClose reports whether d and other hold the same port names and every
// pair of arrays is close under the given tolerances.
func (d Data) AllClose(other Data, rtol, atol float64) bool {
	if len(d) != len(other) {
		return false
	}
	for name, a := range d {
		b, ok := other[name]
		if !ok || !AllClose(a, b, rtol, atol) {
			return false
		}
	}
	return true
}
