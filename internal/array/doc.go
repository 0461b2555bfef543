// Package array holds the dense value containers exchanged between models.
//
// An Array is indexed [region][interval], where both axes follow the
// canonical member order of the region set and interval set named by the
// port metadata that owns the value. Data maps a port name to its Array.
package array
