// Package convert re-expresses model data defined on one (region set,
// interval set) basis on another, using the overlap weights held by the
// resolution registers.
//
// Conversion is a weighted sum. For interval conversion the value of a
// target interval is the sum over source intervals of value x weight; the
// same formula aggregates (months into seasons) and disaggregates (a year
// into months). Region conversion works the same way over areas. When both
// axes differ, intervals are converted first and regions second.
package convert
