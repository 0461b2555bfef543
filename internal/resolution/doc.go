// Package resolution holds the named spatial and temporal partitions that
// model data is expressed on, and computes the overlap weights needed to
// move values between two partitions of the same kind.
//
// Region sets are collections of named polygons. The weight from a source
// region to a target region is the share of the source region's area that
// lies inside the target region.
//
// Interval sets are collections of named spans of hours measured from
// 1 January of a base year. Spans are written as ISO-8601 durations and
// may wrap the end of the year. The weight from a source interval to a
// target interval is the share of the source interval's hours that fall
// inside the target interval.
//
// Both registers are safe for concurrent use and cache computed weights.
package resolution
