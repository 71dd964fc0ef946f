package internal

// Order is a monotonically increasing insertion counter used by the
// timer heap to break ties between entries scheduled for the same
// deadline (spec.md §3, §4.1).
//
// The counter wraps after 2^32 insertions. Comparisons use a
// signed-difference trick borrowed from TCP sequence-number
// arithmetic so a wrapped counter still orders correctly against any
// entry inserted less than half a revolution ago; see
// _examples/original_source/pset2/circular_int.hh, which this
// type supplements (spec.md §9, Open Question).
type Order uint32

// Before reports whether a was inserted before b, tolerating wraparound.
func (a Order) Before(b Order) bool {
	return int32(a-b) < 0
}
