package internal

import "errors"

// ErrClearing is raised when a suspended computation is forcibly
// resumed during teardown (spec.md §7, "Clearing unwind"). The awaiter
// does not return it to the Body; the Body is unwound and ErrClearing
// becomes the computation's result error, visible through Result.
var ErrClearing = errors.New("vsim: driver is clearing, unwinding suspended computations")

// unwind is the panic payload used to guarantee an awaiting
// computation unwinds during teardown even if its body doesn't check
// Await's returned error (spec.md §7 propagation policy). Computation.run
// recovers exactly this type and converts it back into (nil, ErrClearing).
type unwind struct{}

// Option is the value-or-none result of the race combinator
// (spec.md §4.5).
type Option struct {
	Some  bool
	Value any
}
