package vsim

import (
	"github.com/AnatoleLucet/vsim/internal"
)

// ErrClearing is the error Result reports for a computation that Clear
// forcibly unwound (spec.md §4.7). An awaiter method resumed during
// teardown does not return to its Body: the internal engine unwinds the
// Body with a panic that it recovers itself, so deferred calls in the
// Body still run and the computation finishes with ErrClearing.
var ErrClearing = internal.ErrClearing

// Body is the procedure a Computation runs. It is handed the
// computation itself so it can suspend via Await/AwaitInterest.
type Body[T any] func(self *Computation[T]) (T, error)

// Computation is a suspendable producer of a T or an error. It starts
// running eagerly on creation and is started lazily only with respect
// to interest: AwaitInterest inside its Body suspends until someone
// expresses interest, via Start, AwaitComputation, or Race
// (spec.md §3, §4.4).
type Computation[T any] struct {
	inner *internal.Computation
}

// Go creates and eagerly starts a computation running body. The
// calling goroutine blocks until body either suspends for the first
// time or finishes, matching spec.md §3's "eagerly started on creation".
func Go[T any](body Body[T]) *Computation[T] {
	var outer *Computation[T]
	inner := internal.NewComputation(internal.GetDriver(), func(self *internal.Computation) (any, error) {
		outer = &Computation[T]{inner: self}
		return body(outer)
	})
	// inner.run synchronizes with NewComputation's <-c.yieldCh before
	// returning, and that synchronization happens only after the
	// adapter above has run and set outer, so outer is never nil here.
	if outer == nil {
		outer = &Computation[T]{inner: inner}
	}
	return outer
}

// Await suspends the calling computation until sig triggers.
func (c *Computation[T]) Await(sig *Signal) error {
	return c.inner.Await(sig.inner)
}

// AwaitInterest suspends until this computation's own interest signal
// triggers, the "bare interest token" primitive (spec.md §4.4).
func (c *Computation[T]) AwaitInterest() error {
	return c.inner.AwaitInterest()
}

// InterestSignal returns this computation's interest signal without
// suspending on it.
func (c *Computation[T]) InterestSignal() *Signal {
	return wrapSignal(c.inner.InterestSignal())
}

// Start forces eager interest in c, as if something were about to
// await it (spec.md §4.4, "Lazy start").
func (c *Computation[T]) Start() { c.inner.Start() }

// Detach transfers self-ownership to c: its storage is released on
// terminal exit without anyone awaiting it (spec.md §4.4, "Detachment").
func (c *Computation[T]) Detach() { c.inner.Detach() }

// Done reports whether c has produced its outcome.
func (c *Computation[T]) Done() bool { return c.inner.Done() }

// Completion returns c's completion signal, which triggers exactly
// once on terminal exit regardless of success or failure.
func (c *Computation[T]) Completion() *Signal { return wrapSignal(c.inner.Completion()) }

// Result returns c's value and error. Only meaningful once Done is
// true; calling it earlier returns the zero value and a nil error.
func (c *Computation[T]) Result() (T, error) {
	v, err := c.inner.Result()
	var zero T
	if v == nil {
		return zero, err
	}
	return v.(T), err
}

// AwaitComputation suspends the calling computation self until other
// finishes, expressing interest in other as a side effect, and returns
// other's result. self and other may produce different types
// (spec.md §4.4, "Awaiting another computation").
func AwaitComputation[S, U any](self *Computation[S], other *Computation[U]) (U, error) {
	v, err := self.inner.AwaitComputation(other.inner)
	var zero U
	if v == nil {
		return zero, err
	}
	return v.(U), err
}

// Option is the value-or-none outcome of Race: Some(value) if the
// raced computation finished first, or a zero value with Some=false if
// a cancellation signal won instead (spec.md §4.5).
type Option[T any] struct {
	Some  bool
	Value T
}

// Race runs c against a set of cancellation signals. It returns a
// computation that resolves to Some(c's result) if c finishes first,
// or None if any signal fires first. c is never forcibly terminated:
// if a signal wins the race, c keeps running in the background until
// its own handle is dropped or the driver is cleared (spec.md §4.5).
func Race[T any](c *Computation[T], signals ...*Signal) *Computation[Option[T]] {
	return Go(func(self *Computation[Option[T]]) (Option[T], error) {
		raceInner := internal.Race(internal.GetDriver(), c.inner, unwrapAll(signals)...)
		raced := &Computation[internal.Option]{inner: raceInner}

		opt, err := AwaitComputation(self, raced)
		if err != nil {
			return Option[T]{}, err
		}
		if !opt.Some {
			return Option[T]{}, nil
		}
		return Option[T]{Some: true, Value: opt.Value.(T)}, nil
	})
}
