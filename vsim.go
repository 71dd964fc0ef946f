// Package vsim implements a deterministic, single-threaded cooperative
// scheduler over a virtual clock: one-shot signals, k-of-N quorum
// combinators, suspendable computations, and a race combinator, all
// driven by an event loop with no wall-clock dependency (spec.md §1-§5).
//
// Every exported type here is a thin generic wrapper over the untyped
// internal engine in package internal, mirroring the split AnatoleLucet-sig
// uses between its public sig.go surface and its internal Runtime.
package vsim

import (
	"time"

	"github.com/AnatoleLucet/vsim/internal"
)

// Signal is a reference-counted, one-shot event. It starts pending and
// transitions to triggered exactly once; the transition is monotone
// (spec.md §3, §4.2).
type Signal struct {
	inner *internal.Signal
}

func wrapSignal(s *internal.Signal) *Signal {
	if s == nil {
		return nil
	}
	return &Signal{inner: s}
}

// NewSignal returns a fresh pending signal owned by the returned handle.
func NewSignal() *Signal { return wrapSignal(internal.NewSignal()) }

// Dup returns a new handle sharing the same underlying signal, bumping
// its reference count.
func (s *Signal) Dup() *Signal { return wrapSignal(s.inner.Dup()) }

// Drop releases this handle. If it was the last live handle and the
// signal still has waiters, it triggers itself defensively rather than
// leaving them suspended forever (spec.md §4.2).
func (s *Signal) Drop() { s.inner.Drop() }

// Trigger fires the signal. A no-op if already triggered (spec.md §8).
func (s *Signal) Trigger() { s.inner.Trigger() }

// Triggered reports whether the signal has fired.
func (s *Signal) Triggered() bool { return s.inner.Triggered() }

// Empty reports whether the signal currently has no waiters.
func (s *Signal) Empty() bool { return s.inner.Empty() }

func unwrapAll(signals []*Signal) []*internal.Signal {
	inners := make([]*internal.Signal, len(signals))
	for i, s := range signals {
		inners[i] = s.inner
	}
	return inners
}

// Any returns a signal that triggers once at least one member has
// triggered (spec.md §4.3). any() with no members is already triggered;
// any() of a single member is that member itself.
func Any(members ...*Signal) *Signal {
	return wrapSignal(internal.AnySignals(unwrapAll(members)...))
}

// All returns a signal that triggers once every member has triggered
// (spec.md §4.3). all() with no members is already triggered.
func All(members ...*Signal) *Signal {
	return wrapSignal(internal.AllSignals(unwrapAll(members)...))
}

// NewQuorum returns a signal that triggers once at least k of members
// have triggered, generalizing Any (k=1) and All (k=len(members)).
func NewQuorum(k int, members ...*Signal) *Signal {
	return wrapSignal(internal.QuorumSignals(k, unwrapAll(members)...))
}

// Now returns the driver's current virtual time.
func Now() time.Time { return time.Time(internal.GetDriver().Now()) }

// After returns a signal that fires once the virtual clock has
// advanced by d from the moment After is called (spec.md §6).
func After(d time.Duration) *Signal { return wrapSignal(internal.After(d)) }

// At returns a signal that fires once the virtual clock reaches t.
func At(t time.Time) *Signal { return wrapSignal(internal.At(internal.VTime(t))) }

// ASAP returns a signal that fires on the next loop pass, strictly
// before any timer due at the current time (spec.md §4.6).
func ASAP() *Signal { return wrapSignal(internal.ASAP()) }

// Loop runs the event loop to quiescence: it drains the immediate
// queue, the ready queue, and due timers, advancing the virtual clock
// as needed, until no queue has further work (spec.md §4.6).
func Loop() { internal.GetDriver().Loop() }

// Clear tears the driver down: every suspended computation is forcibly
// resumed and observes an unwind error, then all scheduler state is
// released (spec.md §4.7).
func Clear() { internal.GetDriver().Clear() }

// Reset rebuilds the calling goroutine's driver from scratch, ready for
// a fresh scenario (spec.md §4.7).
func Reset() { internal.ResetDriver() }
