package internal

import (
	"fmt"

	"github.com/jamiealquiza/tachymeter"
	"github.com/valyala/bytebufferpool"
)

// Driver is the event loop: a ready FIFO, an immediate-fire FIFO, a
// timer heap, and the virtual clock (spec.md §3, §4.6). Exactly one
// goroutine "runs" at a time by construction: the channel hand-off in
// Computation.suspend/Driver.resume enforces it, so Driver itself
// needs no internal locking (spec.md §5, "no re-entrant scheduling").
type Driver struct {
	ready     []*Computation
	immediate []*Signal
	timers    *TimerHeap

	now      VTime
	clearing bool

	meter     *tachymeter.Tachymeter // one Tick sample per resumed computation; diagnostic only, never read by the engine
	tracePool bytebufferpool.Pool
	trace     []string
}

// NewDriver returns a freshly initialized driver with now set to the
// fixed epoch (spec.md §4.6, "Clock start").
func NewDriver(seed int64) *Driver {
	return &Driver{
		timers: NewTimerHeap(seed),
		now:    VTime(Epoch),
		meter:  tachymeter.New(&tachymeter.Config{Size: 256}),
	}
}

// Now returns the current virtual time.
func (d *Driver) Now() VTime { return d.now }

// Clearing reports whether teardown is in progress.
func (d *Driver) Clearing() bool { return d.clearing }

func (d *Driver) enqueueReady(c *Computation) {
	d.ready = append(d.ready, c)
}

// EnqueueImmediate schedules sig to fire before the next scheduling
// step, the "asap" primitive (spec.md §4.6).
func (d *Driver) EnqueueImmediate(sig *Signal) {
	d.immediate = append(d.immediate, sig.Dup())
}

// ScheduleTimer schedules sig to fire once the virtual clock reaches
// deadline (spec.md §4.1, §6 "after/at").
func (d *Driver) ScheduleTimer(deadline VTime, sig *Signal) {
	d.timers.Push(deadline, sig)
}

// resume hands control to c's backing goroutine and blocks until it
// suspends again or finishes.
func (d *Driver) resume(c *Computation) {
	c.resumeCh <- struct{}{}
	<-c.yieldCh
}

// Loop drains the immediate queue, the ready queue, and the timer
// heap to quiescence (spec.md §4.6). It returns once no queue has any
// work left.
func (d *Driver) Loop() {
	for {
		progressed := false

		if d.drainImmediate() {
			progressed = true
		}
		if d.drainReady() {
			progressed = true
		}

		d.timers.Cull()

		if len(d.immediate) == 0 && len(d.ready) == 0 {
			if t, ok := d.timers.TopTime(); ok && d.now.Before(t) {
				d.now = t
				progressed = true
			}
		}

		for {
			t, ok := d.timers.TopTime()
			if !ok || d.now.Before(t) {
				break
			}
			sig := d.timers.Pop()
			sig.Trigger()
			sig.Drop()
			progressed = true
		}

		if !progressed {
			return
		}
	}
}

// drainImmediate triggers every queued signal in FIFO order; triggers
// may enqueue further immediates, which are drained too before
// returning (spec.md §4.6 step 1).
func (d *Driver) drainImmediate() bool {
	progressed := false
	for len(d.immediate) > 0 {
		sig := d.immediate[0]
		d.immediate = d.immediate[1:]
		sig.Trigger()
		sig.Drop()
		progressed = true
	}
	return progressed
}

// drainReady resumes each ready computation in turn, advancing the
// virtual clock by one tick after each resumption so the event log
// stays a deterministic witness of scheduling order (spec.md §4.6,
// step 2 and its "Ordering guarantees").
func (d *Driver) drainReady() bool {
	progressed := false
	for len(d.ready) > 0 {
		c := d.ready[0]
		d.ready = d.ready[1:]

		d.resume(c)
		d.now = d.now.Add(Tick)
		d.meter.AddTime(Tick)

		progressed = true
	}
	return progressed
}

// Clear unwinds the driver for teardown (spec.md §4.7): it marks
// clearing, triggers every timer and immediate signal, then runs the
// loop so every suspended computation is resumed, observes the unwind
// error, and releases its memory.
func (d *Driver) Clear() {
	d.clearing = true
	for _, sig := range d.immediate {
		sig.Trigger()
		sig.Drop()
	}
	d.immediate = d.immediate[:0]
	d.timers.Clear()
	d.Loop()
}

// Reset rebuilds the driver's queues and clock from scratch, leaving
// clearing cleared so a fresh scenario can run (spec.md §4.7).
func (d *Driver) Reset(seed int64) {
	d.ready = nil
	d.immediate = nil
	d.timers = NewTimerHeap(seed)
	d.now = VTime(Epoch)
	d.clearing = false
	d.meter = tachymeter.New(&tachymeter.Config{Size: 256})
	d.trace = nil
}

// traceLine appends a formatted line to the driver's trace log using
// a pooled buffer, so repeated trace output during a long loop()
// doesn't churn the allocator (SPEC_FULL.md §2).
func (d *Driver) traceLine(format string, args ...any) {
	bb := d.tracePool.Get()
	defer d.tracePool.Put(bb)

	bb.B = fmt.Appendf(bb.B, format, args...)
	d.trace = append(d.trace, string(bb.B))
}

// Trace returns the recorded trace lines, most recent last.
func (d *Driver) Trace() []string { return d.trace }

// Tachymeter exposes the driver's tachymeter, which receives one Tick
// sample per resumed computation, for diagnostics (SPEC_FULL.md §2);
// the engine itself never reads it.
func (d *Driver) Tachymeter() *tachymeter.Tachymeter { return d.meter }
