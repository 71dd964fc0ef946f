package internal

import "github.com/petermattis/goid"

// Body is the user procedure a Computation runs. It receives the
// computation itself so it can call the awaiter methods (Await,
// AwaitComputation, AwaitInterest, InterestSignal), the same
// "pass self into the closure" shape as AnatoleLucet-sig's
// internal/computed.go (`compute func(*Computed) any`).
type Body func(self *Computation) (any, error)

// Computation is a suspendable producer of a value or error
// (spec.md §3, §4.4). Go has no native stackful coroutines, so each
// Computation is backed by one goroutine; suspension/resumption is a
// synchronous hand-off over two unbuffered channels, which keeps the
// "exactly one computation runs at a time" invariant (spec.md §5)
// without any scheduling on the Go runtime's part: whichever goroutine
// holds the baton is blocked on the other's channel until it is handed
// back.
type Computation struct {
	driver *Driver

	resumeCh chan struct{} // driver -> backing goroutine: wake up
	yieldCh  chan struct{} // backing goroutine -> driver: I've suspended or finished

	done  bool
	value any
	err   error

	completion *Signal
	interest   *Signal
	startEager bool

	continuation *Computation

	owned bool

	gid int64 // backing goroutine id, bound to driver for GetDriver lookups while run is active
}

// NewComputation creates and eagerly starts a computation on d. The
// calling goroutine blocks until the new computation either suspends
// for the first time or runs to completion, matching "eagerly started
// on creation" (spec.md §3).
func NewComputation(d *Driver, body Body) *Computation {
	c := &Computation{
		driver:   d,
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan struct{}),
		owned:    true,
	}
	go c.run(body)
	<-c.yieldCh
	return c
}

func (c *Computation) run(body Body) {
	c.gid = goid.Get()
	bindGoroutine(c.gid, c.driver)
	defer unbindGoroutine(c.gid)

	value, err := func() (v any, e error) {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(unwind); ok {
					e = ErrClearing
					return
				}
				panic(r)
			}
		}()
		return body(c)
	}()

	c.finish(value, err)
	c.yieldCh <- struct{}{}
}

func (c *Computation) finish(value any, err error) {
	c.done = true
	c.value = value
	c.err = err

	if c.completion != nil {
		c.completion.Trigger()
	}
	if c.continuation != nil {
		cont := c.continuation
		c.continuation = nil
		c.driver.enqueueReady(cont)
	}
	if !c.owned {
		c.release()
	}
}

// release drops the computation's internal signal handles once its
// storage is no longer needed (spec.md §3, "detached computations are
// self-owned and self-destruct").
func (c *Computation) release() {
	if c.completion != nil {
		c.completion.Drop()
	}
	if c.interest != nil {
		c.interest.Drop()
	}
}

// Done reports whether the computation has produced its outcome.
func (c *Computation) Done() bool { return c.done }

// Result returns the computation's value and error once Done is true.
func (c *Computation) Result() (any, error) { return c.value, c.err }

// Start forces eager interest: if the interest signal already exists
// it is triggered now; otherwise a flag is set so the first access to
// the interest signal finds it pre-triggered (spec.md §4.4,
// "Lazy start").
func (c *Computation) Start() {
	if c.interest != nil {
		c.interest.Trigger()
	} else {
		c.startEager = true
	}
}

// Detach transfers ownership of the computation to itself. If it has
// already finished, storage is released immediately; otherwise
// cleanup happens on terminal exit (spec.md §4.4, "Detachment").
func (c *Computation) Detach() {
	if c.done {
		c.release()
		return
	}
	c.owned = false
}

// Completion lazily creates and returns the computation's completion
// signal, which triggers exactly once on terminal exit regardless of
// success or failure (spec.md §3, §4.4).
func (c *Computation) Completion() *Signal {
	if c.completion == nil {
		c.completion = NewSignal()
		if c.done {
			c.completion.Trigger()
		}
	}
	return c.completion
}

// ensureInterest lazily creates the interest signal, honoring a prior
// Start() call (spec.md §4.4, §3 "Interest signal").
func (c *Computation) ensureInterest() *Signal {
	if c.interest == nil {
		c.interest = NewSignal()
		if c.startEager {
			c.interest.Trigger()
		}
	}
	return c.interest
}

// InterestSignal returns the enclosing computation's interest signal
// without suspending, the "bare interest-signal token" of spec.md §4.4.
func (c *Computation) InterestSignal() *Signal {
	return c.ensureInterest()
}
