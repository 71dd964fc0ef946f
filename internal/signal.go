package internal

// Signal is a reference-counted one-shot latch with a listener set
// (spec.md §3, §4.2). It has three observable states: pending with no
// listeners, pending with listeners, and triggered; the transition
// to triggered is monotone and terminal.
type Signal struct {
	refs      int32
	triggered bool
	listeners []listenerEntry // plain slice; short lists are the common case

	// owner recovers the *Quorum behind this signal when it was
	// obtained through Any/All, so the awaiter can apply interest
	// threading (spec.md §4.3) without pointer tagging.
	owner *Quorum
}

// NewSignal returns a signal owned by a single handle.
func NewSignal() *Signal {
	return &Signal{refs: 1}
}

// Dup returns a new handle sharing this signal, bumping the refcount.
func (s *Signal) Dup() *Signal {
	s.refs++
	return s
}

// Drop releases a handle. When the last handle is released and
// listeners remain, the signal triggers itself as a defensive final
// act so waiters observe cancellation instead of hanging forever
// (spec.md §4.2, destructor behavior).
func (s *Signal) Drop() {
	s.refs--
	if s.refs > 0 {
		return
	}
	if len(s.listeners) > 0 {
		s.Trigger()
	}
}

// Triggered reports whether the signal has fired.
func (s *Signal) Triggered() bool { return s.triggered }

// Empty reports whether the signal currently has no listeners.
func (s *Signal) Empty() bool { return len(s.listeners) == 0 }

func (s *Signal) addListener(l listenerEntry) {
	if s.triggered {
		panic("vsim: internal: listener added to an already-triggered signal")
	}
	s.listeners = append(s.listeners, l)
}

// removeListener removes a single matching occurrence (listeners are
// a multiset, spec.md §3).
func (s *Signal) removeListener(target listenerEntry) {
	for i, l := range s.listeners {
		if l == target {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Trigger fires the signal. Triggering an already-triggered signal is
// a no-op (spec.md §8, round-trip property).
func (s *Signal) Trigger() {
	if s.triggered {
		return
	}

	// Hoist the quorum listeners into a local copy before notifying
	// anything: informing them may drop the last reference to s
	// (spec.md §4.2 step 1, §9 "Self-destruction during trigger").
	var quorums []*Quorum
	for _, l := range s.listeners {
		if l.kind == listenerQuorum {
			quorums = append(quorums, l.quorum)
		}
	}

	// Each waiting computation goes back on the ready queue of the
	// driver it belongs to, whichever goroutine fires the signal.
	for _, l := range s.listeners {
		if l.kind == listenerComputation {
			d := l.comp.driver
			if d == nil {
				d = GetDriver()
			}
			d.enqueueReady(l.comp)
		}
	}

	s.listeners = nil
	s.triggered = true

	for _, q := range quorums {
		q.triggerMember(s)
	}
}
