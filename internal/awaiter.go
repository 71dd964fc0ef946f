package internal

// Await suspends the calling computation until sig triggers
// (spec.md §4.4). If sig is a quorum still awaiting interest
// threading, this computation's interest signal is bound first
// (spec.md §4.3), which may satisfy the quorum in place and make
// suspension unnecessary.
func (c *Computation) Await(sig *Signal) error {
	if q, ok := quorumOf(sig); ok && q.wantsInterest {
		q.resolveInterest(c.ensureInterest())
	}

	if sig.Triggered() {
		return c.checkClearing()
	}

	sig.addListener(listenerEntry{kind: listenerComputation, comp: c})
	c.suspend()
	sig.removeListener(listenerEntry{kind: listenerComputation, comp: c})
	return c.checkClearing()
}

// AwaitComputation suspends until other finishes, lazily creating and
// triggering other's interest signal on first await (spec.md §4.4).
func (c *Computation) AwaitComputation(other *Computation) (any, error) {
	if other.done {
		return other.value, other.err
	}

	other.ensureInterest().Trigger()
	other.continuation = c
	c.suspend()

	if err := c.checkClearing(); err != nil {
		return nil, err
	}
	return other.value, other.err
}

// AwaitInterest is the "bare interest token": it creates/returns this
// computation's own interest signal and suspends on it
// (spec.md §4.4).
func (c *Computation) AwaitInterest() error {
	return c.Await(c.ensureInterest())
}

// suspend hands control back to the driver and blocks until resumed.
// removeListener on the post-wake path is the caller's job (Await
// already does it); suspend itself only implements the hand-off.
func (c *Computation) suspend() {
	c.yieldCh <- struct{}{}
	<-c.resumeCh
}

// checkClearing implements spec.md §4.4: "Resumption after a signal
// check whether the driver is clearing; if so, it raises a
// recoverable unwind error so the awaiter chain collapses." The panic
// guarantees the unwind happens even if the caller's Body ignores the
// returned error; Computation.run recovers it.
func (c *Computation) checkClearing() error {
	if c.driver.clearing {
		panic(unwind{})
	}
	return nil
}

// quorumOf recovers the *Quorum behind a signal obtained through
// Any/All, if any, needed because Await only ever sees a *Signal.
func quorumOf(sig *Signal) (*Quorum, bool) {
	return sig.owner, sig.owner != nil
}
