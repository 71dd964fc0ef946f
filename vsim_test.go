package vsim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignal(t *testing.T) {
	t.Run("starts pending and triggers once", func(t *testing.T) {
		s := NewSignal()
		assert.False(t, s.Triggered())

		s.Trigger()
		assert.True(t, s.Triggered())
	})

	t.Run("trigger is idempotent", func(t *testing.T) {
		s := NewSignal()
		s.Trigger()
		assert.NotPanics(t, func() { s.Trigger() })
	})
}

func TestCombinators(t *testing.T) {
	t.Run("any resolves as soon as one member has", func(t *testing.T) {
		a, b, c := NewSignal(), NewSignal(), NewSignal()
		s := Any(a, b, c)
		assert.False(t, s.Triggered())

		b.Trigger()
		assert.True(t, s.Triggered())
	})

	t.Run("all waits for every member", func(t *testing.T) {
		a, b := NewSignal(), NewSignal()
		s := All(a, b)

		a.Trigger()
		assert.False(t, s.Triggered())
		b.Trigger()
		assert.True(t, s.Triggered())
	})

	t.Run("quorum generalizes any and all with an arbitrary threshold", func(t *testing.T) {
		a, b, c := NewSignal(), NewSignal(), NewSignal()
		q := NewQuorum(2, a, b, c)

		a.Trigger()
		assert.False(t, q.Triggered())
		c.Trigger()
		assert.True(t, q.Triggered())
	})
}

func TestVirtualClock(t *testing.T) {
	Reset()
	defer Clear()

	t.Run("after fires once the clock advances by the given duration", func(t *testing.T) {
		start := Now()
		sig := After(100 * time.Millisecond)

		var fired time.Time
		c := Go(func(self *Computation[struct{}]) (struct{}, error) {
			if err := self.Await(sig); err != nil {
				return struct{}{}, err
			}
			fired = Now()
			return struct{}{}, nil
		})

		Loop()

		assert.True(t, c.Done())
		assert.Equal(t, start.Add(100*time.Millisecond), fired)
	})

	t.Run("at fires once the clock reaches the given instant", func(t *testing.T) {
		target := Now().Add(250 * time.Millisecond)
		sig := At(target)

		c := Go(func(self *Computation[struct{}]) (struct{}, error) {
			return struct{}{}, self.Await(sig)
		})

		Loop()
		assert.True(t, c.Done())
		// The clock reaches target, then resuming c advances it by one tick.
		assert.Equal(t, target.Add(time.Nanosecond), Now())
	})

	t.Run("the clock never runs ahead of the earliest pending deadline", func(t *testing.T) {
		near := After(10 * time.Millisecond)
		far := After(50 * time.Millisecond)

		nearDone := Go(func(self *Computation[struct{}]) (struct{}, error) {
			return struct{}{}, self.Await(near)
		})
		_ = Go(func(self *Computation[struct{}]) (struct{}, error) {
			return struct{}{}, self.Await(far)
		})

		Loop()
		assert.True(t, nearDone.Done())
	})
}

func TestClearTeardown(t *testing.T) {
	Reset()

	suspended := Go(func(self *Computation[struct{}]) (struct{}, error) {
		return struct{}{}, self.Await(NewSignal())
	})
	assert.False(t, suspended.Done())

	Clear()

	assert.True(t, suspended.Done())
	_, err := suspended.Result()
	assert.ErrorIs(t, err, ErrClearing)
}
