package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRace(t *testing.T) {
	t.Run("returns some when the computation finishes first", func(t *testing.T) {
		d := NewDriver(1)
		fast := NewComputation(d, func(self *Computation) (any, error) { return 9, nil })
		timeout := NewSignal()

		raced := Race(d, fast, timeout)
		d.Loop()

		v, err := raced.Result()
		assert.NoError(t, err)
		opt := v.(Option)
		assert.True(t, opt.Some)
		assert.Equal(t, 9, opt.Value)
	})

	t.Run("returns none when a cancellation signal fires first", func(t *testing.T) {
		d := NewDriver(1)
		timeout := NewSignal()
		neverDone := NewSignal()
		slow := NewComputation(d, func(self *Computation) (any, error) {
			return nil, self.Await(neverDone)
		})

		raced := Race(d, slow, timeout)
		timeout.Trigger()
		d.Loop()

		v, err := raced.Result()
		assert.NoError(t, err)
		opt := v.(Option)
		assert.False(t, opt.Some)

		// the losing computation was never forcibly terminated
		assert.False(t, slow.Done())
	})

	t.Run("a computation that has already finished races trivially", func(t *testing.T) {
		d := NewDriver(1)
		done := NewComputation(d, func(self *Computation) (any, error) { return "early", nil })
		timeout := NewSignal()

		raced := Race(d, done, timeout)
		d.Loop()

		v, _ := raced.Result()
		opt := v.(Option)
		assert.True(t, opt.Some)
		assert.Equal(t, "early", opt.Value)
	})
}
