package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDriver(t *testing.T) {
	t.Run("loop fires immediates before any ready computation runs", func(t *testing.T) {
		d := NewDriver(1)
		var order []string

		imm := NewSignal()
		d.EnqueueImmediate(imm)

		NewComputation(d, func(self *Computation) (any, error) {
			if err := self.Await(imm); err != nil {
				return nil, err
			}
			order = append(order, "woke on immediate")
			return nil, nil
		})

		d.Loop()
		assert.Equal(t, []string{"woke on immediate"}, order)
	})

	t.Run("loop jumps the clock to the next timer deadline when idle", func(t *testing.T) {
		d := NewDriver(1)
		start := d.Now()
		sig := NewSignal()
		d.ScheduleTimer(start.Add(100*time.Millisecond), sig)

		d.Loop()

		assert.True(t, sig.Triggered())
		assert.Equal(t, start.Add(100*time.Millisecond), d.Now())
	})

	t.Run("clock never moves when there is nothing scheduled", func(t *testing.T) {
		d := NewDriver(1)
		start := d.Now()
		d.Loop()
		assert.Equal(t, start, d.Now())
	})

	t.Run("clear unwinds every suspended computation with ErrClearing", func(t *testing.T) {
		d := NewDriver(1)
		c := NewComputation(d, func(self *Computation) (any, error) {
			return nil, self.Await(NewSignal())
		})
		assert.False(t, c.Done())

		d.Clear()

		assert.True(t, c.Done())
		_, err := c.Result()
		assert.ErrorIs(t, err, ErrClearing)
	})

	t.Run("reset rebuilds queues and clock from scratch", func(t *testing.T) {
		d := NewDriver(1)
		d.ScheduleTimer(d.Now().Add(time.Second), NewSignal())
		d.EnqueueImmediate(NewSignal())

		d.Reset(1)

		assert.Equal(t, VTime(Epoch), d.Now())
		assert.False(t, d.Clearing())
		assert.Equal(t, 0, d.timers.Len())
	})
}
