package vsim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputation(t *testing.T) {
	t.Run("completes eagerly without suspending", func(t *testing.T) {
		Reset()
		defer Clear()

		c := Go(func(self *Computation[int]) (int, error) { return 5, nil })
		assert.True(t, c.Done())

		v, err := c.Result()
		assert.NoError(t, err)
		assert.Equal(t, 5, v)
	})

	t.Run("suspends on a signal and resumes once it fires", func(t *testing.T) {
		Reset()
		defer Clear()

		sig := NewSignal()
		c := Go(func(self *Computation[string]) (string, error) {
			if err := self.Await(sig); err != nil {
				return "", err
			}
			return "woke", nil
		})
		assert.False(t, c.Done())

		sig.Trigger()
		Loop()

		assert.True(t, c.Done())
		v, err := c.Result()
		assert.NoError(t, err)
		assert.Equal(t, "woke", v)
	})

	t.Run("lazy start waits for interest before doing any work", func(t *testing.T) {
		Reset()
		defer Clear()

		ran := false
		c := Go(func(self *Computation[struct{}]) (struct{}, error) {
			if err := self.AwaitInterest(); err != nil {
				return struct{}{}, err
			}
			ran = true
			return struct{}{}, nil
		})

		Loop()
		assert.False(t, ran)

		c.Start()
		Loop()
		assert.True(t, ran)
	})

	t.Run("detach releases a finished computation without anyone awaiting it", func(t *testing.T) {
		Reset()
		defer Clear()

		sig := NewSignal()
		c := Go(func(self *Computation[struct{}]) (struct{}, error) {
			return struct{}{}, self.Await(sig)
		})
		c.Detach()

		sig.Trigger()
		Loop()
		assert.True(t, c.Done())
	})
}

func TestAwaitComputation(t *testing.T) {
	Reset()
	defer Clear()

	sig := NewSignal()
	producer := Go(func(self *Computation[int]) (int, error) {
		if err := self.Await(sig); err != nil {
			return 0, err
		}
		return 11, nil
	})

	var seen int
	consumer := Go(func(self *Computation[string]) (string, error) {
		v, err := AwaitComputation(self, producer)
		if err != nil {
			return "", err
		}
		seen = v
		return "got it", nil
	})
	assert.False(t, consumer.Done())

	sig.Trigger()
	Loop()

	assert.True(t, consumer.Done())
	assert.Equal(t, 11, seen)

	v, err := consumer.Result()
	assert.NoError(t, err)
	assert.Equal(t, "got it", v)
}

func TestRace(t *testing.T) {
	t.Run("the computation wins when it finishes before the timeout", func(t *testing.T) {
		Reset()
		defer Clear()

		fast := Go(func(self *Computation[int]) (int, error) { return 99, nil })
		raced := Race(fast, After(50*time.Millisecond))

		Loop()

		opt, err := raced.Result()
		assert.NoError(t, err)
		assert.True(t, opt.Some)
		assert.Equal(t, 99, opt.Value)
	})

	t.Run("the timeout wins when the computation never finishes", func(t *testing.T) {
		Reset()
		defer Clear()

		neverDone := NewSignal()
		slow := Go(func(self *Computation[int]) (int, error) {
			if err := self.Await(neverDone); err != nil {
				return 0, err
			}
			return 1, nil
		})
		raced := Race(slow, After(10*time.Millisecond))

		Loop()

		opt, err := raced.Result()
		assert.NoError(t, err)
		assert.False(t, opt.Some)

		// the loser keeps running in the background rather than being killed
		assert.False(t, slow.Done())
	})
}
