package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerHeap(t *testing.T) {
	t.Run("pops entries in deadline order regardless of insertion order", func(t *testing.T) {
		h := NewTimerHeap(1)
		s1, s2, s3 := NewSignal(), NewSignal(), NewSignal()

		h.Push(VTime(Epoch.Add(30*time.Millisecond)), s3)
		h.Push(VTime(Epoch.Add(10*time.Millisecond)), s1)
		h.Push(VTime(Epoch.Add(20*time.Millisecond)), s2)

		assert.Equal(t, s1, h.Pop())
		assert.Equal(t, s2, h.Pop())
		assert.Equal(t, s3, h.Pop())
		assert.Equal(t, 0, h.Len())
	})

	t.Run("breaks same-deadline ties by insertion order", func(t *testing.T) {
		h := NewTimerHeap(1)
		deadline := VTime(Epoch.Add(10 * time.Millisecond))
		s1, s2, s3 := NewSignal(), NewSignal(), NewSignal()

		h.Push(deadline, s1)
		h.Push(deadline, s2)
		h.Push(deadline, s3)

		assert.Equal(t, s1, h.Pop())
		assert.Equal(t, s2, h.Pop())
		assert.Equal(t, s3, h.Pop())
	})

	t.Run("top time reflects the earliest pending deadline", func(t *testing.T) {
		h := NewTimerHeap(1)
		s1, s2 := NewSignal(), NewSignal()

		h.Push(VTime(Epoch.Add(50*time.Millisecond)), s1)
		top, ok := h.TopTime()
		assert.True(t, ok)
		assert.Equal(t, VTime(Epoch.Add(50*time.Millisecond)), top)

		h.Push(VTime(Epoch.Add(5*time.Millisecond)), s2)
		top, ok = h.TopTime()
		assert.True(t, ok)
		assert.Equal(t, VTime(Epoch.Add(5*time.Millisecond)), top)
	})

	t.Run("top time on an empty heap reports not-ok", func(t *testing.T) {
		h := NewTimerHeap(1)
		_, ok := h.TopTime()
		assert.False(t, ok)
	})

	t.Run("clear drops every pending entry", func(t *testing.T) {
		h := NewTimerHeap(1)
		h.Push(VTime(Epoch.Add(time.Millisecond)), NewSignal())
		h.Push(VTime(Epoch.Add(2*time.Millisecond)), NewSignal())

		h.Clear()
		assert.Equal(t, 0, h.Len())
		_, ok := h.TopTime()
		assert.False(t, ok)
	})
}
