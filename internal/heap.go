package internal

import "math/rand"

// cullThreshold is the heap size past which Push starts probing a
// random slot for an abandoned entry to reclaim (spec.md §4.1,
// "random-cull").
const cullThreshold = 32

type timerEntry struct {
	deadline VTime
	order    Order
	signal   *Signal
}

// before reports whether a fires strictly before b, ordering by
// (deadline, order) as spec.md §3 requires.
func (a timerEntry) before(b timerEntry) bool {
	if a.deadline.Before(b.deadline) {
		return true
	}
	if b.deadline.Before(a.deadline) {
		return false
	}
	return a.order.Before(b.order)
}

// TimerHeap is a d-ary min-heap of pending time-triggered signals,
// keyed by (deadline, insertion order), with lazy and random culling
// of abandoned entries (spec.md §4.1). Grounded on the
// Insert/Remove-method shape of AnatoleLucet-sig/internal/heap.go,
// rewritten to order by deadline instead of dependency height since
// that teacher heap has no notion of time.
type TimerHeap struct {
	entries   []timerEntry
	nextOrder Order
	rng       *rand.Rand
}

// arity is the heap's branching factor (spec.md §4.1 suggests d=4).
const arity = 4

// NewTimerHeap returns an empty heap. seed controls the random-cull
// probe sequence and must be supplied by the caller so traces stay
// reproducible (spec.md §6, "Configuration").
func NewTimerHeap(seed int64) *TimerHeap {
	return &TimerHeap{rng: rand.New(rand.NewSource(seed))}
}

// Push inserts a signal to fire at deadline, assigning it the next
// insertion order.
func (h *TimerHeap) Push(deadline VTime, sig *Signal) {
	e := timerEntry{deadline: deadline, order: h.nextOrder, signal: sig.Dup()}
	h.nextOrder++
	h.entries = append(h.entries, e)
	h.siftUp(len(h.entries) - 1)

	if len(h.entries) > cullThreshold {
		h.randomCull()
	}
}

// Len reports the number of entries still in the heap (including
// entries that Cull has not yet reclaimed).
func (h *TimerHeap) Len() int { return len(h.entries) }

// Top returns the root entry's signal without removing it.
func (h *TimerHeap) Top() *Signal {
	if len(h.entries) == 0 {
		return nil
	}
	return h.entries[0].signal
}

// TopTime returns the root entry's deadline. ok is false if the heap
// is empty.
func (h *TimerHeap) TopTime() (t VTime, ok bool) {
	if len(h.entries) == 0 {
		return VTime{}, false
	}
	return h.entries[0].deadline, true
}

// Pop removes and returns the root entry's signal.
func (h *TimerHeap) Pop() *Signal {
	if len(h.entries) == 0 {
		panic("vsim: internal: pop from an empty timer heap")
	}
	sig := h.entries[0].signal
	h.removeAt(0)
	return sig
}

// emptied reports whether an entry's signal has been abandoned: no
// listeners and not yet triggered (spec.md §4.1 "cull").
func emptied(e timerEntry) bool {
	return !e.signal.Triggered() && e.signal.Empty()
}

// Cull drops emptied entries from the top of the heap.
func (h *TimerHeap) Cull() {
	for len(h.entries) > 0 && emptied(h.entries[0]) {
		h.entries[0].signal.Drop()
		h.removeAt(0)
	}
}

// randomCull probes a pseudorandom position and removes it if
// abandoned, bounding how much heap space cancelled races can pin
// down (spec.md §4.1, §8 invariant 6).
func (h *TimerHeap) randomCull() {
	i := h.rng.Intn(len(h.entries))
	if emptied(h.entries[i]) {
		h.entries[i].signal.Drop()
		h.removeAt(i)
	}
}

// Clear triggers every remaining entry and empties the heap, waking
// every timer-waiter during teardown (spec.md §4.7).
func (h *TimerHeap) Clear() {
	for _, e := range h.entries {
		e.signal.Trigger()
		e.signal.Drop()
	}
	h.entries = h.entries[:0]
}

func (h *TimerHeap) removeAt(i int) {
	last := len(h.entries) - 1
	h.entries[i] = h.entries[last]
	h.entries = h.entries[:last]
	if i < len(h.entries) {
		h.siftDown(i)
		h.siftUp(i)
	}
}

func (h *TimerHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / arity
		if !h.entries[i].before(h.entries[parent]) {
			return
		}
		h.entries[i], h.entries[parent] = h.entries[parent], h.entries[i]
		i = parent
	}
}

func (h *TimerHeap) siftDown(i int) {
	n := len(h.entries)
	for {
		smallest := i
		first := i*arity + 1
		for c := first; c < first+arity && c < n; c++ {
			if h.entries[c].before(h.entries[smallest]) {
				smallest = c
			}
		}
		if smallest == i {
			return
		}
		h.entries[i], h.entries[smallest] = h.entries[smallest], h.entries[i]
		i = smallest
	}
}
