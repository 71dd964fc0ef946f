package internal

// Quorum is a signal that triggers once at least k of its member
// signals have triggered (spec.md §3, §4.3). any() is quorum(1, ...);
// all() is quorum(n, ...).
type Quorum struct {
	Signal

	members        []signalLike
	threshold      int
	triggeredCount int

	// Interest threading (spec.md §4.3): a bare interest token added as
	// a member doesn't allocate a child signal eagerly. Instead we
	// count how many pending bindings this quorum owes, and mark
	// wantsInterest so the flag can propagate to an enclosing quorum
	// that holds this one as a member.
	pendingInterest int
	wantsInterest   bool
}

// NewQuorum builds a k-of-N quorum over members, following the
// construction rule in spec.md §4.3: members already triggered at
// construction count toward the threshold without registering a
// listener; otherwise the quorum registers itself on the member and
// keeps a strong handle to it.
func NewQuorum(k int, members ...signalLike) *Quorum {
	q := &Quorum{Signal: Signal{refs: 1}, threshold: k}
	q.Signal.owner = q
	for _, m := range members {
		q.addMember(m)
	}
	if q.triggeredCount >= q.threshold {
		q.selfTrigger()
	}
	return q
}

func (q *Quorum) addMember(m signalLike) {
	sig := m.asSignal()
	if sig.Triggered() {
		q.triggeredCount++
		return
	}

	if mq, ok := m.(*Quorum); ok && mq.wantsInterest {
		q.wantsInterest = true
	}

	q.members = append(q.members, m)
	sig.Dup()
	sig.addListener(listenerEntry{kind: listenerQuorum, quorum: q})
}

// addInterestToken records a bare "interest" placeholder member
// without allocating a signal for it yet (spec.md §4.3).
func (q *Quorum) addInterestToken() {
	q.pendingInterest++
	q.wantsInterest = true
}

// triggerMember is the quorum's listener callback, invoked by a
// member's Trigger (spec.md §4.2 step 4, §4.3 "trigger_member").
func (q *Quorum) triggerMember(child *Signal) {
	idx := -1
	for i, m := range q.members {
		if m.asSignal() == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Already removed (e.g. by a concurrent selfTrigger sweep), no-op,
		// matching spec.md §8 invariant 2: a member that triggers after Q
		// has already met threshold must not re-enter Q.
		return
	}

	q.triggeredCount++
	last := len(q.members) - 1
	removed := q.members[idx]
	q.members[idx] = q.members[last]
	q.members = q.members[:last]
	removed.asSignal().Drop()

	if q.triggeredCount >= q.threshold {
		q.selfTrigger()
	}
}

// selfTrigger clears the quorum's outgoing listener registrations on
// its remaining members (so a late trigger never calls back into a
// freed quorum, spec.md §9 "Cyclic reference risk") and then runs the
// base trigger path to notify this quorum's own listeners.
func (q *Quorum) selfTrigger() {
	for _, m := range q.members {
		sig := m.asSignal()
		sig.removeListener(listenerEntry{kind: listenerQuorum, quorum: q})
		sig.Drop()
	}
	q.members = nil
	q.Signal.Trigger()
}

// resolveInterest binds interest (the lazily created interest signal
// of a computation about to suspend on q) to every quorum still
// marked wantsInterest along the chain rooted at q (spec.md §4.3).
// Because binding can re-entrantly trigger a quorum and free it, the
// member list is copied to a local buffer before recursing.
func (q *Quorum) resolveInterest(interest *Signal) {
	if !q.wantsInterest {
		return
	}
	q.wantsInterest = false

	pending := q.pendingInterest
	q.pendingInterest = 0

	members := append([]signalLike(nil), q.members...)

	for i := 0; i < pending; i++ {
		q.addMember(interest.Dup())
	}
	if q.triggeredCount >= q.threshold {
		q.selfTrigger()
		return
	}

	for _, m := range members {
		if mq, ok := m.(*Quorum); ok {
			mq.resolveInterest(interest)
		}
	}
}

// Any builds the k=1 combinator (spec.md §4.3). Nullary any() produces
// an already-triggered signal; the unary form passes its argument
// through unchanged (aside from bumping its refcount).
func Any(members ...signalLike) *Signal {
	switch len(members) {
	case 0:
		s := NewSignal()
		s.Trigger()
		return s
	case 1:
		return members[0].asSignal().Dup()
	default:
		return &NewQuorum(1, members...).Signal
	}
}

// All builds the k=N combinator (spec.md §4.3).
func All(members ...signalLike) *Signal {
	switch len(members) {
	case 0:
		s := NewSignal()
		s.Trigger()
		return s
	case 1:
		return members[0].asSignal().Dup()
	default:
		return &NewQuorum(len(members), members...).Signal
	}
}
