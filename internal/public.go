package internal

// The public vsim package hands signals around as a flat []*Signal.
// asMember/toMembers recover the owning *Quorum behind a signal
// produced by a prior Any/All/Quorum call, when there is one, so
// nesting combinators still threads interest correctly (spec.md §4.3)
// instead of looking like a plain leaf signal to the enclosing quorum.
func asMember(s *Signal) signalLike {
	if s.owner != nil {
		return s.owner
	}
	return s
}

func toMembers(signals []*Signal) []signalLike {
	members := make([]signalLike, len(signals))
	for i, s := range signals {
		members[i] = asMember(s)
	}
	return members
}

// AnySignals adapts Any to the public package's flat []*Signal shape.
func AnySignals(signals ...*Signal) *Signal { return Any(toMembers(signals)...) }

// AllSignals adapts All to the public package's flat []*Signal shape.
func AllSignals(signals ...*Signal) *Signal { return All(toMembers(signals)...) }

// QuorumSignals builds an arbitrary k-of-N combinator, generalizing
// AnySignals (k=1) and AllSignals (k=len(signals)).
func QuorumSignals(k int, signals ...*Signal) *Signal {
	return &NewQuorum(k, toMembers(signals)...).Signal
}
