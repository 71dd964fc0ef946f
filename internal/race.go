package internal

// Race runs c against a set of cancellation signals and returns a
// computation producing an Option: Some(value) if c finishes first,
// None if any signal fires first (spec.md §4.5). The cancelled
// computation is never forcibly terminated: if a signal wins, c
// simply remains suspended until its owning handle is dropped or
// teardown runs (spec.md §5, "Cancellation").
func Race(d *Driver, c *Computation, signals ...*Signal) *Computation {
	return NewComputation(d, func(self *Computation) (any, error) {
		if c.done {
			return Option{Some: true, Value: c.value}, c.err
		}

		c.Start()

		members := make([]signalLike, 0, len(signals)+1)
		members = append(members, c.Completion())
		for _, s := range signals {
			members = append(members, s)
		}
		winner := Any(members...)
		defer winner.Drop()

		if err := self.Await(winner); err != nil {
			return nil, err
		}

		if c.done {
			return Option{Some: true, Value: c.value}, c.err
		}
		return Option{Some: false}, nil
	})
}
