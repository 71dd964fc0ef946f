package internal

import "time"

// Tick is the minimum representable step of virtual time (spec.md §4.6).
const Tick = time.Nanosecond

// Epoch is the fixed virtual-clock start (spec.md §4.6, "Clock start").
// It is a plain computed constant, never a read of the wall clock, so
// traces stay reproducible (spec.md §6, "Configuration").
var Epoch = time.Date(2021, time.June, 21, 0, 0, 0, 0, time.UTC)

// VTime is a point in virtual time, measured as an offset from Epoch.
// It is never derived from time.Now(); the driver advances it
// explicitly (spec.md §5, "Non-goals: wall-clock fidelity").
type VTime time.Time

func (t VTime) Add(d time.Duration) VTime { return VTime(time.Time(t).Add(d)) }
func (t VTime) Before(u VTime) bool       { return time.Time(t).Before(time.Time(u)) }
func (t VTime) After(u VTime) bool        { return time.Time(t).After(time.Time(u)) }
func (t VTime) Sub(u VTime) time.Duration { return time.Time(t).Sub(time.Time(u)) }
func (t VTime) String() string            { return time.Time(t).Format(time.RFC3339Nano) }
