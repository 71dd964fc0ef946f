package internal

import "time"

// After returns a signal that fires once the virtual clock advances
// by d from now (spec.md §6).
func After(d time.Duration) *Signal {
	drv := GetDriver()
	sig := NewSignal()
	drv.ScheduleTimer(drv.Now().Add(d), sig)
	return sig
}

// At returns a signal that fires once the virtual clock reaches t.
func At(t VTime) *Signal {
	drv := GetDriver()
	sig := NewSignal()
	drv.ScheduleTimer(t, sig)
	return sig
}

// ASAP returns a signal enqueued to fire on the immediate queue, i.e.
// strictly before any time-triggered signal at the current now
// (spec.md §4.6, §6).
func ASAP() *Signal {
	drv := GetDriver()
	sig := NewSignal()
	drv.EnqueueImmediate(sig)
	return sig
}
