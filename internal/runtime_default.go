//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

// drivers maps a goroutine id to the Driver instance it owns. Keying
// by goroutine rather than using one global lets independent test
// subtests run their own isolated virtual-time world even under
// `go test -parallel`, without any explicit wiring, the same trick
// AnatoleLucet-sig/internal/runtime_default.go uses for its reactive
// Runtime.
var drivers sync.Map

// defaultSeed seeds every new driver's random-cull source
// deterministically (spec.md §6, "Configuration": "random cull seed
// are implementation-defined but deterministic").
const defaultSeed = 0x5eed

// GetDriver returns the calling goroutine's driver, creating one on
// first use.
func GetDriver() *Driver {
	gid := goid.Get()

	if d, ok := drivers.Load(gid); ok {
		return d.(*Driver)
	}

	d := NewDriver(defaultSeed)
	drivers.Store(gid, d)
	return d
}

// bindGoroutine registers gid as owned by d. A Computation's backing
// goroutine calls this once, at startup, so that any package-level
// call made from inside its Body (After/At/ASAP, a nested
// vsim.Go/internal.Race) resolves GetDriver()
// to the driver actually running it, rather than silently allocating
// an orphaned driver nobody ever loops or clears.
func bindGoroutine(gid int64, d *Driver) {
	drivers.Store(gid, d)
}

// unbindGoroutine releases gid's entry once its backing goroutine has
// exited for good, so a later unrelated goroutine reusing that id
// doesn't inherit a stale driver.
func unbindGoroutine(gid int64) {
	drivers.Delete(gid)
}

// ResetDriver rebuilds the calling goroutine's driver from scratch
// (spec.md §4.6 "reset()", §9 "Global singleton").
func ResetDriver() {
	GetDriver().Reset(defaultSeed)
}
