//go:build wasm

package internal

import "sync"

var once sync.Once
var globalDriver *Driver

// defaultSeed seeds the driver's random-cull source deterministically.
const defaultSeed = 0x5eed

// GetDriver returns the single process-wide driver. WASM has no
// goroutine-id primitive and is single-threaded by construction, so a
// single global instance (rather than AnatoleLucet-sig's
// goid-keyed map) is the right shape here, matching
// AnatoleLucet-sig/internal/runtime_wasm.go.
func GetDriver() *Driver {
	once.Do(func() {
		globalDriver = NewDriver(defaultSeed)
	})
	return globalDriver
}

// ResetDriver rebuilds the global driver from scratch.
func ResetDriver() {
	GetDriver().Reset(defaultSeed)
}

// bindGoroutine/unbindGoroutine are no-ops under wasm: there is only
// ever one driver, so GetDriver() already resolves
// correctly from anywhere, including from inside a Body.
func bindGoroutine(gid int64, d *Driver) {}

func unbindGoroutine(gid int64) {}
