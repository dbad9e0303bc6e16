// Package library provides an idempotent init/cleanup latch, the Go
// equivalent of the origin's process-wide InitLibrary/CleanupLibrary pair
// (original_source/simple_http/lib/init_library.cc). Windows builds of the
// C++ original use this hook to load Winsock; a Go server never needs
// platform socket-library setup, so Once exists purely as the scoping
// seam spec.md §9 calls out — one latch per Server rather than a single
// process-wide global.
package library

import "sync/atomic"

// Once is a reusable init/cleanup latch scoped to a single owner (a
// Server, in this repo), mirroring g_IsLibraryInitialized's semantics
// without the process-wide scope.
type Once struct {
	initialized atomic.Bool
}

// Init runs once per Once value. A second call returns false without
// running fn again, matching InitLibraryError::kAlreadyInitialzed.
func (o *Once) Init(fn func() error) (ran bool, err error) {
	if !o.initialized.CompareAndSwap(false, true) {
		return false, nil
	}

	if fn != nil {
		if err = fn(); err != nil {
			o.initialized.Store(false)
			return true, err
		}
	}

	return true, nil
}

// Cleanup runs fn only if Init has succeeded and Cleanup has not already
// run, matching CleanupLibrary's no-op-if-never-initialized behavior.
func (o *Once) Cleanup(fn func() error) error {
	if !o.initialized.CompareAndSwap(true, false) {
		return nil
	}

	if fn != nil {
		return fn()
	}
	return nil
}

// IsInitialized reports the latch's current state.
func (o *Once) IsInitialized() bool {
	return o.initialized.Load()
}
