package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// AfterFuncFunc schedules fn after d. Override in tests to fire timers manually.
var AfterFuncFunc = func(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }

// Timer is the subset of *time.Timer the runtime relies on.
type Timer interface {
	Stop() bool
}

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// AfterFunc is a thin wrapper around AfterFuncFunc.
func AfterFunc(d time.Duration, fn func()) Timer { return AfterFuncFunc(d, fn) }
