package connection

import "sync"

// Profile selects the concurrency discipline of a Client. The state
// machine and ordering guarantees are identical across profiles; only
// the locking obligations differ, so one Client implementation serves
// both.
type Profile int

const (
	// Threaded is for multi-goroutine deployments: the port and its
	// registered callbacks may be shared and invoked across
	// goroutines, and callbacks may run on a goroutine other than the
	// one that registered them. Mutations are mutex-guarded.
	Threaded Profile = iota

	// Cooperative is for single-threaded event-loop deployments: all
	// calls and callback invocations happen on one goroutine, so
	// locking is elided entirely. Sharing a Cooperative client across
	// goroutines is a caller bug.
	Cooperative
)

// String returns the lower-case profile name.
func (p Profile) String() string {
	if p == Cooperative {
		return "cooperative"
	}
	return "threaded"
}

// newLocker returns the profile's locker: a real mutex for Threaded, a
// no-op for Cooperative.
func (p Profile) newLocker() sync.Locker {
	if p == Cooperative {
		return nopLocker{}
	}
	return &sync.Mutex{}
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}
