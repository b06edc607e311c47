// Package wake keeps a display awake while a round is running. Browser
// clients hold their own wake lock, steered by the keep_awake flag on every
// snapshot; a Locker covers deployments where the server itself drives a
// local display. Acquisition is best effort: failures are logged by the
// caller and never interrupt a round.
package wake

import "errors"

// ErrUnsupported indicates no wake facility is available on this system.
var ErrUnsupported = errors.New("wake lock unsupported")

type Locker interface {
	Acquire() error
	Release() error
}

// Unsupported is the default Locker. Acquire reports ErrUnsupported so the
// caller can note the degradation once and carry on.
type Unsupported struct{}

func (Unsupported) Acquire() error { return ErrUnsupported }
func (Unsupported) Release() error { return nil }
