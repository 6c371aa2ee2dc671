// Package hid bridges logical keys to the operating system: a virtual
// keyboard that receives injected keys and an observer that reports what
// real keyboards do.
package hid

import "errors"

// DefaultName is the name the virtual keyboard registers with the kernel.
const DefaultName = "LinKB Keyboard"

// ErrUnsupported is returned when the platform has no virtual keyboard backend.
var ErrUnsupported = errors.New("virtual keyboard is not supported on this platform")

// Options configures Open.
type Options struct {
	// Name of the virtual keyboard device
	Name string

	// ObservePhysical starts reading events from real keyboards
	ObservePhysical bool
}

func (o Options) name() string {
	if o.Name == "" {
		return DefaultName
	}
	return o.Name
}
