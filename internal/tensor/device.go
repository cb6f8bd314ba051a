package tensor

import (
	"errors"
	"fmt"
)

// Device identifies where a tensor's memory lives.
type Device int

const (
	// CPU is host memory. Always available.
	CPU Device = iota
	// Accelerator is device memory (GPU or similar). Only usable when an
	// accelerator backend is present at runtime.
	Accelerator
)

// ErrDeviceUnavailable is returned when a tensor is moved to a device that
// has no backend on this host. Callers must not fall back silently.
var ErrDeviceUnavailable = errors.New("device unavailable")

func (d Device) String() string {
	switch d {
	case CPU:
		return "cpu"
	case Accelerator:
		return "accelerator"
	default:
		return fmt.Sprintf("device(%d)", int(d))
	}
}

// Available reports whether this device can hold tensors on this host.
func (d Device) Available() bool {
	return d == CPU
}

// To returns the tensor on the given device. Moving to the current device
// is a no-op returning the receiver. Moving to an unavailable device fails;
// the error propagates unmodified to the caller.
func (t *Tensor) To(d Device) (*Tensor, error) {
	if d == t.device {
		return t, nil
	}
	if !d.Available() {
		return nil, fmt.Errorf("move tensor %v to %s: %w", t.shape, d, ErrDeviceUnavailable)
	}
	moved := t.Clone()
	moved.device = d
	return moved, nil
}
