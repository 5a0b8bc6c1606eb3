package backend

import (
	"errors"
	"io"

	"github.com/gogpu/framegraph/render"
)

// Backend name constants.
const (
	// BackendNull is the headless render.NullDevice.
	BackendNull = "null"

	// BackendNoop is the gogpu/wgpu HAL noop device, registered by
	// backend/wgpu.
	BackendNoop = "noop"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Factory opens a device.
type Factory func() (render.Device, error)

func init() {
	Register(BackendNull, func() (render.Device, error) {
		return render.NewNullDevice(), nil
	})
}

// Close releases dev when it owns resources beyond its Go memory, such as
// a HAL device and instance. Devices without a Close method are left alone.
func Close(dev render.Device) error {
	if c, ok := dev.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
