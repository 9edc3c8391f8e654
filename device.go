package fx

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// fx receives the device from the host, it does not create one. A windowing
// framework that owns the GPU context implements DeviceHandle (or passes a
// gpucontext.DeviceProvider directly) so the effects share its device and
// queue instead of opening their own.
//
// Providers that additionally expose HalDevice() any and HalQueue() any are
// unwrapped to the raw wgpu HAL types and enable the GPU compositor; other
// providers fall back to the CPU compositor.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle with nil implementations. Effects
// created with it render on the CPU path.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
