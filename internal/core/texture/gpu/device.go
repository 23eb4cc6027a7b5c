package gpu

import "github.com/cogentcore/webgpu/wgpu"

// Device owns a headless WebGPU device used only for scratch textures.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
}

func OpenDevice(forceFallbackAdapter bool) (*Device, error) {
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		instance.Release()
		return nil, err
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "paramsync scratch device",
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, err
	}

	return &Device{instance: instance, adapter: adapter, device: device}, nil
}

func (d *Device) Allocator() *Allocator {
	return NewAllocator(d.device)
}

func (d *Device) Close() {
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
}
