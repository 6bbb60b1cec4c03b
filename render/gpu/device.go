// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan backend for Open.
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/layercap/camera"
	"github.com/gogpu/layercap/pixel"
	"github.com/gogpu/layercap/render"
	"github.com/gogpu/layercap/scene"
)

// fenceTimeout bounds every wait for submitted GPU work. A timeout is
// treated as a lost device.
const fenceTimeout = 5 * time.Second

// Errors returned while acquiring a device.
var (
	// ErrNoHAL is returned by NewFromProvider when the provider does not
	// expose wgpu/hal device and queue handles.
	ErrNoHAL = errors.New("gpu: provider does not expose HAL types")

	// ErrNoAdapter is returned by Open when no usable adapter exists.
	ErrNoAdapter = errors.New("gpu: no GPU adapter available")
)

// Device is a render.Device backed by a wgpu/hal device and queue.
//
// The default framebuffer is an internal texture of the viewport size.
// Device is not safe for concurrent use.
type Device struct {
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance // non-nil only when the device is owned (Open)

	screen *target
	bound  *target
	clear  color.NRGBA
	live   int

	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	lost   bool
	closed bool
}

var _ render.Device = (*Device)(nil)

// New creates a device on a host-owned hal device and queue. The host keeps
// ownership: Close releases layercap's resources but not the device itself.
func New(device hal.Device, queue hal.Queue, viewportWidth, viewportHeight int) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("gpu: nil device or queue")
	}
	if err := render.ValidateSize(viewportWidth, viewportHeight); err != nil {
		return nil, err
	}
	d := &Device{device: device, queue: queue}
	screen, err := newTarget(d, viewportWidth, viewportHeight, true)
	if err != nil {
		return nil, fmt.Errorf("gpu: create default framebuffer: %w", err)
	}
	d.screen = screen
	return d, nil
}

// NewFromProvider creates a device on the GPU shared by a host application.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewFromProvider(provider render.DeviceHandle, viewportWidth, viewportHeight int) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return New(device, queue, viewportWidth, viewportHeight)
}

// Open creates a standalone device on the first discrete or integrated
// Vulkan adapter, falling back to whatever adapter is listed first.
func Open(viewportWidth, viewportHeight int) (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	d, err := New(openDev.Device, openDev.Queue, viewportWidth, viewportHeight)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	render.Logger().Info("gpu: device opened", "adapter", selected.Info.Name)
	return d, nil
}

// Screen returns the default framebuffer.
func (d *Device) Screen() render.Target { return d.screen }

// ResizeViewport resizes the default framebuffer.
func (d *Device) ResizeViewport(width, height int) error {
	return d.screen.Resize(width, height)
}

// CreateTarget allocates a color + depth texture pair.
func (d *Device) CreateTarget(width, height int) (render.Target, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if err := render.ValidateSize(width, height); err != nil {
		return nil, err
	}
	t, err := newTarget(d, width, height, false)
	if err != nil {
		return nil, err
	}
	d.live++
	render.Logger().Debug("gpu: create target", "size", fmt.Sprintf("%dx%d", width, height), "live", d.live)
	return t, nil
}

// SetRenderTarget binds t and returns the previous binding.
func (d *Device) SetRenderTarget(t render.Target) (render.Target, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	prev := d.RenderTarget()
	if t == nil {
		d.bound = nil
		return prev, nil
	}
	gt, err := d.own(t)
	if err != nil {
		return nil, err
	}
	if gt.screen {
		d.bound = nil
	} else {
		d.bound = gt
	}
	return prev, nil
}

// RenderTarget returns the bound target, nil for the default framebuffer.
func (d *Device) RenderTarget() render.Target {
	if d.bound == nil {
		return nil
	}
	return d.bound
}

// SetClearColor sets the clear color. The default is transparent black.
func (d *Device) SetClearColor(c color.NRGBA) { d.clear = c }

// ClearColor returns the current clear color.
func (d *Device) ClearColor() color.NRGBA { return d.clear }

// Render clears the bound target and draws every visible triangle.
func (d *Device) Render(sc *scene.Scene, v camera.Viewer) error {
	if err := d.check(); err != nil {
		return err
	}
	if err := d.ensurePipeline(); err != nil {
		return err
	}
	t := d.screen
	if d.bound != nil {
		t = d.bound
	}
	return d.encodeSubmitDraw(t, render.Collect(sc, v))
}

// ReadPixels copies t (nil for the default framebuffer) into a top-down
// buffer. It blocks until the copy has completed.
func (d *Device) ReadPixels(t render.Target) (pixel.Buffer, error) {
	if err := d.check(); err != nil {
		return pixel.Buffer{}, err
	}
	gt := d.screen
	if t != nil {
		var err error
		if gt, err = d.own(t); err != nil {
			return pixel.Buffer{}, err
		}
	}
	return d.readback(gt)
}

// LiveTargets returns the number of created targets not yet released.
func (d *Device) LiveTargets() int { return d.live }

// Close releases the pipeline and default framebuffer, and the hal device
// itself when it was created by Open.
func (d *Device) Close() error {
	if d.closed {
		return render.ErrDeviceClosed
	}
	d.bound = nil
	d.destroyPipeline()
	d.screen.destroyTextures()
	if d.instance != nil {
		d.device.Destroy()
		d.instance.Destroy()
		d.device = nil
		d.instance = nil
	}
	d.closed = true
	return nil
}

func (d *Device) check() error {
	switch {
	case d.closed:
		return render.ErrDeviceClosed
	case d.lost:
		return render.ErrDeviceLost
	}
	return nil
}

// own returns t as a live target of this device.
func (d *Device) own(t render.Target) (*target, error) {
	gt, ok := t.(*target)
	if !ok || gt.dev != d {
		return nil, render.ErrForeignTarget
	}
	if gt.released {
		return nil, render.ErrReleased
	}
	return gt, nil
}

// forget is called by target.Release.
func (d *Device) forget(t *target) {
	d.live--
	if d.bound == t {
		d.bound = nil
	}
}

// markLost records a failed submit or fence wait and wraps cause with
// render.ErrDeviceLost.
func (d *Device) markLost(op string, cause error) error {
	if !d.lost {
		render.Logger().Warn("gpu: device lost", "op", op, "error", cause)
	}
	d.lost = true
	if cause == nil {
		return fmt.Errorf("%w: %s", render.ErrDeviceLost, op)
	}
	return fmt.Errorf("%w: %s: %w", render.ErrDeviceLost, op, cause)
}

// submitAndWait submits cmdBuf and blocks until the GPU has executed it.
func (d *Device) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return d.markLost("submit", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return d.markLost("wait for GPU", err)
	}
	return nil
}
