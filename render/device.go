// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image/color"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/layercap/camera"
	"github.com/gogpu/layercap/pixel"
	"github.com/gogpu/layercap/scene"
)

// TargetFormat is the pixel format of every render target.
const TargetFormat = gputypes.TextureFormatRGBA8Unorm

// DeviceHandle provides GPU device access from a host application.
//
// The host (for example a gogpu window) owns the GPU device and passes it
// in; layercap never needs a device of its own when one is shared this way.
// See gpu.NewFromProvider.
type DeviceHandle = gpucontext.DeviceProvider

// Device is a render context with one default framebuffer and any number of
// offscreen targets. Exactly one target is bound at a time; nil means the
// default framebuffer.
//
// Once a device is lost every method returns ErrDeviceLost.
type Device interface {
	// CreateTarget allocates an offscreen RGBA8 target.
	// Width and height must be positive.
	CreateTarget(width, height int) (Target, error)

	// SetRenderTarget binds t as the destination of subsequent Render calls
	// and returns the previously bound target. Pass nil to bind the default
	// framebuffer.
	SetRenderTarget(t Target) (Target, error)

	// RenderTarget returns the bound target, nil for the default framebuffer.
	RenderTarget() Target

	// SetClearColor sets the color the bound target is cleared to at the
	// start of Render.
	SetClearColor(c color.NRGBA)

	// ClearColor returns the current clear color.
	ClearColor() color.NRGBA

	// Render clears the bound target and draws every object of sc visible
	// to v (see Collect).
	Render(sc *scene.Scene, v camera.Viewer) error

	// ReadPixels copies the full contents of t (nil for the default
	// framebuffer) into CPU memory. It blocks until all prior rendering has
	// finished.
	ReadPixels(t Target) (pixel.Buffer, error)

	// Close releases the default framebuffer and any device resources.
	Close() error
}

// Target is an offscreen color surface.
type Target interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format (always TargetFormat).
	Format() gputypes.TextureFormat

	// Resize reallocates the target when the size differs from the current
	// one and is a no-op otherwise. Contents are not preserved.
	Resize(width, height int) error

	// Release frees the target's storage. It must be called exactly once;
	// later calls return ErrReleased without touching any resource.
	Release() error
}

// ValidateSize returns ErrInvalidDimension unless both sizes are positive.
func ValidateSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	return nil
}
