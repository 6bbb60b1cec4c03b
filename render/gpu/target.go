// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/layercap/render"
)

// depthFormat is the depth attachment format of every target.
const depthFormat = gputypes.TextureFormatDepth24PlusStencil8

// target is a color + depth texture pair owned by a Device.
type target struct {
	dev *Device

	width  uint32
	height uint32

	colorTex  hal.Texture
	colorView hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView

	// rendered is set by a completed draw. Until then the color texture
	// has never been a render attachment and holds no defined pixels.
	rendered bool

	screen   bool
	released bool
}

func newTarget(dev *Device, width, height int, screen bool) (*target, error) {
	t := &target{dev: dev, screen: screen}
	if err := t.ensureTextures(uint32(width), uint32(height)); err != nil { //nolint:gosec // validated positive
		return nil, err
	}
	return t, nil
}

// textureSet is the color and depth attachments of one target size.
type textureSet struct {
	colorTex  hal.Texture
	colorView hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView
}

// ensureTextures creates or recreates the textures if the requested
// dimensions differ from the current size. The new set is built before the
// old one is destroyed, so a failure leaves the target unchanged.
func (t *target) ensureTextures(w, h uint32) error {
	if t.width == w && t.height == h && t.colorTex != nil {
		return nil
	}
	label := "layercap_target"
	if t.screen {
		label = "layercap_screen"
	}
	set, err := t.dev.createTextures(label, w, h)
	if err != nil {
		return err
	}

	t.destroyTextures()
	t.colorTex, t.colorView = set.colorTex, set.colorView
	t.depthTex, t.depthView = set.depthTex, set.depthView
	t.width, t.height = w, h
	t.rendered = false
	return nil
}

// createTextures allocates a color + depth pair. Partially created
// resources are destroyed on failure.
func (d *Device) createTextures(label string, w, h uint32) (textureSet, error) {
	var set textureSet
	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	var err error
	set.colorTex, err = d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label + "_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        render.TargetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return textureSet{}, fmt.Errorf("create color texture: %w", err)
	}

	set.colorView, err = d.device.CreateTextureView(set.colorTex, &hal.TextureViewDescriptor{
		Label: label + "_color_view",
	})
	if err != nil {
		d.destroyTextureSet(set)
		return textureSet{}, fmt.Errorf("create color view: %w", err)
	}

	set.depthTex, err = d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label + "_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        depthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		d.destroyTextureSet(set)
		return textureSet{}, fmt.Errorf("create depth texture: %w", err)
	}

	set.depthView, err = d.device.CreateTextureView(set.depthTex, &hal.TextureViewDescriptor{
		Label: label + "_depth_view",
	})
	if err != nil {
		d.destroyTextureSet(set)
		return textureSet{}, fmt.Errorf("create depth view: %w", err)
	}
	return set, nil
}

// destroyTextureSet releases set in reverse creation order. After an owned
// device has been destroyed it does nothing.
func (d *Device) destroyTextureSet(set textureSet) {
	device := d.device
	if device == nil {
		return
	}
	if set.depthView != nil {
		device.DestroyTextureView(set.depthView)
	}
	if set.depthTex != nil {
		device.DestroyTexture(set.depthTex)
	}
	if set.colorView != nil {
		device.DestroyTextureView(set.colorView)
	}
	if set.colorTex != nil {
		device.DestroyTexture(set.colorTex)
	}
}

// destroyTextures releases the target's textures and drops the handles.
func (t *target) destroyTextures() {
	t.dev.destroyTextureSet(textureSet{
		colorTex: t.colorTex, colorView: t.colorView,
		depthTex: t.depthTex, depthView: t.depthView,
	})
	t.depthView, t.depthTex = nil, nil
	t.colorView, t.colorTex = nil, nil
	t.width, t.height = 0, 0
	t.rendered = false
}

// Width returns the target width in pixels.
func (t *target) Width() int { return int(t.width) }

// Height returns the target height in pixels.
func (t *target) Height() int { return int(t.height) }

// Format returns the color texture format.
func (t *target) Format() gputypes.TextureFormat { return render.TargetFormat }

// Resize recreates the textures at the new size. Contents are discarded.
func (t *target) Resize(width, height int) error {
	if t.released {
		return render.ErrReleased
	}
	if err := render.ValidateSize(width, height); err != nil {
		return err
	}
	if err := t.dev.check(); err != nil {
		return err
	}
	w, h := uint32(width), uint32(height) //nolint:gosec // validated positive
	if w == t.width && h == t.height {
		return nil
	}
	render.Logger().Debug("gpu: resize target", "from", fmt.Sprintf("%dx%d", t.width, t.height),
		"to", fmt.Sprintf("%dx%d", w, h))
	return t.ensureTextures(w, h)
}

// Release destroys the textures and unbinds the target if it is bound.
func (t *target) Release() error {
	if t.released {
		return render.ErrReleased
	}
	t.released = true
	t.destroyTextures()
	if !t.screen {
		t.dev.forget(t)
	}
	return nil
}
