// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/gogpu/layercap/camera"
	"github.com/gogpu/layercap/pixel"
	"github.com/gogpu/layercap/scene"
)

// Software is a CPU Device with a z-buffered triangle rasterizer.
//
// It has no GPU dependencies and produces deterministic output, which makes
// it the reference device for tests and headless tools.
//
// Example:
//
//	dev, _ := render.NewSoftware(800, 600)
//	dev.Render(sc, cam)
//	buf, _ := dev.ReadPixels(nil)
type Software struct {
	screen *softTarget
	bound  *softTarget
	clear  color.NRGBA
	live   int

	lost   bool
	closed bool
}

// NewSoftware creates a software device whose default framebuffer is
// viewportWidth x viewportHeight.
func NewSoftware(viewportWidth, viewportHeight int) (*Software, error) {
	if err := ValidateSize(viewportWidth, viewportHeight); err != nil {
		return nil, err
	}
	d := &Software{}
	d.screen = newSoftTarget(d, viewportWidth, viewportHeight, true)
	return d, nil
}

// Screen returns the default framebuffer.
func (d *Software) Screen() Target { return d.screen }

// ResizeViewport resizes the default framebuffer, as a window resize would.
func (d *Software) ResizeViewport(width, height int) error {
	if err := d.check(); err != nil {
		return err
	}
	return d.screen.Resize(width, height)
}

// CreateTarget allocates an offscreen target.
func (d *Software) CreateTarget(width, height int) (Target, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if err := ValidateSize(width, height); err != nil {
		return nil, err
	}
	d.live++
	Logger().Debug("render: create target", "size", fmt.Sprintf("%dx%d", width, height), "live", d.live)
	return newSoftTarget(d, width, height, false), nil
}

// SetRenderTarget binds t and returns the previous binding.
func (d *Software) SetRenderTarget(t Target) (Target, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	prev := d.RenderTarget()
	if t == nil {
		d.bound = nil
		return prev, nil
	}
	st, ok := t.(*softTarget)
	if !ok || st.dev != d {
		return nil, ErrForeignTarget
	}
	if st.released {
		return nil, ErrReleased
	}
	if st.screen {
		d.bound = nil
	} else {
		d.bound = st
	}
	return prev, nil
}

// RenderTarget returns the bound target, nil for the default framebuffer.
func (d *Software) RenderTarget() Target {
	if d.bound == nil {
		return nil
	}
	return d.bound
}

// SetClearColor sets the clear color. The default is transparent black.
func (d *Software) SetClearColor(c color.NRGBA) { d.clear = c }

// ClearColor returns the current clear color.
func (d *Software) ClearColor() color.NRGBA { return d.clear }

// Render clears the bound target and rasterizes every visible triangle.
func (d *Software) Render(sc *scene.Scene, v camera.Viewer) error {
	if err := d.check(); err != nil {
		return err
	}
	t := d.screen
	if d.bound != nil {
		t = d.bound
	}
	t.clear(d.clear)
	for _, tri := range Collect(sc, v) {
		rasterize(t, tri)
	}
	return nil
}

// ReadPixels copies t (nil for the default framebuffer) into a bottom-up
// buffer.
func (d *Software) ReadPixels(t Target) (pixel.Buffer, error) {
	if err := d.check(); err != nil {
		return pixel.Buffer{}, err
	}
	if t == nil {
		return d.screen.snapshot(), nil
	}
	st, ok := t.(*softTarget)
	if !ok || st.dev != d {
		return pixel.Buffer{}, ErrForeignTarget
	}
	if st.released {
		return pixel.Buffer{}, ErrReleased
	}
	return st.snapshot(), nil
}

// LiveTargets returns the number of created targets not yet released.
func (d *Software) LiveTargets() int { return d.live }

// Lose simulates a lost rendering context. Every later call fails with
// ErrDeviceLost.
func (d *Software) Lose() {
	if !d.lost {
		Logger().Warn("render: device lost")
	}
	d.lost = true
}

// Close releases the default framebuffer. Offscreen targets must still be
// released by their owners.
func (d *Software) Close() error {
	if d.closed {
		return ErrDeviceClosed
	}
	d.closed = true
	d.bound = nil
	d.screen.color = nil
	d.screen.depth = nil
	return nil
}

func (d *Software) check() error {
	switch {
	case d.closed:
		return ErrDeviceClosed
	case d.lost:
		return ErrDeviceLost
	}
	return nil
}

// forget is called by softTarget.Release.
func (d *Software) forget(t *softTarget) {
	d.live--
	if d.bound == t {
		d.bound = nil
	}
}

// rasterize draws one triangle with a depth test (less) into t.
// No culling is performed; both windings are filled.
func rasterize(t *softTarget, tri Triangle) {
	w, h := float32(t.width), float32(t.height)

	// Window coordinates. y grows upwards, matching bottom-up storage.
	var sx, sy, sz [3]float32
	for i, c := range tri.Clip {
		inv := 1 / c[3]
		sx[i] = (c[0]*inv + 1) * 0.5 * w
		sy[i] = (c[1]*inv + 1) * 0.5 * h
		sz[i] = c[2] * inv
	}

	area := edge(sx[0], sy[0], sx[1], sy[1], sx[2], sy[2])
	if area == 0 || math.IsNaN(float64(area)) {
		return
	}

	minX := span(min(sx[0], sx[1], sx[2]), t.width)
	maxX := span(max(sx[0], sx[1], sx[2]), t.width)
	minY := span(min(sy[0], sy[1], sy[2]), t.height)
	maxY := span(max(sy[0], sy[1], sy[2]), t.height)

	col := tri.Color
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(sx[1], sy[1], sx[2], sy[2], px, py) / area
			w1 := edge(sx[2], sy[2], sx[0], sy[0], px, py) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*sz[0] + w1*sz[1] + w2*sz[2]
			if z < -1 || z > 1 {
				continue
			}
			i := y*t.width + x
			if z >= t.depth[i] {
				continue
			}
			t.depth[i] = z
			p := i * pixel.BytesPerPixel
			t.color[p] = col.R
			t.color[p+1] = col.G
			t.color[p+2] = col.B
			t.color[p+3] = col.A
		}
	}
}

// edge returns twice the signed area of (a, b, p).
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// span converts a window coordinate to a pixel index clamped to [0, n).
func span(f float32, n int) int {
	if !(f > 0) {
		return 0
	}
	if f >= float32(n) {
		return n - 1
	}
	return int(f)
}
