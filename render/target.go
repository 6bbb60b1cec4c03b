// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/layercap/pixel"
)

// softTarget is a CPU color + depth surface owned by a Software device.
//
// Rows are stored bottom-up: row 0 is the bottom of the image, as in an
// OpenGL framebuffer.
type softTarget struct {
	dev    *Software
	width  int
	height int
	color  []byte
	depth  []float32

	screen   bool
	released bool
}

func newSoftTarget(dev *Software, width, height int, screen bool) *softTarget {
	t := &softTarget{dev: dev, screen: screen}
	t.alloc(width, height)
	return t
}

func (t *softTarget) alloc(width, height int) {
	t.width = width
	t.height = height
	t.color = make([]byte, width*height*pixel.BytesPerPixel)
	t.depth = make([]float32, width*height)
}

// Width returns the target width in pixels.
func (t *softTarget) Width() int { return t.width }

// Height returns the target height in pixels.
func (t *softTarget) Height() int { return t.height }

// Format returns the pixel format (RGBA8).
func (t *softTarget) Format() gputypes.TextureFormat { return TargetFormat }

// Resize reallocates storage when the size changes.
func (t *softTarget) Resize(width, height int) error {
	if t.released {
		return ErrReleased
	}
	if err := ValidateSize(width, height); err != nil {
		return err
	}
	if width == t.width && height == t.height {
		return nil
	}
	Logger().Debug("render: resize target",
		"from", fmt.Sprintf("%dx%d", t.width, t.height),
		"to", fmt.Sprintf("%dx%d", width, height))
	t.alloc(width, height)
	return nil
}

// Release frees the target. A target still bound on its device is unbound
// first, restoring the default framebuffer.
func (t *softTarget) Release() error {
	if t.released {
		return ErrReleased
	}
	t.released = true
	t.color = nil
	t.depth = nil
	if t.dev != nil && !t.screen {
		t.dev.forget(t)
	}
	return nil
}

// clear fills color with c and resets depth to the far plane.
func (t *softTarget) clear(c color.NRGBA) {
	for i := 0; i < len(t.color); i += pixel.BytesPerPixel {
		t.color[i] = c.R
		t.color[i+1] = c.G
		t.color[i+2] = c.B
		t.color[i+3] = c.A
	}
	for i := range t.depth {
		t.depth[i] = math.MaxFloat32
	}
}

// snapshot copies the color storage into a bottom-up buffer.
func (t *softTarget) snapshot() pixel.Buffer {
	buf := pixel.NewBuffer(t.width, t.height, pixel.BottomUp)
	copy(buf.Pix, t.color)
	return buf
}
