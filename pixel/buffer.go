// Package pixel defines the raw RGBA buffer produced by a render target
// readback.
package pixel

import "fmt"

// BytesPerPixel is the size of one RGBA8 pixel.
const BytesPerPixel = 4

// RowOrder describes how rows are laid out in a Buffer.
type RowOrder uint8

const (
	// BottomUp means row 0 is the bottom of the image (OpenGL/WebGL readback).
	BottomUp RowOrder = iota

	// TopDown means row 0 is the top of the image (WebGPU/Vulkan readback,
	// and the order PNG expects).
	TopDown
)

// String returns the row order name.
func (o RowOrder) String() string {
	switch o {
	case BottomUp:
		return "bottom-up"
	case TopDown:
		return "top-down"
	default:
		return fmt.Sprintf("RowOrder(%d)", uint8(o))
	}
}

// Buffer is a tightly packed RGBA8 pixel rectangle with non-premultiplied
// alpha, as returned by a readback.
type Buffer struct {
	Pix    []byte
	Width  int
	Height int
	Order  RowOrder
}

// NewBuffer allocates a zeroed (transparent) buffer.
func NewBuffer(width, height int, order RowOrder) Buffer {
	return Buffer{
		Pix:    make([]byte, width*height*BytesPerPixel),
		Width:  width,
		Height: height,
		Order:  order,
	}
}

// Stride returns the number of bytes per row.
func (b Buffer) Stride() int {
	return b.Width * BytesPerPixel
}

// Valid reports whether the dimensions are positive and Pix has exactly
// Width*Height*4 bytes.
func (b Buffer) Valid() bool {
	return b.Width > 0 && b.Height > 0 && len(b.Pix) == b.Width*b.Height*BytesPerPixel
}

// RGBA returns the pixel at column x of visual row y, where y=0 is the top of
// the image regardless of Order. Out-of-range coordinates return zeros.
func (b Buffer) RGBA(x, y int) (r, g, bl, a uint8) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return 0, 0, 0, 0
	}
	row := y
	if b.Order == BottomUp {
		row = b.Height - 1 - y
	}
	i := row*b.Stride() + x*BytesPerPixel
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}
