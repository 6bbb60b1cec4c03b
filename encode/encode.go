// Package encode turns a raw readback buffer into a displayable PNG image.
package encode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/transform"

	"github.com/gogpu/layercap/pixel"
)

// MIMEPNG is the format tag of every Image produced by this package.
const MIMEPNG = "image/png"

// ErrEncode is returned when a pixel buffer cannot be encoded, most often
// because its length does not match width*height*4.
var ErrEncode = errors.New("encode: invalid pixel buffer")

// Image is an encoded capture. It is immutable once produced.
type Image struct {
	data   []byte
	format string
	width  int
	height int
}

// Bytes returns a copy of the encoded bytes.
func (img *Image) Bytes() []byte {
	return bytes.Clone(img.data)
}

// Len returns the encoded size in bytes.
func (img *Image) Len() int { return len(img.data) }

// Format returns the MIME type of the encoding.
func (img *Image) Format() string { return img.format }

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// DataURL returns the image as a base64 "data:" URL.
func (img *Image) DataURL() string {
	return "data:" + img.format + ";base64," + base64.StdEncoding.EncodeToString(img.data)
}

// Decode decodes the image back into pixels.
func (img *Image) Decode() (image.Image, error) {
	m, err := png.Decode(bytes.NewReader(img.data))
	if err != nil {
		return nil, fmt.Errorf("encode: decode: %w", err)
	}
	return m, nil
}

// WriteTo writes the encoded bytes to w.
func (img *Image) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(img.data)
	return int64(n), err
}

// Save writes the image to a file.
func (img *Image) Save(path string) error {
	return os.WriteFile(filepath.Clean(path), img.data, 0o644) //nolint:gosec // captures are not secrets
}

// PNGEncoder encodes buffers as PNG.
// The zero value uses png.DefaultCompression.
type PNGEncoder struct {
	Level png.CompressionLevel
}

// Encode corrects the row order of buf and encodes it as PNG.
// Alpha is kept as-is: buffers hold non-premultiplied RGBA.
func (e PNGEncoder) Encode(buf pixel.Buffer) (*Image, error) {
	if buf.Width <= 0 || buf.Height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrEncode, buf.Width, buf.Height)
	}
	if want := buf.Width * buf.Height * pixel.BytesPerPixel; len(buf.Pix) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d for %dx%d",
			ErrEncode, len(buf.Pix), want, buf.Width, buf.Height)
	}

	nrgba := &image.NRGBA{
		Pix:    topDownPix(buf),
		Stride: buf.Stride(),
		Rect:   image.Rect(0, 0, buf.Width, buf.Height),
	}

	var out bytes.Buffer
	enc := png.Encoder{CompressionLevel: e.Level}
	if err := enc.Encode(&out, nrgba); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return &Image{
		data:   out.Bytes(),
		format: MIMEPNG,
		width:  buf.Width,
		height: buf.Height,
	}, nil
}

// Encode encodes buf with the default PNGEncoder.
func Encode(buf pixel.Buffer) (*Image, error) {
	return PNGEncoder{}.Encode(buf)
}

// topDownPix returns the pixel bytes with row 0 at the top.
//
// bild works on *image.RGBA, but FlipV only moves bytes, so the straight
// alpha values survive the round trip untouched.
func topDownPix(buf pixel.Buffer) []byte {
	if buf.Order == pixel.TopDown {
		return buf.Pix
	}
	src := &image.RGBA{
		Pix:    buf.Pix,
		Stride: buf.Stride(),
		Rect:   image.Rect(0, 0, buf.Width, buf.Height),
	}
	return transform.FlipV(src).Pix
}
