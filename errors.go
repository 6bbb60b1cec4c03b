package layercap

import (
	"errors"

	"github.com/gogpu/layercap/encode"
	"github.com/gogpu/layercap/render"
)

// Errors returned by Pipeline. Errors from lower layers are wrapped, so
// match them with errors.Is.
var (
	// ErrCaptureInFlight is returned when Capture is called while another
	// capture on the same pipeline has not finished.
	ErrCaptureInFlight = errors.New("layercap: capture already in flight")

	// ErrClosed is returned by operations on a closed pipeline.
	ErrClosed = errors.New("layercap: pipeline closed")

	// ErrInvalidDimension is returned for a non-positive capture size.
	ErrInvalidDimension = render.ErrInvalidDimension

	// ErrDeviceLost is returned once the render device has been lost.
	ErrDeviceLost = render.ErrDeviceLost

	// ErrReleased is returned when an already released target is used.
	ErrReleased = render.ErrReleased

	// ErrEncode is returned when the pixel buffer cannot be encoded.
	ErrEncode = encode.ErrEncode
)
