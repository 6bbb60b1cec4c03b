package layercap

import (
	"image/color"

	"github.com/gogpu/layercap/encode"
	"github.com/gogpu/layercap/layer"
)

// Default capture settings.
const (
	DefaultWidth  = 512
	DefaultHeight = 512
)

// DefaultLayers is the capture mask used when WithLayers is not given.
var DefaultLayers = layer.Of(1)

// Option configures a Pipeline during creation.
//
// Example:
//
//	p, err := layercap.New(dev,
//	    layercap.WithSize(400, 600),
//	    layercap.WithLayers(layer.Of(1, 2)),
//	)
type Option func(*options)

type options struct {
	width, height  int
	layers         layer.Mask
	encoder        Encoder
	viewportAspect bool
	onComplete     func(*encode.Image)
	clear          color.NRGBA
}

func defaultOptions() options {
	return options{
		width:   DefaultWidth,
		height:  DefaultHeight,
		layers:  DefaultLayers,
		encoder: encode.PNGEncoder{},
	}
}

// WithSize sets the output image size in pixels. Both values must be
// positive; New reports ErrInvalidDimension otherwise.
func WithSize(width, height int) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithLayers sets the layers the capture camera sees. The mask is fixed for
// the pipeline's lifetime.
func WithLayers(m layer.Mask) Option {
	return func(o *options) {
		o.layers = m
	}
}

// WithEncoder replaces the default PNG encoder.
func WithEncoder(e Encoder) Option {
	return func(o *options) {
		if e != nil {
			o.encoder = e
		}
	}
}

// WithViewportAspect keeps the interactive camera's aspect ratio instead of
// fitting the projection to the capture size. When the two shapes differ the
// captured image is stretched, as a plain copy of the camera would be.
func WithViewportAspect() Option {
	return func(o *options) {
		o.viewportAspect = true
	}
}

// WithCompletion registers fn to receive every successfully encoded image.
// It runs on the capturing goroutine before Capture returns, while the
// pipeline still reports StateCapturing; calling Capture from fn fails with
// ErrCaptureInFlight.
func WithCompletion(fn func(*encode.Image)) Option {
	return func(o *options) {
		o.onComplete = fn
	}
}

// WithClearColor sets the background of captured images. The default is
// transparent, so regions without visible objects have alpha 0.
func WithClearColor(c color.NRGBA) Option {
	return func(o *options) {
		o.clear = c
	}
}
