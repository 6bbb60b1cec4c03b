package layercap

import (
	"errors"
	"fmt"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/gogpu/layercap/camera"
	"github.com/gogpu/layercap/encode"
	"github.com/gogpu/layercap/layer"
	"github.com/gogpu/layercap/pixel"
	"github.com/gogpu/layercap/render"
	"github.com/gogpu/layercap/scene"
)

// Encoder turns a readback buffer into a displayable image.
// encode.PNGEncoder is the default.
type Encoder interface {
	Encode(buf pixel.Buffer) (*encode.Image, error)
}

// State is the capture state of a Pipeline.
type State uint32

const (
	// StateIdle means the pipeline accepts a new capture.
	StateIdle State = iota

	// StateCapturing means a capture is running.
	StateCapturing

	// StateClosed means Close has been called.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

// Pipeline renders selected scene layers into an offscreen target and
// encodes the result.
//
// The capture camera and target are private to the pipeline. The target is
// created on the first Capture and released by Close.
type Pipeline struct {
	device render.Device
	cam    *camera.CaptureCamera
	target render.Target

	width, height  int
	encoder        Encoder
	viewportAspect bool
	onComplete     func(*encode.Image)
	clear          color.NRGBA

	state atomic.Uint32
}

// New creates a pipeline rendering with device.
func New(device render.Device, opts ...Option) (*Pipeline, error) {
	if device == nil {
		return nil, errors.New("layercap: nil device")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := render.ValidateSize(o.width, o.height); err != nil {
		return nil, fmt.Errorf("layercap: %w", err)
	}
	return &Pipeline{
		device:         device,
		cam:            camera.NewCaptureCamera(o.layers),
		width:          o.width,
		height:         o.height,
		encoder:        o.encoder,
		viewportAspect: o.viewportAspect,
		onComplete:     o.onComplete,
		clear:          o.clear,
	}, nil
}

// State returns the current capture state.
func (p *Pipeline) State() State { return State(p.state.Load()) }

// Layers returns the layers the pipeline captures.
func (p *Pipeline) Layers() layer.Mask { return p.cam.Layers() }

// Size returns the requested output size.
func (p *Pipeline) Size() (width, height int) { return p.width, p.height }

// Camera returns a copy of the capture camera as of the last capture.
// Changing the copy does not affect the pipeline.
func (p *Pipeline) Camera() *camera.CaptureCamera {
	c := *p.cam
	return &c
}

// Capture renders the layers of sc selected by the pipeline, seen from the
// interactive camera's current viewpoint, and returns the encoded image.
//
// Capture blocks until the pixels have been read back. It fails with
// ErrCaptureInFlight if another capture is running and ErrClosed after
// Close. On any error no image is returned and the pipeline returns to idle.
func (p *Pipeline) Capture(sc *scene.Scene, interactive *camera.Camera) (*encode.Image, error) {
	if !p.state.CompareAndSwap(uint32(StateIdle), uint32(StateCapturing)) {
		if p.State() == StateClosed {
			return nil, ErrClosed
		}
		return nil, ErrCaptureInFlight
	}
	defer p.state.Store(uint32(StateIdle))

	if interactive == nil {
		return nil, errors.New("layercap: nil interactive camera")
	}
	start := time.Now()

	p.cam.Sync(interactive)
	if !p.viewportAspect {
		p.cam.SetAspect(float32(p.width) / float32(p.height))
	}

	if err := p.ensureTarget(); err != nil {
		return nil, err
	}
	if err := p.renderTarget(sc); err != nil {
		return nil, err
	}
	rendered := time.Now()

	buf, err := p.device.ReadPixels(p.target)
	if err != nil {
		return nil, fmt.Errorf("layercap: read pixels: %w", err)
	}
	img, err := p.encoder.Encode(buf)
	if err != nil {
		return nil, fmt.Errorf("layercap: encode: %w", err)
	}

	Logger().Debug("layercap: capture",
		"layers", p.cam.Layers().String(),
		"size", fmt.Sprintf("%dx%d", img.Width(), img.Height()),
		"bytes", img.Len(),
		"render", rendered.Sub(start),
		"total", time.Since(start))

	if p.onComplete != nil {
		p.onComplete(img)
	}
	return img, nil
}

// ensureTarget creates the target on first use and applies pending resizes.
func (p *Pipeline) ensureTarget() error {
	if p.target == nil {
		t, err := p.device.CreateTarget(p.width, p.height)
		if err != nil {
			return fmt.Errorf("layercap: create target: %w", err)
		}
		p.target = t
		return nil
	}
	if err := p.target.Resize(p.width, p.height); err != nil {
		return fmt.Errorf("layercap: resize target: %w", err)
	}
	return nil
}

// renderTarget draws sc into the pipeline's target and restores the
// device's previous target binding and clear color, also on failure.
func (p *Pipeline) renderTarget(sc *scene.Scene) (err error) {
	prev, err := p.device.SetRenderTarget(p.target)
	if err != nil {
		return fmt.Errorf("layercap: bind target: %w", err)
	}
	prevClear := p.device.ClearColor()
	p.device.SetClearColor(p.clear)

	defer func() {
		p.device.SetClearColor(prevClear)
		if _, rerr := p.device.SetRenderTarget(prev); rerr != nil && err == nil {
			err = fmt.Errorf("layercap: restore target: %w", rerr)
		}
	}()

	if err := p.device.Render(sc, p.cam); err != nil {
		return fmt.Errorf("layercap: render: %w", err)
	}
	return nil
}

// Resize changes the output size. An existing target is resized
// immediately; otherwise the size is used when the target is created.
// It fails with ErrCaptureInFlight while a capture is running.
func (p *Pipeline) Resize(width, height int) error {
	switch p.State() {
	case StateClosed:
		return ErrClosed
	case StateCapturing:
		return ErrCaptureInFlight
	}
	if err := render.ValidateSize(width, height); err != nil {
		return fmt.Errorf("layercap: %w", err)
	}
	if p.target != nil {
		if err := p.target.Resize(width, height); err != nil {
			return fmt.Errorf("layercap: resize target: %w", err)
		}
	}
	p.width, p.height = width, height
	return nil
}

// Close releases the offscreen target. It fails with ErrCaptureInFlight
// while a capture is running and with ErrClosed when called again.
func (p *Pipeline) Close() error {
	if !p.state.CompareAndSwap(uint32(StateIdle), uint32(StateClosed)) {
		if p.State() == StateClosed {
			return ErrClosed
		}
		return ErrCaptureInFlight
	}
	if p.target == nil {
		return nil
	}
	t := p.target
	p.target = nil
	if err := t.Release(); err != nil {
		Logger().Warn("layercap: release target", "error", err)
		return fmt.Errorf("layercap: release target: %w", err)
	}
	return nil
}
