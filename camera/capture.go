package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/layercap/layer"
)

// CaptureCamera mirrors an interactive Camera's viewpoint while seeing only
// a fixed subset of layers.
//
// Sync must be called before every render. A CaptureCamera that has never
// been synced keeps the defaults of NewPerspective (DefaultPosition, looking
// at the origin, aspect 1) and will not match any interactive view; use
// Synced to check.
type CaptureCamera struct {
	cam    Camera
	synced bool
}

// NewCaptureCamera creates a capture camera restricted to layers.
// The mask is fixed for the camera's lifetime.
func NewCaptureCamera(layers layer.Mask) *CaptureCamera {
	c := &CaptureCamera{
		cam: *NewPerspective(DefaultFov, 1, DefaultNear, DefaultFar),
	}
	c.cam.layers = layers
	return c
}

// Sync copies from's position, orientation and projection parameters.
// Neither camera's layer mask is touched.
func (c *CaptureCamera) Sync(from *Camera) {
	layers := c.cam.layers
	c.cam = *from
	c.cam.layers = layers
	c.synced = true
}

// Synced reports whether Sync has been called at least once.
func (c *CaptureCamera) Synced() bool { return c.synced }

// SetAspect overrides the aspect ratio copied by the last Sync, so the
// projection can match a render target whose shape differs from the
// interactive viewport.
func (c *CaptureCamera) SetAspect(aspect float32) { c.cam.Aspect = aspect }

// Aspect returns the current aspect ratio.
func (c *CaptureCamera) Aspect() float32 { return c.cam.Aspect }

// Fov returns the vertical field of view in degrees.
func (c *CaptureCamera) Fov() float32 { return c.cam.Fov }

// Position returns the camera position.
func (c *CaptureCamera) Position() mgl32.Vec3 { return c.cam.Position }

// Orientation returns the camera orientation.
func (c *CaptureCamera) Orientation() mgl32.Quat { return c.cam.Orientation }

// Layers returns the fixed capture mask.
func (c *CaptureCamera) Layers() layer.Mask { return c.cam.layers }

// ViewMatrix returns the view matrix of the last synced viewpoint.
func (c *CaptureCamera) ViewMatrix() mgl32.Mat4 { return c.cam.ViewMatrix() }

// ProjectionMatrix returns the projection of the last synced viewpoint.
func (c *CaptureCamera) ProjectionMatrix() mgl32.Mat4 { return c.cam.ProjectionMatrix() }

var _ Viewer = (*CaptureCamera)(nil)
