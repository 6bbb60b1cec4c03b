// Package camera provides the perspective cameras used to view a scene.
//
// Camera is the interactive camera a user moves around. CaptureCamera is a
// private copy of it with its own, fixed layer mask: it follows the
// interactive viewpoint through Sync but sees only the layers it was created
// with.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/layercap/layer"
)

// Default projection parameters, matching a typical WebGL scene camera.
const (
	DefaultFov  = 75
	DefaultNear = 0.1
	DefaultFar  = 1000
)

// DefaultPosition is where a new camera is placed; it looks at the origin.
var DefaultPosition = mgl32.Vec3{0, 0, 5}

// Viewer is what a renderer needs from a camera.
type Viewer interface {
	// ViewMatrix transforms world space into camera space.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix transforms camera space into clip space
	// (OpenGL convention, NDC z in [-1, 1]).
	ProjectionMatrix() mgl32.Mat4

	// Layers is the set of layers the camera sees.
	Layers() layer.Mask
}

// Camera is a perspective camera. The zero value is not usable; create
// cameras with NewPerspective.
type Camera struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat

	// Fov is the vertical field of view in degrees.
	Fov    float32
	Aspect float32
	Near   float32
	Far    float32

	layers layer.Mask
}

// NewPerspective creates a camera at DefaultPosition looking at the origin.
// It sees layer 0 only.
func NewPerspective(fov, aspect, near, far float32) *Camera {
	c := &Camera{
		Position:    DefaultPosition,
		Orientation: mgl32.QuatIdent(),
		Fov:         fov,
		Aspect:      aspect,
		Near:        near,
		Far:         far,
		layers:      layer.Of(0),
	}
	return c
}

// Layers returns the camera's layer mask.
func (c *Camera) Layers() layer.Mask { return c.layers }

// SetLayers replaces the camera's layer mask.
func (c *Camera) SetLayers(m layer.Mask) { c.layers = m }

// EnableLayer adds layer n to the camera's mask.
func (c *Camera) EnableLayer(n int) { c.layers = c.layers.Enable(n) }

// DisableLayer removes layer n from the camera's mask.
func (c *Camera) DisableLayer(n int) { c.layers = c.layers.Disable(n) }

// SetPosition moves the camera without changing its orientation.
func (c *Camera) SetPosition(p mgl32.Vec3) { c.Position = p }

// Forward returns the unit direction the camera looks along.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.Orientation.Rotate(mgl32.Vec3{0, 0, -1})
}

// LookAt turns the camera toward target, keeping +Y up where possible.
// It is a no-op when target coincides with the camera position.
func (c *Camera) LookAt(target mgl32.Vec3) {
	dir := target.Sub(c.Position)
	if dir.Len() < 1e-6 {
		return
	}
	up := mgl32.Vec3{0, 1, 0}
	if dir.Normalize().Cross(up).Len() < 1e-6 {
		up = mgl32.Vec3{0, 0, -1}
	}
	view := mgl32.LookAtV(c.Position, target, up)
	c.Orientation = mgl32.Mat4ToQuat(view.Mat3().Transpose().Mat4()).Normalize()
}

// maxPitch keeps Orbit away from the poles where LookAt loses its up vector.
const maxPitch = 89 * math.Pi / 180

// Orbit rotates the camera around target by yaw (about +Y) and pitch (toward
// +Y), both in radians, keeping its distance, and turns it to face target.
func (c *Camera) Orbit(target mgl32.Vec3, yaw, pitch float32) {
	offset := c.Position.Sub(target)
	r := offset.Len()
	if r < 1e-6 {
		return
	}
	curYaw := math.Atan2(float64(offset[0]), float64(offset[2]))
	curPitch := math.Asin(float64(offset[1] / r))

	newYaw := curYaw + float64(yaw)
	newPitch := math.Max(-maxPitch, math.Min(maxPitch, curPitch+float64(pitch)))

	c.Position = target.Add(mgl32.Vec3{
		r * float32(math.Sin(newYaw)*math.Cos(newPitch)),
		r * float32(math.Sin(newPitch)),
		r * float32(math.Cos(newYaw)*math.Cos(newPitch)),
	})
	c.LookAt(target)
}

// ViewMatrix returns the inverse of the camera's world transform.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return viewMatrix(c.Position, c.Orientation)
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

func viewMatrix(pos mgl32.Vec3, orient mgl32.Quat) mgl32.Mat4 {
	return orient.Conjugate().Mat4().Mul4(mgl32.Translate3D(-pos[0], -pos[1], -pos[2]))
}

var _ Viewer = (*Camera)(nil)
