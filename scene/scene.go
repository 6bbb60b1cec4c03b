// Package scene holds the 3D scene graph that cameras render.
//
// A Scene is a flat, ordered list of Objects plus lighting. Each Object
// combines a Mesh, a Material, a Transform and a layer.Mask. The mask is set
// when the object is created and cannot change afterwards; which cameras see
// an object is decided solely by intersecting that mask with the camera's.
//
// Scenes are not safe for concurrent use. Update them from the same
// goroutine that renders them.
package scene

import (
	"image/color"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/layercap/layer"
)

// Material is the surface description of an object.
type Material struct {
	// Color is the base color in sRGB. Alpha is ignored by the renderers;
	// objects are opaque.
	Color color.NRGBA
}

// Transform places an object in world space.
type Transform struct {
	Position mgl32.Vec3

	// Rotation holds Euler angles in radians, applied in X, Y, Z order.
	Rotation mgl32.Vec3

	Scale mgl32.Vec3
}

// Identity returns a transform with unit scale at the origin.
func Identity() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix returns the model matrix T * Rx * Ry * Rz * S.
func (t Transform) Matrix() mgl32.Mat4 {
	r := mgl32.HomogRotate3DX(t.Rotation[0]).
		Mul4(mgl32.HomogRotate3DY(t.Rotation[1])).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation[2]))
	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(r).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Object is a renderable scene node.
type Object struct {
	Name      string
	Mesh      *Mesh
	Material  Material
	Transform Transform

	layers layer.Mask
}

// NewObject creates an object at the origin on the given layers.
func NewObject(name string, mesh *Mesh, mat Material, layers layer.Mask) *Object {
	return &Object{
		Name:      name,
		Mesh:      mesh,
		Material:  mat,
		Transform: Identity(),
		layers:    layers,
	}
}

// Layers returns the object's layer mask.
func (o *Object) Layers() layer.Mask {
	return o.layers
}

// Lighting is the light setup shared by every object in a scene.
type Lighting struct {
	// Ambient is the intensity of the uniform ambient term.
	Ambient float32

	// Direction points from the scene toward the directional light.
	Direction mgl32.Vec3

	// Directional is the intensity of the directional light. Zero disables it.
	Directional float32
}

// Unlit is ambient-only lighting: every object renders in its flat
// material color.
var Unlit = Lighting{Ambient: 1}

// Scene is an ordered collection of objects.
type Scene struct {
	Lighting Lighting

	objects []*Object
}

// New creates an empty, unlit scene.
func New() *Scene {
	return &Scene{Lighting: Unlit}
}

// Add appends objects to the scene. Nil objects are ignored.
func (s *Scene) Add(objs ...*Object) {
	for _, o := range objs {
		if o != nil {
			s.objects = append(s.objects, o)
		}
	}
}

// Remove removes o from the scene and reports whether it was present.
func (s *Scene) Remove(o *Object) bool {
	i := slices.Index(s.objects, o)
	if i < 0 {
		return false
	}
	s.objects = slices.Delete(s.objects, i, i+1)
	return true
}

// Objects returns the objects in insertion order.
// The returned slice is a copy; the objects are shared.
func (s *Scene) Objects() []*Object {
	return slices.Clone(s.objects)
}

// Each calls fn for every object in insertion order without copying.
func (s *Scene) Each(fn func(*Object)) {
	for _, o := range s.objects {
		fn(o)
	}
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	return len(s.objects)
}

// Find returns the first object with the given name, or nil.
func (s *Scene) Find(name string) *Object {
	for _, o := range s.objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}
