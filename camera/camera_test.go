package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/layercap/layer"
)

const eps = 1e-4

// near reports whether a and b lie within eps of each other.
func near(a, b mgl32.Vec3) bool { return a.Sub(b).Len() < eps }

func TestNewPerspectiveLooksAtOrigin(t *testing.T) {
	c := NewPerspective(DefaultFov, 1.5, DefaultNear, DefaultFar)
	if c.Layers() != layer.Of(0) {
		t.Errorf("default layers = %v, want layer 0", c.Layers())
	}
	if !near(c.Forward(), mgl32.Vec3{0, 0, -1}) {
		t.Errorf("Forward() = %v", c.Forward())
	}
	// The origin lies straight ahead, 5 units away.
	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !near(p.Vec3(), mgl32.Vec3{0, 0, -5}) {
		t.Errorf("origin in view space = %v", p)
	}
}

func TestLookAt(t *testing.T) {
	c := NewPerspective(60, 1, 0.1, 100)
	c.SetPosition(mgl32.Vec3{3, 4, 5})
	target := mgl32.Vec3{1, 0, -1}
	c.LookAt(target)

	want := target.Sub(c.Position).Normalize()
	if !near(c.Forward(), want) {
		t.Errorf("Forward() = %v, want %v", c.Forward(), want)
	}
	// The target projects onto the view axis.
	v := c.ViewMatrix().Mul4x1(target.Vec4(1)).Vec3()
	if math.Abs(float64(v[0])) > eps || math.Abs(float64(v[1])) > eps || v[2] >= 0 {
		t.Errorf("target in view space = %v, want on -Z axis", v)
	}
}

func TestLookAtStraightDown(t *testing.T) {
	c := NewPerspective(60, 1, 0.1, 100)
	c.SetPosition(mgl32.Vec3{0, 10, 0})
	c.LookAt(mgl32.Vec3{})
	if !near(c.Forward(), mgl32.Vec3{0, -1, 0}) {
		t.Errorf("Forward() = %v, want -Y", c.Forward())
	}
}

func TestLookAtSamePointIsNoop(t *testing.T) {
	c := NewPerspective(60, 1, 0.1, 100)
	before := c.Orientation
	c.LookAt(c.Position)
	if c.Orientation != before {
		t.Error("LookAt(position) changed orientation")
	}
}

func TestOrbitKeepsDistance(t *testing.T) {
	c := NewPerspective(60, 1, 0.1, 100)
	target := mgl32.Vec3{}
	c.Orbit(target, mgl32.DegToRad(90), 0)

	if d := c.Position.Len(); math.Abs(float64(d-5)) > eps {
		t.Errorf("distance after orbit = %v, want 5", d)
	}
	if !near(c.Position, mgl32.Vec3{5, 0, 0}) {
		t.Errorf("position after 90deg yaw = %v, want (5,0,0)", c.Position)
	}
	if !near(c.Forward(), mgl32.Vec3{-1, 0, 0}) {
		t.Errorf("Forward() = %v, want -X", c.Forward())
	}

	// Pitch is clamped short of the pole.
	c.Orbit(target, 0, math.Pi)
	if c.Position[1] >= 5 || c.Position[1] <= 4.9 {
		t.Errorf("clamped pitch position = %v", c.Position)
	}
}

func TestLayerEditing(t *testing.T) {
	c := NewPerspective(60, 1, 0.1, 100)
	c.EnableLayer(1)
	c.EnableLayer(2)
	c.DisableLayer(0)
	if c.Layers() != layer.Of(1, 2) {
		t.Errorf("Layers() = %v, want layers(1,2)", c.Layers())
	}
	c.SetLayers(layer.None)
	if c.Layers() != layer.None {
		t.Errorf("SetLayers(None) left %v", c.Layers())
	}
}

func TestCaptureCameraSync(t *testing.T) {
	interactive := NewPerspective(50, 2, 0.5, 50)
	interactive.SetLayers(layer.Of(1, 2))
	interactive.SetPosition(mgl32.Vec3{1, 2, 3})
	interactive.LookAt(mgl32.Vec3{})

	cc := NewCaptureCamera(layer.Of(1))
	if cc.Synced() {
		t.Fatal("new capture camera reports Synced")
	}
	if cc.Position() != DefaultPosition {
		t.Errorf("unsynced position = %v, want default", cc.Position())
	}

	cc.Sync(interactive)
	if !cc.Synced() {
		t.Fatal("Synced() = false after Sync")
	}
	if cc.Layers() != layer.Of(1) {
		t.Errorf("Sync changed capture mask to %v", cc.Layers())
	}
	if interactive.Layers() != layer.Of(1, 2) {
		t.Errorf("Sync changed interactive mask to %v", interactive.Layers())
	}
	if cc.Position() != interactive.Position || cc.Orientation() != interactive.Orientation {
		t.Error("Sync did not copy the transform")
	}
	if cc.Fov() != 50 || cc.Aspect() != 2 {
		t.Errorf("Sync did not copy projection: fov=%v aspect=%v", cc.Fov(), cc.Aspect())
	}
	if !cc.ViewMatrix().ApproxEqual(interactive.ViewMatrix()) {
		t.Error("view matrices differ after Sync")
	}
	if !cc.ProjectionMatrix().ApproxEqual(interactive.ProjectionMatrix()) {
		t.Error("projection matrices differ after Sync")
	}

	cc.SetAspect(0.5)
	if interactive.Aspect != 2 {
		t.Error("SetAspect leaked into the interactive camera")
	}
	if cc.ProjectionMatrix().ApproxEqual(interactive.ProjectionMatrix()) {
		t.Error("SetAspect did not change the projection")
	}
}

func TestCaptureCameraTracksLaterMoves(t *testing.T) {
	interactive := NewPerspective(60, 1, 0.1, 100)
	cc := NewCaptureCamera(layer.Of(1))
	cc.Sync(interactive)

	interactive.Orbit(mgl32.Vec3{}, 1, 0)
	if cc.Position() == interactive.Position {
		t.Fatal("capture camera moved without Sync")
	}
	cc.Sync(interactive)
	if cc.Position() != interactive.Position {
		t.Error("re-Sync did not pick up the new position")
	}
}
