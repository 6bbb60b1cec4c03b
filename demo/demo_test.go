package demo

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/layercap"
	"github.com/gogpu/layercap/config"
	"github.com/gogpu/layercap/layer"
	"github.com/gogpu/layercap/render"
	"github.com/gogpu/layercap/scene"
)

func TestBuild(t *testing.T) {
	sc := Build(DefaultOptions())
	if sc.Len() != 1+SphereCount {
		t.Fatalf("Len() = %d, want %d", sc.Len(), 1+SphereCount)
	}

	box := sc.Find(BoxName)
	if box == nil {
		t.Fatal("box missing")
	}
	if box.Layers() != layer.Of(BoxLayer) {
		t.Errorf("box layers = %v, want layers(%d)", box.Layers(), BoxLayer)
	}

	spheres := 0
	sc.Each(func(o *scene.Object) {
		if o == box {
			return
		}
		spheres++
		if o.Layers() != layer.Of(SphereLayer) {
			t.Errorf("%s layers = %v, want layers(%d)", o.Name, o.Layers(), SphereLayer)
		}
		for i, v := range o.Transform.Position {
			if v < -SphereSpread || v > SphereSpread {
				t.Errorf("%s axis %d = %v outside [-%d,%d]", o.Name, i, v, SphereSpread, SphereSpread)
			}
		}
	})
	if spheres != SphereCount {
		t.Errorf("spheres = %d, want %d", spheres, SphereCount)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, b := Build(DefaultOptions()), Build(DefaultOptions())
	for i, o := range a.Objects() {
		if o.Transform.Position != b.Objects()[i].Transform.Position {
			t.Fatalf("object %d placed differently with the same seed", i)
		}
	}

	other := DefaultOptions()
	other.Seed = 99
	c := Build(other)
	same := true
	for i, o := range a.Objects() {
		if o.Transform.Position != c.Objects()[i].Transform.Position {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical layouts")
	}
}

func TestStep(t *testing.T) {
	sc := Build(DefaultOptions())
	for i := 0; i < 3; i++ {
		Step(sc)
	}
	rot := sc.Find(BoxName).Transform.Rotation
	want := float32(3 * RotationStep)
	if !mgl32.FloatEqualThreshold(rot[0], want, 1e-6) || !mgl32.FloatEqualThreshold(rot[1], want, 1e-6) || rot[2] != 0 {
		t.Errorf("rotation = %v, want (%v, %v, 0)", rot, want, want)
	}

	// Spheres do not move.
	first := sc.Find("sphere-0").Transform
	Step(sc)
	if sc.Find("sphere-0").Transform != first {
		t.Error("Step moved a sphere")
	}

	Step(scene.New()) // no box: no panic
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.Spheres = 4
	cfg.Scene.BoxLayer = 6
	o, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if o != optionsWith(4, 6) {
		t.Errorf("FromConfig = %+v", o)
	}

	cfg.Scene.BoxColor = "not-a-color"
	if _, err := FromConfig(cfg); err == nil {
		t.Error("FromConfig accepted a bad color")
	}
}

// optionsWith is DefaultOptions with a different sphere count and
// box layer, lit the way FromConfig lights the default config.
func optionsWith(spheres, boxLayer int) Options {
	o := DefaultOptions()
	o.Spheres = spheres
	o.BoxLayer = boxLayer
	o.Lighting.Direction = mgl32.Vec3{0.5, 1, 0.75}
	return o
}

func TestNewCamera(t *testing.T) {
	cfg := config.Default()
	cam := NewCamera(cfg)
	if cam.Layers() != layer.Of(0, BoxLayer, SphereLayer) {
		t.Errorf("layers = %v, want layers(0,1,2)", cam.Layers())
	}
	if got, want := cam.Aspect, float32(1024)/768; got != want {
		t.Errorf("aspect = %v, want %v", got, want)
	}
	fwd := cam.Forward()
	if fwd.Sub(mgl32.Vec3{0, 0, -1}).Len() > 1e-5 {
		t.Errorf("forward = %v, want (0,0,-1)", fwd)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Viewport.Width, cfg.Viewport.Height = 64, 48
	cfg.Capture.Layers = []int{2}
	cfg.Capture.Background = "#102030"

	opts, err := PipelineOptions(cfg)
	if err != nil {
		t.Fatal(err)
	}
	dev, err := render.NewSoftware(64, 48)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()
	p, err := layercap.New(dev, opts...)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if w, h := p.Size(); w != 32 || h != 48 {
		t.Errorf("Size() = %dx%d, want 32x48", w, h)
	}
	if p.Layers() != layer.Of(2) {
		t.Errorf("Layers() = %v, want layers(2)", p.Layers())
	}

	// Without spheres nothing is on layer 2, so only the background shows.
	o := DefaultOptions()
	o.Spheres = 0
	img, err := p.Capture(Build(o), NewCamera(cfg))
	if err != nil {
		t.Fatal(err)
	}
	m, err := img.Decode()
	if err != nil {
		t.Fatal(err)
	}
	got := color.NRGBAModel.Convert(m.At(16, 24)).(color.NRGBA)
	if got != (color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}) {
		t.Errorf("center pixel = %v, want background", got)
	}

	cfg.Capture.Compression = "huge"
	if _, err := PipelineOptions(cfg); err == nil {
		t.Error("PipelineOptions accepted an unknown compression")
	}
}
