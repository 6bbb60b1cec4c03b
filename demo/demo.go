// Package demo builds the sample scene used by the layercap tools: a pink
// box on one layer surrounded by small grey spheres on another.
package demo

import (
	"fmt"
	"image/color"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/layercap"
	"github.com/gogpu/layercap/camera"
	"github.com/gogpu/layercap/config"
	"github.com/gogpu/layercap/encode"
	"github.com/gogpu/layercap/layer"
	"github.com/gogpu/layercap/scene"
)

// Scene defaults.
const (
	BoxLayer     = 1
	SphereLayer  = 2
	SphereCount  = 10
	SphereRadius = 0.2

	// SphereSpread is the half-extent of the cube spheres are scattered in.
	SphereSpread = 5

	// RotationStep is the per-frame box rotation around X and Y, in radians.
	RotationStep = 0.01

	// BoxName is the name of the rotating box object.
	BoxName = "box"
)

// Options describes the demo scene.
type Options struct {
	BoxColor    color.NRGBA
	BoxLayer    int
	SphereColor color.NRGBA
	SphereLayer int
	Spheres     int
	Seed        int64
	Lighting    scene.Lighting
}

// DefaultOptions returns the stock scene: hotpink box on layer 1, ten grey
// spheres on layer 2, unlit.
func DefaultOptions() Options {
	return Options{
		BoxColor:    color.NRGBA{R: 255, G: 105, B: 180, A: 255},
		BoxLayer:    BoxLayer,
		SphereColor: color.NRGBA{R: 128, G: 128, B: 128, A: 255},
		SphereLayer: SphereLayer,
		Spheres:     SphereCount,
		Seed:        1,
		Lighting:    scene.Unlit,
	}
}

// FromConfig converts the [scene] section of cfg.
func FromConfig(cfg config.Config) (Options, error) {
	box, err := config.ParseColor(cfg.Scene.BoxColor)
	if err != nil {
		return Options{}, err
	}
	sphere, err := config.ParseColor(cfg.Scene.SphereColor)
	if err != nil {
		return Options{}, err
	}
	light := scene.Lighting{
		Ambient:     cfg.Scene.Ambient,
		Directional: cfg.Scene.Directional,
		Direction:   mgl32.Vec3{0.5, 1, 0.75},
	}
	return Options{
		BoxColor:    box,
		BoxLayer:    cfg.Scene.BoxLayer,
		SphereColor: sphere,
		SphereLayer: cfg.Scene.SphereLayer,
		Spheres:     cfg.Scene.Spheres,
		Seed:        cfg.Scene.Seed,
		Lighting:    light,
	}, nil
}

// Build creates the scene. Sphere positions are drawn uniformly from
// [-SphereSpread, SphereSpread] on each axis with a generator seeded by
// o.Seed, so equal options give equal scenes.
func Build(o Options) *scene.Scene {
	sc := scene.New()
	sc.Lighting = o.Lighting

	sc.Add(scene.NewObject(BoxName, scene.NewBox(1, 1, 1),
		scene.Material{Color: o.BoxColor}, layer.Of(o.BoxLayer)))

	rng := rand.New(rand.NewPCG(uint64(o.Seed), uint64(o.Seed)>>1|1)) //nolint:gosec // deterministic layout, not security
	mesh := scene.NewSphere(SphereRadius, 32, 32)
	for i := 0; i < o.Spheres; i++ {
		s := scene.NewObject(fmt.Sprintf("sphere-%d", i), mesh,
			scene.Material{Color: o.SphereColor}, layer.Of(o.SphereLayer))
		s.Transform.Position = mgl32.Vec3{spread(rng), spread(rng), spread(rng)}
		sc.Add(s)
	}
	return sc
}

func spread(rng *rand.Rand) float32 {
	return float32(rng.Float64()*2*SphereSpread - SphereSpread)
}

// Step advances the animation by one frame: the box turns by RotationStep
// around X and Y. Scenes without a box are left alone.
func Step(sc *scene.Scene) {
	box := sc.Find(BoxName)
	if box == nil {
		return
	}
	box.Transform.Rotation[0] += RotationStep
	box.Transform.Rotation[1] += RotationStep
}

// NewCamera returns the interactive camera described by cfg. It sees layer 0
// and both demo layers.
func NewCamera(cfg config.Config) *camera.Camera {
	aspect := float32(cfg.Viewport.Width) / float32(cfg.Viewport.Height)
	cam := camera.NewPerspective(cfg.Camera.Fov, aspect, camera.DefaultNear, camera.DefaultFar)
	cam.SetPosition(mgl32.Vec3(cfg.Camera.Position))
	cam.LookAt(mgl32.Vec3{})
	cam.EnableLayer(cfg.Scene.BoxLayer)
	cam.EnableLayer(cfg.Scene.SphereLayer)
	return cam
}

// PipelineOptions converts the [capture] section of cfg into pipeline
// options: size, layers, PNG compression, background and aspect mode.
func PipelineOptions(cfg config.Config) ([]layercap.Option, error) {
	level, err := cfg.Capture.CompressionLevel()
	if err != nil {
		return nil, err
	}
	bg, err := config.ParseColor(cfg.Capture.Background)
	if err != nil {
		return nil, err
	}
	opts := []layercap.Option{
		layercap.WithSize(cfg.CaptureSize()),
		layercap.WithLayers(cfg.CaptureLayers()),
		layercap.WithEncoder(encode.PNGEncoder{Level: level}),
		layercap.WithClearColor(bg),
	}
	if cfg.Capture.ViewportAspect {
		opts = append(opts, layercap.WithViewportAspect())
	}
	return opts, nil
}
