// Command layerview opens a window with the live demo scene on the left
// and the most recent capture on the right.
//
// Keys: C or Space captures, the arrow keys orbit the camera around the
// origin, Esc quits.
package main

import (
	"flag"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/layercap"
	"github.com/gogpu/layercap/camera"
	"github.com/gogpu/layercap/config"
	"github.com/gogpu/layercap/demo"
	"github.com/gogpu/layercap/pixel"
	"github.com/gogpu/layercap/render"
	"github.com/gogpu/layercap/scene"
)

// orbitStep is the camera rotation per frame while an arrow key is held.
const orbitStep = 0.02

var liveBackground = color.NRGBA{R: 24, G: 24, B: 28, A: 255}

type viewer struct {
	dev      *render.Software
	sc       *scene.Scene
	cam      *camera.Camera
	pipeline *layercap.Pipeline

	width, height int // whole window
	panel         int // width of each half

	live  *ebiten.Image
	frame []byte
	shot  *ebiten.Image
}

func main() {
	var (
		cfgPath string
		verbose bool
	)
	flag.StringVar(&cfgPath, "config", "", "TOML configuration file")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	if verbose {
		layercap.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("layerview: %v", err)
	}
	v, err := newViewer(cfg)
	if err != nil {
		log.Fatalf("layerview: %v", err)
	}
	defer v.close()

	ebiten.SetWindowSize(v.width, v.height)
	ebiten.SetWindowTitle("layerview")
	if err := ebiten.RunGame(v); err != nil {
		log.Fatalf("layerview: %v", err)
	}
}

func newViewer(cfg config.Config) (*viewer, error) {
	panel := max(cfg.Viewport.Width/2, 1)
	dev, err := render.NewSoftware(panel, cfg.Viewport.Height)
	if err != nil {
		return nil, err
	}
	dev.SetClearColor(liveBackground)

	opts, err := demo.FromConfig(cfg)
	if err != nil {
		dev.Close()
		return nil, err
	}
	cam := demo.NewCamera(cfg)
	cam.Aspect = float32(panel) / float32(cfg.Viewport.Height)

	popts, err := demo.PipelineOptions(cfg)
	if err != nil {
		dev.Close()
		return nil, err
	}
	p, err := layercap.New(dev, popts...)
	if err != nil {
		dev.Close()
		return nil, err
	}

	return &viewer{
		dev:      dev,
		sc:       demo.Build(opts),
		cam:      cam,
		pipeline: p,
		width:    panel * 2,
		height:   cfg.Viewport.Height,
		panel:    panel,
		live:     ebiten.NewImage(panel, cfg.Viewport.Height),
	}, nil
}

func (v *viewer) Layout(int, int) (int, int) { return v.width, v.height }

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	var yaw, pitch float32
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		yaw -= orbitStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		yaw += orbitStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		pitch += orbitStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		pitch -= orbitStep
	}
	if yaw != 0 || pitch != 0 {
		v.cam.Orbit(mgl32.Vec3{}, yaw, pitch)
	}

	demo.Step(v.sc)
	if err := v.dev.Render(v.sc, v.cam); err != nil {
		return err
	}
	buf, err := v.dev.ReadPixels(nil)
	if err != nil {
		return err
	}
	v.frame = topDown(buf)

	if inpututil.IsKeyJustPressed(ebiten.KeyC) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if err := v.capture(); err != nil {
			return err
		}
	}
	return nil
}

func (v *viewer) capture() error {
	img, err := v.pipeline.Capture(v.sc, v.cam)
	if err != nil {
		return err
	}
	decoded, err := img.Decode()
	if err != nil {
		return err
	}
	if v.shot != nil {
		v.shot.Deallocate()
	}
	v.shot = ebiten.NewImageFromImage(decoded)
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.frame != nil {
		v.live.WritePixels(v.frame)
	}
	screen.DrawImage(v.live, nil)

	if v.shot == nil {
		return
	}
	b := v.shot.Bounds()
	s := min(float64(v.panel)/float64(b.Dx()), float64(v.height)/float64(b.Dy()))
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(float64(v.panel)+(float64(v.panel)-s*float64(b.Dx()))/2,
		(float64(v.height)-s*float64(b.Dy()))/2)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(v.shot, op)
}

func (v *viewer) close() {
	if err := v.pipeline.Close(); err != nil {
		log.Printf("layerview: %v", err)
	}
	if err := v.dev.Close(); err != nil {
		log.Printf("layerview: %v", err)
	}
}

// topDown returns the live frame in the row order ebiten expects. The live
// view is opaque, so straight and premultiplied alpha agree.
func topDown(buf pixel.Buffer) []byte {
	if buf.Order == pixel.TopDown {
		return buf.Pix
	}
	return transform.FlipV(&image.RGBA{
		Pix:    buf.Pix,
		Stride: buf.Stride(),
		Rect:   image.Rect(0, 0, buf.Width, buf.Height),
	}).Pix
}
