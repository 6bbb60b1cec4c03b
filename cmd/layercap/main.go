// Command layercap renders the demo scene, captures a subset of its layers
// into an offscreen target and writes the result as a PNG.
//
//	layercap -config layercap.toml -frames 120 -output capture.png
//
// With -view the full interactive view (every layer) is written too, and
// -preview shows the capture in the terminal.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/layercap"
	"github.com/gogpu/layercap/config"
	"github.com/gogpu/layercap/demo"
	"github.com/gogpu/layercap/encode"
	"github.com/gogpu/layercap/layer"
	"github.com/gogpu/layercap/preview"
	"github.com/gogpu/layercap/render"
)

type options struct {
	config  string
	output  string
	view    string
	layers  string
	frames  int
	gpu     bool
	preview bool
}

func main() {
	var (
		o       options
		verbose bool
	)
	flag.StringVar(&o.config, "config", "", "TOML configuration file")
	flag.StringVar(&o.output, "output", "capture.png", "capture output file")
	flag.StringVar(&o.view, "view", "", "also write the interactive view to this file")
	flag.StringVar(&o.layers, "layers", "", "comma separated capture layers, overrides the config")
	flag.IntVar(&o.frames, "frames", 1, "animation frames to run before capturing")
	flag.BoolVar(&o.gpu, "gpu", false, "render on the GPU instead of the software rasterizer")
	flag.BoolVar(&o.preview, "preview", false, "show the capture in the terminal")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	if verbose {
		layercap.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := run(o); err != nil {
		log.Fatalf("layercap: %v", err)
	}
}

func run(o options) error {
	cfg, err := config.Load(o.config)
	if err != nil {
		return err
	}
	if o.layers != "" {
		if cfg.Capture.Layers, err = parseLayers(o.layers); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if o.frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", o.frames)
	}

	dev, err := openDevice(o.gpu, cfg.Viewport.Width, cfg.Viewport.Height)
	if err != nil {
		return err
	}
	defer dev.Close()

	sceneOpts, err := demo.FromConfig(cfg)
	if err != nil {
		return err
	}
	sc := demo.Build(sceneOpts)
	cam := demo.NewCamera(cfg)

	popts, err := demo.PipelineOptions(cfg)
	if err != nil {
		return err
	}
	p, err := layercap.New(dev, popts...)
	if err != nil {
		return err
	}
	defer p.Close()

	for i := 0; i < o.frames; i++ {
		demo.Step(sc)
		if err := dev.Render(sc, cam); err != nil {
			return fmt.Errorf("render frame %d: %w", i, err)
		}
	}

	img, err := p.Capture(sc, cam)
	if err != nil {
		return err
	}
	if err := img.Save(o.output); err != nil {
		return err
	}
	w, h := p.Size()
	log.Printf("captured %s to %s (%dx%d, %d bytes)", p.Layers(), o.output, w, h, img.Len())

	if o.view != "" {
		if err := saveView(dev, o.view); err != nil {
			return err
		}
		log.Printf("view saved to %s", o.view)
	}

	if o.preview {
		decoded, err := img.Decode()
		if err != nil {
			return err
		}
		bg, _ := config.ParseColor(cfg.Capture.Background)
		return preview.Show(decoded, preview.Options{
			Background: bg,
			Caption:    fmt.Sprintf("%s %dx%d  q to quit", p.Layers(), w, h),
		})
	}
	return nil
}

// saveView reads back the default framebuffer, which holds the last frame
// rendered with the interactive camera.
func saveView(dev render.Device, path string) error {
	buf, err := dev.ReadPixels(nil)
	if err != nil {
		return fmt.Errorf("read view: %w", err)
	}
	img, err := encode.Encode(buf)
	if err != nil {
		return err
	}
	return img.Save(path)
}

func parseLayers(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 0 || n >= layer.Count {
			return nil, fmt.Errorf("bad layer %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}
