// Package config loads the TOML configuration of the layercap tools.
//
// Every field has a default, so an empty file (or no file) is valid:
//
//	[viewport]
//	width = 1024
//	height = 768
//
//	[capture]
//	layers = [1]
//	background = "transparent"
//
//	[scene]
//	box_color = "hotpink"
//	spheres = 10
//
// A capture size of 0 means half the viewport width by the full viewport
// height, the shape of the side panel the capture is shown in.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/image/colornames"

	"github.com/gogpu/layercap/layer"
)

// ErrInvalidConfig is returned when a configuration cannot be parsed or
// fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the complete tool configuration.
type Config struct {
	Viewport Viewport `toml:"viewport"`
	Capture  Capture  `toml:"capture"`
	Scene    Scene    `toml:"scene"`
	Camera   Camera   `toml:"camera"`
}

// Viewport is the size of the interactive view.
type Viewport struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Capture configures the capture pipeline.
type Capture struct {
	// Width and Height of the output image; 0 derives them from the viewport.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// Layers the capture camera sees.
	Layers []int `toml:"layers"`

	// Background is "transparent", a CSS color name or #rrggbb[aa].
	Background string `toml:"background"`

	// ViewportAspect keeps the interactive camera's aspect ratio instead of
	// fitting the projection to the output size.
	ViewportAspect bool `toml:"viewport_aspect"`

	// Compression is one of "default", "none", "fast" or "best".
	Compression string `toml:"compression"`
}

// Scene configures the demo scene.
type Scene struct {
	BoxColor    string  `toml:"box_color"`
	BoxLayer    int     `toml:"box_layer"`
	SphereColor string  `toml:"sphere_color"`
	SphereLayer int     `toml:"sphere_layer"`
	Spheres     int     `toml:"spheres"`
	Seed        int64   `toml:"seed"`
	Ambient     float32 `toml:"ambient"`
	Directional float32 `toml:"directional"`
}

// Camera configures the interactive camera.
type Camera struct {
	Fov      float32    `toml:"fov"`
	Position [3]float32 `toml:"position"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Viewport: Viewport{Width: 1024, Height: 768},
		Capture: Capture{
			Layers:      []int{1},
			Background:  "transparent",
			Compression: "default",
		},
		Scene: Scene{
			BoxColor:    "hotpink",
			BoxLayer:    1,
			SphereColor: "grey",
			SphereLayer: 2,
			Spheres:     10,
			Seed:        1,
			Ambient:     1,
		},
		Camera: Camera{
			Fov:      75,
			Position: [3]float32{0, 0, 5},
		},
	}
}

// Load reads and validates the configuration at path. An empty path returns
// Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML from r on top of Default and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and reports the first problem.
func (c Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return invalid("viewport size %dx%d must be positive", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Capture.Width < 0 || c.Capture.Height < 0 {
		return invalid("capture size %dx%d must not be negative", c.Capture.Width, c.Capture.Height)
	}
	if w, h := c.CaptureSize(); w <= 0 || h <= 0 {
		return invalid("capture size %dx%d must be positive", w, h)
	}
	for _, l := range c.Capture.Layers {
		if !validLayer(l) {
			return invalid("capture layer %d out of range [0,%d]", l, layer.Count-1)
		}
	}
	if _, err := ParseColor(c.Capture.Background); err != nil {
		return err
	}
	if _, err := c.Capture.CompressionLevel(); err != nil {
		return err
	}
	if _, err := ParseColor(c.Scene.BoxColor); err != nil {
		return err
	}
	if _, err := ParseColor(c.Scene.SphereColor); err != nil {
		return err
	}
	if !validLayer(c.Scene.BoxLayer) || !validLayer(c.Scene.SphereLayer) {
		return invalid("scene layers %d/%d out of range [0,%d]", c.Scene.BoxLayer, c.Scene.SphereLayer, layer.Count-1)
	}
	if c.Scene.Spheres < 0 {
		return invalid("sphere count %d must not be negative", c.Scene.Spheres)
	}
	if c.Scene.Ambient < 0 || c.Scene.Directional < 0 {
		return invalid("light intensities must not be negative")
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return invalid("camera fov %v must be in (0,180)", c.Camera.Fov)
	}
	return nil
}

// CaptureSize returns the output image size, deriving zero values from the
// viewport.
func (c Config) CaptureSize() (width, height int) {
	width, height = c.Capture.Width, c.Capture.Height
	if width == 0 {
		width = c.Viewport.Width / 2
	}
	if height == 0 {
		height = c.Viewport.Height
	}
	return width, height
}

// CaptureLayers returns the capture layers as a mask.
func (c Config) CaptureLayers() layer.Mask {
	return layer.Of(c.Capture.Layers...)
}

// CompressionLevel maps Compression to a png.CompressionLevel.
func (c Capture) CompressionLevel() (png.CompressionLevel, error) {
	switch strings.ToLower(c.Compression) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "fast":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	default:
		return 0, invalid("unknown compression %q", c.Compression)
	}
}

// ParseColor parses "transparent", a CSS color name (as in
// golang.org/x/image/colornames) or a #rgb, #rrggbb or #rrggbbaa hex value.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "transparent" {
		return color.NRGBA{}, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, invalid("unknown color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, invalid("bad hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, invalid("bad hex color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil //nolint:gosec // byte extraction
}

func validLayer(n int) bool { return n >= 0 && n < layer.Count }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
