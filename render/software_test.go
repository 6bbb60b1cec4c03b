// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/layercap/camera"
	"github.com/gogpu/layercap/layer"
	"github.com/gogpu/layercap/pixel"
	"github.com/gogpu/layercap/scene"
)

var (
	pink = color.NRGBA{R: 255, G: 105, B: 180, A: 255}
	grey = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
)

// twoLayerScene has a large box on layer 1 at the origin and a small sphere
// on layer 2 in front of it.
func twoLayerScene() *scene.Scene {
	sc := scene.New()
	box := scene.NewObject("box", scene.NewBox(2, 2, 2), scene.Material{Color: pink}, layer.Of(1))
	ball := scene.NewObject("ball", scene.NewSphere(0.4, 16, 12), scene.Material{Color: grey}, layer.Of(2))
	ball.Transform.Position = mgl32.Vec3{0, 0, 2}
	sc.Add(box, ball)
	return sc
}

func viewer(layers ...int) *camera.Camera {
	cam := camera.NewPerspective(camera.DefaultFov, 1, camera.DefaultNear, camera.DefaultFar)
	cam.SetLayers(layer.Of(layers...))
	return cam
}

func TestRenderLayerFiltering(t *testing.T) {
	tests := []struct {
		name   string
		layers []int
		center color.NRGBA
		corner color.NRGBA
	}{
		{"box only", []int{1}, pink, color.NRGBA{}},
		{"sphere only", []int{2}, grey, color.NRGBA{}},
		{"both, sphere in front", []int{1, 2}, grey, color.NRGBA{}},
		{"nothing", []int{0}, color.NRGBA{}, color.NRGBA{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newTestDevice(t, 64, 64)
			if err := dev.Render(twoLayerScene(), viewer(tt.layers...)); err != nil {
				t.Fatal(err)
			}
			buf, err := dev.ReadPixels(nil)
			if err != nil {
				t.Fatal(err)
			}
			assertPixel(t, buf, 32, 32, tt.center)
			assertPixel(t, buf, 0, 0, tt.corner)
		})
	}
}

func TestRenderBoxAroundSphere(t *testing.T) {
	// Between the sphere's silhouette and the box edge only the box shows.
	dev := newTestDevice(t, 64, 64)
	if err := dev.Render(twoLayerScene(), viewer(1, 2)); err != nil {
		t.Fatal(err)
	}
	buf, _ := dev.ReadPixels(nil)
	assertPixel(t, buf, 32, 24, pink)
}

func TestRenderClearColor(t *testing.T) {
	dev := newTestDevice(t, 16, 16)
	bg := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	dev.SetClearColor(bg)
	if err := dev.Render(scene.New(), viewer(0)); err != nil {
		t.Fatal(err)
	}
	buf, _ := dev.ReadPixels(nil)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			assertPixel(t, buf, x, y, bg)
		}
	}
}

func TestRenderNilScene(t *testing.T) {
	dev := newTestDevice(t, 8, 8)
	if err := dev.Render(nil, viewer(0)); err != nil {
		t.Fatalf("Render(nil) = %v", err)
	}
}

func TestRenderBottomUpStorage(t *testing.T) {
	// A box above the view axis must land in the top half of the image and
	// therefore in the last rows of bottom-up storage.
	sc := scene.New()
	box := scene.NewObject("box", scene.NewBox(1, 1, 1), scene.Material{Color: pink}, layer.Of(0))
	box.Transform.Position = mgl32.Vec3{0, 1.5, 0}
	sc.Add(box)

	dev := newTestDevice(t, 64, 64)
	if err := dev.Render(sc, viewer(0)); err != nil {
		t.Fatal(err)
	}
	buf, _ := dev.ReadPixels(nil)
	if buf.Order != pixel.BottomUp {
		t.Fatalf("Order = %v, want bottom-up", buf.Order)
	}

	assertPixel(t, buf, 32, 16, pink)
	assertPixel(t, buf, 32, 48, color.NRGBA{})

	// Raw storage row 47 is visual row 16.
	i := 47*buf.Stride() + 32*pixel.BytesPerPixel
	if buf.Pix[i+3] != 255 {
		t.Errorf("raw row 47 alpha = %d, want 255", buf.Pix[i+3])
	}
	i = 16*buf.Stride() + 32*pixel.BytesPerPixel
	if buf.Pix[i+3] != 0 {
		t.Errorf("raw row 16 alpha = %d, want 0", buf.Pix[i+3])
	}
}

func TestRenderIntoBoundTarget(t *testing.T) {
	dev := newTestDevice(t, 64, 64)
	target, err := dev.CreateTarget(32, 64)
	if err != nil {
		t.Fatal(err)
	}
	defer target.Release()

	if _, err := dev.SetRenderTarget(target); err != nil {
		t.Fatal(err)
	}
	if err := dev.Render(twoLayerScene(), viewer(1)); err != nil {
		t.Fatal(err)
	}
	buf, err := dev.ReadPixels(target)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Width != 32 || buf.Height != 64 {
		t.Fatalf("readback = %dx%d, want 32x64", buf.Width, buf.Height)
	}
	assertPixel(t, buf, 16, 32, pink)

	// The default framebuffer was never drawn to.
	screen, _ := dev.ReadPixels(nil)
	assertPixel(t, screen, 32, 32, color.NRGBA{})
}

func TestRenderDeterministic(t *testing.T) {
	render := func() pixel.Buffer {
		dev := newTestDevice(t, 48, 48)
		sc := twoLayerScene()
		sc.Lighting = scene.Lighting{Ambient: 0.3, Directional: 0.7, Direction: mgl32.Vec3{1, 1, 1}}
		if err := dev.Render(sc, viewer(1, 2)); err != nil {
			t.Fatal(err)
		}
		buf, _ := dev.ReadPixels(nil)
		return buf
	}
	a, b := render(), render()
	if string(a.Pix) != string(b.Pix) {
		t.Error("two renders of the same scene differ")
	}
}

func TestDeviceLost(t *testing.T) {
	dev := newTestDevice(t, 16, 16)
	target, _ := dev.CreateTarget(4, 4)
	dev.Lose()

	if err := dev.Render(scene.New(), viewer(0)); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("Render error = %v, want ErrDeviceLost", err)
	}
	if _, err := dev.ReadPixels(target); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("ReadPixels error = %v, want ErrDeviceLost", err)
	}
	if _, err := dev.CreateTarget(4, 4); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("CreateTarget error = %v, want ErrDeviceLost", err)
	}
	if _, err := dev.SetRenderTarget(target); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("SetRenderTarget error = %v, want ErrDeviceLost", err)
	}
	// Targets can still be released after loss.
	if err := target.Release(); err != nil {
		t.Errorf("Release after loss: %v", err)
	}
}

func TestDeviceClose(t *testing.T) {
	dev, err := NewSoftware(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}
	if err := dev.Close(); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("second Close error = %v, want ErrDeviceClosed", err)
	}
	if err := dev.Render(scene.New(), viewer(0)); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("Render after Close error = %v, want ErrDeviceClosed", err)
	}
}

func TestResizeViewport(t *testing.T) {
	dev := newTestDevice(t, 16, 16)
	if err := dev.ResizeViewport(40, 20); err != nil {
		t.Fatal(err)
	}
	if dev.Screen().Width() != 40 || dev.Screen().Height() != 20 {
		t.Errorf("screen = %dx%d, want 40x20", dev.Screen().Width(), dev.Screen().Height())
	}
	buf, _ := dev.ReadPixels(nil)
	if buf.Width != 40 || buf.Height != 20 {
		t.Errorf("readback = %dx%d, want 40x20", buf.Width, buf.Height)
	}
}

func TestNewSoftwareInvalidDimension(t *testing.T) {
	if _, err := NewSoftware(0, 10); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("NewSoftware(0, 10) error = %v, want ErrInvalidDimension", err)
	}
}

func assertPixel(t *testing.T, buf pixel.Buffer, x, y int, want color.NRGBA) {
	t.Helper()
	r, g, b, a := buf.RGBA(x, y)
	if !near(r, want.R) || !near(g, want.G) || !near(b, want.B) || a != want.A {
		t.Errorf("pixel (%d, %d) = {%d %d %d %d}, want %v", x, y, r, g, b, a, want)
	}
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -1 && d <= 1
}
