// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/layercap/layer"
	"github.com/gogpu/layercap/scene"
)

func TestCollectFiltersByLayer(t *testing.T) {
	sc := twoLayerScene()
	box := sc.Find("box").Mesh.TriangleCount()
	ball := sc.Find("ball").Mesh.TriangleCount()

	tests := []struct {
		layers []int
		want   int
	}{
		{[]int{1}, box},
		{[]int{2}, ball},
		{[]int{1, 2}, box + ball},
		{[]int{0, 3, 31}, 0},
	}
	for _, tt := range tests {
		if got := len(Collect(sc, viewer(tt.layers...))); got != tt.want {
			t.Errorf("layers %v: %d triangles, want %d", tt.layers, got, tt.want)
		}
	}
}

func TestCollectMultiLayerObject(t *testing.T) {
	sc := scene.New()
	sc.Add(scene.NewObject("both", scene.NewBox(1, 1, 1), scene.Material{Color: pink}, layer.Of(1, 2)))
	for _, l := range []int{1, 2} {
		if got := len(Collect(sc, viewer(l))); got != 12 {
			t.Errorf("layer %d: %d triangles, want 12", l, got)
		}
	}
}

func TestCollectDropsBehindCamera(t *testing.T) {
	sc := scene.New()
	behind := scene.NewObject("behind", scene.NewBox(1, 1, 1), scene.Material{Color: pink}, layer.Of(0))
	behind.Transform.Position = mgl32.Vec3{0, 0, 10}
	sc.Add(behind)
	if got := len(Collect(sc, viewer(0))); got != 0 {
		t.Errorf("%d triangles behind the camera, want 0", got)
	}
}

func TestCollectNilScene(t *testing.T) {
	if got := Collect(nil, viewer(0)); got != nil {
		t.Errorf("Collect(nil) = %v, want nil", got)
	}
}

func TestShadeUnlitKeepsColor(t *testing.T) {
	for _, c := range []color.NRGBA{pink, grey, {R: 0, G: 0, B: 0, A: 255}, {R: 255, G: 255, B: 255, A: 255}} {
		got := shade(linearColor(c), mgl32.Vec3{0, 0, 1}, scene.Unlit)
		if !near(got.R, c.R) || !near(got.G, c.G) || !near(got.B, c.B) || got.A != 255 {
			t.Errorf("shade(%v) = %v", c, got)
		}
	}
}

func TestShadeDirectional(t *testing.T) {
	l := scene.Lighting{Ambient: 0.2, Directional: 0.8, Direction: mgl32.Vec3{0, 0, 1}}
	lit := shade(linearColor(grey), mgl32.Vec3{0, 0, 1}, l)
	away := shade(linearColor(grey), mgl32.Vec3{0, 0, -1}, l)
	if !near(lit.R, grey.R) {
		t.Errorf("facing the light = %v, want %v", lit, grey)
	}
	if away.R >= lit.R {
		t.Errorf("facing away (%d) should be darker than facing the light (%d)", away.R, lit.R)
	}
}
