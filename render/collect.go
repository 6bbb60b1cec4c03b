// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/layercap/camera"
	"github.com/gogpu/layercap/scene"
)

// minClipW is the smallest clip-space w a vertex may have. Triangles with a
// vertex at or behind the camera plane are dropped rather than clipped.
const minClipW = 1e-6

// Triangle is a flat-shaded triangle in clip space (OpenGL convention).
type Triangle struct {
	// Clip holds the three vertices after projection * view * model.
	Clip [3]mgl32.Vec4

	// Color is the shaded sRGB color, always opaque.
	Color color.NRGBA
}

// Collect returns the triangles of every object in sc that v can see, in
// scene order.
//
// An object is visible when its layer mask intersects v's mask; all others
// are skipped without being transformed. Each kept triangle is lit with the
// scene's Lighting using its world-space face normal.
func Collect(sc *scene.Scene, v camera.Viewer) []Triangle {
	if sc == nil {
		return nil
	}
	mask := v.Layers()
	viewProj := v.ProjectionMatrix().Mul4(v.ViewMatrix())
	light := sc.Lighting

	var out []Triangle
	skipped := 0
	sc.Each(func(o *scene.Object) {
		if !o.Layers().Intersects(mask) || o.Mesh == nil {
			skipped++
			return
		}
		model := o.Transform.Matrix()
		mvp := viewProj.Mul4(model)
		base := linearColor(o.Material.Color)

		for i := 0; i < o.Mesh.TriangleCount(); i++ {
			a, b, c := o.Mesh.Triangle(i)
			tri := Triangle{Clip: [3]mgl32.Vec4{
				mvp.Mul4x1(a.Vec4(1)),
				mvp.Mul4x1(b.Vec4(1)),
				mvp.Mul4x1(c.Vec4(1)),
			}}
			if tri.Clip[0][3] <= minClipW || tri.Clip[1][3] <= minClipW || tri.Clip[2][3] <= minClipW {
				continue
			}

			wa := model.Mul4x1(a.Vec4(1)).Vec3()
			wb := model.Mul4x1(b.Vec4(1)).Vec3()
			wc := model.Mul4x1(c.Vec4(1)).Vec3()
			n := wb.Sub(wa).Cross(wc.Sub(wa))
			tri.Color = shade(base, n, light)
			out = append(out, tri)
		}
	})

	Logger().Debug("render: collected triangles",
		"layers", mask.String(), "triangles", len(out), "skipped_objects", skipped)
	return out
}

// linearColor converts an sRGB material color to linear RGB.
func linearColor(c color.NRGBA) colorful.Color {
	srgb := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	r, g, b := srgb.LinearRgb()
	return colorful.Color{R: r, G: g, B: b}
}

// shade applies ambient plus Lambert lighting in linear space and returns
// the sRGB result.
func shade(linear colorful.Color, normal mgl32.Vec3, l scene.Lighting) color.NRGBA {
	k := float64(l.Ambient)
	if l.Directional > 0 && l.Direction.Len() > 0 && normal.Len() > 0 {
		if d := normal.Normalize().Dot(l.Direction.Normalize()); d > 0 {
			k += float64(l.Directional * d)
		}
	}
	out := colorful.LinearRgb(linear.R*k, linear.G*k, linear.B*k).Clamped()
	r, g, b := out.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
