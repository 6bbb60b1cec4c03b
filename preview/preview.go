// Package preview draws captured images in a terminal using half-block
// characters: every cell shows two vertically stacked pixels, the upper one
// as foreground of '▀' and the lower one as background.
package preview

import (
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/draw"
)

// upperHalf is U+2580 UPPER HALF BLOCK.
const upperHalf = '▀'

// Options controls how an image is placed on screen.
type Options struct {
	// Background is composited under translucent pixels and fills the
	// margins around the image.
	Background color.NRGBA

	// Caption is written on the last row when there is room for it.
	Caption string
}

// Fit returns the pixel size an image of width x height is scaled to so it
// fills as much of a cols x rows cell area as possible while keeping its
// aspect ratio. Each cell holds one pixel across and two down.
func Fit(width, height, cols, rows int) (w, h int) {
	if width <= 0 || height <= 0 || cols <= 0 || rows <= 0 {
		return 0, 0
	}
	maxW, maxH := cols, rows*2
	w, h = maxW, height*maxW/width
	if h > maxH {
		w, h = width*maxH/height, maxH
	}
	return max(w, 1), max(h, 1)
}

// Draw renders img into the cell rectangle area of s. The image is centered
// and scaled with bilinear filtering. Draw does not call s.Show.
func Draw(s tcell.Screen, img image.Image, area image.Rectangle, o Options) {
	area = area.Canon()
	rows := area.Dy()
	caption := o.Caption != "" && rows > 1
	if caption {
		rows--
	}
	bg := tcell.NewRGBColor(int32(o.Background.R), int32(o.Background.G), int32(o.Background.B))
	blank := tcell.StyleDefault.Background(bg)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			s.SetContent(x, y, ' ', nil, blank)
		}
	}

	if img != nil {
		b := img.Bounds()
		w, h := Fit(b.Dx(), b.Dy(), area.Dx(), rows)
		if w > 0 && h > 0 {
			px := scale(img, w, h, o.Background)
			x0 := area.Min.X + (area.Dx()-w)/2
			y0 := area.Min.Y + (rows-(h+1)/2)/2
			for cy := 0; cy*2 < h; cy++ {
				for cx := 0; cx < w; cx++ {
					top := px.RGBAAt(cx, cy*2)
					bottom := o.Background
					if cy*2+1 < h {
						c := px.RGBAAt(cx, cy*2+1)
						bottom = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
					}
					st := tcell.StyleDefault.
						Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
						Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
					s.SetContent(x0+cx, y0+cy, upperHalf, nil, st)
				}
			}
		}
	}

	if caption {
		y := area.Max.Y - 1
		for i, r := range []rune(o.Caption) {
			if area.Min.X+i >= area.Max.X {
				break
			}
			s.SetContent(area.Min.X+i, y, r, nil, blank.Foreground(tcell.ColorWhite))
		}
	}
}

// scale composites img over bg at w x h pixels.
func scale(img image.Image, w, h int, bg color.NRGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	opaque := bg
	opaque.A = 255
	draw.Draw(dst, dst.Bounds(), image.NewUniform(opaque), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
