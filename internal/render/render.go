// Package render draws a raster preview of an editing surface.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/woozymasta/geofield/internal/geo"

	"github.com/chai2010/webp"
	"github.com/paulmach/orb"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Feature style, shared with the browser front end.
var (
	StrokeColor = color.NRGBA{R: 0x3a, G: 0x69, B: 0xc7, A: 0xff}
	FillColor   = color.NRGBA{R: 0x3a, G: 0x69, B: 0xc7, A: 0x44}
	Background  = color.NRGBA{R: 0xf2, G: 0xef, B: 0xe9, A: 0xff}
)

const (
	StrokeWidth      = 3
	PointRadius      = 5
	PointStrokeWidth = 2

	circleSegments = 24
)

// Snapshot renders f as seen through v on a width x height canvas.
// A nil feature yields an empty background.
func Snapshot(f *geo.Feature, v geo.ViewState, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	if f == nil || f.Geometry == nil || v.Resolution <= 0 {
		return dst
	}

	c := canvas{dst: dst, view: v, r: vector.NewRasterizer(width, height)}

	switch g := f.Geometry.(type) {
	case orb.Point:
		p := c.pixel(g)
		c.fillPolygon([][]point{circle(p, PointRadius)}, FillColor)
		c.strokeRing(circle(p, PointRadius), PointStrokeWidth)
	case orb.LineString:
		c.strokePath(c.pixels(g), StrokeWidth)
	case orb.Polygon:
		rings := make([][]point, 0, len(g))
		for _, r := range g {
			rings = append(rings, c.pixels(r))
		}
		c.fillPolygon(rings, FillColor)
		for _, r := range rings {
			c.strokePath(r, StrokeWidth)
		}
	}

	return dst
}

// Thumbnail scales img down to the given width, keeping its aspect ratio.
// Images already narrower are returned unchanged.
func Thumbnail(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || width >= b.Dx() {
		return img
	}

	height := int(math.Max(1, math.Round(float64(b.Dy())*float64(width)/float64(b.Dx()))))
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// EncodeWebP writes img as lossy WebP.
func EncodeWebP(w io.Writer, img image.Image, quality float32) error {
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: quality})
}

type point struct {
	x, y float32
}

type canvas struct {
	dst  *image.RGBA
	r    *vector.Rasterizer
	view geo.ViewState
}

func (c *canvas) pixel(p orb.Point) point {
	b := c.dst.Bounds()
	return point{
		x: float32((p[0]-c.view.Center[0])/c.view.Resolution + float64(b.Dx())/2),
		y: float32(float64(b.Dy())/2 - (p[1]-c.view.Center[1])/c.view.Resolution),
	}
}

func (c *canvas) pixels(ps []orb.Point) []point {
	out := make([]point, len(ps))
	for i, p := range ps {
		out[i] = c.pixel(p)
	}
	return out
}

func (c *canvas) paint(col color.Color) {
	c.r.Draw(c.dst, c.dst.Bounds(), image.NewUniform(col), image.Point{})
	b := c.dst.Bounds()
	c.r.Reset(b.Dx(), b.Dy())
}

func (c *canvas) fillPolygon(rings [][]point, col color.Color) {
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		c.r.MoveTo(ring[0].x, ring[0].y)
		for _, p := range ring[1:] {
			c.r.LineTo(p.x, p.y)
		}
		c.r.ClosePath()
	}
	c.paint(col)
}

// strokePath paints every segment and joint separately so overlapping
// segments never cancel out.
func (c *canvas) strokePath(ps []point, width float32) {
	half := width / 2
	for i := 0; i+1 < len(ps); i++ {
		c.segment(ps[i], ps[i+1], half)
	}
	for _, p := range ps {
		c.fillPolygon([][]point{circle(p, half)}, StrokeColor)
	}
}

func (c *canvas) strokeRing(ps []point, width float32) {
	c.strokePath(append(ps, ps[0]), width)
}

func (c *canvas) segment(a, b point, half float32) {
	dx, dy := b.x-a.x, b.y-a.y
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*half, dx/l*half

	c.fillPolygon([][]point{{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	}}, StrokeColor)
}

func circle(center point, radius float32) []point {
	out := make([]point, circleSegments)
	for i := range out {
		a := 2 * math.Pi * float64(i) / circleSegments
		out[i] = point{
			x: center.x + radius*float32(math.Cos(a)),
			y: center.y + radius*float32(math.Sin(a)),
		}
	}
	return out
}
