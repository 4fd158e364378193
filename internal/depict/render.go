// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package depict

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/pdiddy/cddprep/internal/smiles"
)

const (
	titleBand   = 22
	margin      = 20
	maxBondPx   = 40.0
	strokeWidth = 1.6
	labelRadius = 7.0
)

var (
	background = color.White
	ink        = color.Black
	labelFace  = basicfont.Face7x13
)

// atomColors follows the usual CPK-style palette for heteroatoms.
var atomColors = map[string]color.RGBA{
	"N":  {R: 48, G: 80, B: 248, A: 255},
	"O":  {R: 230, G: 13, B: 13, A: 255},
	"S":  {R: 178, G: 156, B: 0, A: 255},
	"P":  {R: 255, G: 128, B: 0, A: 255},
	"F":  {R: 0, G: 160, B: 0, A: 255},
	"Cl": {R: 0, G: 160, B: 0, A: 255},
	"Br": {R: 166, G: 41, B: 41, A: 255},
	"I":  {R: 148, G: 0, B: 148, A: 255},
}

// canvas wraps the target image and a reusable rasterizer.
type canvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

func newCanvas(width, height int) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	z := vector.NewRasterizer(width, height)
	z.DrawOp = draw.Over
	return &canvas{img: img, z: z}
}

func (c *canvas) line(x0, y0, x1, y1, width float64, col color.Color) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l < 1e-6 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	b := c.img.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
	c.z.DrawOp = draw.Over
	c.z.MoveTo(float32(x0+nx), float32(y0+ny))
	c.z.LineTo(float32(x1+nx), float32(y1+ny))
	c.z.LineTo(float32(x1-nx), float32(y1-ny))
	c.z.LineTo(float32(x0-nx), float32(y0-ny))
	c.z.ClosePath()
	c.z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

func (c *canvas) dashed(x0, y0, x1, y1, width float64, col color.Color) {
	const dash, gap = 3.0, 2.5
	l := math.Hypot(x1-x0, y1-y0)
	if l < 1e-6 {
		return
	}
	ux, uy := (x1-x0)/l, (y1-y0)/l
	for s := 0.0; s < l; s += dash + gap {
		e := math.Min(s+dash, l)
		c.line(x0+ux*s, y0+uy*s, x0+ux*e, y0+uy*e, width, col)
	}
}

// text draws s centered on (cx, cy) over a cleared box.
func (c *canvas) text(s string, cx, cy int, col color.Color, clear bool) {
	w := font.MeasureString(labelFace, s).Ceil()
	h := labelFace.Metrics().Height.Ceil()
	x := cx - w/2
	top := cy - h/2
	if clear {
		box := image.Rect(x-1, top, x+w+1, top+h)
		draw.Draw(c.img, box, image.NewUniform(background), image.Point{}, draw.Src)
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: labelFace,
		Dot:  fixed.P(x, top+labelFace.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// transform maps layout coordinates into the drawing area below the title band.
type transform struct {
	scale      float64
	midX, midY float64
	cx, cy     float64
}

func fit(pts []Point, width, height int) transform {
	minX, maxX, minY, maxY := bounds(pts)
	if len(pts) == 0 {
		minX, maxX, minY, maxY = 0, 0, 0, 0
	}
	availW := float64(width - 2*margin)
	availH := float64(height - titleBand - 2*margin)
	scale := maxBondPx
	if spanX := maxX - minX; spanX > 0 {
		scale = math.Min(scale, availW/spanX)
	}
	if spanY := maxY - minY; spanY > 0 {
		scale = math.Min(scale, availH/spanY)
	}
	return transform{
		scale: scale,
		midX:  (minX + maxX) / 2,
		midY:  (minY + maxY) / 2,
		cx:    float64(width) / 2,
		cy:    float64(titleBand) + float64(height-titleBand)/2,
	}
}

func (t transform) apply(p Point) (float64, float64) {
	return t.cx + (p.X-t.midX)*t.scale, t.cy - (p.Y-t.midY)*t.scale
}

// Render draws m at pts onto a width x height image, leaving the top band
// free for a title. Carbon atoms are implicit; every other atom, and any
// charged, isotopic, or isolated carbon, is labeled.
func Render(m *smiles.Molecule, pts []Point, width, height int) *image.RGBA {
	c := newCanvas(width, height)
	tr := fit(pts, width, height)

	labels := make([]string, len(m.Atoms))
	for i := range m.Atoms {
		labels[i] = atomLabel(m, i)
	}

	for _, b := range m.Bonds {
		x0, y0 := tr.apply(pts[b.From])
		x1, y1 := tr.apply(pts[b.To])
		x0, y0, x1, y1 = trimEnds(x0, y0, x1, y1, labels[b.From] != "", labels[b.To] != "")
		drawBond(c, b.Order, x0, y0, x1, y1)
	}

	for i, l := range labels {
		if l == "" {
			continue
		}
		x, y := tr.apply(pts[i])
		col, ok := atomColors[m.Atoms[i].Symbol]
		if !ok {
			col = color.RGBA{A: 255}
		}
		c.text(l, int(math.Round(x)), int(math.Round(y)), col, true)
	}
	return c.img
}

func trimEnds(x0, y0, x1, y1 float64, from, to bool) (float64, float64, float64, float64) {
	l := math.Hypot(x1-x0, y1-y0)
	if l < 2*labelRadius+1 {
		return x0, y0, x1, y1
	}
	ux, uy := (x1-x0)/l, (y1-y0)/l
	if from {
		x0, y0 = x0+ux*labelRadius, y0+uy*labelRadius
	}
	if to {
		x1, y1 = x1-ux*labelRadius, y1-uy*labelRadius
	}
	return x0, y0, x1, y1
}

func drawBond(c *canvas, order smiles.Order, x0, y0, x1, y1 float64) {
	l := math.Hypot(x1-x0, y1-y0)
	if l < 1e-6 {
		return
	}
	px, py := -(y1-y0)/l, (x1-x0)/l
	off := func(d float64) (float64, float64, float64, float64) {
		return x0 + px*d, y0 + py*d, x1 + px*d, y1 + py*d
	}

	switch order {
	case smiles.Double:
		a0, b0, a1, b1 := off(2.5)
		c.line(a0, b0, a1, b1, strokeWidth, ink)
		a0, b0, a1, b1 = off(-2.5)
		c.line(a0, b0, a1, b1, strokeWidth, ink)
	case smiles.Triple:
		c.line(x0, y0, x1, y1, strokeWidth, ink)
		for _, d := range []float64{3.5, -3.5} {
			a0, b0, a1, b1 := off(d)
			c.line(a0, b0, a1, b1, strokeWidth, ink)
		}
	case smiles.Quadruple:
		for _, d := range []float64{-5, -1.7, 1.7, 5} {
			a0, b0, a1, b1 := off(d)
			c.line(a0, b0, a1, b1, strokeWidth, ink)
		}
	case smiles.Aromatic:
		c.line(x0, y0, x1, y1, strokeWidth, ink)
		a0, b0, a1, b1 := off(3.5)
		c.dashed(a0, b0, a1, b1, strokeWidth*0.8, ink)
	default:
		c.line(x0, y0, x1, y1, strokeWidth, ink)
	}
}

// atomLabel returns the text drawn for atom i, or "" for an implicit carbon.
func atomLabel(m *smiles.Molecule, i int) string {
	a := m.Atoms[i]
	isolated := len(m.BondsOf(i)) == 0
	if a.Symbol == "C" && a.Charge == 0 && a.Isotope == 0 && !isolated {
		return ""
	}
	s := a.Symbol
	if a.Isotope > 0 {
		s = fmt.Sprintf("%d%s", a.Isotope, s)
	}
	switch h := m.ImplicitH(i); {
	case h == 1:
		s += "H"
	case h > 1:
		s += fmt.Sprintf("H%d", h)
	}
	switch {
	case a.Charge == 1:
		s += "+"
	case a.Charge == -1:
		s += "-"
	case a.Charge > 1:
		s += fmt.Sprintf("%d+", a.Charge)
	case a.Charge < -1:
		s += fmt.Sprintf("%d-", -a.Charge)
	}
	return s
}

// Annotate draws title centered in the top band of img. No axes or ticks
// are drawn.
func Annotate(img draw.Image, title string) {
	b := img.Bounds()
	c := &canvas{img: toRGBA(img)}
	c.text(title, b.Min.X+b.Dx()/2, b.Min.Y+titleBand/2, ink, false)
	if c.img != img {
		draw.Draw(img, b, c.img, b.Min, draw.Src)
	}
}

func toRGBA(img draw.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
