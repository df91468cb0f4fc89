package board

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// cellPixels is the spacing between grid lines in the rendered board
// image, used by showboard to give the GTP collaborator a visual debug
// surface.
const cellPixels = 28

var (
	boardBG   = color.RGBA{0xdc, 0xb3, 0x5c, 0xff}
	lineColor = color.RGBA{0x30, 0x20, 0x10, 0xff}
	blackFill = color.RGBA{0x10, 0x10, 0x10, 0xff}
	whiteFill = color.RGBA{0xf5, 0xf5, 0xf0, 0xff}
)

// Renderer rasterizes a Board to a PNG image. An optional TrueType font
// (loaded via RenderFont) gives crisper coordinate labels through
// freetype; without one it falls back to the pure-Go basicfont face so
// rendering never depends on a bundled font file.
type Renderer struct {
	face font.Face
	ttf  *truetype.Font
}

// NewRenderer returns a Renderer using the built-in basicfont face.
func NewRenderer() *Renderer {
	return &Renderer{face: basicfont.Face7x13}
}

// RenderFont swaps in a parsed TrueType font for coordinate labels,
// rendered through a freetype.Context for antialiasing.
func (r *Renderer) RenderFont(fontBytes []byte) error {
	f, err := truetype.Parse(fontBytes)
	if err != nil {
		return err
	}
	r.ttf = f
	return nil
}

// Render draws b to a PNG and writes it to w.
func (r *Renderer) Render(b *Board, w io.Writer) error {
	n := b.Size()
	margin := cellPixels
	size := margin*2 + cellPixels*(n-1)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{boardBG}, image.Point{}, draw.Src)

	for i := 0; i < n; i++ {
		x := margin + i*cellPixels
		drawLine(img, x, margin, x, margin+cellPixels*(n-1), lineColor)
		drawLine(img, margin, x, margin+cellPixels*(n-1), x, lineColor)
	}

	for row := 1; row <= n; row++ {
		for col := 1; col <= n; col++ {
			c := b.At(vertexOf(n, col, row))
			if c != Black && c != White {
				continue
			}
			cx := margin + (col-1)*cellPixels
			cy := margin + (row-1)*cellPixels
			fill := blackFill
			if c == White {
				fill = whiteFill
			}
			drawStone(img, cx, cy, cellPixels/2-2, fill)
		}
	}

	if err := r.drawLabels(img, n, margin); err != nil {
		return err
	}
	return png.Encode(w, img)
}

func (r *Renderer) drawLabels(img *image.RGBA, n, margin int) error {
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = VertexString(n, vertexOf(n, i+1, 1))[:1]
	}

	if r.ttf == nil {
		for i, lbl := range labels {
			x := margin + i*cellPixels - 3
			y := margin / 2
			drawString(img, r.face, x, y, lbl)
		}
		return nil
	}

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(r.ttf)
	c.SetFontSize(14)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(lineColor))
	for i, lbl := range labels {
		pt := fixed.Point26_6{X: fixed.I(margin + i*cellPixels - 4), Y: fixed.I(margin / 2)}
		if _, err := c.DrawString(lbl, pt); err != nil {
			return err
		}
	}
	return nil
}

func drawString(img *image.RGBA, face font.Face, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(lineColor),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color) {
	if x0 == x1 {
		for y := y0; y <= y1; y++ {
			img.Set(x0, y, col)
		}
		return
	}
	for x := x0; x <= x1; x++ {
		img.Set(x, y0, col)
	}
}

func drawStone(img *image.RGBA, cx, cy, radius int, col color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(cx+dx, cy+dy, col)
			}
		}
	}
}
