package rimage

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var font *truetype.Font

func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font used for drawing.
func Font() *truetype.Font {
	return font
}

// DrawString writes a string to the given context at a particular point.
func DrawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(Font(), &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, 0)
}

// DrawPolygonFilled fills the closed polygon into the context.
func DrawPolygonFilled(dc *gg.Context, polygon []image.Point, c color.Color) {
	if len(polygon) < 3 {
		return
	}
	dc.SetColor(c)
	dc.MoveTo(float64(polygon[0].X), float64(polygon[0].Y))
	for _, p := range polygon[1:] {
		dc.LineTo(float64(p.X), float64(p.Y))
	}
	dc.ClosePath()
	dc.Fill()
}

// FillPolygons rasterizes the polygons filled with the given color onto a
// transparent layer of the given size.
func FillPolygons(width, height int, polygons [][]image.Point, c color.Color) *Image {
	dc := gg.NewContext(width, height)
	for _, poly := range polygons {
		DrawPolygonFilled(dc, poly, c)
	}
	return ConvertImage(dc.Image())
}
