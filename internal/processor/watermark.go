package processor

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Watermark anchors accepted at the boundary. Anything else lands in the
// center.
const (
	PositionTopLeft     = "top-left"
	PositionTopRight    = "top-right"
	PositionBottomLeft  = "bottom-left"
	PositionBottomRight = "bottom-right"
	PositionCenter      = "center"
)

const watermarkMargin = 20

// ApplyWatermark draws opts.Text in white at the requested opacity onto a
// transparent overlay sized to the image, then alpha-composites the overlay
// over the image. The result always carries an alpha channel. Empty text is
// a no-op.
func ApplyWatermark(img image.Image, opts WatermarkOptions) image.Image {
	if opts.Text == "" {
		return img
	}

	bounds := img.Bounds()
	base := image.NewNRGBA(bounds)
	draw.Draw(base, bounds, img, bounds.Min, draw.Src)

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, opts.Text).Ceil()
	textHeight := face.Metrics().Height.Ceil()

	x, y := watermarkOrigin(bounds, textWidth, textHeight, opts.Position)

	overlay := image.NewNRGBA(bounds)
	drawer := &font.Drawer{
		Dst:  overlay,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: opts.Opacity}),
		Face: face,
		Dot:  fixed.P(bounds.Min.X+x, bounds.Min.Y+y+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(opts.Text)

	draw.Draw(base, bounds, overlay, bounds.Min, draw.Over)

	return base
}

// watermarkOrigin places the top-left corner of the text box at one of the
// five anchors: the four corners keep a fixed margin, everything else is
// centered.
func watermarkOrigin(bounds image.Rectangle, textWidth, textHeight int, position string) (int, int) {
	w, h := bounds.Dx(), bounds.Dy()

	switch position {
	case PositionBottomRight:
		return w - textWidth - watermarkMargin, h - textHeight - watermarkMargin
	case PositionBottomLeft:
		return watermarkMargin, h - textHeight - watermarkMargin
	case PositionTopRight:
		return w - textWidth - watermarkMargin, watermarkMargin
	case PositionTopLeft:
		return watermarkMargin, watermarkMargin
	default:
		return (w - textWidth) / 2, (h - textHeight) / 2
	}
}
