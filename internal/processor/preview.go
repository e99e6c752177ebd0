package processor

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/disintegration/gift"
)

// PreviewMaxDim caps both preview dimensions.
const PreviewMaxDim = 400

// Preview is a reduced-size, losslessly encoded rendering of the transform
// and watermark stages, meant for inline display.
type Preview struct {
	Data   []byte
	Width  int
	Height int
}

// RenderPreview runs the transform and watermark stages on one file, shrinks
// the result so neither dimension exceeds PreviewMaxDim (small images are
// never upscaled) and encodes it as PNG.
func (p Pipeline) RenderPreview(job Job) (Preview, error) {
	img, err := Decode(job.Data)
	if err != nil {
		return Preview{}, fmt.Errorf("%s: %w", uploadName(job), err)
	}

	img = NormalizeOrientation(img, job.Data)
	img = ApplyTransform(img, p.Transform)
	img = ApplyWatermark(img, p.Watermark)

	bounds := img.Bounds()
	if bounds.Dx() > PreviewMaxDim || bounds.Dy() > PreviewMaxDim {
		w, h := fitDimensions(bounds.Dx(), bounds.Dy(), PreviewMaxDim, PreviewMaxDim)
		img = filterImage(img, gift.Resize(max(1, w), max(1, h), gift.LanczosResampling))
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Preview{}, fmt.Errorf("encode preview: %w", err)
	}

	return Preview{
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
