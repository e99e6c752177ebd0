package processor

import (
	"image"

	"github.com/disintegration/gift"
)

// Resize modes accepted at the boundary.
const (
	ResizeNone    = "none"
	ResizePercent = "percent"
	ResizeExact   = "exact"
)

// ApplyTransform runs the geometric stage in fixed order: rotation, flips,
// then resize. Each step returns a new image; the input is never touched.
func ApplyTransform(img image.Image, opts TransformOptions) image.Image {
	// gift rotations are counter-clockwise, the request angle is clockwise.
	switch opts.Rotate {
	case 90:
		img = filterImage(img, gift.Rotate270())
	case 180:
		img = filterImage(img, gift.Rotate180())
	case 270:
		img = filterImage(img, gift.Rotate90())
	}

	if opts.FlipHorizontal {
		img = filterImage(img, gift.FlipHorizontal())
	}
	if opts.FlipVertical {
		img = filterImage(img, gift.FlipVertical())
	}

	return resizeImage(img, opts)
}

func resizeImage(img image.Image, opts TransformOptions) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	switch opts.ResizeMode {
	case ResizePercent:
		if opts.Percent == 100 {
			return img
		}
		w := max(1, int(float64(srcW)*opts.Percent/100))
		h := max(1, int(float64(srcH)*opts.Percent/100))
		return filterImage(img, gift.Resize(w, h, gift.LanczosResampling))

	case ResizeExact:
		if opts.Width <= 0 || opts.Height <= 0 {
			return img
		}
		w, h := opts.Width, opts.Height
		if opts.PreserveAspect {
			w, h = fitDimensions(srcW, srcH, opts.Width, opts.Height)
		}
		return filterImage(img, gift.Resize(w, h, gift.LanczosResampling))
	}

	return img
}

// fitDimensions fits srcW x srcH into the boxW x boxH bounding box without
// distortion: a relatively wider image locks to the box width, a taller one
// to the box height. Neither result dimension exceeds the box.
func fitDimensions(srcW, srcH, boxW, boxH int) (int, int) {
	imgRatio := float64(srcW) / float64(srcH)
	boxRatio := float64(boxW) / float64(boxH)

	if imgRatio > boxRatio {
		return boxW, int(float64(boxW) / imgRatio)
	}
	return int(float64(boxH) * imgRatio), boxH
}

// filterImage applies a gift filter chain and materializes the result into a
// fresh NRGBA buffer.
func filterImage(img image.Image, filters ...gift.Filter) image.Image {
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}
