package processor

import (
	"bytes"
	"image"

	"github.com/disintegration/gift"
	"github.com/rwcarlsen/goexif/exif"
)

// NormalizeOrientation bakes the EXIF Orientation tag into the pixel data so
// the image displays upright regardless of how the camera stored it. The tag
// itself is gone after re-encoding, which makes the operation idempotent:
// already-normalized images pass through untouched.
func NormalizeOrientation(img image.Image, raw []byte) image.Image {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		// Non-JPEGs and images without EXIF simply have nothing to normalize.
		return img
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return img
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return img
	}

	switch orientation {
	case 2:
		return filterImage(img, gift.FlipHorizontal())
	case 3:
		return filterImage(img, gift.Rotate180())
	case 4:
		return filterImage(img, gift.FlipVertical())
	case 5:
		return filterImage(img, gift.FlipHorizontal(), gift.Rotate90())
	case 6:
		return filterImage(img, gift.Rotate270())
	case 7:
		return filterImage(img, gift.FlipVertical(), gift.Rotate90())
	case 8:
		return filterImage(img, gift.Rotate90())
	default:
		return img
	}
}
