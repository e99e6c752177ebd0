package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/jahidulislamseo/image-converter-tool/internal/format"
)

// Encode serializes img with the target format's encoder and the resolved
// save parameters. Targets that cannot represent transparency (JPEG, BMP,
// TIFF) get the image flattened to opaque pixels first; any transparency the
// watermark stage introduced is dropped there. That is expected conversion
// loss, not a defect.
func Encode(img image.Image, spec format.Spec, params format.SaveParams) ([]byte, error) {
	var buf bytes.Buffer

	switch spec.Name {
	case "JPEG":
		if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: params.Quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case "PNG":
		enc := png.Encoder{CompressionLevel: pngCompression(params.CompressLevel)}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case "WEBP":
		opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(params.Quality))
		if err != nil {
			return nil, fmt.Errorf("webp encoder options: %w", err)
		}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
	case "GIF":
		if err := gif.Encode(&buf, img, &gif.Options{NumColors: 256}); err != nil {
			return nil, fmt.Errorf("encode gif: %w", err)
		}
	case "BMP":
		if err := bmp.Encode(&buf, flatten(img)); err != nil {
			return nil, fmt.Errorf("encode bmp: %w", err)
		}
	case "TIFF":
		if err := tiff.Encode(&buf, flatten(img), &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, fmt.Errorf("encode tiff: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", format.ErrUnsupportedFormat, spec.Name)
	}

	return buf.Bytes(), nil
}

// flatten drops the alpha channel, keeping the stored color values as a plain
// 3-channel conversion would. Already-opaque images pass through.
func flatten(img image.Image) image.Image {
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		return img
	}

	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}

	return out
}

// pngCompression buckets the resolved 0-9 level (0 = store, 9 = smallest)
// onto the levels the stdlib encoder exposes, preserving monotonicity.
func pngCompression(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}
