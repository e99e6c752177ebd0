// Package processor implements the image pipeline: decode, geometric
// transforms, text watermarking and format-specific encoding, plus the
// batching logic that turns one or many uploads into a downloadable result.
//
// Every stage is a pure transform taking an image value and returning a new
// one; nothing is mutated in place and no state survives a request.
package processor

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "golang.org/x/image/webp" //register WebP decoder

	"github.com/jahidulislamseo/image-converter-tool/internal/format"
)

// TransformOptions describe the requested geometric operations. Values come
// from the upload form already normalized: malformed numbers arrive as zero
// and are treated as "skip".
type TransformOptions struct {
	Rotate         int //clockwise, one of 0/90/180/270; anything else is a no-op
	FlipHorizontal bool
	FlipVertical   bool
	ResizeMode     string
	Percent        float64
	Width          int
	Height         int
	PreserveAspect bool
}

// WatermarkOptions describe the optional text overlay. Empty text disables
// the stage.
type WatermarkOptions struct {
	Text     string
	Position string
	Opacity  uint8
}

// Pipeline is the shared per-request configuration applied identically to
// every uploaded file.
type Pipeline struct {
	Transform TransformOptions
	Watermark WatermarkOptions
	Format    format.Spec
	Params    format.SaveParams
}

// Job is one uploaded file entering the pipeline.
type Job struct {
	Filename string
	Data     []byte
}

// Output is one encoded result leaving the pipeline.
type Output struct {
	Filename string
	Data     []byte
}

// Decode decodes an uploaded image using every registered codec.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	return img, nil
}

// Run passes one job through the full pipeline and derives the output
// filename from the original filename's stem plus the target extension.
func (p Pipeline) Run(job Job) (Output, error) {
	img, err := Decode(job.Data)
	if err != nil {
		return Output{}, fmt.Errorf("%s: %w", uploadName(job), err)
	}

	img = NormalizeOrientation(img, job.Data)
	img = ApplyTransform(img, p.Transform)
	img = ApplyWatermark(img, p.Watermark)

	data, err := Encode(img, p.Format, p.Params)
	if err != nil {
		return Output{}, fmt.Errorf("%s: %w", uploadName(job), err)
	}

	return Output{
		Filename: outputFilename(job.Filename, p.Format.Ext),
		Data:     data,
	}, nil
}

func uploadName(job Job) string {
	if strings.TrimSpace(job.Filename) == "" {
		return "upload"
	}
	return job.Filename
}

// outputFilename keeps everything before the last dot of the original name
// and appends the target extension. Uploads without a filename get a generic
// one.
func outputFilename(original, ext string) string {
	name := strings.TrimSpace(original)
	if name == "" {
		return "image." + ext
	}

	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}

	return name + "." + ext
}
