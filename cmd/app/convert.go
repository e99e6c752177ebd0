package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/jahidulislamseo/image-converter-tool/internal/format"
	"github.com/jahidulislamseo/image-converter-tool/internal/processor"
)

var errNoFileUploaded = errors.New("no file uploaded")

// ConvertPayload is the normalized multipart form of /api/convert. Soft
// fields are already defaulted by the parser; the tags only guard the hard
// invariants that parsing guarantees.
type ConvertPayload struct {
	Format    string `validate:"required,oneof=PNG JPEG WEBP GIF BMP TIFF"`
	Quality   int    `validate:"min=1,max=100"`
	Transform processor.TransformOptions
	Watermark processor.WatermarkOptions
}

func (app *application) convertImageHandler(w http.ResponseWriter, r *http.Request) {
	files, ok := app.readUploadForm(w, r)
	if !ok {
		return
	}

	spec, err := format.Lookup(formString(r, "format", "PNG"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payload := ConvertPayload{
		Format:    spec.Name,
		Quality:   clampQuality(format.ParseQuality(r.FormValue("quality"))),
		Transform: parseTransformOptions(r),
		Watermark: parseWatermarkOptions(r),
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	jobs := make([]processor.Job, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		jobs = append(jobs, processor.Job{Filename: fh.Filename, Data: data})
	}

	pipeline := processor.Pipeline{
		Transform: payload.Transform,
		Watermark: payload.Watermark,
		Format:    spec,
		Params:    format.ResolveSaveParams(spec, payload.Quality),
	}

	result, err := pipeline.RunBatch(jobs)
	if err != nil {
		app.metrics.conversionErrors.Inc()
		app.internalServerError(w, r, err)
		return
	}

	app.metrics.imagesConverted.WithLabelValues(spec.Name).Add(float64(len(jobs)))
	app.logger.Infow("batch converted",
		"files", len(jobs),
		"format", spec.Name,
		"archived", result.Archived,
	)

	w.Header().Set("Content-Type", result.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

// readUploadForm enforces the upload size cap, parses the multipart form and
// returns the uploaded file headers. On failure it has already written the
// error response.
func (app *application) readUploadForm(w http.ResponseWriter, r *http.Request) ([]*multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, app.config.maxUploadBytes)

	if err := r.ParseMultipartForm(app.config.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		// The multipart reader does not always wrap the limiter error in a
		// way errors.As can see, so match the message as well.
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			app.requestTooLargeResponse(w, r)
		} else {
			app.badRequestResponse(w, r, err)
		}
		return nil, false
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		app.badRequestResponse(w, r, errNoFileUploaded)
		return nil, false
	}

	return files, true
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}

	return data, nil
}

// parseTransformOptions reads the geometric form fields. Malformed numbers
// never fail the request; they collapse to the documented defaults (skip).
func parseTransformOptions(r *http.Request) processor.TransformOptions {
	return processor.TransformOptions{
		Rotate:         formInt(r, "rotate", 0),
		FlipHorizontal: formBool(r, "flip_horizontal"),
		FlipVertical:   formBool(r, "flip_vertical"),
		ResizeMode:     parseResizeMode(r.FormValue("mode")),
		Percent:        formFloat(r, "percent", 100),
		Width:          formInt(r, "width", 0),
		Height:         formInt(r, "height", 0),
		PreserveAspect: formBool(r, "preserve_aspect"),
	}
}

func parseWatermarkOptions(r *http.Request) processor.WatermarkOptions {
	position := strings.TrimSpace(r.FormValue("watermark_position"))
	if position == "" {
		position = processor.PositionBottomRight
	}

	opacity := formInt(r, "watermark_opacity", 128)
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 255 {
		opacity = 255
	}

	return processor.WatermarkOptions{
		Text:     r.FormValue("watermark_text"),
		Position: position,
		Opacity:  uint8(opacity),
	}
}

func parseResizeMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case processor.ResizePercent:
		return processor.ResizePercent
	case processor.ResizeExact:
		return processor.ResizeExact
	default:
		return processor.ResizeNone
	}
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}

func formString(r *http.Request, key, fallback string) string {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return fallback
	}
	return raw
}

func formInt(r *http.Request, key string, fallback int) int {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func formFloat(r *http.Request, key string, fallback float64) float64 {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func formBool(r *http.Request, key string) bool {
	return r.FormValue(key) == "true"
}
