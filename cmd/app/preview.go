package main

import (
	"encoding/base64"
	"net/http"

	"github.com/jahidulislamseo/image-converter-tool/internal/processor"
)

type PreviewDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type PreviewResponse struct {
	Success    bool              `json:"success"`
	Preview    string            `json:"preview"`
	Dimensions PreviewDimensions `json:"dimensions"`
}

// previewImageHandler runs the transform and watermark stages on a single
// upload and returns an inline-displayable PNG thumbnail. Format, quality
// and resize options are ignored here; previews exist for fast feedback on
// rotation, flips and watermark placement.
func (app *application) previewImageHandler(w http.ResponseWriter, r *http.Request) {
	files, ok := app.readUploadForm(w, r)
	if !ok {
		return
	}

	data, err := readUpload(files[0])
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	transform := parseTransformOptions(r)
	transform.ResizeMode = processor.ResizeNone

	pipeline := processor.Pipeline{
		Transform: transform,
		Watermark: parseWatermarkOptions(r),
	}

	preview, err := pipeline.RenderPreview(processor.Job{
		Filename: files[0].Filename,
		Data:     data,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := PreviewResponse{
		Success: true,
		Preview: "data:image/png;base64," + base64.StdEncoding.EncodeToString(preview.Data),
		Dimensions: PreviewDimensions{
			Width:  preview.Width,
			Height: preview.Height,
		},
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
