package main

import (
	"errors"
	"net/http"

	"github.com/jahidulislamseo/image-converter-tool/internal/format"
	"github.com/jahidulislamseo/image-converter-tool/internal/processor"
)

var errAnalysisUnavailable = errors.New("AI analysis not available. Please configure OpenAI API key.")

type AnalysisResponse struct {
	Success  bool `json:"success"`
	Analysis any  `json:"analysis"`
}

// analyzeImageHandler forwards an upload to the vision collaborator. The
// upload is re-encoded as JPEG first so the collaborator always receives one
// well-known format, whatever was uploaded.
func (app *application) analyzeImageHandler(w http.ResponseWriter, r *http.Request) {
	if app.describer == nil {
		app.serviceUnavailableResponse(w, r, errAnalysisUnavailable)
		return
	}

	files, ok := app.readUploadForm(w, r)
	if !ok {
		return
	}

	data, err := readUpload(files[0])
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	img, err := processor.Decode(data)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	jpegSpec, err := format.Lookup("JPEG")
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	jpegData, err := processor.Encode(img, jpegSpec, format.ResolveSaveParams(jpegSpec, format.DefaultQuality))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	analysis, err := app.describer.Describe(r.Context(), jpegData)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, AnalysisResponse{
		Success:  true,
		Analysis: analysis,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
