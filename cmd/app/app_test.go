package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jahidulislamseo/image-converter-tool/internal/ratelimiter"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()

	return &application{
		config: config{
			addr:           ":0",
			maxUploadBytes: 16 << 20,
			ratelimiter: ratelimiter.Config{
				RequestPerTimeFrame: 1000,
				TimeFrame:           time.Second,
				Enabled:             false,
			},
		},
		logger:      zap.NewNop().Sugar(),
		rateLimiter: ratelimiter.NewFixedWindowLimiter(1000, time.Second),
		metrics:     newMetrics(),
	}
}

func buildPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: 120,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

type uploadFile struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, target string, files []uploadFile, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, f := range files {
		part, err := mw.CreateFormFile("file", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func errorMessage(t *testing.T, body io.Reader) string {
	t.Helper()

	var envelope struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&envelope))

	return envelope.Error
}

func TestConvertRequiresFile(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, "/api/convert", nil, map[string]string{"format": "PNG"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec.Body), "no file uploaded")
}

func TestConvertRejectsUnsupportedFormat(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	req := multipartRequest(t, "/api/convert",
		[]uploadFile{{name: "a.png", data: buildPNG(t, 10, 10)}},
		map[string]string{"format": "heic"},
	)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec.Body), "unsupported format")
}

func TestConvertSinglePNGToJPEG(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	req := multipartRequest(t, "/api/convert",
		[]uploadFile{{name: "photo.png", data: buildPNG(t, 60, 40)}},
		map[string]string{"format": "JPEG", "quality": "90"},
	)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment`)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `photo.jpg`)

	decoded, kind, err := image.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", kind)
	assert.Equal(t, 60, decoded.Bounds().Dx())
	assert.Equal(t, 40, decoded.Bounds().Dy())
}

func TestConvertTwoFilesReturnsArchive(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	req := multipartRequest(t, "/api/convert",
		[]uploadFile{
			{name: "one.jpg", data: buildPNG(t, 20, 20)},
			{name: "two.jpg", data: buildPNG(t, 30, 30)},
		},
		map[string]string{"format": "PNG"},
	)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "images.zip")

	payload := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "one.png", zr.File[0].Name)
	assert.Equal(t, "two.png", zr.File[1].Name)
}

func TestConvertMalformedWidthSkipsResize(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	req := multipartRequest(t, "/api/convert",
		[]uploadFile{{name: "a.png", data: buildPNG(t, 50, 25)}},
		map[string]string{"format": "PNG", "mode": "exact", "width": "abc", "height": "100"},
	)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	decoded, _, err := image.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 50, decoded.Bounds().Dx(), "malformed width must skip the resize step")
	assert.Equal(t, 25, decoded.Bounds().Dy())
}

func TestConvertCorruptUploadFailsBatch(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	req := multipartRequest(t, "/api/convert",
		[]uploadFile{
			{name: "good.png", data: buildPNG(t, 20, 20)},
			{name: "bad.png", data: []byte("garbage bytes")},
		},
		map[string]string{"format": "PNG"},
	)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, errorMessage(t, rec.Body), "bad.png")
}

func TestConvertRejectsOversizedUpload(t *testing.T) {
	app := newTestApplication(t)
	app.config.maxUploadBytes = 256
	mux := app.mount()

	req := multipartRequest(t, "/api/convert",
		[]uploadFile{{name: "big.png", data: buildPNG(t, 200, 200)}},
		map[string]string{"format": "PNG"},
	)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPreviewReturnsDataURI(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	req := multipartRequest(t, "/api/preview",
		[]uploadFile{{name: "a.png", data: buildPNG(t, 800, 600)}},
		map[string]string{"watermark_text": "DRAFT", "watermark_position": "center"},
	)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp PreviewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Preview, "data:image/png;base64,"))
	assert.Equal(t, 400, resp.Dimensions.Width)
	assert.Equal(t, 300, resp.Dimensions.Height)
}

func TestAnalyzeUnavailableWithoutAPIKey(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	req := multipartRequest(t, "/api/analyze-image",
		[]uploadFile{{name: "a.png", data: buildPNG(t, 10, 10)}},
		nil,
	)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, errorMessage(t, rec.Body), "AI analysis not available")
}

func TestHealthz(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var status map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
}

func TestRateLimiterMiddleware(t *testing.T) {
	app := newTestApplication(t)
	app.config.ratelimiter.Enabled = true
	app.rateLimiter = ratelimiter.NewFixedWindowLimiter(2, time.Minute)
	mux := app.mount()

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
