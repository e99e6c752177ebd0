// Package format holds the fixed set of output formats the converter can
// produce, plus the mapping from a user-facing quality number to the
// encoder-specific save parameters of each format.
package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// Spec describes one output format: the canonical encoder name, the file
// extension used for derived filenames and the MIME type of the response.
type Spec struct {
	Name string
	Ext  string
	MIME string
}

var specs = map[string]Spec{
	"PNG":  {Name: "PNG", Ext: "png", MIME: "image/png"},
	"JPEG": {Name: "JPEG", Ext: "jpg", MIME: "image/jpeg"},
	"WEBP": {Name: "WEBP", Ext: "webp", MIME: "image/webp"},
	"GIF":  {Name: "GIF", Ext: "gif", MIME: "image/gif"},
	"BMP":  {Name: "BMP", Ext: "bmp", MIME: "image/bmp"},
	"TIFF": {Name: "TIFF", Ext: "tiff", MIME: "image/tiff"},
}

// Lookup resolves a user-supplied format token, case-insensitively.
func Lookup(token string) (Spec, error) {
	spec, ok := specs[strings.ToUpper(strings.TrimSpace(token))]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, token)
	}

	return spec, nil
}

const DefaultQuality = 85

// ParseQuality reads a quality form value. Absent or non-numeric values fall
// back to the default instead of failing the request.
func ParseQuality(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultQuality
	}

	q, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultQuality
	}

	return q
}

// SaveParams are the tunable encoder settings derived from a single quality
// number. Formats without tunables get the zero value.
type SaveParams struct {
	Quality       int
	CompressLevel int
	Optimize      bool
}

// ResolveSaveParams clamps quality to [1,100] and maps it onto the target
// format. JPEG and WEBP take the quality directly. PNG inverts it into a
// zlib compression level in [0,9]; the 11.12 divisor keeps the level steps
// aligned with the reference behavior, so don't round it away.
func ResolveSaveParams(spec Spec, quality int) SaveParams {
	q := clamp(quality, 1, 100)

	switch spec.Name {
	case "JPEG", "WEBP":
		return SaveParams{Quality: q}
	case "PNG":
		level := 9 - int(float64(q)/11.12)
		return SaveParams{CompressLevel: clamp(level, 0, 9), Optimize: true}
	default:
		return SaveParams{}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
