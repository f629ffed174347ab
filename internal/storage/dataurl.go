package storage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidDataURL       = errors.New("image must be a base64 data URL")
	ErrUnsupportedImageType = errors.New("unsupported image type")
)

// imageFormats maps the format names reported by image.DecodeConfig to
// the MIME type and object-key extension used for storage.
var imageFormats = map[string]struct {
	contentType string
	ext         string
}{
	"jpeg": {"image/jpeg", ".jpg"},
	"png":  {"image/png", ".png"},
	"webp": {"image/webp", ".webp"},
}

// ImageData is a decoded upload ready for object storage.
type ImageData struct {
	Bytes       []byte
	ContentType string
	Ext         string
}

// DecodeDataURL decodes a "data:<type>;base64,<payload>" string and
// verifies that the payload really is a supported image. The declared
// media type is ignored; the decoded bytes decide.
func DecodeDataURL(s string) (*ImageData, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, ErrInvalidDataURL
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidDataURL
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidDataURL
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrUnsupportedImageType
	}

	f, ok := imageFormats[format]
	if !ok {
		return nil, ErrUnsupportedImageType
	}

	return &ImageData{Bytes: raw, ContentType: f.contentType, Ext: f.ext}, nil
}
