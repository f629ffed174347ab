package storage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeDataURLPNG(t *testing.T) {
	raw := encodePNG(t)
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	img, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL() unexpected error: %v", err)
	}
	if img.ContentType != "image/png" || img.Ext != ".png" {
		t.Errorf("type = %s ext = %s, want image/png .png", img.ContentType, img.Ext)
	}
	if !bytes.Equal(img.Bytes, raw) {
		t.Error("decoded bytes differ from the original payload")
	}
}

func TestDecodeDataURLSniffsDeclaredTypeLies(t *testing.T) {
	// Declared as jpeg, actually a png: the decoded bytes decide.
	raw := encodePNG(t)
	url := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)

	img, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL() unexpected error: %v", err)
	}
	if img.ContentType != "image/png" {
		t.Errorf("ContentType = %s, want image/png from sniffing", img.ContentType)
	}
}

func TestDecodeDataURLJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatalf("encoding test jpeg: %v", err)
	}
	url := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	img, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL() unexpected error: %v", err)
	}
	if img.ContentType != "image/jpeg" || img.Ext != ".jpg" {
		t.Errorf("type = %s ext = %s, want image/jpeg .jpg", img.ContentType, img.Ext)
	}
}

func TestDecodeDataURLNotADataURL(t *testing.T) {
	for _, s := range []string{
		"",
		"http://example.com/cover.png",
		"data:image/png,unencoded",
		"data:image/png;base64",
	} {
		if _, err := DecodeDataURL(s); !errors.Is(err, ErrInvalidDataURL) {
			t.Errorf("DecodeDataURL(%q) = %v, want ErrInvalidDataURL", s, err)
		}
	}
}

func TestDecodeDataURLBadBase64(t *testing.T) {
	if _, err := DecodeDataURL("data:image/png;base64,!!!not-base64!!!"); !errors.Is(err, ErrInvalidDataURL) {
		t.Errorf("DecodeDataURL() = %v, want ErrInvalidDataURL", err)
	}
}

func TestDecodeDataURLNotAnImage(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("plain text pretending to be a cover"))
	if _, err := DecodeDataURL("data:image/png;base64," + payload); !errors.Is(err, ErrUnsupportedImageType) {
		t.Errorf("DecodeDataURL() = %v, want ErrUnsupportedImageType", err)
	}
}
