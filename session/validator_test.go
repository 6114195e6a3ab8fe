package session

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func makeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func makePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidateImageAcceptsJPEGAndPNG(t *testing.T) {
	if err := ValidateImage(makeJPEG(t)); err != nil {
		t.Errorf("valid JPEG rejected: %v", err)
	}
	if err := ValidateImage(makePNG(t)); err != nil {
		t.Errorf("valid PNG rejected: %v", err)
	}
}

func TestValidateImageTooSmall(t *testing.T) {
	err := ValidateImage([]byte("abc"))
	if !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage for a 3-byte payload, got %v", err)
	}
}

func TestValidateImageUnsupportedFormat(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 64)
	err := ValidateImage(data)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestValidateImageCorruptedAfterSignature(t *testing.T) {
	// valid PNG header over garbage
	data := append(append([]byte(nil), pngMagic...), bytes.Repeat([]byte{0xAB}, 64)...)
	if err := ValidateImage(data); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage for corrupted PNG, got %v", err)
	}

	truncated := makeJPEG(t)
	truncated = truncated[:len(truncated)/2]
	if err := ValidateImage(truncated); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage for truncated JPEG, got %v", err)
	}
}
