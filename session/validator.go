package session

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
)

// minImageSize rejects payloads too small to be a real photo.
const minImageSize = 50

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

// ValidateImage rejects payloads that are not well-formed JPEG or PNG
// images before they occupy storage. Signature check first, then a full
// decode pass to catch payloads that carry a valid header over garbage.
// Pure function, no state.
func ValidateImage(data []byte) error {
	if len(data) < minImageSize {
		return fmt.Errorf("%w: file is too small to be a valid image", ErrInvalidImage)
	}

	switch {
	case bytes.HasPrefix(data, jpegMagic):
		if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	case bytes.HasPrefix(data, pngMagic):
		if _, err := png.Decode(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	default:
		return fmt.Errorf("%w: please upload JPEG or PNG images only", ErrUnsupportedFormat)
	}
	return nil
}
