package session

import "errors"

// Typed failures for expected conditions. Store and service return these
// rather than panicking; the HTTP layer maps each one to a status code.
var (
	ErrNotFound          = errors.New("shortcode not found")
	ErrExpired           = errors.New("shortcode has expired")
	ErrConflict          = errors.New("conflicting session state")
	ErrTooLarge          = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidImage      = errors.New("invalid image")
	ErrNothingUploaded   = errors.New("nothing uploaded yet")
	ErrConsumed          = errors.New("result already consumed")
	ErrProcessingFailed  = errors.New("processing failed")
)
