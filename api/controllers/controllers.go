package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutripeek/nutripeek-go/session"
)

// statusFromError maps typed session failures onto HTTP status codes.
// Anything unrecognized is an internal error.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, session.ErrExpired),
		errors.Is(err, session.ErrConsumed):
		return http.StatusGone
	case errors.Is(err, session.ErrTooLarge),
		errors.Is(err, session.ErrUnsupportedFormat),
		errors.Is(err, session.ErrInvalidImage),
		errors.Is(err, session.ErrNothingUploaded),
		errors.Is(err, session.ErrProcessingFailed):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// readUploadFile pulls the image bytes out of the request: multipart "file"
// field first, raw body as a fallback for clients that POST the bytes
// directly.
func readUploadFile(c *gin.Context) ([]byte, error) {
	if fileHeader, err := c.FormFile("file"); err == nil {
		f, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return c.GetRawData()
}
