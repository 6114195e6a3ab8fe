package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutripeek/nutripeek-go/session"
	"github.com/nutripeek/nutripeek-go/tool"
	"github.com/nutripeek/nutripeek-go/types"
)

// QRCodeController serves the QR upload handoff endpoints.
type QRCodeController struct {
	svc *session.Service
	ttl time.Duration
}

// NewQRCodeController creates the controller. ttl is how long generated
// links stay claimable.
func NewQRCodeController(svc *session.Service, ttl time.Duration) *QRCodeController {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &QRCodeController{svc: svc, ttl: ttl}
}

// HandleGenerate creates a new upload session and returns its QR link.
func (qc *QRCodeController) HandleGenerate(c *gin.Context) {
	link, err := qc.svc.GenerateUploadLink(qc.ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to generate QR code: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.GenerateQRResponse{
		UploadURL:        link.UploadURL,
		QRCodeBase64:     link.QRCodeBase64,
		ExpiresInSeconds: int(link.ExpiresIn.Seconds()),
	})
}

// HandleUpload accepts the image from the phone. Exactly one upload per
// shortcode; a second attempt gets 409.
func (qc *QRCodeController) HandleUpload(c *gin.Context) {
	code := c.Param("shortcode")
	data, err := readUploadFile(c)
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing upload file"))
		return
	}

	if err := qc.svc.Upload(code, data); err != nil {
		c.JSON(statusFromError(err), tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.UploadImageResponse{
		Message:   "Upload successful",
		Shortcode: code,
	})
}

// HandleStatus lets the waiting browser poll the session state.
func (qc *QRCodeController) HandleStatus(c *gin.Context) {
	code := c.Param("shortcode")
	status, lastErr, err := qc.svc.Status(code)
	if err != nil {
		c.JSON(statusFromError(err), tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.UploadStatusResponse{
		Shortcode: code,
		Status:    status,
		Error:     lastErr,
	})
}

// HandleResult runs detection and returns the result exactly once; the
// session is deleted on success.
func (qc *QRCodeController) HandleResult(c *gin.Context) {
	code := c.Param("shortcode")
	result, err := qc.svc.FetchResult(c.Request.Context(), code)
	if err != nil {
		c.JSON(statusFromError(err), tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, result)
}
