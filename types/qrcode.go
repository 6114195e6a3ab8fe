package types

// GenerateQRResponse is returned by POST /qrcode/generate.
type GenerateQRResponse struct {
	UploadURL        string `json:"upload_url"`
	QRCodeBase64     string `json:"qrcode_base64"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// UploadImageResponse is returned by POST /qrcode/upload/:shortcode.
type UploadImageResponse struct {
	Message   string `json:"message"`
	Shortcode string `json:"shortcode"`
}

// UploadStatusResponse is returned by GET /qrcode/status/:shortcode.
type UploadStatusResponse struct {
	Shortcode string        `json:"shortcode"`
	Status    SessionStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
}

// StatusEvent is pushed over the notify WebSocket whenever a session
// changes state, so the waiting browser does not need to poll.
type StatusEvent struct {
	Shortcode string        `json:"shortcode"`
	Status    SessionStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
}
