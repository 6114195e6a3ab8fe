package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/skip2/go-qrcode"

	"github.com/nutripeek/nutripeek-go/types"
)

const defaultQRSize = 256

// Detector runs object detection on raw image bytes. Implemented by the
// inference client; tests stub it.
type Detector interface {
	Detect(ctx context.Context, image []byte) (*types.FoodDetectionResult, error)
}

// Notifier receives session status changes. Implemented by the notify hub.
type Notifier interface {
	NotifyStatus(shortcode string, status types.SessionStatus, errMsg string)
}

// UploadLink is the rendered handoff target returned to the browser.
type UploadLink struct {
	Shortcode    string
	UploadURL    string
	QRCodeBase64 string
	ExpiresIn    time.Duration
}

// Service orchestrates the QR upload handoff: link generation, upload
// acceptance and one-shot result retrieval.
type Service struct {
	store    *Store
	detector Detector
	notifier Notifier
	baseURL  string
	qrSize   int
	logger   *log.Logger
}

// NewService wires the store, the detection collaborator and the public
// base URL the phone will be sent to.
func NewService(store *Store, detector Detector, baseURL string, qrSize int, logger *log.Logger) *Service {
	if qrSize <= 0 {
		qrSize = defaultQRSize
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:    store,
		detector: detector,
		baseURL:  strings.TrimRight(baseURL, "/"),
		qrSize:   qrSize,
		logger:   logger,
	}
}

// SetNotifier attaches a status-change listener. Optional.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) notify(code string, status types.SessionStatus, errMsg string) {
	if s.notifier != nil {
		s.notifier.NotifyStatus(code, status, errMsg)
	}
}

// GenerateUploadLink creates a session and renders its upload URL as a
// base64 PNG QR code.
func (s *Service) GenerateUploadLink(ttl time.Duration) (*UploadLink, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	code, _ := s.store.Create(ttl)
	uploadURL := fmt.Sprintf("%s/upload/%s", s.baseURL, code)

	png, err := qrcode.Encode(uploadURL, qrcode.Medium, s.qrSize)
	if err != nil {
		s.store.Delete(code)
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	s.logger.Infof("Generated upload link with shortcode: %s", code)
	return &UploadLink{
		Shortcode:    code,
		UploadURL:    uploadURL,
		QRCodeBase64: base64.StdEncoding.EncodeToString(png),
		ExpiresIn:    ttl,
	}, nil
}

// Upload validates and stores the image sent by the phone. A validation
// failure is recorded on the session so the poller can see the reason.
func (s *Service) Upload(code string, data []byte) error {
	status, _, err := s.store.GetState(code)
	if err != nil {
		return err
	}
	switch status {
	case types.StatusAwaitingUpload:
	case types.StatusExpired:
		return ErrExpired
	default:
		return fmt.Errorf("%w: file already uploaded", ErrConflict)
	}

	if err := ValidateImage(data); err != nil {
		if stErr := s.store.SetState(code, types.StatusFailed, err.Error()); stErr != nil && !errors.Is(stErr, ErrConflict) {
			s.logger.Errorf("Failed to record validation failure for %s: %v", code, stErr)
		}
		s.notify(code, types.StatusFailed, err.Error())
		return err
	}

	if err := s.store.Save(code, data); err != nil {
		if errors.Is(err, ErrTooLarge) {
			s.notify(code, types.StatusFailed, err.Error())
		}
		return err
	}

	s.logger.Infof("Saved upload for shortcode %s (%d bytes)", code, len(data))
	s.notify(code, types.StatusUploaded, "")
	return nil
}

// Status reports the session state for polling clients.
func (s *Service) Status(code string) (types.SessionStatus, string, error) {
	return s.store.GetState(code)
}

// FetchResult runs detection on the uploaded image and consumes the session.
// A successful fetch deletes the record, so the result can be retrieved at
// most once. A detection failure keeps the record so the caller can inspect
// the stored reason until the session expires.
func (s *Service) FetchResult(ctx context.Context, code string) (*types.FoodDetectionResult, error) {
	status, lastErr, err := s.store.GetState(code)
	if err != nil {
		return nil, err
	}
	switch status {
	case types.StatusUploaded:
	case types.StatusAwaitingUpload:
		return nil, ErrNothingUploaded
	case types.StatusExpired:
		return nil, ErrExpired
	case types.StatusProcessing:
		return nil, fmt.Errorf("%w: result is already being processed", ErrConflict)
	case types.StatusProcessed:
		// A successful fetch deletes the record, so this branch indicates
		// a logic fault somewhere upstream.
		return nil, ErrConsumed
	case types.StatusFailed:
		if lastErr == "" {
			lastErr = "upload failed"
		}
		return nil, fmt.Errorf("%w: %s", ErrProcessingFailed, lastErr)
	}

	// Two concurrent fetches race here; the loser observes Conflict from
	// the uploaded -> processing transition check.
	if err := s.store.SetState(code, types.StatusProcessing, ""); err != nil {
		return nil, err
	}
	s.notify(code, types.StatusProcessing, "")

	data, err := s.store.Read(code)
	if err != nil {
		return nil, err
	}

	result, err := s.detector.Detect(ctx, data)
	if err != nil {
		reason := err.Error()
		if stErr := s.store.SetState(code, types.StatusFailed, reason); stErr != nil {
			s.logger.Errorf("Failed to record detection failure for %s: %v", code, stErr)
		}
		s.notify(code, types.StatusFailed, reason)
		return nil, fmt.Errorf("%w: %s", ErrProcessingFailed, reason)
	}

	if err := s.store.SetState(code, types.StatusProcessed, ""); err != nil {
		s.logger.Errorf("Failed to mark %s processed: %v", code, err)
	}
	s.store.Delete(code)
	s.notify(code, types.StatusProcessed, "")
	s.logger.Infof("Detection finished for shortcode %s: %d items", code, len(result.DetectedItems))
	return result, nil
}
