package detect

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	// registered so DecodeConfig can size uploaded JPEG/PNG images
	_ "image/jpeg"
	_ "image/png"

	"github.com/bytedance/sonic"

	"github.com/nutripeek/nutripeek-go/types"
)

// DefaultConfidenceThreshold drops detections the model is unsure about.
const DefaultConfidenceThreshold = 0.35

// Client talks to the external YOLO inference service over HTTP. The
// service owns the model; we only ship bytes and filter the answer.
type Client struct {
	inferenceURL string
	threshold    float64
	httpClient   *http.Client
}

// NewClient points at the inference service base URL. threshold <= 0
// selects the default.
func NewClient(inferenceURL string, threshold float64) *Client {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Client{
		inferenceURL: inferenceURL,
		threshold:    threshold,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// inferenceResponse mirrors the wire format of the inference service.
type inferenceResponse struct {
	Detections []types.FoodItemDetection `json:"detections"`
}

// Detect posts the image as multipart form data and returns the detections
// above the confidence threshold, plus timing and image dimensions.
func (c *Client) Detect(ctx context.Context, imageData []byte) (*types.FoodDetectionResult, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.inferenceURL+"/predict", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var decoded inferenceResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	items := make([]types.FoodItemDetection, 0, len(decoded.Detections))
	for _, det := range decoded.Detections {
		if det.Confidence < c.threshold {
			continue
		}
		items = append(items, det)
	}

	return &types.FoodDetectionResult{
		DetectedItems:    items,
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
		ImageWidth:       cfg.Width,
		ImageHeight:      cfg.Height,
	}, nil
}

// CheckHealth probes the inference service.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.inferenceURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", resp.StatusCode)
	}
	return nil
}
