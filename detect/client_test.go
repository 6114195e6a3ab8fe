package detect

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
)

func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func newInferenceStub(t *testing.T, predictions string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(predictions))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return httptest.NewServer(mux)
}

func TestDetectFiltersLowConfidence(t *testing.T) {
	srv := newInferenceStub(t, `{
		"detections": [
			{"class_name": "banana", "confidence": 0.92, "x_min": 4, "y_min": 8, "x_max": 120, "y_max": 220},
			{"class_name": "apple", "confidence": 0.12, "x_min": 0, "y_min": 0, "x_max": 10, "y_max": 10}
		]
	}`)
	defer srv.Close()

	client := NewClient(srv.URL, 0.35)
	result, err := client.Detect(context.Background(), makeJPEG(t, 320, 240))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	if len(result.DetectedItems) != 1 {
		t.Fatalf("expected 1 detection above threshold, got %d", len(result.DetectedItems))
	}
	if result.DetectedItems[0].ClassName != "banana" {
		t.Errorf("unexpected class: %s", result.DetectedItems[0].ClassName)
	}
	if result.ImageWidth != 320 || result.ImageHeight != 240 {
		t.Errorf("expected 320x240, got %dx%d", result.ImageWidth, result.ImageHeight)
	}
	if result.ProcessingTimeMs < 0 {
		t.Errorf("negative processing time: %f", result.ProcessingTimeMs)
	}
}

func TestDetectRejectsNonImagePayload(t *testing.T) {
	srv := newInferenceStub(t, `{"detections": []}`)
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	if _, err := client.Detect(context.Background(), []byte("garbage")); err == nil {
		t.Error("expected an error for undecodable payload")
	}
}

func TestDetectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	if _, err := client.Detect(context.Background(), makeJPEG(t, 16, 16)); err == nil {
		t.Error("expected an error when inference returns 500")
	}
}

func TestCheckHealth(t *testing.T) {
	srv := newInferenceStub(t, `{"detections": []}`)
	client := NewClient(srv.URL, 0)
	if err := client.CheckHealth(context.Background()); err != nil {
		t.Errorf("health check failed: %v", err)
	}

	srv.Close()
	if err := client.CheckHealth(context.Background()); err == nil {
		t.Error("expected health check to fail against a closed server")
	}
}
