package types

// FoodItemDetection is one detected food item with its bounding box in
// pixel coordinates of the processed image.
type FoodItemDetection struct {
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	XMin       float64 `json:"x_min"`
	YMin       float64 `json:"y_min"`
	XMax       float64 `json:"x_max"`
	YMax       float64 `json:"y_max"`
}

// FoodDetectionResult is the payload returned for a detection run.
type FoodDetectionResult struct {
	DetectedItems    []FoodItemDetection `json:"detected_items"`
	ProcessingTimeMs float64             `json:"processing_time_ms"`
	ImageWidth       int                 `json:"image_width"`
	ImageHeight      int                 `json:"image_height"`
}
