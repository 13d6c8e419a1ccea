package models

// SharpnessRequest represents a request to score one image
// Optional fields fall back to the service defaults when omitted
type SharpnessRequest struct {
	URL               string   `json:"url" binding:"required"`
	Eyes              []Eye    `json:"eyes"`
	WindowSize        *int     `json:"window_size,omitempty"`
	BlurThreshold     *float64 `json:"blur_threshold,omitempty"`
	DownscaleLongEdge *int     `json:"downscale_long_edge,omitempty"`
	SkipGlobalMetrics bool     `json:"skip_global_metrics,omitempty"`
}

// BatchRequest scores several images in one call
type BatchRequest struct {
	Items []SharpnessRequest `json:"items" binding:"required,min=1,dive"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SharpnessResponse represents the response for one scored image
type SharpnessResponse struct {
	ImageURL          string         `json:"image_url"`
	Timestamp         string         `json:"timestamp"`
	ProcessingTimeSec float64        `json:"processing_time_sec"`
	Sharpness         float64        `json:"sharpness"`
	WindowSize        int            `json:"window_size"`
	Scale             float64        `json:"scale"`
	Quality           Quality        `json:"quality"`
	Eyes              []EyeResult    `json:"eyes"`
	Global            *GlobalMetrics `json:"global,omitempty"`
	Metadata          ImageMetadata  `json:"metadata"`
	Errors            []string       `json:"errors,omitempty"`
}

// BatchItem is the outcome of one entry of a BatchRequest, in request order
type BatchItem struct {
	Index  int                `json:"index"`
	Result *SharpnessResponse `json:"result,omitempty"`
	Error  *ErrorResponse     `json:"error,omitempty"`
}

// BatchResponse represents the response for a BatchRequest
type BatchResponse struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}
