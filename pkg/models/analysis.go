package models

import "time"

// SharpnessResult is the complete result of scoring one image
// Shared by the analyzer and service layers
type SharpnessResult struct {
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`

	// Sharpness is the mean Laplacian variance over all eye windows
	Sharpness  float64 `json:"sharpness"`
	WindowSize int     `json:"window_size"`

	// Scale is the factor applied to the image (and eye coordinates) before scoring
	Scale float64 `json:"scale"`

	Eyes    []EyeResult    `json:"eyes"`
	Global  *GlobalMetrics `json:"global,omitempty"`
	Quality Quality        `json:"quality"`

	// Validation messages
	Errors []string `json:"errors,omitempty"`
}

// Eye is a pixel coordinate of an eye in the source image
type Eye struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Window is a half-open pixel region [Left, Right) x [Top, Bottom)
type Window struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// EyeResult is the per-eye breakdown of a sharpness score
type EyeResult struct {
	Eye Eye `json:"eye"`

	// Window is in analysed (possibly downscaled) pixel coordinates
	Window   Window  `json:"window"`
	Variance float64 `json:"variance"`
}

// GlobalMetrics are whole-frame focus measures used as context for the eye score
type GlobalMetrics struct {
	LaplacianVar   float64 `json:"laplacian_variance"`
	TenengradVar   float64 `json:"tenengrad_variance"`
	Brightness     float64 `json:"brightness"`
	AnalysedWidth  int     `json:"analysed_width"`
	AnalysedHeight int     `json:"analysed_height"`
}

// Quality represents the thresholded verdict
type Quality struct {
	Blurry        bool `json:"blurry"`
	OverSharpened bool `json:"over_sharpened,omitempty"`
	UnevenFocus   bool `json:"uneven_focus,omitempty"`
	IsValid       bool `json:"is_valid"`
}

// ImageMetadata contains metadata about a fetched image
type ImageMetadata struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
