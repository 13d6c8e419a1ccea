package analyzer

import "image"

// EyeAnalyzer scores focus quality at known eye positions of a decoded image
type EyeAnalyzer interface {
	// Analyze scores img at eyes. Eye coordinates are relative to the image's
	// top-left corner, in source pixels, before any downscaling.
	Analyze(img image.Image, eyes []image.Point, options AnalysisOptions) (AnalysisResult, error)

	// Lifecycle management
	Close() error
}

// MetricsCalculator handles whole-frame focus metrics
type MetricsCalculator interface {
	CalculateLaplacianVariance(gray *image.Gray) float64
	CalculateTenengradVariance(gray *image.Gray) float64
	CalculateBrightness(gray *image.Gray) float64
}
