package analyzer

import (
	"go-eye-sharpness/pkg/sharpness"
	"go-eye-sharpness/pkg/validation"
)

// AnalysisOptions provides flexible configuration for eye sharpness analysis
type AnalysisOptions struct {
	// Window side in analysed pixels, shared by every eye
	WindowSize int

	// Scores at or below BlurThreshold are reported as blurry
	BlurThreshold float64

	// Proportionally shrink the image so its long edge is at most this many
	// pixels before scoring; 0 disables downscaling
	DownscaleLongEdge int

	// Feature toggles
	SkipGlobalMetrics bool
}

// DefaultOptions returns default analysis options
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		WindowSize:        sharpness.DefaultWindowSize,
		BlurThreshold:     100.0,
		DownscaleLongEdge: 0,
		SkipGlobalMetrics: false,
	}
}

// FastOptions returns options for high-throughput scoring
func FastOptions() AnalysisOptions {
	opts := DefaultOptions()
	opts.DownscaleLongEdge = 800
	opts.WindowSize = 64
	opts.SkipGlobalMetrics = true
	return opts
}

// StrictOptions returns options for strict acceptance, e.g. ID photos
func StrictOptions() AnalysisOptions {
	opts := DefaultOptions()
	opts.BlurThreshold = 300.0
	return opts
}

// WithWindowSize sets the window side
func (opts AnalysisOptions) WithWindowSize(windowSize int) AnalysisOptions {
	opts.WindowSize = windowSize
	return opts
}

// WithBlurThreshold sets the blur threshold
func (opts AnalysisOptions) WithBlurThreshold(threshold float64) AnalysisOptions {
	opts.BlurThreshold = threshold
	return opts
}

// WithDownscale sets the long edge limit applied before scoring
func (opts AnalysisOptions) WithDownscale(longEdge int) AnalysisOptions {
	opts.DownscaleLongEdge = longEdge
	return opts
}

// WithoutGlobalMetrics disables whole-frame metrics
func (opts AnalysisOptions) WithoutGlobalMetrics() AnalysisOptions {
	opts.SkipGlobalMetrics = true
	return opts
}

// thresholds derives validator thresholds from the options
func (opts AnalysisOptions) thresholds() validation.SharpnessThresholds {
	th := validation.DefaultSharpnessThresholds()
	th.MinEyeSharpness = opts.BlurThreshold
	return th
}
