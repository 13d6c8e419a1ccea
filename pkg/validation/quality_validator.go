package validation

import (
	"math"
)

// Issue types reported by QualityValidator
const (
	IssueBlurriness     = "blurriness"
	IssueOverSharpening = "over_sharpening"
	IssueUnevenFocus    = "uneven_focus"
	IssueMissedFocus    = "missed_focus"
	IssueSoftFrame      = "soft_frame"
)

// SharpnessThresholds defines configurable thresholds for sharpness validation
type SharpnessThresholds struct {
	// Eye score thresholds (mean windowed Laplacian variance)
	MinEyeSharpness float64
	MaxEyeSharpness float64

	// Ratio between the sharpest and softest eye above which focus is uneven
	MaxEyeImbalance float64

	// Whole-frame Laplacian variance threshold
	MinGlobalSharpness float64
}

// DefaultSharpnessThresholds returns the default sharpness thresholds
func DefaultSharpnessThresholds() SharpnessThresholds {
	return SharpnessThresholds{
		MinEyeSharpness:    100.0,  // Minimum variance for a sharp eye region
		MaxEyeSharpness:    5000.0, // Above this the region is dominated by noise or artificial sharpening
		MaxEyeImbalance:    4.0,
		MinGlobalSharpness: 50.0,
	}
}

// QualityValidator turns sharpness scores into quality issues
type QualityValidator struct {
	thresholds SharpnessThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultSharpnessThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds SharpnessThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// Thresholds returns the thresholds in use
func (qv *QualityValidator) Thresholds() SharpnessThresholds {
	return qv.thresholds
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// SharpnessMetrics represents the scores needed for validation
type SharpnessMetrics struct {
	Sharpness    float64
	EyeVariances []float64

	// GlobalLaplacianVar is nil when whole-frame metrics were skipped
	GlobalLaplacianVar *float64
}

// ValidateSharpness checks the eye score and, when available, the whole-frame score
func (qv *QualityValidator) ValidateSharpness(metrics SharpnessMetrics) []QualityIssue {
	var issues []QualityIssue

	// 1. Eye sharpness
	blurry := metrics.Sharpness <= qv.thresholds.MinEyeSharpness
	if blurry {
		issues = append(issues, QualityIssue{
			Type:        IssueBlurriness,
			Message:     "Eyes are out of focus. Hold the camera steady and focus on the face.",
			Severity:    "error",
			ActualValue: metrics.Sharpness,
			Threshold:   qv.thresholds.MinEyeSharpness,
		})
	} else if metrics.Sharpness >= qv.thresholds.MaxEyeSharpness {
		issues = append(issues, QualityIssue{
			Type:        IssueOverSharpening,
			Message:     "Eye region is noisy or artificially sharpened. Use natural lighting and avoid digital zoom.",
			Severity:    "error",
			ActualValue: metrics.Sharpness,
			Threshold:   qv.thresholds.MaxEyeSharpness,
		})
	}

	// 2. Per-eye balance
	if ratio, ok := qv.eyeImbalance(metrics.EyeVariances); ok && ratio >= qv.thresholds.MaxEyeImbalance {
		issues = append(issues, QualityIssue{
			Type:        IssueUnevenFocus,
			Message:     "Only one eye is in focus. Face the camera directly.",
			Severity:    "warning",
			ActualValue: ratio,
			Threshold:   qv.thresholds.MaxEyeImbalance,
		})
	}

	// 3. Whole frame
	if metrics.GlobalLaplacianVar != nil {
		global := *metrics.GlobalLaplacianVar
		if global < qv.thresholds.MinGlobalSharpness {
			issues = append(issues, QualityIssue{
				Type:        IssueSoftFrame,
				Message:     "The whole photo is soft. Check for motion blur or a dirty lens.",
				Severity:    "warning",
				ActualValue: global,
				Threshold:   qv.thresholds.MinGlobalSharpness,
			})
		} else if blurry {
			issues = append(issues, QualityIssue{
				Type:        IssueMissedFocus,
				Message:     "The camera focused on something other than the face.",
				Severity:    "info",
				ActualValue: global,
				Threshold:   qv.thresholds.MinGlobalSharpness,
			})
		}
	}

	return issues
}

// eyeImbalance returns max/min of the per-eye variances. It reports false
// when fewer than two eyes were scored or no eye is sharp enough to matter.
func (qv *QualityValidator) eyeImbalance(variances []float64) (float64, bool) {
	if len(variances) < 2 {
		return 0, false
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range variances {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if hi <= qv.thresholds.MinEyeSharpness {
		return 0, false
	}
	// Flat windows score 0; floor at 1 to keep the ratio finite
	return hi / math.Max(lo, 1), true
}

// ConvertIssuesToMessages converts quality issues to simple error messages
func (qv *QualityValidator) ConvertIssuesToMessages(issues []QualityIssue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any critical (error severity) issues
func (qv *QualityValidator) HasCriticalIssues(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}

// HasIssue reports whether an issue of the given type is present
func HasIssue(issues []QualityIssue, issueType string) bool {
	for _, issue := range issues {
		if issue.Type == issueType {
			return true
		}
	}
	return false
}
