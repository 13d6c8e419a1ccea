package analyzer

import (
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"go-eye-sharpness/pkg/models"
	"go-eye-sharpness/pkg/sharpness"
	"go-eye-sharpness/pkg/validation"
)

// coreAnalyzer implements EyeAnalyzer and orchestrates preprocessing, scoring
// and quality validation
type coreAnalyzer struct {
	metricsCalculator MetricsCalculator
	grayPool          sync.Pool
}

// NewEyeAnalyzer creates a new eye analyzer with all components
func NewEyeAnalyzer() EyeAnalyzer {
	return &coreAnalyzer{
		metricsCalculator: NewMetricsCalculator(),
		grayPool: sync.Pool{
			New: func() interface{} {
				return &image.Gray{}
			},
		},
	}
}

// Analyze scores img at eyes. It is safe for concurrent use.
func (ca *coreAnalyzer) Analyze(img image.Image, eyes []image.Point, options AnalysisOptions) (AnalysisResult, error) {
	start := time.Now()
	if img == nil {
		return AnalysisResult{}, fmt.Errorf("%w: nil image", sharpness.ErrInvalidParameter)
	}

	src, sx, sy := downscale(img, options.DownscaleLongEdge)
	points := scaleEyes(eyes, sx, sy)

	gray, release := ca.grayscale(src)
	defer release()

	grid := sharpness.FromGray(gray)
	variances, err := sharpness.Variances(grid, points, options.WindowSize)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("score eyes: %w", err)
	}

	var total float64
	for _, v := range variances {
		total += v
	}

	result := AnalysisResult{
		Timestamp:  start,
		Sharpness:  total / float64(len(variances)),
		WindowSize: options.WindowSize,
		Scale:      sx,
		Eyes:       make([]models.EyeResult, len(points)),
	}
	for i, p := range points {
		w := sharpness.Window(p, grid.Width(), grid.Height(), options.WindowSize)
		result.Eyes[i] = models.EyeResult{
			Eye:      models.Eye{X: p.X, Y: p.Y},
			Window:   models.Window{Left: w.Min.X, Top: w.Min.Y, Right: w.Max.X, Bottom: w.Max.Y},
			Variance: variances[i],
		}
	}

	metrics := validation.SharpnessMetrics{
		Sharpness:    result.Sharpness,
		EyeVariances: variances,
	}

	// Whole-frame metrics (skip if disabled)
	if !options.SkipGlobalMetrics {
		result.Global = &models.GlobalMetrics{
			LaplacianVar:   ca.metricsCalculator.CalculateLaplacianVariance(gray),
			TenengradVar:   ca.metricsCalculator.CalculateTenengradVariance(gray),
			Brightness:     ca.metricsCalculator.CalculateBrightness(gray),
			AnalysedWidth:  grid.Width(),
			AnalysedHeight: grid.Height(),
		}
		metrics.GlobalLaplacianVar = &result.Global.LaplacianVar
	}

	validator := validation.NewQualityValidatorWithThresholds(options.thresholds())
	issues := validator.ValidateSharpness(metrics)

	result.Quality = models.Quality{
		Blurry:        validation.HasIssue(issues, validation.IssueBlurriness),
		OverSharpened: validation.HasIssue(issues, validation.IssueOverSharpening),
		UnevenFocus:   validation.HasIssue(issues, validation.IssueUnevenFocus),
		IsValid:       !validator.HasCriticalIssues(issues),
	}
	result.Errors = validator.ConvertIssuesToMessages(issues)
	result.ProcessingTimeSec = time.Since(start).Seconds()

	return result, nil
}

// grayscale returns an 8-bit view of img. Gray inputs are used as-is; anything
// else is drawn into a pooled buffer that must be handed back via release.
func (ca *coreAnalyzer) grayscale(img image.Image) (gray *image.Gray, release func()) {
	if g, ok := img.(*image.Gray); ok {
		return g, func() {}
	}

	bounds := img.Bounds()
	rect := image.Rect(0, 0, bounds.Dx(), bounds.Dy())

	gray = ca.grayPool.Get().(*image.Gray)
	n := rect.Dx() * rect.Dy()
	if cap(gray.Pix) < n {
		gray.Pix = make([]uint8, n)
	}
	gray.Pix = gray.Pix[:n]
	gray.Stride = rect.Dx()
	gray.Rect = rect

	draw.Draw(gray, rect, img, bounds.Min, draw.Src)
	return gray, func() { ca.grayPool.Put(gray) }
}

// Close releases analyzer resources
func (ca *coreAnalyzer) Close() error {
	return nil
}
