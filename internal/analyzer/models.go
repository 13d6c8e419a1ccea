package analyzer

import (
	"go-eye-sharpness/pkg/models"
)

// AnalysisResult is an alias to the shared models.SharpnessResult
type AnalysisResult = models.SharpnessResult
