package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"sync"
	"time"

	"go-eye-sharpness/internal/analyzer"
	apperrors "go-eye-sharpness/internal/errors"
	"go-eye-sharpness/internal/observer"
	"go-eye-sharpness/internal/repository"
	"go-eye-sharpness/pkg/models"
	"go-eye-sharpness/pkg/sharpness"
)

// SharpnessService scores eye sharpness for referenced images
type SharpnessService interface {
	// ScoreImage fetches and scores one image
	ScoreImage(ctx context.Context, req models.SharpnessRequest) (*models.SharpnessResponse, error)

	// ScoreBatch scores every item on the worker pool. Items fail
	// independently and are returned in request order.
	ScoreBatch(ctx context.Context, reqs []models.SharpnessRequest) (*models.BatchResponse, error)

	// Common validation
	ValidateImageURL(imageURL string) error
}

// Options configures a SharpnessService
type Options struct {
	// Defaults apply to every request field left unset
	Defaults        analyzer.AnalysisOptions
	AnalysisTimeout time.Duration
	MaxBatchSize    int
}

// sharpnessService implements SharpnessService
type sharpnessService struct {
	imageRepo repository.ImageRepository
	analyzer  analyzer.EyeAnalyzer
	pool      *analyzer.WorkerPool
	events    observer.Subject
	opts      Options
}

// NewSharpnessService creates a new sharpness service. pool must be started;
// events may be nil.
func NewSharpnessService(
	imageRepository repository.ImageRepository,
	eyeAnalyzer analyzer.EyeAnalyzer,
	pool *analyzer.WorkerPool,
	events observer.Subject,
	opts Options,
) SharpnessService {
	return &sharpnessService{
		imageRepo: imageRepository,
		analyzer:  eyeAnalyzer,
		pool:      pool,
		events:    events,
		opts:      opts,
	}
}

// ValidateImageURL validates the image URL
func (s *sharpnessService) ValidateImageURL(imageURL string) error {
	return s.imageRepo.ValidateImageURL(imageURL)
}

// ScoreImage fetches and scores one image, publishing lifecycle events
func (s *sharpnessService) ScoreImage(ctx context.Context, req models.SharpnessRequest) (*models.SharpnessResponse, error) {
	start := time.Now()
	s.publish(ctx, observer.ScoringEvent{EventType: observer.ScoringStarted, ImageURL: req.URL})

	resp, err := s.score(ctx, req)
	if err != nil {
		s.publish(ctx, observer.ScoringEvent{
			EventType:      observer.ScoringFailed,
			ImageURL:       req.URL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	s.publish(ctx, observer.ScoringEvent{
		EventType:      observer.ScoringCompleted,
		ImageURL:       req.URL,
		ProcessingTime: time.Since(start),
		Success:        true,
		Blurry:         resp.Quality.Blurry,
		Metadata:       map[string]interface{}{"sharpness": resp.Sharpness, "eyes": len(resp.Eyes)},
	})
	return resp, nil
}

func (s *sharpnessService) score(ctx context.Context, req models.SharpnessRequest) (*models.SharpnessResponse, error) {
	if err := s.ValidateImageURL(req.URL); err != nil {
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}

	options, err := s.optionsFor(req)
	if err != nil {
		return nil, err
	}

	// Reject what the scorer would reject before paying for a download
	if options.WindowSize < sharpness.MinWindowSize {
		return nil, apperrors.NewValidationError("invalid window size", sharpness.ErrWindowTooSmall)
	}
	if len(req.Eyes) == 0 {
		return nil, apperrors.NewValidationError("no eye coordinates", sharpness.ErrNoCoordinates)
	}

	source, err := s.imageRepo.SourceOf(req.URL)
	if err != nil {
		return nil, classifyFetchError(err)
	}

	fetchStart := time.Now()
	img, err := s.imageRepo.FetchImage(ctx, req.URL)
	if err != nil {
		s.publish(ctx, observer.ScoringEvent{
			EventType:      observer.ImageFetchFailed,
			ImageURL:       req.URL,
			ProcessingTime: time.Since(fetchStart),
			ErrorMessage:   err.Error(),
		})
		return nil, classifyFetchError(err)
	}
	s.publish(ctx, observer.ScoringEvent{
		EventType:      observer.ImageFetched,
		ImageURL:       req.URL,
		ProcessingTime: time.Since(fetchStart),
		Success:        true,
		Metadata:       map[string]interface{}{"source": string(source)},
	})

	eyes := make([]image.Point, len(req.Eyes))
	for i, e := range req.Eyes {
		eyes[i] = image.Point{X: e.X, Y: e.Y}
	}

	result, err := s.analyze(ctx, img, eyes, options)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &models.SharpnessResponse{
		ImageURL:          req.URL,
		Timestamp:         result.Timestamp.Format(time.RFC3339),
		ProcessingTimeSec: result.ProcessingTimeSec,
		Sharpness:         result.Sharpness,
		WindowSize:        result.WindowSize,
		Scale:             result.Scale,
		Quality:           result.Quality,
		Eyes:              result.Eyes,
		Global:            result.Global,
		Metadata: models.ImageMetadata{
			Source: string(source),
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		},
		Errors: result.Errors,
	}, nil
}

// analyze runs the analyzer under the analysis timeout
func (s *sharpnessService) analyze(ctx context.Context, img image.Image, eyes []image.Point, options analyzer.AnalysisOptions) (analyzer.AnalysisResult, error) {
	if s.opts.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.AnalysisTimeout)
		defer cancel()
	}

	type outcome struct {
		result analyzer.AnalysisResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := s.analyzer.Analyze(img, eyes, options)
		done <- outcome{result, err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, sharpness.ErrInvalidParameter) {
				return analyzer.AnalysisResult{}, apperrors.NewValidationError("invalid scoring parameters", out.err)
			}
			return analyzer.AnalysisResult{}, apperrors.NewProcessingError("sharpness scoring failed", out.err)
		}
		return out.result, nil
	case <-ctx.Done():
		return analyzer.AnalysisResult{}, apperrors.NewTimeoutError("sharpness scoring timed out", ctx.Err())
	}
}

// optionsFor overlays request overrides on the service defaults
func (s *sharpnessService) optionsFor(req models.SharpnessRequest) (analyzer.AnalysisOptions, error) {
	options := s.opts.Defaults
	if req.WindowSize != nil {
		options = options.WithWindowSize(*req.WindowSize)
	}
	if req.BlurThreshold != nil {
		if *req.BlurThreshold < 0 {
			return options, apperrors.NewValidationError(fmt.Sprintf("blur_threshold must be >= 0 (got %g)", *req.BlurThreshold), nil)
		}
		options = options.WithBlurThreshold(*req.BlurThreshold)
	}
	if req.DownscaleLongEdge != nil {
		if *req.DownscaleLongEdge < 0 {
			return options, apperrors.NewValidationError(fmt.Sprintf("downscale_long_edge must be >= 0 (got %d)", *req.DownscaleLongEdge), nil)
		}
		options = options.WithDownscale(*req.DownscaleLongEdge)
	}
	if req.SkipGlobalMetrics {
		options = options.WithoutGlobalMetrics()
	}
	return options, nil
}

// ScoreBatch fans items out on the worker pool and waits for all of them
func (s *sharpnessService) ScoreBatch(ctx context.Context, reqs []models.SharpnessRequest) (*models.BatchResponse, error) {
	if len(reqs) == 0 {
		return nil, apperrors.NewValidationError("batch must contain at least one item", nil)
	}
	if s.opts.MaxBatchSize > 0 && len(reqs) > s.opts.MaxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("batch of %d items exceeds the limit of %d", len(reqs), s.opts.MaxBatchSize), nil)
	}

	items := make([]models.BatchItem, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		i, req := i, req
		wg.Add(1)
		s.pool.Submit(func() {
			defer wg.Done()
			items[i] = s.scoreItem(ctx, i, req)
		})
	}
	wg.Wait()

	resp := &models.BatchResponse{Items: items}
	for _, item := range items {
		if item.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	return resp, nil
}

func (s *sharpnessService) scoreItem(ctx context.Context, index int, req models.SharpnessRequest) models.BatchItem {
	result, err := s.ScoreImage(ctx, req)
	if err != nil {
		code := apperrors.GetStatusCode(err)
		return models.BatchItem{
			Index: index,
			Error: &models.ErrorResponse{Error: http.StatusText(code), Message: err.Error()},
		}
	}
	return models.BatchItem{Index: index, Result: result}
}

// classifyFetchError maps repository failures to application errors
func classifyFetchError(err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timed out", err)
	case errors.Is(err, repository.ErrImageNotFound):
		return apperrors.NewNotFoundError("image not found", err)
	case errors.Is(err, repository.ErrSourceUnavailable), errors.Is(err, repository.ErrInvalidImageURL):
		return apperrors.NewValidationError("image source not available", err)
	case errors.Is(err, image.ErrFormat):
		return apperrors.NewProcessingError("unsupported image format", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}

func (s *sharpnessService) publish(ctx context.Context, event observer.ScoringEvent) {
	if s.events == nil {
		return
	}
	event.Timestamp = time.Now()
	s.events.NotifyObservers(ctx, event)
}
