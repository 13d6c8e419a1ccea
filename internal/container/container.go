package container

import (
	"fmt"
	"net/http"

	"go-eye-sharpness/internal/analyzer"
	"go-eye-sharpness/internal/config"
	"go-eye-sharpness/internal/factory"
	"go-eye-sharpness/internal/logger"
	"go-eye-sharpness/internal/observer"
	"go-eye-sharpness/internal/repository"
	"go-eye-sharpness/internal/service"
	"go-eye-sharpness/internal/storage"
	"go-eye-sharpness/internal/transport"
	"go-eye-sharpness/pkg/validation"

	"github.com/sirupsen/logrus"
)

// storageSources maps factory storage types to repository sources
var storageSources = map[factory.StorageType]repository.Source{
	factory.HTTPStorage:  repository.SourceHTTP,
	factory.AzureStorage: repository.SourceAzure,
	factory.LocalStorage: repository.SourceLocal,
}

// Container holds all application dependencies
type Container struct {
	config           *config.Config
	eyeAnalyzer      analyzer.EyeAnalyzer
	workerPool       *analyzer.WorkerPool
	imageRepository  repository.ImageRepository
	metrics          *observer.MetricsObserver
	sharpnessService service.SharpnessService
	handler          http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	logger.SetLevel(cfg.LogLevel)

	// Build image sources from configuration
	storageFactory := factory.NewStorageFactory(cfg)
	fetchers := make(map[repository.Source]storage.ImageFetcher)
	for _, st := range storageFactory.Enabled() {
		fetcher, err := storageFactory.CreateStorage(st)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s storage: %w", st, err)
		}
		fetchers[storageSources[st]] = fetcher
	}

	imageRepository, err := repository.NewRoutingImageRepository(validation.NewURLValidator(), fetchers)
	if err != nil {
		return nil, fmt.Errorf("failed to create image repository: %w", err)
	}

	// Observers
	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	eyeAnalyzer := analyzer.NewEyeAnalyzer()
	workerPool := analyzer.NewWorkerPool(cfg.MaxWorkers)
	workerPool.Start()

	defaults := analyzer.DefaultOptions().
		WithWindowSize(cfg.DefaultWindowSize).
		WithBlurThreshold(cfg.BlurThreshold).
		WithDownscale(cfg.DownscaleLongEdge)

	sharpnessService := service.NewSharpnessService(imageRepository, eyeAnalyzer, workerPool, events, service.Options{
		Defaults:        defaults,
		AnalysisTimeout: cfg.AnalysisTimeout,
		MaxBatchSize:    cfg.MaxBatchSize,
	})
	handler := transport.NewHandler(sharpnessService, metrics, cfg)

	logger.WithFields(logrus.Fields{
		"sources":     storageFactory.Enabled(),
		"workers":     workerPool.Workers(),
		"window_size": cfg.DefaultWindowSize,
	}).Info("Container initialized")

	return &Container{
		config:           cfg,
		eyeAnalyzer:      eyeAnalyzer,
		workerPool:       workerPool,
		imageRepository:  imageRepository,
		metrics:          metrics,
		sharpnessService: sharpnessService,
		handler:          handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the worker pool and analyzer
func (c *Container) Close() error {
	c.workerPool.Close()
	return c.eyeAnalyzer.Close()
}
