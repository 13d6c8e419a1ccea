package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ScoringEvent represents a scoring lifecycle event
type ScoringEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	ImageURL       string                 `json:"image_url"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	Blurry         bool                   `json:"blurry,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of scoring event
type EventType string

const (
	// ScoringStarted when scoring begins
	ScoringStarted EventType = "scoring_started"
	// ScoringCompleted when scoring finishes successfully
	ScoringCompleted EventType = "scoring_completed"
	// ScoringFailed when scoring fails
	ScoringFailed EventType = "scoring_failed"
	// ImageFetched when image is successfully fetched
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when image fetch fails
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ScoringEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ScoringEvent)
}

// LoggingObserver logs scoring events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles scoring events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ScoringEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"image_url":       event.ImageURL,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	if event.EventType == ScoringCompleted {
		fields["blurry"] = event.Blurry
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case ScoringStarted:
		entry.Debug("Sharpness scoring started")
	case ScoringCompleted:
		entry.Info("Sharpness scoring completed")
	case ScoringFailed:
		entry.Error("Sharpness scoring failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	default:
		entry.Info("Scoring event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsSnapshot is a point-in-time copy of the collected counters
type MetricsSnapshot struct {
	TotalScorings       int64   `json:"total_scorings"`
	SuccessfulScorings  int64   `json:"successful_scorings"`
	FailedScorings      int64   `json:"failed_scorings"`
	BlurryVerdicts      int64   `json:"blurry_verdicts"`
	FetchFailures       int64   `json:"fetch_failures"`
	AvgProcessingTimeMs float64 `json:"avg_processing_time_ms"`
}

// MetricsObserver collects metrics from scoring events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalScorings       int64
	successfulScorings  int64
	failedScorings      int64
	blurryVerdicts      int64
	fetchFailures       int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles scoring events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ScoringEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ScoringStarted:
		o.totalScorings++
	case ScoringCompleted:
		o.successfulScorings++
		o.totalProcessingTime += event.ProcessingTime
		if event.Blurry {
			o.blurryVerdicts++
		}
	case ScoringFailed:
		o.failedScorings++
	case ImageFetchFailed:
		o.fetchFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot returns current metrics
func (o *MetricsObserver) Snapshot() MetricsSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var avg float64
	if o.successfulScorings > 0 {
		avg = float64(o.totalProcessingTime.Milliseconds()) / float64(o.successfulScorings)
	}

	return MetricsSnapshot{
		TotalScorings:       o.totalScorings,
		SuccessfulScorings:  o.successfulScorings,
		FailedScorings:      o.failedScorings,
		BlurryVerdicts:      o.blurryVerdicts,
		FetchFailures:       o.fetchFailures,
		AvgProcessingTimeMs: avg,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers event to every observer in its own goroutine.
// A panicking observer is logged and does not affect the others.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ScoringEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
