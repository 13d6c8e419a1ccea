package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-eye-sharpness/internal/config"
	apperrors "go-eye-sharpness/internal/errors"
	"go-eye-sharpness/internal/logger"
	"go-eye-sharpness/internal/observer"
	"go-eye-sharpness/internal/service"
	"go-eye-sharpness/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

// NewHandler wires the HTTP routes. metrics may be nil, in which case
// /metrics reports an empty snapshot.
func NewHandler(svc service.SharpnessService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.New()

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", metricsSnapshot(metrics))
	r.POST("/sharpness", scoreImage(svc, cfg))
	r.POST("/sharpness/batch", scoreBatch(svc, cfg))

	return r
}

func scoreImage(svc service.SharpnessService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.SharpnessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindStatusCode(err), "invalid request format", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url":  req.URL,
			"eyes": len(req.Eyes),
		}).Debug("Scoring image")

		resp, err := svc.ScoreImage(ctx, req)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to score image", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url":                 req.URL,
			"sharpness":           resp.Sharpness,
			"blurry":              resp.Quality.Blurry,
			"processing_time_sec": resp.ProcessingTimeSec,
		}).Info("Image scored successfully")

		c.JSON(http.StatusOK, resp)
	}
}

func scoreBatch(svc service.SharpnessService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindStatusCode(err), "invalid request format", err)
			return
		}

		resp, err := svc.ScoreBatch(ctx, req.Items)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to score batch", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"items":     len(req.Items),
			"succeeded": resp.Succeeded,
			"failed":    resp.Failed,
		}).Info("Batch scored")

		c.JSON(http.StatusOK, resp)
	}
}

func metricsSnapshot(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.JSON(http.StatusOK, observer.MetricsSnapshot{})
			return
		}
		c.JSON(http.StatusOK, metrics.Snapshot())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"user_agent":  c.Request.UserAgent(),
			"ip":          c.ClientIP(),
		}).Info("Request handled")
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func bindStatusCode(err error) int {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := apperrors.As(err); ok {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
