package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-growth-analyzer/internal/config"
	apperrors "go-growth-analyzer/internal/errors"
	"go-growth-analyzer/internal/logger"
	"go-growth-analyzer/internal/observer"
	"go-growth-analyzer/internal/service"
	"go-growth-analyzer/pkg/models"
	"go-growth-analyzer/pkg/services"
)

// NewHandler builds the HTTP surface: health, the analysis endpoints, and
// the history/timeline views the web client charts.
func NewHandler(growth service.GrowthAnalysisService, stats *observer.StatsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)

	api := r.Group("/api")
	{
		api.POST("/upload", uploadImages(growth))
		api.POST("/analyze", analyzeGrowth(growth, cfg))
		api.POST("/analyze/session/:session_id", analyzeSession(growth, cfg))
		api.GET("/metrics/:analysis_id", getAnalysis(growth))
		api.GET("/history", getHistory(growth))
		api.GET("/timeline", getTimeline(growth))
		api.GET("/stats", getStats(stats))
	}

	return r
}

func analyzeGrowth(growth service.GrowthAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.AnalysisTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing growth analysis request")

		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "both beforeImage and afterImage are required", err)
			return
		}

		result, err := growth.AnalyzeGrowth(ctx, req)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"plant_id": req.PlantID,
				"ip":       c.ClientIP(),
			}).Error("Growth analysis failed")
			respondError(c, determineStatusCode(err), "growth analysis failed", err)
			return
		}

		duration := time.Since(startTime)
		logger.WithFields(logrus.Fields{
			"analysis_id":        result.AnalysisID,
			"plant_id":           req.PlantID,
			"growth_score":       result.GrowthScore,
			"processing_time_ms": duration.Milliseconds(),
		}).Info("Growth analysis completed successfully")

		c.JSON(http.StatusOK, result)
	}
}

func analyzeSession(growth service.GrowthAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.AnalysisTimeout)
		defer cancel()

		result, err := growth.AnalyzeSession(ctx, c.Param("session_id"))
		if err != nil {
			respondError(c, determineStatusCode(err), "growth analysis failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func uploadImages(growth service.GrowthAnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "both beforeImage and afterImage are required", err)
			return
		}

		session, err := growth.SaveUpload(c.Request.Context(), req)
		if err != nil {
			respondError(c, determineStatusCode(err), "upload failed", err)
			return
		}

		c.JSON(http.StatusOK, models.UploadResponse{
			Message:   "Images uploaded successfully",
			SessionID: session.SessionID,
			Timestamp: session.Timestamp.Format(time.RFC3339),
		})
	}
}

func getAnalysis(growth service.GrowthAnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := growth.GetAnalysis(c.Request.Context(), c.Param("analysis_id"))
		if err != nil {
			respondError(c, determineStatusCode(err), "analysis not found", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getHistory(growth service.GrowthAnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		history, err := growth.GetHistory(c.Request.Context(), c.Query("plant_id"))
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to load history", err)
			return
		}
		c.JSON(http.StatusOK, models.HistoryResponse{Analyses: history})
	}
}

func getTimeline(growth service.GrowthAnalysisService) gin.HandlerFunc {
	timeline := services.NewTimelineService()
	return func(c *gin.Context) {
		plantID := c.Query("plant_id")
		history, err := growth.GetHistory(c.Request.Context(), plantID)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to load history", err)
			return
		}
		c.JSON(http.StatusOK, models.TimelineResponse{
			PlantID: plantID,
			Entries: timeline.BuildTimeline(history),
		})
	}
}

func getStats(stats *observer.StatsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, stats.GetStats())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
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

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

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
