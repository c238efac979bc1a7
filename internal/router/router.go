package router

import (
	"github.com/gin-gonic/gin"

	"formscan/internal/handler"
	"formscan/internal/middleware"
)

// Options holds the middleware settings the router needs.
type Options struct {
	AllowedOrigins  []string
	MaxPayloadBytes int64
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	opts Options,
	assessmentH *handler.AssessmentHandler,
	statsH *handler.StatsHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.BodyLimit(opts.MaxPayloadBytes))

	v1.POST("/classify", assessmentH.Classify)
	v1.GET("/stats", statsH.GetStats)

	assessments := v1.Group("/assessments")
	assessments.POST("", assessmentH.Create)
	assessments.POST("/preview", assessmentH.Preview)
	assessments.GET("", assessmentH.List)
	assessments.GET("/export", assessmentH.Export)
	assessments.GET("/:id", assessmentH.GetByID)
	assessments.PUT("/:id", assessmentH.Update)
	assessments.DELETE("/:id", assessmentH.Delete)

	return r
}
