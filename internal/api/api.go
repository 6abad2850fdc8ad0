// Package api exposes the tool catalogue and the YTD report over HTTP.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chiesa2k/testeagent/internal/api/handlers"
	"github.com/chiesa2k/testeagent/internal/api/middleware"
	"github.com/chiesa2k/testeagent/internal/tools"
)

type Services struct {
	Tools *tools.Registry
	// Metrics receives the HTTP collectors and is served on /metrics. Nil
	// disables both.
	Metrics *prometheus.Registry
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if services != nil && services.Metrics != nil {
		router.Use(middleware.NewHTTPMetrics(services.Metrics).Handler())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(services.Metrics, promhttp.HandlerOpts{})))
	}

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Tools != nil {
		toolHandler := handlers.NewToolHandler(services.Tools)
		toolGroup := apiGroup.Group("/tools")
		{
			toolGroup.GET("", toolHandler.List)
			toolGroup.POST("/:name", toolHandler.Invoke)
		}

		reportHandler := handlers.NewReportHandler(services.Tools)
		apiGroup.GET("/reports/ytd", reportHandler.YTD)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			switch trimmed {
			case "":
			case "*":
				allowAll = true
			default:
				parsed = append(parsed, trimmed)
			}
		}
	}
	return parsed, allowAll
}
