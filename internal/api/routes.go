package api

import (
	"net/http"
	"time"

	"github.com/fundlens/fundlens-go/internal/database"
	"github.com/fundlens/fundlens-go/internal/handlers"
	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Version   string       `json:"version"`
	Services  Services     `json:"services"`
	System    *SystemStats `json:"system,omitempty"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

type SystemStats struct {
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	CPUPercent        float64 `json:"cpu_percent"`
}

func SetupRoutes(router *gin.Engine, db *database.PostgresDB, redis *database.RedisClient, compliance *handlers.ComplianceHandler) {
	// Health check endpoint
	router.GET("/health", healthCheck(db, redis))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Fund catalogue
		funds := v1.Group("/funds")
		{
			funds.GET("", compliance.ListFunds)
		}

		// Compliance evaluation
		complianceGroup := v1.Group("/compliance")
		{
			complianceGroup.POST("/evaluate", compliance.EvaluateCompliance)
			complianceGroup.GET("/funds/:id", compliance.GetFundCompliance)
			complianceGroup.GET("/funds/:id/history", compliance.GetComplianceHistory)
			complianceGroup.GET("/funds/:id/alerts", compliance.GetFundAlerts)
		}

		// Analytics
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/funds/:id/metrics", compliance.GetFundMetrics)
			analytics.GET("/funds/:id/trend", compliance.GetNAVTrend)
			analytics.POST("/pror", compliance.CalculatePersonalReturn)
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
		}

		// Check database health
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}

		// Check Redis health
		if err := redis.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Redis = "error"
			response.Status = "degraded"
		}

		response.System = collectSystemStats()

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}

// collectSystemStats gathers best-effort host stats; nil when unavailable.
func collectSystemStats() *SystemStats {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil
	}
	stats := &SystemStats{MemoryUsedPercent: vm.UsedPercent}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	return stats
}
