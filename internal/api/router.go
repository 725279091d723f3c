package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/streamer-hq/internal/api/handlers"
	"github.com/jstittsworth/streamer-hq/internal/api/middleware"
	"github.com/jstittsworth/streamer-hq/pkg/config"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Streamers *handlers.StreamerHandler
	Admin     *handlers.AdminHandler
	System    *handlers.SystemHandler
}

// NewRouter assembles the gin engine with middleware and all routes.
func NewRouter(cfg *config.Config, h Handlers, logger *logrus.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CorsOrigins))

	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	r.GET("/ws", h.System.WebSocket)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/streamers", h.Streamers.GetStreamers)
		v1.POST("/streamers/refresh", middleware.CronAuth(cfg.CronSecret), h.Streamers.RefreshStreamers)
		v1.GET("/export", h.Streamers.ExportStreamers)
		v1.GET("/games", h.Streamers.GetGames)
		v1.GET("/week", h.Streamers.GetWeek)
		v1.GET("/snapshots", h.Streamers.ListSnapshots)

		v1.GET("/weights", h.Admin.GetWeights)
		v1.PUT("/weights/:position", h.Admin.PutWeights)
		v1.DELETE("/weights/:position", h.Admin.ResetWeights)

		v1.GET("/manual-stats", h.Admin.GetManualStats)
		v1.POST("/manual-stats", h.Admin.PostManualStat)
		v1.DELETE("/manual-stats/:playerKey", h.Admin.DeleteManualStat)

		v1.GET("/refresh-log", h.Admin.GetRefreshLog)

		cron := v1.Group("/cron", middleware.CronAuth(cfg.CronSecret))
		{
			cron.POST("/refresh", h.System.CronRefresh)
			cron.GET("/jobs", h.System.CronJobs)
			cron.GET("/week", h.System.CronWeek)
		}
	}

	return r
}
