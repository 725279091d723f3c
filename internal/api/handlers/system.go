package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
	"github.com/jstittsworth/streamer-hq/internal/services"
	"github.com/jstittsworth/streamer-hq/pkg/utils"
)

// SystemHandler serves health, readiness, websocket, and cron endpoints.
type SystemHandler struct {
	breakers  *services.CircuitBreakerService
	scheduler *services.SchedulerService
	hub       *services.WebSocketHub
	weeks     services.WeekResolver
	logger    *logrus.Logger
	upgrader  websocket.Upgrader
	started   time.Time
}

// NewSystemHandler wires the operational endpoints. scheduler may be nil
// when background jobs are disabled.
func NewSystemHandler(
	breakers *services.CircuitBreakerService,
	scheduler *services.SchedulerService,
	hub *services.WebSocketHub,
	weeks services.WeekResolver,
	logger *logrus.Logger,
) *SystemHandler {
	return &SystemHandler{
		breakers:  breakers,
		scheduler: scheduler,
		hub:       hub,
		weeks:     weeks,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		started: time.Now().UTC(),
	}
}

// Health handles GET /health: liveness plus breaker state.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"uptime":     time.Since(h.started).String(),
		"breakers":   h.breakers.State(),
		"ws_clients": h.hub.ClientCount(),
	})
}

// Ready handles GET /ready: readiness gated on breaker health.
func (h *SystemHandler) Ready(c *gin.Context) {
	if err := h.breakers.Healthy(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// WebSocket handles GET /ws: upgrade and register with the hub.
func (h *SystemHandler) WebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithField("component", "websocket").WithError(err).Warn("Upgrade failed")
		return
	}
	h.hub.Register(conn)
}

// CronRefresh handles POST /cron/refresh: the external scheduler's entry
// point, equivalent to one auto-refresh tick.
func (h *SystemHandler) CronRefresh(c *gin.Context) {
	if h.scheduler == nil {
		utils.SendServiceUnavailable(c, "background jobs are disabled")
		return
	}
	if err := h.scheduler.TriggerJob("auto-refresh"); err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccessWithMessage(c, nil, "refresh triggered")
}

// CronJobs handles GET /cron/jobs: job registry state.
func (h *SystemHandler) CronJobs(c *gin.Context) {
	if h.scheduler == nil {
		utils.SendSuccess(c, []services.JobInfo{})
		return
	}
	utils.SendSuccess(c, h.scheduler.Jobs())
}

// CronWeek handles GET /cron/week: what the scheduler considers the current
// week, for debugging rollover timing.
func (h *SystemHandler) CronWeek(c *gin.Context) {
	week, err := h.weeks.CurrentWeek(c.Request.Context())
	if err != nil {
		utils.SendServiceUnavailable(c, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{
		"week":  week,
		"modes": []string{nfl.ModeWeekly, nfl.ModeROS},
	})
}
