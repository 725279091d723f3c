package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/jstittsworth/streamer-hq/internal/models"
	"github.com/jstittsworth/streamer-hq/internal/nfl"
	"github.com/jstittsworth/streamer-hq/internal/services"
	"github.com/jstittsworth/streamer-hq/pkg/utils"
)

// AdminHandler serves the operator surface: weight overrides, manual stat
// entries, and the refresh audit log.
type AdminHandler struct {
	weights *services.WeightService
	manual  *services.ManualStatService
	log     *services.RefreshLogService
}

// NewAdminHandler wires the operator endpoints.
func NewAdminHandler(weights *services.WeightService, manual *services.ManualStatService, log *services.RefreshLogService) *AdminHandler {
	return &AdminHandler{weights: weights, manual: manual, log: log}
}

// GetWeights handles GET /weights: the merged table plus stored overrides.
func (h *AdminHandler) GetWeights(c *gin.Context) {
	ctx := c.Request.Context()

	table, err := h.weights.Weights(ctx)
	if err != nil {
		utils.SendInternalError(c, "cannot load weights: "+err.Error())
		return
	}
	overrides, err := h.weights.Overrides(ctx)
	if err != nil {
		utils.SendInternalError(c, "cannot load weight overrides: "+err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"active": table, "overrides": overrides})
}

type putWeightsRequest struct {
	Weights   map[string]float64 `json:"weights" binding:"required"`
	UpdatedBy string             `json:"updated_by"`
}

// PutWeights handles PUT /weights/:position.
func (h *AdminHandler) PutWeights(c *gin.Context) {
	var req putWeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "invalid body: "+err.Error())
		return
	}

	position := c.Param("position")
	if err := h.weights.SetPosition(c.Request.Context(), position, req.Weights, req.UpdatedBy); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	utils.SendSuccessWithMessage(c, gin.H{"position": position}, "weights updated")
}

// ResetWeights handles DELETE /weights/:position.
func (h *AdminHandler) ResetWeights(c *gin.Context) {
	position := c.Param("position")
	if err := h.weights.ResetPosition(c.Request.Context(), position); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	utils.SendSuccessWithMessage(c, gin.H{"position": position}, "weights reset to defaults")
}

func parseWeekParam(c *gin.Context) (int, bool) {
	week, err := strconv.Atoi(c.Query("week"))
	if err != nil || week < 1 || week > 18 {
		utils.SendBadRequest(c, "week must be 1-18")
		return 0, false
	}
	return week, true
}

// GetManualStats handles GET /manual-stats?week=&mode=.
func (h *AdminHandler) GetManualStats(c *gin.Context) {
	week, ok := parseWeekParam(c)
	if !ok {
		return
	}
	rows, err := h.manual.List(c.Request.Context(), week, c.Query("mode"))
	if err != nil {
		utils.SendInternalError(c, "cannot load manual stats: "+err.Error())
		return
	}
	utils.SendSuccess(c, rows)
}

type manualStatRequest struct {
	PlayerKey string             `json:"player_key" binding:"required"`
	Week      int                `json:"week" binding:"required"`
	Mode      string             `json:"mode"`
	Position  string             `json:"position"`
	Note      string             `json:"note"`
	Stats     map[string]float64 `json:"stats" binding:"required"`
}

// PostManualStat handles POST /manual-stats: create or replace one entry.
func (h *AdminHandler) PostManualStat(c *gin.Context) {
	var req manualStatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "invalid body: "+err.Error())
		return
	}

	stats := datatypes.JSONMap{}
	for metric, v := range req.Stats {
		stats[metric] = v
	}
	entry := &models.ManualStatEntry{
		PlayerKey: req.PlayerKey,
		Week:      req.Week,
		Mode:      nfl.ParseMode(req.Mode),
		Position:  req.Position,
		Note:      req.Note,
		Stats:     stats,
	}
	if err := h.manual.Upsert(c.Request.Context(), entry); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	utils.SendCreated(c, entry)
}

// DeleteManualStat handles DELETE /manual-stats/:playerKey?week=&mode=.
func (h *AdminHandler) DeleteManualStat(c *gin.Context) {
	week, ok := parseWeekParam(c)
	if !ok {
		return
	}
	playerKey := c.Param("playerKey")
	if err := h.manual.Delete(c.Request.Context(), playerKey, week, c.Query("mode")); err != nil {
		utils.SendInternalError(c, "cannot delete manual stat: "+err.Error())
		return
	}
	utils.SendSuccessWithMessage(c, gin.H{"player_key": playerKey, "week": week}, "manual stat removed")
}

// GetRefreshLog handles GET /refresh-log?limit=.
func (h *AdminHandler) GetRefreshLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.log.Recent(c.Request.Context(), limit)
	if err != nil {
		utils.SendInternalError(c, "cannot load refresh log: "+err.Error())
		return
	}
	utils.SendSuccess(c, rows)
}
