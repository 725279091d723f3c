package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
	"github.com/jstittsworth/streamer-hq/internal/services"
	"github.com/jstittsworth/streamer-hq/internal/streamer"
	"github.com/jstittsworth/streamer-hq/pkg/utils"
)

// StreamerHandler serves the scored streamer rankings and their inputs.
type StreamerHandler struct {
	controller *services.RefreshController
	store      services.SnapshotStore
	weeks      services.WeekResolver
	odds       streamer.OddsSource
	logger     *logrus.Logger
}

// NewStreamerHandler wires the ranking endpoints.
func NewStreamerHandler(
	controller *services.RefreshController,
	store services.SnapshotStore,
	weeks services.WeekResolver,
	odds streamer.OddsSource,
	logger *logrus.Logger,
) *StreamerHandler {
	return &StreamerHandler{
		controller: controller,
		store:      store,
		weeks:      weeks,
		odds:       odds,
		logger:     logger,
	}
}

// resolveWeek reads ?week= or falls back to the live current week.
func (h *StreamerHandler) resolveWeek(ctx context.Context, c *gin.Context) (int, error) {
	raw := c.Query("week")
	if raw == "" {
		return h.weeks.CurrentWeek(ctx)
	}
	week, err := strconv.Atoi(raw)
	if err != nil || week < 1 || week > 18 {
		return 0, fmt.Errorf("week must be 1-18, got %q", raw)
	}
	return week, nil
}

// GetStreamers handles GET /streamers?week=&mode=&pos=&force=.
func (h *StreamerHandler) GetStreamers(c *gin.Context) {
	ctx := c.Request.Context()

	week, err := h.resolveWeek(ctx, c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	mode := nfl.ParseMode(c.Query("mode"))
	force := c.Query("force") == "true"

	snap, err := h.controller.Get(ctx, week, mode, force)
	if err != nil {
		utils.SendServiceUnavailable(c, "no rankings available: "+err.Error())
		return
	}

	players := snap.Players
	if pos := c.Query("pos"); pos != "" {
		parsed, ok := nfl.ParsePosition(pos)
		if !ok {
			utils.SendBadRequest(c, fmt.Sprintf("unknown position %q", pos))
			return
		}
		filtered := make([]nfl.ScoredPlayer, 0, len(players))
		for _, p := range players {
			if p.Position == parsed {
				filtered = append(filtered, p)
			}
		}
		players = filtered
	}

	utils.SendSuccess(c, gin.H{
		"snapshot_id": snap.ID,
		"week":        snap.Week,
		"mode":        snap.Mode,
		"fetched_at":  snap.FetchedAt,
		"degraded":    snap.Degraded,
		"players":     players,
	})
}

// RefreshStreamers handles POST /streamers/refresh?week=&mode=.
func (h *StreamerHandler) RefreshStreamers(c *gin.Context) {
	ctx := c.Request.Context()

	week, err := h.resolveWeek(ctx, c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	mode := nfl.ParseMode(c.Query("mode"))

	snap, err := h.controller.Refresh(ctx, week, mode, "manual")
	if err != nil {
		utils.SendServiceUnavailable(c, "refresh failed: "+err.Error())
		return
	}
	utils.SendSuccessWithMessage(c, gin.H{
		"snapshot_id": snap.ID,
		"week":        snap.Week,
		"mode":        snap.Mode,
		"degraded":    snap.Degraded,
		"players":     len(snap.Players),
	}, "refresh complete")
}

// ExportStreamers handles GET /streamers/export: the current snapshot as CSV.
func (h *StreamerHandler) ExportStreamers(c *gin.Context) {
	ctx := c.Request.Context()

	week, err := h.resolveWeek(ctx, c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	mode := nfl.ParseMode(c.Query("mode"))

	snap, err := h.controller.Get(ctx, week, mode, false)
	if err != nil {
		utils.SendServiceUnavailable(c, "no rankings available: "+err.Error())
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="streamers-week%d-%s.csv"`, week, mode))

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"rank", "tier", "name", "team", "position", "opponent", "home", "spread", "implied", "weather", "score"})
	for _, p := range snap.Players {
		w.Write([]string{
			strconv.Itoa(p.Rank),
			p.Tier,
			p.Name,
			p.Team,
			string(p.Position),
			p.Opponent,
			strconv.FormatBool(p.IsHome),
			formatOptional(p.Spread),
			formatOptional(p.ImpliedPoints),
			p.WeatherSummary,
			strconv.FormatFloat(p.RawScore, 'f', 2, 64),
		})
	}
	w.Flush()
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// GetGames handles GET /games?week=: the matchup table both sides expanded.
func (h *StreamerHandler) GetGames(c *gin.Context) {
	ctx := c.Request.Context()

	week, err := h.resolveWeek(ctx, c)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	games, err := h.odds.WeekGames(ctx, week)
	if err != nil {
		utils.SendServiceUnavailable(c, "odds feed unavailable: "+err.Error())
		return
	}

	utils.SendSuccess(c, gin.H{
		"week":     week,
		"games":    games,
		"matchups": streamer.BuildMatchups(games),
	})
}

// GetWeek handles GET /week.
func (h *StreamerHandler) GetWeek(c *gin.Context) {
	week, err := h.weeks.CurrentWeek(c.Request.Context())
	if err != nil {
		utils.SendServiceUnavailable(c, "cannot resolve current week: "+err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"week": week})
}

// ListSnapshots handles GET /snapshots.
func (h *StreamerHandler) ListSnapshots(c *gin.Context) {
	snaps, err := h.store.List(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "cannot list snapshots: "+err.Error())
		return
	}

	out := make([]gin.H, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, gin.H{
			"id":         s.ID,
			"week":       s.Week,
			"mode":       s.Mode,
			"fetched_at": s.FetchedAt,
			"degraded":   s.Degraded,
			"players":    len(s.Players),
		})
	}
	utils.SendSuccess(c, out)
}
