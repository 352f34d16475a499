package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xmer/fitgirl-rss-reader/app/control"
)

const (
	defaultReleaseLimit = 20
	maxReleaseLimit     = 200
	maxBodyBytes        = 64 << 10
)

// NewHandler builds the API handler. journal may be nil when the release
// journal is disabled.
func NewHandler(poller Poller, seen SeenState, journal ReleaseJournal, reset ResetHandler,
	refresh RefreshHandler, serviceName, version string) *Handler {
	return &Handler{
		poller:      poller,
		seen:        seen,
		journal:     journal,
		reset:       reset,
		refresh:     refresh,
		serviceName: serviceName,
		version:     version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	health := map[string]interface{}{
		"status":    "ok",
		"service":   h.serviceName,
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"polling":   h.pollingStatus(),
	}

	status := http.StatusOK
	if err := h.seen.Ping(ctx); err != nil {
		slog.Warn("Health check failed", "component", "redis", "error", err)
		health["status"] = "degraded"
		health["redis"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
		status = http.StatusServiceUnavailable
	} else {
		redis := map[string]interface{}{"status": "healthy"}
		if count, err := h.seen.Count(ctx); err == nil {
			redis["seen_count"] = count
		}
		health["redis"] = redis
	}

	c.JSON(status, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats := map[string]interface{}{
		"polling": h.pollingStatus(),
	}

	if count, err := h.seen.Count(ctx); err == nil {
		stats["seen_count"] = count
	} else {
		slog.Error("Redis error", "operation", "count_seen", "error", err)
	}

	if h.journal != nil {
		journalStats, err := h.journal.GetStats(ctx)
		if err != nil {
			slog.Error("Database error", "operation", "get_stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		stats["journal"] = journalStats
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListReleases(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Release journal disabled"})
		return
	}

	limit := defaultReleaseLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxReleaseLimit)
	}

	releases, err := h.journal.GetRecentReleases(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_releases", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"releases": releases,
		"total":    len(releases),
	})
}

func (h *Handler) APITriggerPoll(c *gin.Context) {
	if !h.poller.Trigger() {
		c.JSON(http.StatusConflict, gin.H{"error": "Poll cycle already running"})
		return
	}

	slog.Info("Manual poll triggered", "client_ip", c.ClientIP())
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (h *Handler) APIReset(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	msg, err := control.DecodeReset(body, h.serviceName)
	if err != nil {
		respondError(c, err)
		return
	}

	cleared, err := h.reset.HandleReset(c.Request.Context(), msg)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

func (h *Handler) APIRefresh(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	msg, err := control.DecodeRefresh(body)
	if err != nil {
		respondError(c, err)
		return
	}

	enriched, err := h.refresh.HandleRefresh(c.Request.Context(), msg)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, enriched)
}

func (h *Handler) pollingStatus() map[string]interface{} {
	status := map[string]interface{}{
		"in_flight": h.poller.InFlight(),
		"skipped":   h.poller.Skipped(),
	}
	if last, ok := h.poller.LastCycle(); ok {
		status["last_cycle"] = last
	}
	return status
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return nil, false
	}
	return body, true
}

func respondError(c *gin.Context, err error) {
	var validationErr *control.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
		return
	}

	slog.Error("Control request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
