package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyborPunk-2077/article-scraper/internal/domain"
	"github.com/CyborPunk-2077/article-scraper/internal/logger"
	"github.com/CyborPunk-2077/article-scraper/internal/logs"
	"github.com/CyborPunk-2077/article-scraper/internal/pipeline"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
)

// recentLogLines is how many stage activity lines GetSession returns per stage.
const recentLogLines = 50

type handler struct {
	pipeline *pipeline.Pipeline
	store    storage.BlobStore
	recorder *logs.Recorder
	log      logger.Interface
}

func newHandler(deps Deps) *handler {
	return &handler{
		pipeline: deps.Pipeline,
		store:    deps.Store,
		recorder: deps.Recorder,
		log:      deps.Logger.WithComponent("api"),
	}
}

type createSessionRequest struct {
	URL         string `json:"url" binding:"required"`
	TargetCount int    `json:"target_count"`
}

// CreateSession handles POST /api/v1/sessions.
func (h *handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	id, err := h.pipeline.StartScrape(c.Request.Context(), req.URL, req.TargetCount)
	if err != nil {
		h.renderError(c, err)
		return
	}

	snap, err := h.pipeline.Status(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"session_id": id,
		"status":     snap.Status,
	})
}

// ListSessions handles GET /api/v1/sessions.
func (h *handler) ListSessions(c *gin.Context) {
	snapshots := h.pipeline.Sessions(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"sessions": snapshots,
		"total":    len(snapshots),
	})
}

// GetSession handles GET /api/v1/sessions/:id.
func (h *handler) GetSession(c *gin.Context) {
	snap, err := h.pipeline.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": snap,
		"activity": gin.H{
			"scrape":    h.recorder.Recent(logs.StageScrape, recentLogLines),
			"convert":   h.recorder.Recent(logs.StageConvert, recentLogLines),
			"summarize": h.recorder.Recent(logs.StageSummarize, recentLogLines),
		},
	})
}

// StopSession handles POST /api/v1/sessions/:id/stop.
func (h *handler) StopSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.pipeline.Stop(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}

	snap, err := h.pipeline.Status(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"session_id": id,
		"status":     snap.Status,
	})
}

// StartConvert handles POST /api/v1/sessions/:id/convert.
func (h *handler) StartConvert(c *gin.Context) {
	id := c.Param("id")
	if err := h.pipeline.StartConvert(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"session_id": id,
		"stage":      string(logs.StageConvert),
	})
}

// ConvertStatus handles GET /api/v1/sessions/:id/convert.
func (h *handler) ConvertStatus(c *gin.Context) {
	id := c.Param("id")
	snap, err := h.pipeline.Status(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": id,
		"convert":    snap.Convert,
	})
}

// StartSummarize handles POST /api/v1/sessions/:id/summaries.
func (h *handler) StartSummarize(c *gin.Context) {
	id := c.Param("id")
	if err := h.pipeline.StartSummarize(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"session_id": id,
		"stage":      string(logs.StageSummarize),
	})
}

// SummarizeStatus handles GET /api/v1/sessions/:id/summaries.
func (h *handler) SummarizeStatus(c *gin.Context) {
	id := c.Param("id")
	snap, err := h.pipeline.Status(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": id,
		"summarize":  snap.Summarize,
	})
}

// Health handles GET /health.
func (h *handler) Health(c *gin.Context) {
	if err := h.store.Healthy(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"storage": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// renderError maps pipeline errors onto HTTP statuses: unknown session 404,
// stage preconditions 409, bad input 400, everything else 500.
func (h *handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionNotReady), errors.Is(err, domain.ErrStageInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidSeed), errors.Is(err, storage.ErrUnknownRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("Request failed",
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
