package api

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CyborPunk-2077/article-scraper/internal/storage"
)

// ListArtifacts handles GET /api/v1/artifacts/:role with optional session
// and prefix query filters.
func (h *handler) ListArtifacts(c *gin.Context) {
	role := c.Param("role")
	if !storage.ValidRole(role) {
		h.renderError(c, fmt.Errorf("%w: %q", storage.ErrUnknownRole, role))
		return
	}

	prefix := c.Query("prefix")
	if sess := c.Query("session"); sess != "" {
		prefix = sess + "/" + prefix
	}

	keys, err := h.store.List(c.Request.Context(), storage.Role(role), prefix)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":  role,
		"keys":  keys,
		"total": len(keys),
	})
}

// DownloadArtifact handles GET /api/v1/artifacts/:role/*key, streaming the
// object with the content type its filename implies.
func (h *handler) DownloadArtifact(c *gin.Context) {
	role := c.Param("role")
	if !storage.ValidRole(role) {
		h.renderError(c, fmt.Errorf("%w: %q", storage.ErrUnknownRole, role))
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	data, err := h.store.Get(c.Request.Context(), storage.Role(role), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
			return
		}
		h.renderError(c, err)
		return
	}

	c.Data(http.StatusOK, storage.ContentTypeFor(path.Base(key)), data)
}
