package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/services"
)

type ModelHandler struct {
	log      *logger.Logger
	loader   services.LoaderService
	registry *services.ModelRegistry
}

func NewModelHandler(baseLog *logger.Logger, loader services.LoaderService, registry *services.ModelRegistry) *ModelHandler {
	return &ModelHandler{
		log:      baseLog.With("handler", "ModelHandler"),
		loader:   loader,
		registry: registry,
	}
}

type modelLoadRequest struct {
	Path string `json:"path"`
}

// POST /api/model/load (staff only)
//
// Rebuilds the index mappings and reloads the checkpoint, resizing it
// to the current catalog. An empty path falls back to the configured
// search paths.
func (h *ModelHandler) Load(c *gin.Context) {
	var req modelLoadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
			return
		}
	}

	var err error
	if req.Path != "" {
		err = h.loader.LoadPath(c.Request.Context(), req.Path)
	} else {
		err = h.loader.Load(c.Request.Context())
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCheckpointNotFound):
			RespondError(c, http.StatusNotFound, "CHECKPOINT_NOT_FOUND", err)
		case errors.Is(err, services.ErrCatalogEmpty):
			RespondError(c, http.StatusConflict, "CATALOG_EMPTY", err)
		default:
			RespondError(c, http.StatusInternalServerError, "MODEL_LOAD_FAILED", err)
		}
		return
	}
	RespondOK(c, gin.H{"status": "model loaded"})
}

// GET /api/model/status
func (h *ModelHandler) Status(c *gin.Context) {
	snap, err := h.registry.Current()
	if err != nil {
		RespondOK(c, gin.H{"ready": false})
		return
	}
	RespondOK(c, gin.H{
		"ready":     true,
		"num_items": snap.Mapping.NumItems(),
		"num_users": snap.Mapping.NumUsers(),
	})
}
