package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/requestdata"
	"github.com/bookwise/backend/internal/services"
)

type InteractionHandler struct {
	log          *logger.Logger
	interactions services.InteractionService
}

func NewInteractionHandler(baseLog *logger.Logger, interactions services.InteractionService) *InteractionHandler {
	return &InteractionHandler{
		log:          baseLog.With("handler", "InteractionHandler"),
		interactions: interactions,
	}
}

type interactionRequest struct {
	BookISBN string   `json:"book_isbn" binding:"required"`
	Rating   *float64 `json:"rating"`
	Implicit bool     `json:"implicit"`
}

// POST /api/interactions
func (h *InteractionHandler) Record(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
		return
	}
	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	outcome, err := h.interactions.Record(c.Request.Context(), rd.UserID.String(), req.BookISBN, req.Rating, req.Implicit)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INTERACTION_FAILED", err)
		return
	}
	RespondOK(c, outcome)
}
