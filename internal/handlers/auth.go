package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/requestdata"
	"github.com/bookwise/backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(baseLog *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		log:         baseLog.With("handler", "AuthHandler"),
		authService: authService,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "REGISTER_FAILED", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	pair, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "LOGIN_FAILED", err)
		return
	}
	RespondOK(c, pair)
}

// POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "REFRESH_FAILED", err)
		return
	}
	RespondOK(c, pair)
}

// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
		return
	}
	if err := h.authService.Logout(c.Request.Context(), rd.TokenString); err != nil {
		RespondError(c, http.StatusInternalServerError, "LOGOUT_FAILED", err)
		return
	}
	RespondOK(c, gin.H{"status": "logged out"})
}

// GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
		return
	}
	user, err := h.authService.GetUser(c.Request.Context(), rd.UserID)
	if err != nil || user == nil {
		RespondError(c, http.StatusNotFound, "USER_NOT_FOUND", err)
		return
	}
	RespondOK(c, user)
}
