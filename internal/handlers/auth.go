package handlers

import (
	"context"
	"errors"
	"net/http"

	"taskflow/internal/auth"
	"taskflow/internal/dto"
	"taskflow/internal/home"
	"taskflow/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionEnder forgets the state bound to a finished session.
type SessionEnder interface {
	EndSession(ctx context.Context, id home.Identity)
}

// AuthHandler handles login, register, logout and the current user.
type AuthHandler struct {
	sessions *auth.Store
	userSvc  *service.UserService
	ended    SessionEnder
	log      *zap.Logger
}

func NewAuthHandler(sessions *auth.Store, userSvc *service.UserService, ended SessionEnder, log *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, userSvc: userSvc, ended: ended, log: log}
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		h.log.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{Authenticated: true, ID: user.ID, Username: user.Username})
}

// Register godoc
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Credentials"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
			return
		}
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		h.log.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusCreated, dto.UserResponse{Authenticated: true, ID: user.ID, Username: user.Username})
}

// Me godoc
// @Summary      Current user (anonymous sessions keep tasks locally)
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Failure      500  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	id := auth.IdentityFromContext(c)
	user, err := h.userSvc.CurrentUser(c.Request.Context(), id.UserID)
	if err != nil {
		h.log.Error("resolve current user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, dto.UserResponse{})
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{Authenticated: true, ID: user.ID, Username: user.Username})
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	id := auth.IdentityFromContext(c)
	if id.SessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), id.SessionID)
		h.ended.EndSession(c.Request.Context(), id)
	}
	auth.SetSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// startSession replaces the request's session with one bound to userID.
func (h *AuthHandler) startSession(c *gin.Context, userID int64) bool {
	old := auth.IdentityFromContext(c)
	sessionID, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("create session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return false
	}
	if old.SessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), old.SessionID)
		h.ended.EndSession(c.Request.Context(), old)
	}
	auth.SetSessionCookie(c, sessionID, int(h.sessions.TTL().Seconds()))
	return true
}
