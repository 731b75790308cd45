package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/havenhealth/ops-engine/api/middleware"
	"github.com/havenhealth/ops-engine/internal/auth"
	"github.com/havenhealth/ops-engine/pkg/database/queries"
	"github.com/havenhealth/ops-engine/pkg/validation"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userRepo    *queries.UserRepository
	authService *auth.Service
}

func NewAuthHandler(userRepo *queries.UserRepository, authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		userRepo:    userRepo,
		authService: authService,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	Username  string `json:"username"`
}

// Login godoc
// @Summary Authenticate user
// @Description Exchange username and password for a JWT
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse "Token issued"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 503 {object} map[string]string "Authentication unavailable"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if h.userRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "authentication requires the audit database"})
		return
	}

	req.Username = validation.SanitizeString(req.Username)
	if err := validation.ValidateUsername(req.Username); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == queries.ErrUserNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.authService.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	// Set secure HTTP-only cookie with the token
	// Cookie expires in 24 hours (same as token)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		"auth_token",   // name
		token,          // value
		86400,          // maxAge (24 hours in seconds)
		"/",            // path
		"",             // domain (empty = current domain)
		true,           // secure (HTTPS only)
		true,           // httpOnly (not accessible via JavaScript)
	)

	// Keep JSON response for backward compatibility
	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: 86400, // 24 hours
		Username:  user.Username,
	})
}

type MeResponse struct {
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Me godoc
// @Summary Current operator
// @Description Return the account behind the presented token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse "Account details"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Failure 503 {object} map[string]string "Authentication unavailable"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	if h.userRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "authentication requires the audit database"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, middleware.GetUserID(c))
	if err != nil {
		if err == queries.ErrUserNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})
}