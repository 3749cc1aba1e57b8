package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aescanero/pulse/internal/auth"
	"github.com/aescanero/pulse/pkg/domain"
	"github.com/aescanero/pulse/pkg/ports"
)

// refreshCookieName is the cookie carrying the refresh token.
const refreshCookieName = "refreshToken"

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	LastName string `json:"lastName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleRegister creates a new account
func (s *Server) handleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := s.auth.Register(c.Request.Context(), auth.RegisterInput{
		Name:     req.Name,
		LastName: req.LastName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, ports.ErrUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		s.logger.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// handleLogin verifies credentials and issues tokens. The refresh
// token travels in an httpOnly cookie scoped to the refresh endpoint.
func (s *Server) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}
		s.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.SetCookie(refreshCookieName, session.RefreshToken, int(s.refreshTTL.Seconds()), refreshCookiePath, "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"accessToken": session.AccessToken,
		"role":        session.Role,
	})
}

// handleRefresh exchanges the refresh cookie for a new access token
func (s *Server) handleRefresh(c *gin.Context) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No refresh token"})
		return
	}

	accessToken, err := s.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownRefreshToken):
			c.JSON(http.StatusForbidden, gin.H{"error": "Refresh token not found"})
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid refresh token"})
		default:
			s.logger.Error("token refresh failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

// handleLogout revokes the refresh token and clears the cookie
func (s *Server) handleLogout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)
	if err := s.auth.Logout(c.Request.Context(), token); err != nil {
		s.logger.Error("logout failed", zap.Error(err))
	}

	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// handleOAuthToken proxies an authorization-code grant to the upstream
// token endpoint
func (s *Server) handleOAuthToken(c *gin.Context) {
	var req domain.TokenExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, err := s.oauth.Exchange(c.Request.Context(), req)
	if err != nil {
		s.logger.Error("token exchange failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token exchange failed"})
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
