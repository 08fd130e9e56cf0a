package delivery

import (
	"errors"
	"net/http"

	authdto "schoolapp/internal/auth/dto"
	"schoolapp/internal/auth/usecase"
	"schoolapp/internal/logout"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// Login godoc
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req authdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authUsecase.Login(c.Request.Context(), &req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Me returns the logged-in user
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, _ := c.Get("user")
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout runs the cleanup pipeline. An empty body is a quick logout.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req authdto.LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	report := h.authUsecase.Logout(c.Request.Context(), logout.Options{
		ClearDeviceToken: req.ClearDeviceToken,
		ClearAllData:     req.ClearAllData,
	})
	c.JSON(http.StatusOK, gin.H{
		"success": report.Err() == nil,
		"steps":   report.Steps,
	})
}

// RemoveStudent clears the cached data of a linked student
// DELETE /api/auth/students/:authCode
func (h *AuthHandler) RemoveStudent(c *gin.Context) {
	report, err := h.authUsecase.RemoveStudent(c.Request.Context(), c.Param("authCode"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrStudentNotLinked) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": report.Err() == nil,
		"steps":   report.Steps,
	})
}
