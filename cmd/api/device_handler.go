package api

import (
	"context"
	"net/http"

	"schoolapp/internal/device"
	"schoolapp/internal/device/permission"

	"github.com/gin-gonic/gin"
)

// TokenManager is satisfied by *token.Manager.
type TokenManager interface {
	Cached(ctx context.Context) string
	Refresh(ctx context.Context, token string)
}

// DeviceHandler reports and drives the device's push state.
type DeviceHandler struct {
	messaging device.Messaging
	flow      *permission.Flow
	tokens    TokenManager
}

func NewDeviceHandler(messaging device.Messaging, flow *permission.Flow, tokens TokenManager) *DeviceHandler {
	return &DeviceHandler{messaging: messaging, flow: flow, tokens: tokens}
}

// DeviceStatus is the response of GET /api/device
type DeviceStatus struct {
	Platform         device.Platform            `json:"platform"`
	Token            string                     `json:"token,omitempty"`
	Permission       device.AuthorizationStatus `json:"permission"`
	HasAskedForPerms bool                       `json:"hasAskedForNotificationPermission"`
}

// RefreshTokenRequest carries a token rotated by the platform
type RefreshTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// GetStatus returns the current device push state
// GET /api/device
func (h *DeviceHandler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	status, err := h.messaging.PermissionStatus(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	asked, err := h.flow.HasAsked(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, DeviceStatus{
		Platform:         h.messaging.Platform(),
		Token:            h.tokens.Cached(ctx),
		Permission:       status,
		HasAskedForPerms: asked,
	})
}

// RunPermissionFlow runs the notification permission flow
// POST /api/device/permission
func (h *DeviceHandler) RunPermissionFlow(c *gin.Context) {
	result := h.flow.Run(c.Request.Context())
	status := http.StatusOK
	if result == permission.ResultFailed {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"result": result})
}

// RefreshToken stores a token rotated by the platform
// PUT /api/device/token
func (h *DeviceHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.tokens.Refresh(c.Request.Context(), req.Token)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
