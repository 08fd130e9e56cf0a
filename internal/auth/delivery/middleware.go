package delivery

import (
	"errors"
	"net/http"

	"schoolapp/internal/auth/usecase"
	"schoolapp/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionMiddleware rejects requests when nobody is logged in on the device.
func SessionMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authUsecase.CurrentUser(c.Request.Context())
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, session.ErrNoSession) || errors.Is(err, usecase.ErrSessionExpired) {
				status = http.StatusUnauthorized
			}
			c.JSON(status, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
