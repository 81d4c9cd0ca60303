package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	apierrors "github.com/taskboard/taskboard-api/internal/errors"
)

// RequireProvisionKey guards the backend-privileged provisioning endpoints.
// These bypass normal client authorization, so they only answer to callers
// holding the configured service key.
func RequireProvisionKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			apierrors.NotFound(c, "")
			c.Abort()
			return
		}

		provided := c.GetHeader("X-Provision-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			apierrors.Unauthorized(c, "Invalid provisioning key")
			c.Abort()
			return
		}

		c.Next()
	}
}
