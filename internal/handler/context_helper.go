package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workbridge/ims-api/internal/middleware"
	"github.com/workbridge/ims-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// dateQuery parses a YYYY-MM-DD query parameter, defaulting to now when
// absent. The bool reports whether the value parsed.
func dateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Now(), true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
