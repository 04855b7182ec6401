package handler

import (
	"context"
	"net/http"
	"time"

	"transit-settlement/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports liveness of the service and its dependencies.
// Any failing dependency degrades the response to 503.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		deps := make(map[string]string, len(checkers))

		for _, checker := range checkers {
			if err := checker.Ping(ctx); err != nil {
				deps[checker.Name()] = "down: " + err.Error()
				status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			deps[checker.Name()] = "up"
		}

		c.JSON(code, gin.H{
			"status":       status,
			"dependencies": deps,
			"time":         time.Now().UTC().Format(time.RFC3339),
		})
	}
}
