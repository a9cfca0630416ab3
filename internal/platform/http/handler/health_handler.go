// Package handler provides transport-level handlers that belong to no
// single feature.
package handler

import "github.com/gin-gonic/gin"

// Health is the liveness endpoint used by the load balancer.
func Health(c *gin.Context) {
	// Make sure the response is never cached
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case "HEAD":
		c.Status(200)
	case "OPTIONS":
		c.Status(204)
	default:
		c.JSON(200, gin.H{"status": "ok"})
	}
}
