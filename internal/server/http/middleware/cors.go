package middleware

import "github.com/gin-gonic/gin"

// CORS allows browser clients from any origin to call the wrapped routes.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "content-type")
		c.Next()
	}
}
