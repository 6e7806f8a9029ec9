// Package validation provides input validation middleware for the ClientPulse API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (64KB). Simulation patches
// and directory queries are tiny; anything larger is not a legitimate client.
const MaxRequestSize = 64 << 10

// MaxStringLength is the maximum length for free-text string fields
const MaxStringLength = 2000

// idRegex validates prefixed resource IDs (e.g. "sim_a1b2...", "cl_meridian").
var idRegex = regexp.MustCompile(`^[a-z]+_[a-zA-Z0-9-]{1,64}$`)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IDParamMiddleware rejects requests whose :id URL parameter is not a
// well-formed resource ID. No-op when the param is absent.
func IDParamMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.Param("id"); id != "" && !IsValidID(id) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_id",
				"message": "ID must be a prefixed identifier (e.g. sim_..., cl_...)",
			})
			return
		}
		c.Next()
	}
}

// IsValidID checks if a string is a well-formed prefixed resource ID
func IsValidID(id string) bool {
	return idRegex.MatchString(id)
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.ReplaceAll(s, "\x00", "")
	return s
}
