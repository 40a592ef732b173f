// utils/response.go
package utils

import "github.com/gin-gonic/gin"

// RespondWithError writes a uniform JSON error body.
func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// RespondWithValidationError writes field-level validation messages so the
// form can be re-rendered with errors next to each input.
func RespondWithValidationError(c *gin.Context, code int, fields map[string]string) {
	c.JSON(code, gin.H{"error": "validation failed", "fields": fields})
}
