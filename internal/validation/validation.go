// Package validation provides input validation for the VietCharm API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxStringLength is the maximum length for free-text fields
const MaxStringLength = 2000

var (
	// emailRegex is a pragmatic check, not a full RFC 5322 parser
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// phoneRegex accepts Vietnamese-style numbers with optional +84 prefix
	phoneRegex = regexp.MustCompile(`^(\+?84|0)\d{8,10}$`)
)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidEmail checks if a string looks like an email address
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsValidPhone checks if a string looks like a Vietnamese phone number
func IsValidPhone(s string) bool {
	return phoneRegex.MatchString(strings.ReplaceAll(s, " ", ""))
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	// Trim whitespace
	s = strings.TrimSpace(s)

	// Limit length
	if len(s) > maxLen {
		s = s[:maxLen]
	}

	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	return s
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// Add appends a field error and returns the updated collection.
func (e ValidationErrors) Add(field, message string) ValidationErrors {
	return append(e, ValidationError{Field: field, Message: message})
}
