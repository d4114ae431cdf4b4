package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxIdentifierLen bounds node and chart identifiers accepted from the outside.
const maxIdentifierLen = 256

// ValidateIdentifier validates a node or chart identifier received over the
// wire. It rejects empty names, control characters and path separators so
// identifiers can be used safely in URLs, file names and storage keys.
func ValidateIdentifier(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}
	if len(id) > maxIdentifierLen {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, maxIdentifierLen)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s id contains invalid control characters", kind)
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "%s id cannot contain path separators", kind)
	}
	return nil
}

// ValidateDimension checks a width or height value.
// Dimensions must be finite and strictly positive.
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidDimension, "%s must be a finite number", name)
	}
	if v <= 0 {
		return New(ErrCodeInvalidDimension, "%s must be positive, got %g", name, v)
	}
	return nil
}
