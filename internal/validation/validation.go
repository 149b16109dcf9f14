package validation

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// ValidationError represents a structured validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects multiple field errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns ve as an error when it holds anything, nil otherwise.
func (ve *ValidationErrors) Err() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// RequireField checks a required string field is non-empty.
func RequireField(ve *ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
}

// ValidateEnum checks a field is one of allowed values.
func ValidateEnum(ve *ValidationErrors, field, value string, allowed []string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	ve.Add(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

// ValidateDate checks a field is a valid date (YYYY-MM-DD).
func ValidateDate(ve *ValidationErrors, field, value string) {
	if value == "" {
		return
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		ve.Add(field, "must be a valid date (YYYY-MM-DD)")
	}
}

// ValidatePositiveFloat checks a field is > 0.
func ValidatePositiveFloat(ve *ValidationErrors, field string, value float64) {
	if value <= 0 {
		ve.Add(field, "must be a positive number")
	}
}

// ValidateNonNegativeFloat checks a field is >= 0.
func ValidateNonNegativeFloat(ve *ValidationErrors, field string, value float64) {
	if value < 0 {
		ve.Add(field, "must be non-negative")
	}
}

// ValidatePercentage checks a value is a valid percentage (0-100).
func ValidatePercentage(ve *ValidationErrors, field string, value float64) {
	if value < 0 || value > 100 {
		ve.Add(field, "must be between 0 and 100")
	}
}

// ValidateMaxLength checks string doesn't exceed max length.
func ValidateMaxLength(ve *ValidationErrors, field, value string, max int) {
	if len(value) > max {
		ve.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

// Limits.
const (
	MaxQuantity     = 1000000.0
	MaxStringLength = 10000
	MaxPhotoBytes   = 5 * 1024 * 1024
)

// ValidateMaxQuantity checks quantity doesn't exceed reasonable maximum.
func ValidateMaxQuantity(ve *ValidationErrors, field string, value float64) {
	if value > MaxQuantity {
		ve.Add(field, fmt.Sprintf("exceeds maximum allowed quantity of %.0f", MaxQuantity))
	}
}

// ValidateImageDataURI checks that uri is a base64 data URI holding an image
// of at most maxBytes decoded bytes. Both the declared MIME type and the
// sniffed content must be image/*. It returns the decoded bytes so callers
// can digest them.
func ValidateImageDataURI(ve *ValidationErrors, field, uri string, maxBytes int) []byte {
	if uri == "" {
		ve.Add(field, "is required")
		return nil
	}
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		ve.Add(field, "must be a base64 data URI")
		return nil
	}
	mime := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if !strings.HasPrefix(strings.ToLower(mime), "image/") {
		ve.Add(field, fmt.Sprintf("must be an image (got %s)", mime))
		return nil
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+3 {
		ve.Add(field, fmt.Sprintf("exceeds maximum size of %d MB", maxBytes/(1024*1024)))
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		ve.Add(field, "has invalid base64 content")
		return nil
	}
	if len(data) == 0 {
		ve.Add(field, "cannot be empty (0 bytes)")
		return nil
	}
	if len(data) > maxBytes {
		ve.Add(field, fmt.Sprintf("exceeds maximum size of %d MB", maxBytes/(1024*1024)))
		return nil
	}
	if sniffed := http.DetectContentType(data); !strings.HasPrefix(sniffed, "image/") {
		ve.Add(field, fmt.Sprintf("content is not an image (detected %s)", sniffed))
		return nil
	}
	return data
}

// SanitizeFilename removes dangerous characters and path components.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	replacements := map[string]string{
		"..": "_", "/": "_", "\\": "_", "|": "_", "&": "_", ";": "_",
		"$": "_", "`": "_", "<": "_", ">": "_", "(": "", ")": "",
		"{": "", "}": "", "[": "", "]": "", "!": "", "*": "_", "?": "_",
		"\r": "", "\n": "", "\t": "_",
	}
	for old, new := range replacements {
		filename = strings.ReplaceAll(filename, old, new)
	}

	if len(filename) > 255 {
		ext := filepath.Ext(filename)
		nameWithoutExt := filename[:len(filename)-len(ext)]
		if len(nameWithoutExt) > 200 {
			nameWithoutExt = nameWithoutExt[:200]
		}
		filename = nameWithoutExt + ext
	}
	return filename
}
