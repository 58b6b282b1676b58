// Package document turns uploaded files into plain text for downstream
// analysis.
package document

import (
	"fmt"
	"mime"
	"strings"
)

// textTypes are the content types whose bytes are already readable text.
var textTypes = map[string]bool{
	"text/plain":       true,
	"text/markdown":    true,
	"text/csv":         true,
	"application/json": true,
}

// storedOnlyTypes are accepted for upload but carry no extractable text
// without a dedicated parser.
var storedOnlyTypes = map[string]bool{
	"application/pdf": true,
}

// NormalizeContentType strips parameters like charset from a Content-Type
// header value.
func NormalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// IsSupported reports whether uploads of this content type are accepted.
func IsSupported(contentType string) bool {
	ct := NormalizeContentType(contentType)
	return textTypes[ct] || storedOnlyTypes[ct]
}

// Extract returns the document's plain text. Stored-only types yield an
// empty string without error; callers decide how to treat a no-text upload.
func Extract(contentType string, data []byte) (string, error) {
	ct := NormalizeContentType(contentType)
	switch {
	case textTypes[ct]:
		return sanitize(string(data)), nil
	case storedOnlyTypes[ct]:
		return "", nil
	default:
		return "", fmt.Errorf("no extractor for content type %q", ct)
	}
}

// sanitize normalizes line endings and drops NUL bytes so the text is safe
// to store and prompt with.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ToValidUTF8(s, "")
	return strings.TrimSpace(s)
}
