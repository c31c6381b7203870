package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnsupportedType means the file is not an allow-listed document kind.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrNotFound means the proof reference does not resolve.
	ErrNotFound = errors.New("proof not found")
)

// Store keeps proof documents behind an opaque reference. The rest of the
// system stores and validates only the reference, never the bytes.
type Store interface {
	StoreProof(ctx context.Context, filename string, r io.Reader, size int64) (key string, err error)
	FetchProof(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteProof(ctx context.Context, key string) error
}

// allow-listed proof document kinds
var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Allowed reports whether the filename carries an allow-listed extension.
func Allowed(filename string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ContentType returns the MIME type for an allow-listed filename, or an
// empty string.
func ContentType(filename string) string {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// NewKey derives a unique storage key from the original filename: the
// sanitized base name plus a short uuid suffix, extension preserved.
func NewKey(filename string) string {
	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(base))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" {
		name = "proof"
	}
	return name + "_" + uuid.NewString()[:8] + ext
}
