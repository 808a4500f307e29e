// Package cache keeps extracted invoice text so repeated scans of the same
// document skip the download and the PDF parse.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// DefaultTTL bounds how long extracted text is reused.
const DefaultTTL = 5 * time.Minute

// TextCache stores extracted text by key. A miss is ("", false, nil).
type TextCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, text string) error
}

// Key derives the cache key for a document location.
func Key(location string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(location)))
	return hex.EncodeToString(sum[:])
}
