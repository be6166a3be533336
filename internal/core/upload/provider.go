package upload

import (
	"context"
	"path"
	"strings"
)

// Result describes a stored file
type Result struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Provider stores rendered report files
type Provider interface {
	// Put stores data under key, overwriting any existing object
	Put(ctx context.Context, key, contentType string, data []byte) (*Result, error)

	// Delete removes the object stored under key
	Delete(ctx context.Context, key string) error

	// GetURL returns where the object under key can be fetched
	GetURL(key string) string

	// GetProviderName returns the provider name
	GetProviderName() string
}

// cleanKey normalizes key to a relative slash-separated path that cannot
// escape the provider's root
func cleanKey(key string) string {
	key = strings.ReplaceAll(key, "\\", "/")
	key = path.Clean("/" + key)
	return strings.TrimPrefix(key, "/")
}
