package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalProvider writes files under a base directory
type LocalProvider struct {
	basePath string
}

func NewLocalProvider(basePath string) (*LocalProvider, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalProvider{basePath: basePath}, nil
}

func (p *LocalProvider) Put(ctx context.Context, key, contentType string, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key = cleanKey(key)
	if key == "" {
		return nil, fmt.Errorf("empty file key")
	}
	filePath := filepath.Join(p.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	// write then rename so readers never see a partial file
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("failed to move file into place: %w", err)
	}

	return &Result{Key: key, URL: p.GetURL(key), Size: int64(len(data))}, nil
}

func (p *LocalProvider) Delete(ctx context.Context, key string) error {
	filePath := filepath.Join(p.basePath, filepath.FromSlash(cleanKey(key)))
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", key)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (p *LocalProvider) GetURL(key string) string {
	return filepath.Join(p.basePath, filepath.FromSlash(cleanKey(key)))
}

func (p *LocalProvider) GetProviderName() string {
	return "Local Storage"
}
