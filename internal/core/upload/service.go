package upload

import (
	"context"
	"fmt"
	"strings"
)

// Settings selects and configures a provider
type Settings struct {
	Storage         string // local | s3
	LocalDir        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Prefix          string
}

// NewProvider builds the provider named by settings.Storage
func NewProvider(ctx context.Context, settings Settings) (Provider, error) {
	switch strings.ToLower(settings.Storage) {
	case "", "local":
		return NewLocalProvider(settings.LocalDir)
	case "s3":
		return NewS3Provider(ctx, settings.AccessKeyID, settings.SecretAccessKey, settings.Region, settings.Bucket, settings.Prefix)
	}
	return nil, fmt.Errorf("unsupported report storage: %s", settings.Storage)
}
