package storage

import (
	"context"
	"fmt"

	catalogapp "github.com/travelpkg/backend/internal/application/catalog"
	"github.com/travelpkg/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewFeedSource builds the feed source selected by cfg.Provider
func NewFeedSource(ctx context.Context, cfg *config.FeedConfig, logger *zap.Logger) (catalogapp.FeedSource, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3FeedSource(ctx, cfg, WithLogger(logger), WithPrefix(cfg.Prefix))
	case "local", "":
		return NewLocalFeedSource(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown feed provider %q", cfg.Provider)
	}
}
