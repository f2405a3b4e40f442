package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/shared"
	csvimport "github.com/travelpkg/backend/internal/infrastructure/import"
	"github.com/travelpkg/backend/internal/infrastructure/logger"
	"github.com/travelpkg/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MaxFeedBytes caps how much of a feed object is read
const MaxFeedBytes = 32 << 20

// FeedSource defines the interface for reading raw listing feeds.
// This interface is implemented by the infrastructure layer (S3, local directory).
type FeedSource interface {
	// Open returns the content of the feed object named key.
	// A missing object is reported as a not found error.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ListingReader parses a CSV export of scraped listings
type ListingReader interface {
	Read(src io.Reader) ([]catalog.ScrapedListing, error)
}

func defaultListingReader() ListingReader {
	return csvimport.NewListingReader()
}

// ImportCSV parses a CSV export of scraped listings and ingests it keyed by id.
// Any invalid row rejects the whole file.
func (s *PackageService) ImportCSV(ctx context.Context, src io.Reader) (*IngestResult, error) {
	if err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	listings, err := s.csv.Read(src)
	if err != nil {
		return nil, err
	}
	return s.Ingest(ctx, scrapedToRaw(listings), catalog.ConflictKeyID)
}

// SyncFromFeed reads the feed object named key and resyncs the catalog from it.
// Keys ending in .csv are parsed as CSV exports, anything else as a JSON array
// of scraped listings.
func (s *PackageService) SyncFromFeed(ctx context.Context, key string) (result *IngestResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "sync_feed", telemetry.WithAttribute(telemetry.SpanAttrFeedKey, key))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if s.feed == nil {
		return nil, shared.NewDomainError("FEED_NOT_CONFIGURED", "No listing feed is configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, shared.NewValidationError("key", "feed key is required")
	}

	rc, err := s.feed.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	listings, err := s.decodeFeed(key, io.LimitReader(rc, MaxFeedBytes))
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrListingCount, len(listings))
	logger.Enrich(ctx, s.logger).Info("feed loaded", zap.String("key", key), zap.Int("listings", len(listings)))
	return s.Resync(ctx, scrapedToRaw(listings))
}

func (s *PackageService) decodeFeed(key string, r io.Reader) ([]catalog.ScrapedListing, error) {
	if strings.EqualFold(path.Ext(key), ".csv") {
		return s.csv.Read(r)
	}

	var listings []catalog.ScrapedListing
	if err := json.NewDecoder(r).Decode(&listings); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, shared.NewValidationError("feed", "feed is empty")
		}
		return nil, shared.NewValidationError("feed", "feed is not a JSON array of listings: "+err.Error())
	}
	return listings, nil
}

func scrapedToRaw(listings []catalog.ScrapedListing) []catalog.RawListing {
	raws := make([]catalog.RawListing, len(listings))
	for i, l := range listings {
		raws[i] = l
	}
	return raws
}
