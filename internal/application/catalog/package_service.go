package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/identity"
	"github.com/travelpkg/backend/internal/domain/shared"
	"github.com/travelpkg/backend/internal/infrastructure/logger"
	"github.com/travelpkg/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PackageService handles catalog operations: normalization, bulk ingest,
// resync and admin CRUD
type PackageService struct {
	repo       catalog.PackageRepository
	normalizer *catalog.Normalizer
	authz      identity.Authorizer
	events     shared.EventPublisher
	feed       FeedSource
	csv        ListingReader
	logger     *zap.Logger
}

// PackageServiceOption configures a PackageService
type PackageServiceOption func(*PackageService)

// WithEventPublisher sets the publisher catalog events are sent to
func WithEventPublisher(p shared.EventPublisher) PackageServiceOption {
	return func(s *PackageService) { s.events = p }
}

// WithFeedSource enables SyncFromFeed
func WithFeedSource(f FeedSource) PackageServiceOption {
	return func(s *PackageService) { s.feed = f }
}

// WithListingReader replaces the CSV reader used by ImportCSV
func WithListingReader(r ListingReader) PackageServiceOption {
	return func(s *PackageService) { s.csv = r }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) PackageServiceOption {
	return func(s *PackageService) { s.logger = l }
}

// NewPackageService creates a new PackageService
func NewPackageService(
	repo catalog.PackageRepository,
	normalizer *catalog.Normalizer,
	authz identity.Authorizer,
	opts ...PackageServiceOption,
) *PackageService {
	s := &PackageService{
		repo:       repo,
		normalizer: normalizer,
		authz:      authz,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.csv == nil {
		s.csv = defaultListingReader()
	}
	return s
}

// Normalize converts one raw listing into its canonical form without storing it
func (s *PackageService) Normalize(raw catalog.RawListing) (*PackageResponse, error) {
	pkg, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	response := ToPackageResponse(pkg)
	return &response, nil
}

// Ingest normalizes every listing and upserts the result under key.
// The first listing that fails normalization aborts the whole batch.
func (s *PackageService) Ingest(ctx context.Context, raws []catalog.RawListing, key catalog.ConflictKey) (result *IngestResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "ingest",
		telemetry.WithAttribute(telemetry.SpanAttrListingCount, len(raws)),
		telemetry.WithAttribute(telemetry.SpanAttrConflictKey, string(key)),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if !key.IsValid() {
		return nil, shared.NewValidationError("conflictKey", "conflict key must be one of: id, slug")
	}
	pkgs, err := s.normalizeAll(raws)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return &IngestResult{ConflictKey: string(key), PackageIDs: []uuid.UUID{}}, nil
	}

	if err := s.repo.UpsertMany(ctx, pkgs, key); err != nil {
		return nil, err
	}

	// UpsertMany rewrites pkgs to the stored ids
	ids := catalog.IDs(pkgs)
	s.publish(ctx, catalog.NewPackagesUpsertedEvent(key, ids))
	logger.Enrich(ctx, s.logger).Info("packages ingested", zap.Int("count", len(pkgs)), zap.String("conflict_key", string(key)))

	return &IngestResult{Count: len(pkgs), ConflictKey: string(key), PackageIDs: ids}, nil
}

// Resync replaces the whole catalog with the given listings in one transaction.
// An empty batch is rejected so a bad feed cannot wipe the catalog.
func (s *PackageService) Resync(ctx context.Context, raws []catalog.RawListing) (result *IngestResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "resync", telemetry.WithAttribute(telemetry.SpanAttrListingCount, len(raws)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, shared.NewValidationError("listings", "resync requires at least one listing")
	}
	pkgs, err := s.normalizeAll(raws)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceAll(ctx, pkgs); err != nil {
		return nil, err
	}

	s.publish(ctx, catalog.NewCatalogResyncedEvent(len(pkgs)))
	logger.Enrich(ctx, s.logger).Info("catalog resynced", zap.Int("count", len(pkgs)))

	return &IngestResult{Count: len(pkgs), PackageIDs: catalog.IDs(pkgs)}, nil
}

// Create stores a new package from the admin form
func (s *PackageService) Create(ctx context.Context, req PackageRequest) (*PackageResponse, error) {
	if err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	pkg, err := s.normalizer.Normalize(req.ToListing())
	if err != nil {
		return nil, err
	}

	_, err = s.repo.FindByID(ctx, pkg.ID)
	switch {
	case err == nil:
		return nil, shared.NewConflictError("a package with the same source key already exists")
	case !shared.IsKind(err, shared.KindNotFound):
		return nil, err
	}

	if err := s.repo.Save(ctx, pkg); err != nil {
		return nil, err
	}

	response := ToPackageResponse(pkg)
	return &response, nil
}

// Update replaces the editable content of a package. When req.Version is set
// it must equal the stored version.
func (s *PackageService) Update(ctx context.Context, id uuid.UUID, req PackageRequest) (*PackageResponse, error) {
	if err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	pkg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != pkg.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	next, err := s.normalizer.Normalize(req.ToListing())
	if err != nil {
		return nil, err
	}
	if err := pkg.ApplyChanges(next); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, pkg); err != nil {
		return nil, err
	}
	s.publishAggregate(ctx, &pkg.BaseAggregateRoot)

	response := ToPackageResponse(pkg)
	return &response, nil
}

// Delete removes a package unless a reservation still references it
func (s *PackageService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.authz.RequireAdmin(ctx); err != nil {
		return err
	}
	pkg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	pkg.MarkDeleted()

	if err := s.repo.DeleteGuarded(ctx, id); err != nil {
		return err
	}
	s.publishAggregate(ctx, &pkg.BaseAggregateRoot)
	return nil
}

// GetByID retrieves a package by ID
func (s *PackageService) GetByID(ctx context.Context, id uuid.UUID) (*PackageResponse, error) {
	pkg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPackageResponse(pkg)
	return &response, nil
}

// GetBySlug retrieves a package by slug
func (s *PackageService) GetBySlug(ctx context.Context, slug string) (*PackageResponse, error) {
	pkg, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	response := ToPackageResponse(pkg)
	return &response, nil
}

// List retrieves packages with filtering and pagination
func (s *PackageService) List(ctx context.Context, filter PackageListFilter) ([]PackageResponse, int64, error) {
	domainFilter := toDomainFilter(filter)

	pkgs, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPackageResponses(pkgs), total, nil
}

func toDomainFilter(filter PackageListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search

	if filter.Category != "" {
		f.Filters["category"] = filter.Category
	}
	if filter.Season != "" {
		f.Filters["season"] = filter.Season
	}
	if filter.Destination != "" {
		f.Filters["destination"] = filter.Destination
	}
	if filter.Featured != nil {
		f.Filters["is_featured"] = *filter.Featured
	}
	if filter.OnSale != nil {
		f.Filters["is_on_sale"] = *filter.OnSale
	}
	if filter.MinPrice != nil {
		f.Filters["min_price"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		f.Filters["max_price"] = *filter.MaxPrice
	}
	return f
}

// normalizeAll normalizes raws in order. A failure is reported with the
// position of the offending listing prefixed to the field path.
func (s *PackageService) normalizeAll(raws []catalog.RawListing) ([]*catalog.Package, error) {
	pkgs := make([]*catalog.Package, 0, len(raws))
	for i, raw := range raws {
		pkg, err := s.normalizer.Normalize(raw)
		if err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) && de.Kind == shared.KindValidation {
				return nil, shared.NewValidationError(fmt.Sprintf("listings[%d].%s", i, de.Field), de.Message)
			}
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

func (s *PackageService) publishAggregate(ctx context.Context, agg *shared.BaseAggregateRoot) {
	s.publish(ctx, agg.GetDomainEvents()...)
	agg.ClearDomainEvents()
}

// publish sends events; a failing publisher never fails the write that produced them
func (s *PackageService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, s.logger).Warn("failed to publish catalog events", zap.Error(err))
	}
}
