package catalog

import (
	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypePackage = "Package"
	AggregateTypeCatalog = "Catalog"
)

// Event type constants
const (
	EventTypePackageUpdated   = "PackageUpdated"
	EventTypePackageDeleted   = "PackageDeleted"
	EventTypePackagesUpserted = "PackagesUpserted"
	EventTypeCatalogResynced  = "CatalogResynced"
)

// PackageUpdatedEvent is published when an admin edits a package
type PackageUpdatedEvent struct {
	shared.BaseDomainEvent
	PackageID uuid.UUID `json:"package_id"`
	Slug      string    `json:"slug"`
	Price     int64     `json:"price"`
	Version   int       `json:"version"`
}

// NewPackageUpdatedEvent creates a new PackageUpdatedEvent
func NewPackageUpdatedEvent(p *Package) *PackageUpdatedEvent {
	return &PackageUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePackageUpdated, AggregateTypePackage, p.ID),
		PackageID:       p.ID,
		Slug:            p.Slug,
		Price:           p.Price,
		Version:         p.Version,
	}
}

// PackageDeletedEvent is published after a guarded delete succeeds
type PackageDeletedEvent struct {
	shared.BaseDomainEvent
	PackageID uuid.UUID `json:"package_id"`
	Slug      string    `json:"slug"`
}

// NewPackageDeletedEvent creates a new PackageDeletedEvent
func NewPackageDeletedEvent(id uuid.UUID, slug string) *PackageDeletedEvent {
	return &PackageDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePackageDeleted, AggregateTypePackage, id),
		PackageID:       id,
		Slug:            slug,
	}
}

// PackagesUpsertedEvent is published after a bulk ingest
type PackagesUpsertedEvent struct {
	shared.BaseDomainEvent
	ConflictKey ConflictKey `json:"conflict_key"`
	PackageIDs  []uuid.UUID `json:"package_ids"`
}

// NewPackagesUpsertedEvent creates a new PackagesUpsertedEvent
func NewPackagesUpsertedEvent(key ConflictKey, ids []uuid.UUID) *PackagesUpsertedEvent {
	return &PackagesUpsertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePackagesUpserted, AggregateTypeCatalog, uuid.Nil),
		ConflictKey:     key,
		PackageIDs:      ids,
	}
}

// CatalogResyncedEvent is published after the catalog was atomically replaced
type CatalogResyncedEvent struct {
	shared.BaseDomainEvent
	PackageCount int `json:"package_count"`
}

// NewCatalogResyncedEvent creates a new CatalogResyncedEvent
func NewCatalogResyncedEvent(count int) *CatalogResyncedEvent {
	return &CatalogResyncedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCatalogResynced, AggregateTypeCatalog, uuid.Nil),
		PackageCount:    count,
	}
}
