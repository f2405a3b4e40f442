package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/shared"
)

// PackageRepository defines the interface for package persistence
type PackageRepository interface {
	// FindByID finds a package by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Package, error)

	// FindBySlug finds a package by its slug
	FindBySlug(ctx context.Context, slug string) (*Package, error)

	// FindByIDs finds the packages with the given IDs; unknown IDs are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Package, error)

	// FindAll finds packages matching the filter, newest first by default
	FindAll(ctx context.Context, filter shared.Filter) ([]Package, error)

	// ListAll returns every package ordered by creation time descending
	ListAll(ctx context.Context) ([]Package, error)

	// Count counts packages matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a single package with an optimistic version check
	Save(ctx context.Context, pkg *Package) error

	// UpsertMany inserts or updates packages keyed by the conflict key.
	// No two rows share the same key afterwards.
	UpsertMany(ctx context.Context, pkgs []*Package, key ConflictKey) error

	// ReplaceAll atomically replaces the whole catalog with pkgs.
	// Fails with a conflict error, leaving the catalog untouched, if a package
	// that would be removed is still referenced by a reservation.
	ReplaceAll(ctx context.Context, pkgs []*Package) error

	// DeleteGuarded deletes a package unless a reservation references it
	DeleteGuarded(ctx context.Context, id uuid.UUID) error

	// CountReservations counts reservations referencing the package
	CountReservations(ctx context.Context, id uuid.UUID) (int64, error)
}
