package persistence

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/shared"
	"github.com/travelpkg/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPackageRepository implements catalog.PackageRepository using GORM
type GormPackageRepository struct {
	db *gorm.DB
}

// NewGormPackageRepository creates a new GormPackageRepository
func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

// FindByID finds a package by its ID
func (r *GormPackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Package, error) {
	var model models.PackageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a package by its slug
func (r *GormPackageRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Package, error) {
	var model models.PackageModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the packages with the given IDs
func (r *GormPackageRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Package, error) {
	if len(ids) == 0 {
		return []catalog.Package{}, nil
	}
	var rows []models.PackageModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toPackages(rows), nil
}

// FindAll finds packages matching the filter
func (r *GormPackageRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Package, error) {
	var rows []models.PackageModel
	query := orderAndPage(r.applyFilter(r.db.WithContext(ctx).Model(&models.PackageModel{}), filter), filter, PackageSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toPackages(rows), nil
}

// ListAll returns every package, newest first
func (r *GormPackageRepository) ListAll(ctx context.Context) ([]catalog.Package, error) {
	var rows []models.PackageModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toPackages(rows), nil
}

// Count counts packages matching the filter
func (r *GormPackageRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PackageModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// Save inserts a new package or updates an existing one. Updates only apply
// when the stored version equals pkg.Version; pkg.Version is then incremented.
func (r *GormPackageRepository) Save(ctx context.Context, pkg *catalog.Package) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PackageModelFromDomain(pkg)
		model.Version = pkg.Version + 1

		result := tx.Model(model).
			Where("version = ?", pkg.Version).
			Select(append(slices.Clone(models.PackageContentColumns), "version")).
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			pkg.IncrementVersion()
			return nil
		}

		var existing int64
		if err := tx.Model(&models.PackageModel{}).Where("id = ?", pkg.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return shared.ErrConcurrencyConflict
		}
		model.Version = pkg.Version
		return tx.Create(model).Error
	})
	return translateError(err)
}

// UpsertMany inserts or updates packages keyed by id or slug.
// Duplicate keys in the input collapse to their last occurrence.
// Keyed by slug, a row that already existed keeps its id and pkgs are
// rewritten to carry the stored ids.
func (r *GormPackageRepository) UpsertMany(ctx context.Context, pkgs []*catalog.Package, key catalog.ConflictKey) error {
	if !key.IsValid() {
		return shared.NewValidationError("conflictKey", "conflict key must be id or slug")
	}
	if len(pkgs) == 0 {
		return nil
	}
	if key == catalog.ConflictKeyID {
		return translateError(upsert(r.db.WithContext(ctx), pkgs, key))
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, pkgs, key); err != nil {
			return err
		}
		return resolveStoredIDs(tx, pkgs)
	})
	return translateError(err)
}

// ReplaceAll swaps the catalog for pkgs in one transaction. Packages missing from
// pkgs are deleted unless a reservation still references one of them.
func (r *GormPackageRepository) ReplaceAll(ctx context.Context, pkgs []*catalog.Package) error {
	ids := catalog.IDs(pkgs)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orphaned := tx.Model(&models.ReservationModel{})
		stale := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if len(ids) > 0 {
			orphaned = orphaned.Where("package_id NOT IN ?", ids)
			stale = stale.Where("id NOT IN ?", ids)
		}

		var referenced int64
		if err := orphaned.Count(&referenced).Error; err != nil {
			return err
		}
		if referenced > 0 {
			return shared.NewConflictError("resync would remove packages that still have reservations")
		}
		if err := stale.Delete(&models.PackageModel{}).Error; err != nil {
			return err
		}
		if len(pkgs) == 0 {
			return nil
		}
		return upsert(tx, pkgs, catalog.ConflictKeyID)
	})
	return translateError(err)
}

// DeleteGuarded deletes a package unless a reservation references it.
// The package row is locked first so a concurrent booking either commits
// before the reference check or fails on the foreign key.
func (r *GormPackageRepository) DeleteGuarded(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []uuid.UUID
		if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Model(&models.PackageModel{}).Where("id = ?", id).Pluck("id", &locked).Error; err != nil {
			return err
		}
		if len(locked) == 0 {
			return shared.NewNotFoundError("package")
		}

		var referenced int64
		if err := tx.Model(&models.ReservationModel{}).Where("package_id = ?", id).Count(&referenced).Error; err != nil {
			return err
		}
		if referenced > 0 {
			return shared.NewConflictError("package has reservations and cannot be deleted")
		}
		result := tx.Delete(&models.PackageModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("package")
		}
		return nil
	})
	return translateError(err)
}

// CountReservations counts reservations referencing the package
func (r *GormPackageRepository) CountReservations(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ReservationModel{}).Where("package_id = ?", id).Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// applyFilter applies catalog search and attribute filters to the query
func (r *GormPackageRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(destination) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "category", "season", "destination", "source", "is_featured", "is_on_sale":
			query = query.Where(key+" = ?", value)
		case "min_price":
			query = query.Where("price >= ?", value)
		case "max_price":
			query = query.Where("price <= ?", value)
		}
	}
	return query
}

const upsertBatchSize = 100

// upsert writes pkgs with INSERT ... ON CONFLICT (key) DO UPDATE. Rows matched on
// the key get the incoming content and a bumped version.
func upsert(db *gorm.DB, pkgs []*catalog.Package, key catalog.ConflictKey) error {
	rows := dedupeByKey(pkgs, key)
	updates := clause.AssignmentColumns(models.PackageContentColumns)
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "version"},
		Value:  gorm.Expr("packages.version + 1"),
	})
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: string(key)}},
		DoUpdates: updates,
	}).CreateInBatches(rows, upsertBatchSize).Error
}

// dedupeByKey keeps the first position of each key and the last value written to it.
// A single INSERT ... ON CONFLICT statement cannot touch the same row twice.
func dedupeByKey(pkgs []*catalog.Package, key catalog.ConflictKey) []*models.PackageModel {
	index := make(map[string]int, len(pkgs))
	rows := make([]*models.PackageModel, 0, len(pkgs))
	for _, p := range pkgs {
		k := p.ID.String()
		if key == catalog.ConflictKeySlug {
			k = p.Slug
		}
		m := models.PackageModelFromDomain(p)
		if i, ok := index[k]; ok {
			rows[i] = m
			continue
		}
		index[k] = len(rows)
		rows = append(rows, m)
	}
	return rows
}

// resolveStoredIDs sets each package's id to the id stored under its slug
func resolveStoredIDs(db *gorm.DB, pkgs []*catalog.Package) error {
	slugs := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		slugs = append(slugs, p.Slug)
	}

	stored := make(map[string]uuid.UUID, len(slugs))
	for start := 0; start < len(slugs); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(slugs))
		var rows []models.PackageModel
		if err := db.Select("id", "slug").Where("slug IN ?", slugs[start:end]).Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			stored[row.Slug] = row.ID
		}
	}

	for _, p := range pkgs {
		if id, ok := stored[p.Slug]; ok {
			p.ID = id
		}
	}
	return nil
}

func toPackages(rows []models.PackageModel) []catalog.Package {
	out := make([]catalog.Package, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}
