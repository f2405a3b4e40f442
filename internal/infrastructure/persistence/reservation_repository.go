package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/booking"
	"github.com/travelpkg/backend/internal/domain/identity"
	"github.com/travelpkg/backend/internal/domain/shared"
	"github.com/travelpkg/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReservationRepository implements booking.ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID finds a reservation by its ID
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	var model models.ReservationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds reservations matching the filter
func (r *GormReservationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]booking.Reservation, error) {
	var rows []models.ReservationModel
	query := orderAndPage(r.applyFilter(r.db.WithContext(ctx).Model(&models.ReservationModel{}), filter), filter, ReservationSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toReservations(rows), nil
}

// FindByContactEmail finds reservations booked under email
func (r *GormReservationRepository) FindByContactEmail(ctx context.Context, email string, filter shared.Filter) ([]booking.Reservation, error) {
	var rows []models.ReservationModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReservationModel{}), filter).
		Where("contact_email = ?", identity.NormalizeEmail(email))
	if err := orderAndPage(query, filter, ReservationSortFields).Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toReservations(rows), nil
}

// ListRecent returns up to limit reservations, newest first
func (r *GormReservationRepository) ListRecent(ctx context.Context, limit int) ([]booking.Reservation, error) {
	var rows []models.ReservationModel
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toReservations(rows), nil
}

type reservationTotalsRow struct {
	Count          int64
	Revenue        int64
	UniqueContacts int64
	Confirmed      int64
	Cancelled      int64
}

// Totals aggregates every stored reservation in a single query
func (r *GormReservationRepository) Totals(ctx context.Context) (booking.ReservationTotals, error) {
	var row reservationTotalsRow
	err := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Select(`COUNT(*) AS count,
			CAST(COALESCE(SUM(total_price), 0) AS BIGINT) AS revenue,
			COUNT(DISTINCT CASE WHEN TRIM(contact_email) <> '' THEN LOWER(TRIM(contact_email)) END) AS unique_contacts,
			CAST(COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS BIGINT) AS confirmed,
			CAST(COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS BIGINT) AS cancelled`,
			string(booking.StatusConfirmed), string(booking.StatusCancelled)).
		Scan(&row).Error
	if err != nil {
		return booking.ReservationTotals{}, translateError(err)
	}
	return booking.ReservationTotals{
		Count:          int(row.Count),
		Revenue:        row.Revenue,
		UniqueContacts: int(row.UniqueContacts),
		Confirmed:      int(row.Confirmed),
		Cancelled:      int(row.Cancelled),
	}, nil
}

// TotalsBetween counts the reservations created in [from, to) and sums their price
func (r *GormReservationRepository) TotalsBetween(ctx context.Context, from, to time.Time) (booking.PeriodTotals, error) {
	var row reservationTotalsRow
	err := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Select("COUNT(*) AS count, CAST(COALESCE(SUM(total_price), 0) AS BIGINT) AS revenue").
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Scan(&row).Error
	if err != nil {
		return booking.PeriodTotals{}, translateError(err)
	}
	return booking.PeriodTotals{From: from, To: to, Count: int(row.Count), Revenue: row.Revenue}, nil
}

// Count counts reservations matching the filter
func (r *GormReservationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReservationModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// Create inserts a new reservation
func (r *GormReservationRepository) Create(ctx context.Context, res *booking.Reservation) error {
	return translateError(r.db.WithContext(ctx).Create(models.ReservationModelFromDomain(res)).Error)
}

// Update writes the mutable reservation fields when the stored version still
// equals res.Version, then increments res.Version.
func (r *GormReservationRepository) Update(ctx context.Context, res *booking.Reservation) error {
	result := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("id = ? AND version = ?", res.ID, res.Version).
		Updates(map[string]any{
			"status":         string(res.Status),
			"payment_status": string(res.PaymentStatus),
			"updated_at":     res.UpdatedAt.UTC(),
			"version":        res.Version + 1,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		var existing int64
		if err := r.db.WithContext(ctx).Model(&models.ReservationModel{}).Where("id = ?", res.ID).Count(&existing).Error; err != nil {
			return translateError(err)
		}
		if existing == 0 {
			return shared.NewNotFoundError("reservation")
		}
		return shared.ErrConcurrencyConflict
	}
	res.IncrementVersion()
	return nil
}

// Delete hard-deletes a reservation
func (r *GormReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ReservationModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("reservation")
	}
	return nil
}

func (r *GormReservationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status", "payment_status", "package_id", "departure_date":
			query = query.Where(key+" = ?", value)
		}
	}
	return query
}

func toReservations(rows []models.ReservationModel) []booking.Reservation {
	out := make([]booking.Reservation, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}
