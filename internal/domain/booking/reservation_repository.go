package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/shared"
)

// ReservationRepository defines the interface for reservation persistence
type ReservationRepository interface {
	// FindByID finds a reservation by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// FindAll finds reservations matching the filter, newest first by default.
	// Supported filters: status, payment_status, package_id.
	FindAll(ctx context.Context, filter shared.Filter) ([]Reservation, error)

	// FindByContactEmail finds reservations booked under an email
	FindByContactEmail(ctx context.Context, email string, filter shared.Filter) ([]Reservation, error)

	// ListRecent returns up to limit reservations ordered by creation time descending
	ListRecent(ctx context.Context, limit int) ([]Reservation, error)

	// Totals aggregates every stored reservation
	Totals(ctx context.Context) (ReservationTotals, error)

	// TotalsBetween counts reservations created in [from, to) and sums their price
	TotalsBetween(ctx context.Context, from, to time.Time) (PeriodTotals, error)

	// Count counts reservations matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts a new reservation
	Create(ctx context.Context, r *Reservation) error

	// Update persists status, payment status and timestamps if the stored version
	// still equals r.Version, then increments r.Version
	Update(ctx context.Context, r *Reservation) error

	// Delete hard-deletes a reservation
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReservationTotals are store-wide reservation aggregates.
// UniqueContacts counts distinct trimmed, lower-cased non-empty contact emails.
type ReservationTotals struct {
	Count          int
	Revenue        int64
	UniqueContacts int
	Confirmed      int
	Cancelled      int
}

// PeriodTotals aggregates the reservations created in [From, To)
type PeriodTotals struct {
	From    time.Time
	To      time.Time
	Count   int
	Revenue int64
}
