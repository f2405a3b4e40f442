package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
)

// TravelerBuckets are histogram boundaries for party sizes
var TravelerBuckets = []float64{1, 2, 3, 4, 6, 8, 10, 20}

// BookingMetrics records reservation activity: creations, booked amount,
// party size, status transitions and rejected duplicate requests.
type BookingMetrics struct {
	created     *Counter
	amount      *Counter
	travelers   *Histogram
	transitions *Counter
	duplicates  *Counter
}

// NewBookingMetrics registers the booking instruments on meter
func NewBookingMetrics(meter metric.Meter) (*BookingMetrics, error) {
	if meter == nil {
		return nil, errors.New("meter is required")
	}

	created, err := NewCounter(meter, "reservation.created", "Reservations created", "{reservation}")
	if err != nil {
		return nil, err
	}
	amount, err := NewCounter(meter, "reservation.amount", "Total price of created reservations", "{KRW}")
	if err != nil {
		return nil, err
	}
	travelers, err := NewHistogram(meter, HistogramOpts{
		Name:        "reservation.travelers",
		Description: "Travelers per reservation",
		Unit:        "{person}",
		Boundaries:  TravelerBuckets,
	})
	if err != nil {
		return nil, err
	}
	transitions, err := NewCounter(meter, "reservation.transitions", "Reservation status transitions", "{transition}")
	if err != nil {
		return nil, err
	}
	duplicates, err := NewCounter(meter, "reservation.duplicate_requests", "Create requests rejected by idempotency key", "{request}")
	if err != nil {
		return nil, err
	}

	return &BookingMetrics{
		created:     created,
		amount:      amount,
		travelers:   travelers,
		transitions: transitions,
		duplicates:  duplicates,
	}, nil
}

// ReservationCreated records a new reservation
func (m *BookingMetrics) ReservationCreated(ctx context.Context, travelers int, totalPrice int64) {
	m.created.Inc(ctx)
	m.amount.Add(ctx, totalPrice)
	m.travelers.Record(ctx, float64(travelers))
}

// ReservationTransitioned records a status change
func (m *BookingMetrics) ReservationTransitioned(ctx context.Context, from, to string) {
	m.transitions.Inc(ctx, AttrStatusFrom.String(from), AttrStatusTo.String(to))
}

// DuplicateRequestRejected records a create rejected by its idempotency key
func (m *BookingMetrics) DuplicateRequestRejected(ctx context.Context) {
	m.duplicates.Inc(ctx)
}
