package booking

import (
	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeReservation = "Reservation"

// Event type constants
const (
	EventTypeReservationCreated        = "ReservationCreated"
	EventTypeReservationStatusChanged  = "ReservationStatusChanged"
	EventTypeReservationPaymentChanged = "ReservationPaymentChanged"
	EventTypeReservationDeleted        = "ReservationDeleted"
)

// ReservationCreatedEvent is published when a reservation is booked
type ReservationCreatedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID `json:"reservation_id"`
	PackageID     uuid.UUID `json:"package_id"`
	Travelers     int       `json:"travelers"`
	TotalPrice    int64     `json:"total_price"`
	ContactEmail  string    `json:"contact_email"`
}

// NewReservationCreatedEvent creates a new ReservationCreatedEvent
func NewReservationCreatedEvent(r *Reservation) *ReservationCreatedEvent {
	return &ReservationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationCreated, AggregateTypeReservation, r.ID),
		ReservationID:   r.ID,
		PackageID:       r.PackageID,
		Travelers:       r.Travelers,
		TotalPrice:      r.TotalPrice,
		ContactEmail:    r.Contact.Email,
	}
}

// ReservationStatusChangedEvent is published after a legal status transition
type ReservationStatusChangedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID         `json:"reservation_id"`
	PackageID     uuid.UUID         `json:"package_id"`
	OldStatus     ReservationStatus `json:"old_status"`
	NewStatus     ReservationStatus `json:"new_status"`
	ContactEmail  string            `json:"contact_email"`
	DepartureDate string            `json:"departure_date"`
	Travelers     int               `json:"travelers"`
	TotalPrice    int64             `json:"total_price"`
}

// NewReservationStatusChangedEvent creates a new ReservationStatusChangedEvent
func NewReservationStatusChangedEvent(r *Reservation, from ReservationStatus) *ReservationStatusChangedEvent {
	return &ReservationStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationStatusChanged, AggregateTypeReservation, r.ID),
		ReservationID:   r.ID,
		PackageID:       r.PackageID,
		OldStatus:       from,
		NewStatus:       r.Status,
		ContactEmail:    r.Contact.Email,
		DepartureDate:   r.DepartureDate,
		Travelers:       r.Travelers,
		TotalPrice:      r.TotalPrice,
	}
}

// ReservationPaymentChangedEvent is published when the payment flag flips
type ReservationPaymentChangedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID     `json:"reservation_id"`
	OldStatus     PaymentStatus `json:"old_status"`
	NewStatus     PaymentStatus `json:"new_status"`
}

// NewReservationPaymentChangedEvent creates a new ReservationPaymentChangedEvent
func NewReservationPaymentChangedEvent(r *Reservation, from PaymentStatus) *ReservationPaymentChangedEvent {
	return &ReservationPaymentChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationPaymentChanged, AggregateTypeReservation, r.ID),
		ReservationID:   r.ID,
		OldStatus:       from,
		NewStatus:       r.PaymentStatus,
	}
}

// ReservationDeletedEvent is published after an admin hard delete
type ReservationDeletedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID `json:"reservation_id"`
	PackageID     uuid.UUID `json:"package_id"`
}

// NewReservationDeletedEvent creates a new ReservationDeletedEvent
func NewReservationDeletedEvent(r *Reservation) *ReservationDeletedEvent {
	return &ReservationDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationDeleted, AggregateTypeReservation, r.ID),
		ReservationID:   r.ID,
		PackageID:       r.PackageID,
	}
}
