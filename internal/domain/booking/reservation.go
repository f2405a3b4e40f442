package booking

import (
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/shared"
)

// ReservationStatus represents the lifecycle stage of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

// IsValid checks if the status is a valid ReservationStatus
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of ReservationStatus
func (s ReservationStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusCancelled || target == StatusCompleted
	case StatusCancelled, StatusCompleted:
		return false // Terminal states
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// PaymentStatus records whether funds were captured. It is independent of ReservationStatus.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// IsValid checks if the payment status is valid
func (p PaymentStatus) IsValid() bool {
	return p == PaymentUnpaid || p == PaymentPaid
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Contact is the person to reach about a reservation
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Validate checks that every contact field is present and the email is well formed
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewValidationError("contact.name", "contact name is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return shared.NewValidationError("contact.email", "contact email is required")
	}
	if !emailPattern.MatchString(strings.TrimSpace(c.Email)) {
		return shared.NewValidationError("contact.email", "contact email is malformed")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return shared.NewValidationError("contact.phone", "contact phone is required")
	}
	return nil
}

func (c Contact) normalized() Contact {
	return Contact{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.ToLower(strings.TrimSpace(c.Email)),
		Phone: strings.TrimSpace(c.Phone),
	}
}

// Reservation is a customer commitment to buy a package for a departure date.
// It is the aggregate root of the booking context.
type Reservation struct {
	shared.BaseAggregateRoot
	UserID          *uuid.UUID
	PackageID       uuid.UUID
	DepartureDate   string
	Travelers       int
	TotalPrice      int64
	Status          ReservationStatus
	PaymentStatus   PaymentStatus
	Contact         Contact
	SpecialRequests string
}

// NewReservationInput holds the caller-supplied fields of a new reservation
type NewReservationInput struct {
	UserID          *uuid.UUID
	DepartureDate   string
	Travelers       int
	TotalPrice      *int64
	Contact         Contact
	SpecialRequests string
}

// NewReservation creates a pending, unpaid reservation for pkg.
// When no total price is supplied it is the package price times the traveler count.
func NewReservation(pkg *catalog.Package, input NewReservationInput) (*Reservation, error) {
	if pkg == nil {
		return nil, shared.NewValidationError("packageId", "package is required")
	}
	if input.Travelers < 1 {
		return nil, shared.NewValidationError("travelers", "travelers must be at least 1")
	}
	if strings.TrimSpace(input.DepartureDate) == "" {
		return nil, shared.NewValidationError("departureDate", "departure date is required")
	}
	if err := input.Contact.Validate(); err != nil {
		return nil, err
	}

	var total int64
	if input.TotalPrice != nil {
		if *input.TotalPrice <= 0 {
			return nil, shared.NewValidationError("totalPrice", "total price must be positive")
		}
		total = *input.TotalPrice
	} else {
		if pkg.Price > 0 && int64(input.Travelers) > math.MaxInt64/pkg.Price {
			return nil, shared.NewValidationError("travelers", "total price overflows")
		}
		total = pkg.Price * int64(input.Travelers)
		if total <= 0 {
			return nil, shared.NewValidationError("totalPrice", "total price must be positive")
		}
	}

	r := &Reservation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            input.UserID,
		PackageID:         pkg.ID,
		DepartureDate:     strings.TrimSpace(input.DepartureDate),
		Travelers:         input.Travelers,
		TotalPrice:        total,
		Status:            StatusPending,
		PaymentStatus:     PaymentUnpaid,
		Contact:           input.Contact.normalized(),
		SpecialRequests:   strings.TrimSpace(input.SpecialRequests),
	}

	r.AddDomainEvent(NewReservationCreatedEvent(r))

	return r, nil
}

// TransitionTo moves the reservation to target.
// Illegal transitions fail with an invalid transition error and leave the reservation unchanged.
func (r *Reservation) TransitionTo(target ReservationStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("status", "unknown reservation status "+string(target))
	}
	if !r.Status.CanTransitionTo(target) {
		return shared.NewInvalidTransitionError(r.Status.String(), target.String())
	}

	from := r.Status
	r.Status = target
	r.Touch()

	r.AddDomainEvent(NewReservationStatusChangedEvent(r, from))

	return nil
}

// SetPaymentStatus records a payment status change. Any status may follow any other.
// Setting the current value again is a no-op.
func (r *Reservation) SetPaymentStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("paymentStatus", "unknown payment status "+string(status))
	}
	if r.PaymentStatus == status {
		return nil
	}

	from := r.PaymentStatus
	r.PaymentStatus = status
	r.Touch()

	r.AddDomainEvent(NewReservationPaymentChangedEvent(r, from))

	return nil
}

// MarkDeleted records the deletion event for a reservation about to be removed
func (r *Reservation) MarkDeleted() {
	r.AddDomainEvent(NewReservationDeletedEvent(r))
}

var _ shared.AggregateRoot = (*Reservation)(nil)
