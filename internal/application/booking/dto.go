package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/booking"
)

// CreateReservationRequest is the booking form submitted by a customer
type CreateReservationRequest struct {
	PackageID       uuid.UUID `json:"package_id" binding:"required"`
	DepartureDate   string    `json:"departure_date" binding:"required,max=50"`
	Travelers       int       `json:"travelers" binding:"required,min=1,max=100"`
	TotalPrice      *int64    `json:"total_price" binding:"omitempty,min=1"`
	ContactName     string    `json:"contact_name" binding:"required,max=100"`
	ContactEmail    string    `json:"contact_email" binding:"required,email,max=255"`
	ContactPhone    string    `json:"contact_phone" binding:"required,max=50"`
	SpecialRequests string    `json:"special_requests" binding:"max=2000"`

	// IdempotencyKey comes from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// UpdateStatusRequest moves a reservation through its lifecycle
type UpdateStatusRequest struct {
	Status  string `json:"status" binding:"required,oneof=pending confirmed cancelled completed"`
	Version *int   `json:"version" binding:"omitempty,min=1"`
}

// UpdatePaymentRequest records a payment status change
type UpdatePaymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=unpaid paid"`
}

// ReservationListFilter holds the admin reservation query parameters
type ReservationListFilter struct {
	Status        string     `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=unpaid paid"`
	PackageID     *uuid.UUID `form:"package_id"`
	Page          int        `form:"page" binding:"min=0"`
	PageSize      int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          *uuid.UUID `json:"user_id"`
	PackageID       uuid.UUID  `json:"package_id"`
	DepartureDate   string     `json:"departure_date"`
	Travelers       int        `json:"travelers"`
	TotalPrice      int64      `json:"total_price"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"payment_status"`
	ContactName     string     `json:"contact_name"`
	ContactEmail    string     `json:"contact_email"`
	ContactPhone    string     `json:"contact_phone"`
	SpecialRequests string     `json:"special_requests"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Version         int        `json:"version"`
}

// ToReservationResponse converts a domain Reservation to ReservationResponse
func ToReservationResponse(r *booking.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		PackageID:       r.PackageID,
		DepartureDate:   r.DepartureDate,
		Travelers:       r.Travelers,
		TotalPrice:      r.TotalPrice,
		Status:          string(r.Status),
		PaymentStatus:   string(r.PaymentStatus),
		ContactName:     r.Contact.Name,
		ContactEmail:    r.Contact.Email,
		ContactPhone:    r.Contact.Phone,
		SpecialRequests: r.SpecialRequests,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Version:         r.Version,
	}
}

// ToReservationResponses converts a slice of domain Reservations
func ToReservationResponses(rs []booking.Reservation) []ReservationResponse {
	responses := make([]ReservationResponse, len(rs))
	for i := range rs {
		responses[i] = ToReservationResponse(&rs[i])
	}
	return responses
}
