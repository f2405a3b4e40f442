package models

import (
	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/booking"
)

// ReservationModel is the persistence model for the Reservation aggregate
type ReservationModel struct {
	AggregateModel
	UserID          *uuid.UUID `gorm:"type:uuid;index"`
	PackageID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	DepartureDate   string     `gorm:"type:varchar(20);not null"`
	Travelers       int        `gorm:"not null"`
	TotalPrice      int64      `gorm:"not null"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus   string     `gorm:"type:varchar(20);not null;default:'unpaid'"`
	ContactName     string     `gorm:"type:varchar(100);not null"`
	ContactEmail    string     `gorm:"type:varchar(255);not null;index"`
	ContactPhone    string     `gorm:"type:varchar(50);not null"`
	SpecialRequests string     `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (ReservationModel) TableName() string {
	return "reservations"
}

// ToDomain converts the persistence model to a domain Reservation
func (m *ReservationModel) ToDomain() *booking.Reservation {
	return &booking.Reservation{
		BaseAggregateRoot: m.ToAggregateRoot(),
		UserID:            m.UserID,
		PackageID:         m.PackageID,
		DepartureDate:     m.DepartureDate,
		Travelers:         m.Travelers,
		TotalPrice:        m.TotalPrice,
		Status:            booking.ReservationStatus(m.Status),
		PaymentStatus:     booking.PaymentStatus(m.PaymentStatus),
		Contact: booking.Contact{
			Name:  m.ContactName,
			Email: m.ContactEmail,
			Phone: m.ContactPhone,
		},
		SpecialRequests: m.SpecialRequests,
	}
}

// FromDomain populates the persistence model from a domain Reservation
func (m *ReservationModel) FromDomain(r *booking.Reservation) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.UserID = r.UserID
	m.PackageID = r.PackageID
	m.DepartureDate = r.DepartureDate
	m.Travelers = r.Travelers
	m.TotalPrice = r.TotalPrice
	m.Status = string(r.Status)
	m.PaymentStatus = string(r.PaymentStatus)
	m.ContactName = r.Contact.Name
	m.ContactEmail = r.Contact.Email
	m.ContactPhone = r.Contact.Phone
	m.SpecialRequests = r.SpecialRequests
}

// ReservationModelFromDomain creates a new persistence model from a domain Reservation
func ReservationModelFromDomain(r *booking.Reservation) *ReservationModel {
	m := &ReservationModel{}
	m.FromDomain(r)
	return m
}
