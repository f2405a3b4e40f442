package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	bookingapp "github.com/travelpkg/backend/internal/application/booking"
	"github.com/travelpkg/backend/internal/domain/booking"
	"github.com/travelpkg/backend/internal/domain/identity"
	"github.com/travelpkg/backend/internal/domain/shared"
	"github.com/travelpkg/backend/internal/interfaces/http/middleware"
)

// ReservationHandler handles booking endpoints
type ReservationHandler struct {
	BaseHandler
	reservationService *bookingapp.ReservationService
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservationService *bookingapp.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// Create books a package. An Idempotency-Key header makes retries safe.
func (h *ReservationHandler) Create(c *gin.Context) {
	var req bookingapp.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader))

	r, err := h.reservationService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, r)
}

// Mine lists the reservations booked under the caller's email
func (h *ReservationHandler) Mine(c *gin.Context) {
	p, ok := identity.PrincipalFromContext(c.Request.Context())
	if !ok {
		h.HandleError(c, shared.ErrUnauthorized)
		return
	}
	var filter bookingapp.ReservationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	rs, err := h.reservationService.ListByEmail(c.Request.Context(), p.Email, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rs)
}

// List lists all reservations
func (h *ReservationHandler) List(c *gin.Context) {
	var filter bookingapp.ReservationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	rs, total, err := h.reservationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pagination(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, rs, total, page, pageSize)
}

// Get returns a reservation by id
func (h *ReservationHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	r, err := h.reservationService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// UpdateStatus moves a reservation through its lifecycle
func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req bookingapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	r, err := h.reservationService.TransitionStatus(c.Request.Context(), id, booking.ReservationStatus(req.Status), req.Version)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// UpdatePayment records a payment status change
func (h *ReservationHandler) UpdatePayment(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req bookingapp.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	r, err := h.reservationService.UpdatePaymentStatus(c.Request.Context(), id, booking.PaymentStatus(req.PaymentStatus))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Delete removes a reservation
func (h *ReservationHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.reservationService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
