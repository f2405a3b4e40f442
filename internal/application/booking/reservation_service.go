package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/booking"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/identity"
	"github.com/travelpkg/backend/internal/domain/shared"
	"github.com/travelpkg/backend/internal/infrastructure/logger"
	"github.com/travelpkg/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultIdempotencyTTL is how long a create request key is remembered
const DefaultIdempotencyTTL = 24 * time.Hour

// idempotencyPrefix namespaces booking keys inside the shared store
const idempotencyPrefix = "reservation:"

// BookingMetrics records reservation activity
type BookingMetrics interface {
	ReservationCreated(ctx context.Context, travelers int, totalPrice int64)
	ReservationTransitioned(ctx context.Context, from, to string)
	DuplicateRequestRejected(ctx context.Context)
}

// ReservationService handles the reservation lifecycle
type ReservationService struct {
	reservations booking.ReservationRepository
	packages     catalog.PackageRepository
	authz        identity.Authorizer
	idempotency  shared.IdempotencyStore
	ttl          time.Duration
	events       shared.EventPublisher
	metrics      BookingMetrics
	logger       *zap.Logger
}

// ReservationServiceOption configures a ReservationService
type ReservationServiceOption func(*ReservationService)

// WithIdempotencyStore enables Idempotency-Key handling on Create
func WithIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.idempotency = store
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithEventPublisher sets the publisher reservation events are sent to
func WithEventPublisher(p shared.EventPublisher) ReservationServiceOption {
	return func(s *ReservationService) { s.events = p }
}

// WithMetrics sets the booking metrics recorder
func WithMetrics(m BookingMetrics) ReservationServiceOption {
	return func(s *ReservationService) { s.metrics = m }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) ReservationServiceOption {
	return func(s *ReservationService) { s.logger = l }
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	reservations booking.ReservationRepository,
	packages catalog.PackageRepository,
	authz identity.Authorizer,
	opts ...ReservationServiceOption,
) *ReservationService {
	s := &ReservationService{
		reservations: reservations,
		packages:     packages,
		authz:        authz,
		ttl:          DefaultIdempotencyTTL,
		metrics:      noopMetrics{},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create books a package. A request key seen before is rejected with
// shared.ErrDuplicateRequest; the key is released again when the create fails.
func (s *ReservationService) Create(ctx context.Context, req CreateReservationRequest) (resp *ReservationResponse, err error) {
	if key := req.IdempotencyKey; key != "" && s.idempotency != nil {
		marked, markErr := s.idempotency.MarkProcessed(ctx, idempotencyPrefix+key, s.ttl)
		if markErr != nil {
			return nil, markErr
		}
		if !marked {
			s.metrics.DuplicateRequestRejected(ctx)
			return nil, shared.ErrDuplicateRequest
		}
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.idempotency.Release(context.WithoutCancel(ctx), idempotencyPrefix+key); relErr != nil {
				logger.Enrich(ctx, s.logger).Warn("failed to release idempotency key", zap.Error(relErr))
			}
		}()
	}

	pkg, err := s.packages.FindByID(ctx, req.PackageID)
	if err != nil {
		if shared.IsKind(err, shared.KindNotFound) {
			return nil, shared.NewValidationError("packageId", "package does not exist")
		}
		return nil, err
	}

	input := booking.NewReservationInput{
		DepartureDate: req.DepartureDate,
		Travelers:     req.Travelers,
		TotalPrice:    req.TotalPrice,
		Contact: booking.Contact{
			Name:  req.ContactName,
			Email: req.ContactEmail,
			Phone: req.ContactPhone,
		},
		SpecialRequests: req.SpecialRequests,
	}
	if p, ok := identity.PrincipalFromContext(ctx); ok {
		input.UserID = p.UserID
	}

	r, err := booking.NewReservation(pkg, input)
	if err != nil {
		return nil, err
	}
	if err := s.reservations.Create(ctx, r); err != nil {
		return nil, err
	}

	s.publishAggregate(ctx, &r.BaseAggregateRoot)
	s.metrics.ReservationCreated(ctx, r.Travelers, r.TotalPrice)
	logger.Enrich(ctx, s.logger).Info("reservation created",
		zap.String("reservation_id", r.ID.String()),
		zap.String("package_id", r.PackageID.String()),
	)

	response := ToReservationResponse(r)
	return &response, nil
}

// TransitionStatus moves a reservation to status. When expectedVersion is set
// it must equal the stored version. Illegal transitions never reach the repository.
func (s *ReservationService) TransitionStatus(ctx context.Context, id uuid.UUID, status booking.ReservationStatus, expectedVersion *int) (resp *ReservationResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "booking", "transition_status",
		telemetry.WithAttribute(telemetry.SpanAttrReservationID, id.String()),
		telemetry.WithAttribute(string(telemetry.AttrStatusTo), string(status)),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion != nil && *expectedVersion != r.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	from := r.Status
	if err := r.TransitionTo(status); err != nil {
		return nil, err
	}
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}

	s.publishAggregate(ctx, &r.BaseAggregateRoot)
	s.metrics.ReservationTransitioned(ctx, from.String(), status.String())

	response := ToReservationResponse(r)
	return &response, nil
}

// UpdatePaymentStatus records a payment status change. Setting the current value is a no-op.
func (s *ReservationService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status booking.PaymentStatus) (*ReservationResponse, error) {
	if err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.PaymentStatus == status {
		response := ToReservationResponse(r)
		return &response, nil
	}
	if err := r.SetPaymentStatus(status); err != nil {
		return nil, err
	}
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}
	s.publishAggregate(ctx, &r.BaseAggregateRoot)

	response := ToReservationResponse(r)
	return &response, nil
}

// Delete hard-deletes a reservation
func (s *ReservationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.authz.RequireAdmin(ctx); err != nil {
		return err
	}
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return err
	}
	r.MarkDeleted()

	if err := s.reservations.Delete(ctx, id); err != nil {
		return err
	}
	s.publishAggregate(ctx, &r.BaseAggregateRoot)
	return nil
}

// GetByID retrieves a reservation by ID
func (s *ReservationService) GetByID(ctx context.Context, id uuid.UUID) (*ReservationResponse, error) {
	if err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToReservationResponse(r)
	return &response, nil
}

// List retrieves reservations with filtering and pagination
func (s *ReservationService) List(ctx context.Context, filter ReservationListFilter) ([]ReservationResponse, int64, error) {
	if err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, 0, err
	}
	domainFilter := toDomainFilter(filter)

	rs, err := s.reservations.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.reservations.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToReservationResponses(rs), total, nil
}

// ListByEmail lists the reservations booked under email. Administrators may
// query any email; other callers only their own.
func (s *ReservationService) ListByEmail(ctx context.Context, email string, filter ReservationListFilter) ([]ReservationResponse, error) {
	email = identity.NormalizeEmail(email)
	if email == "" {
		return nil, shared.NewValidationError("email", "email is required")
	}
	if !s.authz.IsAdmin(ctx) {
		p, ok := identity.PrincipalFromContext(ctx)
		if !ok {
			return nil, shared.ErrUnauthorized
		}
		if p.NormalizedEmail() != email {
			return nil, shared.ErrForbidden
		}
	}

	rs, err := s.reservations.FindByContactEmail(ctx, email, toDomainFilter(filter))
	if err != nil {
		return nil, err
	}
	return ToReservationResponses(rs), nil
}

func toDomainFilter(filter ReservationListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.PaymentStatus != "" {
		f.Filters["payment_status"] = filter.PaymentStatus
	}
	if filter.PackageID != nil {
		f.Filters["package_id"] = *filter.PackageID
	}
	return f
}

func (s *ReservationService) publishAggregate(ctx context.Context, agg *shared.BaseAggregateRoot) {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, s.logger).Warn("failed to publish reservation events", zap.Error(err))
	}
}

type noopMetrics struct{}

func (noopMetrics) ReservationCreated(context.Context, int, int64)          {}
func (noopMetrics) ReservationTransitioned(context.Context, string, string) {}
func (noopMetrics) DuplicateRequestRejected(context.Context)                {}
