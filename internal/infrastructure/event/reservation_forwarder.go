package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/booking"
	"github.com/travelpkg/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MessagePublisher sends an encoded message to the broker
type MessagePublisher interface {
	Publish(ctx context.Context, messageID string, body []byte) error
}

// ReservationConfirmedMessage is the body sent when a reservation becomes confirmed
type ReservationConfirmedMessage struct {
	EventID       uuid.UUID `json:"event_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	PackageID     uuid.UUID `json:"package_id"`
	ContactEmail  string    `json:"contact_email"`
	DepartureDate string    `json:"departure_date"`
	Travelers     int       `json:"travelers"`
	TotalPrice    int64     `json:"total_price"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// ReservationForwarder forwards confirmations from the in-process bus to the broker.
// Forwarding is best effort: a failed publish is logged and reported to the bus,
// and the reservation write that produced the event is unaffected.
type ReservationForwarder struct {
	publisher MessagePublisher
	timeout   time.Duration
	logger    *zap.Logger
}

// NewReservationForwarder creates a forwarder; publishes are bounded by timeout
func NewReservationForwarder(publisher MessagePublisher, timeout time.Duration, logger *zap.Logger) *ReservationForwarder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationForwarder{publisher: publisher, timeout: timeout, logger: logger}
}

// EventTypes implements shared.EventHandler
func (f *ReservationForwarder) EventTypes() []string {
	return []string{booking.EventTypeReservationStatusChanged}
}

// Handle publishes a ReservationConfirmedMessage for transitions into confirmed
func (f *ReservationForwarder) Handle(ctx context.Context, ev shared.DomainEvent) error {
	changed, ok := ev.(*booking.ReservationStatusChangedEvent)
	if !ok || changed.NewStatus != booking.StatusConfirmed {
		return nil
	}

	body, err := json.Marshal(ReservationConfirmedMessage{
		EventID:       changed.EventID(),
		ReservationID: changed.ReservationID,
		PackageID:     changed.PackageID,
		ContactEmail:  changed.ContactEmail,
		DepartureDate: changed.DepartureDate,
		Travelers:     changed.Travelers,
		TotalPrice:    changed.TotalPrice,
		ConfirmedAt:   changed.OccurredAt().UTC(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()
	if err := f.publisher.Publish(ctx, changed.EventID().String(), body); err != nil {
		f.logger.Warn("reservation confirmation not forwarded",
			zap.String("reservation_id", changed.ReservationID.String()),
			zap.Error(err),
		)
		return err
	}
	f.logger.Debug("reservation confirmation forwarded", zap.String("reservation_id", changed.ReservationID.String()))
	return nil
}

var _ shared.EventHandler = (*ReservationForwarder)(nil)
