package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/internal/service/event"
	"github.com/medibook/booking-api/pkg/gateway/razorpay"
	"github.com/medibook/booking-api/pkg/metrics"
)

// paiseFactor converts the stored fee (rupees) to the gateway's minor unit.
const paiseFactor = 100

type Gateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type Service struct {
	appointments repository.AppointmentRepository
	gateway      Gateway
	events       *event.Service
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	gateway Gateway,
	events *event.Service,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		gateway:      gateway,
		events:       events,
		metrics:      m,
		logger:       logger,
	}
}

type OrderResult struct {
	Key   string          `json:"key"`
	Order *razorpay.Order `json:"order"`
}

// CreateOrder creates a gateway order for the appointment's immutable
// amount. The receipt is derived from the appointment id so repeated intent
// creation stays traceable; deduplication is the verifier's concern.
func (s *Service) CreateOrder(ctx context.Context, appointmentID uuid.UUID) (*OrderResult, error) {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if apt.Cancelled {
		return nil, model.ErrAppointmentCancelled
	}
	if apt.Paid {
		return nil, model.ErrAlreadyPaid
	}

	receipt := fmt.Sprintf("order_rcptid_%s", apt.ID)

	start := time.Now()
	order, err := s.gateway.CreateOrder(ctx, apt.Amount*paiseFactor, "INR", receipt)
	if s.metrics != nil {
		s.metrics.GatewayLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.Error().Err(err).
			Str("appointment_id", apt.ID.String()).
			Msg("gateway order creation failed")
		return nil, fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
	}

	return &OrderResult{Key: s.gateway.KeyID(), Order: order}, nil
}

// Verify authenticates a gateway callback and applies the Paid transition
// exactly once. Redelivery of an already-applied confirmation succeeds
// without a second state change; a cancelled appointment is never marked
// paid.
func (s *Service) Verify(ctx context.Context, req *model.VerifyPaymentRequest) error {
	apt, err := s.appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		return err
	}

	if apt.Paid && apt.PaymentID != nil && *apt.PaymentID == req.PaymentID {
		// Callback redelivery; nothing left to do.
		return nil
	}

	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.countRejected("invalid_signature")
		// Audit the attempt without echoing the supplied signature.
		s.logger.Warn().
			Str("appointment_id", apt.ID.String()).
			Str("order_id", req.OrderID).
			Msg("payment signature mismatch")
		return model.ErrInvalidSignature
	}

	applied, err := s.appointments.MarkPaid(ctx, apt.ID, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		return err
	}
	if !applied {
		apt, err = s.appointments.Get(ctx, apt.ID)
		if err != nil {
			return err
		}
		if apt.Cancelled {
			s.countRejected("cancelled")
			return model.ErrAppointmentCancelled
		}
		if apt.Paid && apt.PaymentID != nil && *apt.PaymentID == req.PaymentID {
			return nil
		}
		s.countRejected("conflict")
		return model.ErrAlreadyPaid
	}

	if s.metrics != nil {
		s.metrics.PaymentsVerified.Inc()
	}
	s.events.Emit(ctx, model.EventAppointmentPaid, map[string]string{
		"appointment_id": apt.ID.String(),
		"order_id":       req.OrderID,
		"payment_id":     req.PaymentID,
	})
	return nil
}

func (s *Service) countRejected(reason string) {
	if s.metrics != nil {
		s.metrics.PaymentsRejected.WithLabelValues(reason).Inc()
	}
}
