package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/internal/service/event"
	"github.com/medibook/booking-api/pkg/auth"
	"github.com/medibook/booking-api/pkg/metrics"
)

const (
	patientCacheTTL     = 5 * time.Minute
	patientCacheCleanup = 10 * time.Minute
)

type Service struct {
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	events       *event.Service
	metrics      *metrics.Metrics
	logger       zerolog.Logger

	// Patient display data is frozen into the appointment anyway, so a
	// slightly stale cached copy is acceptable.
	patientCache *gocache.Cache
}

func NewService(
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	events *event.Service,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		doctors:      doctors,
		patients:     patients,
		appointments: appointments,
		events:       events,
		metrics:      m,
		logger:       logger,
		patientCache: gocache.New(patientCacheTTL, patientCacheCleanup),
	}
}

// Book reserves a slot and creates the appointment record. The slot insert
// is the atomic arbiter: on conflict no appointment row is ever written, and
// if the appointment write fails the reservation is rolled back so no slot
// stays ghost-reserved.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if patientID == uuid.Nil || req.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient and doctor are required", model.ErrInvalidInput)
	}
	if !model.ValidSlotDate(req.SlotDate) || req.SlotTime == "" {
		return nil, fmt.Errorf("%w: invalid slot date or time", model.ErrInvalidInput)
	}

	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.Available {
		s.countBooking("unavailable")
		return nil, model.ErrDoctorUnavailable
	}

	patient, err := s.getPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	// The appointment id doubles as the reservation's owner tag, so it is
	// generated before the slot insert.
	appointmentID := uuid.New()

	err = s.doctors.ReserveSlot(ctx, doctor.ID, req.SlotDate, req.SlotTime, appointmentID)
	if err != nil {
		if errors.Is(err, model.ErrSlotTaken) {
			s.countBooking("conflict")
			if s.metrics != nil {
				s.metrics.SlotConflictsTotal.Inc()
			}
		}
		return nil, err
	}

	apt := &model.Appointment{
		ID:              appointmentID,
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		SlotDate:        req.SlotDate,
		SlotTime:        req.SlotTime,
		PatientSnapshot: patient.Snapshot(),
		DoctorSnapshot:  doctor.Snapshot(),
		Amount:          doctor.Fees,
	}

	if err := s.appointments.Create(ctx, apt); err != nil {
		// Roll the reservation back or the slot is lost forever.
		if relErr := s.doctors.ReleaseSlot(ctx, doctor.ID, req.SlotDate, req.SlotTime, appointmentID); relErr != nil {
			s.logger.Error().Err(relErr).
				Str("doctor_id", doctor.ID.String()).
				Str("slot_date", req.SlotDate).
				Str("slot_time", req.SlotTime).
				Msg("failed to roll back slot reservation")
		}
		s.countBooking("error")
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.countBooking("success")
	s.events.Emit(ctx, model.EventAppointmentBooked, apt)
	return apt, nil
}

// Cancel marks the appointment cancelled and releases its slot. It is
// idempotent: re-running a cancel, including one that failed between the
// mark and the release, converges on the same end state.
func (s *Service) Cancel(ctx context.Context, actor auth.Claims, appointmentID uuid.UUID) error {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return err
	}

	if !canActOn(actor, apt) {
		s.logger.Warn().
			Str("actor_id", actor.ActorID.String()).
			Str("appointment_id", apt.ID.String()).
			Msg("unauthorized cancellation attempt")
		return model.ErrUnauthorized
	}

	if apt.IsCompleted {
		return model.ErrAlreadyCompleted
	}

	if !apt.Cancelled {
		applied, err := s.appointments.MarkCancelled(ctx, apt.ID)
		if err != nil {
			return err
		}
		if !applied {
			// Lost a race; re-read to find out to whom.
			apt, err = s.appointments.Get(ctx, apt.ID)
			if err != nil {
				return err
			}
			if apt.IsCompleted {
				return model.ErrAlreadyCompleted
			}
			// Already cancelled by a concurrent call; fall through to
			// the release so a half-applied cancel still completes.
		}
	}

	// Owner-tagged release: a retried cancel cannot free a slot that was
	// since rebooked by someone else.
	if err := s.doctors.ReleaseSlot(ctx, apt.DoctorID, apt.SlotDate, apt.SlotTime, apt.ID); err != nil {
		// The cancelled mark is durable; the caller retries until the
		// slot is released.
		return err
	}

	if s.metrics != nil {
		s.metrics.CancellationsTotal.Inc()
	}
	s.events.Emit(ctx, model.EventAppointmentCancelled, apt)
	return nil
}

// Complete marks a paid-for visit as done. Only the appointment's doctor or
// an admin may do so, and never on a cancelled record.
func (s *Service) Complete(ctx context.Context, actor auth.Claims, appointmentID uuid.UUID) error {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return err
	}

	if actor.Role != auth.RoleAdmin && !(actor.Role == auth.RoleDoctor && actor.ActorID == apt.DoctorID) {
		return model.ErrUnauthorized
	}

	applied, err := s.appointments.MarkCompleted(ctx, apt.ID, apt.DoctorID)
	if err != nil {
		return err
	}
	if !applied {
		apt, err = s.appointments.Get(ctx, apt.ID)
		if err != nil {
			return err
		}
		if apt.Cancelled {
			return model.ErrAppointmentCancelled
		}
		if apt.IsCompleted {
			return nil
		}
		return fmt.Errorf("failed to complete appointment")
	}

	s.events.Emit(ctx, model.EventAppointmentCompleted, apt)
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientID)
}

func (s *Service) DoctorSlots(ctx context.Context, doctorID uuid.UUID) (model.BookedSlots, error) {
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.doctors.BookedSlots(ctx, doctorID)
}

func (s *Service) getPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	key := id.String()
	if cached, ok := s.patientCache.Get(key); ok {
		return cached.(*model.Patient), nil
	}

	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.patientCache.Set(key, patient, gocache.DefaultExpiration)
	return patient, nil
}

func (s *Service) countBooking(status string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func canActOn(actor auth.Claims, apt *model.Appointment) bool {
	switch actor.Role {
	case auth.RoleAdmin:
		return true
	case auth.RoleDoctor:
		return actor.ActorID == apt.DoctorID
	case auth.RolePatient:
		return actor.ActorID == apt.PatientID
	default:
		return false
	}
}
