package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
)

type DoctorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)

	// ReserveSlot atomically claims a (doctor, date, time) slot for an
	// appointment. Exactly one concurrent caller wins; the rest get
	// model.ErrSlotTaken.
	ReserveSlot(ctx context.Context, doctorID uuid.UUID, slotDate, slotTime string, appointmentID uuid.UUID) error

	// ReleaseSlot frees the slot held by appointmentID. Releasing an
	// already-free slot, or one since rebooked under a different
	// appointment, is a no-op so retried cancellations stay safe.
	ReleaseSlot(ctx context.Context, doctorID uuid.UUID, slotDate, slotTime string, appointmentID uuid.UUID) error

	BookedSlots(ctx context.Context, doctorID uuid.UUID) (model.BookedSlots, error)
}

type PatientRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)

	// State transitions are conditional single-row updates keyed on the
	// expected prior state. They report whether the transition applied so
	// callers can distinguish "done now" from "lost the race".
	MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID, orderID, paymentID, signature string) (bool, error)
	MarkCompleted(ctx context.Context, id, doctorID uuid.UUID) (bool, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
}
