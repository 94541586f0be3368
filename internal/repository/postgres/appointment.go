package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
)

const appointmentColumns = `
	id, patient_id, doctor_id, slot_date, slot_time,
	patient_snapshot, doctor_snapshot, amount,
	cancelled, paid, is_completed,
	order_id, payment_id, signature,
	created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, slot_date, slot_time,
			patient_snapshot, doctor_snapshot, amount,
			cancelled, paid, is_completed,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.PatientID,
		apt.DoctorID,
		apt.SlotDate,
		apt.SlotTime,
		apt.PatientSnapshot,
		apt.DoctorSnapshot,
		apt.Amount,
		apt.Cancelled,
		apt.Paid,
		apt.IsCompleted,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// MarkCancelled flips the cancelled flag only when the appointment is still
// cancellable. The WHERE clause serializes racing cancel/verify/complete
// calls at the row: whoever commits first wins, the loser sees zero rows.
func (r *appointmentRepository) MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE appointments
		SET cancelled = TRUE, updated_at = now()
		WHERE id = $1 AND cancelled = FALSE AND is_completed = FALSE
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to cancel appointment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// MarkPaid applies the Paid transition exactly once. A cancelled or
// already-paid record never matches, so a late gateway callback cannot
// overwrite either state.
func (r *appointmentRepository) MarkPaid(ctx context.Context, id uuid.UUID, orderID, paymentID, signature string) (bool, error) {
	query := `
		UPDATE appointments
		SET paid = TRUE, order_id = $2, payment_id = $3, signature = $4,
		    updated_at = now()
		WHERE id = $1 AND cancelled = FALSE AND paid = FALSE
	`
	result, err := r.db.ExecContext(ctx, query, id, orderID, paymentID, signature)
	if err != nil {
		return false, fmt.Errorf("failed to mark appointment paid: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *appointmentRepository) MarkCompleted(ctx context.Context, id, doctorID uuid.UUID) (bool, error) {
	query := `
		UPDATE appointments
		SET is_completed = TRUE, updated_at = now()
		WHERE id = $1 AND doctor_id = $2
		  AND cancelled = FALSE AND is_completed = FALSE
	`
	result, err := r.db.ExecContext(ctx, query, id, doctorID)
	if err != nil {
		return false, fmt.Errorf("failed to complete appointment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
