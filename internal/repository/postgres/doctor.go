package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
)

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, name, email, image, speciality, degree, experience, about,
		       fees, available, address_line1, address_line2,
		       created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

// ReserveSlot is the single atomic step the ledger invariant rests on. The
// primary key on (doctor_id, slot_date, slot_time) arbitrates concurrent
// inserts inside Postgres: exactly one wins, the rest insert zero rows.
// There is no read-modify-write in application memory.
func (r *doctorRepository) ReserveSlot(ctx context.Context, doctorID uuid.UUID, slotDate, slotTime string, appointmentID uuid.UUID) error {
	query := `
		INSERT INTO doctor_slots (doctor_id, slot_date, slot_time, appointment_id, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (doctor_id, slot_date, slot_time) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, doctorID, slotDate, slotTime, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to reserve slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrSlotTaken
	}
	return nil
}

func (r *doctorRepository) ReleaseSlot(ctx context.Context, doctorID uuid.UUID, slotDate, slotTime string, appointmentID uuid.UUID) error {
	query := `
		DELETE FROM doctor_slots
		WHERE doctor_id = $1 AND slot_date = $2 AND slot_time = $3
		  AND appointment_id = $4
	`
	// Zero rows deleted means the slot was already free, or held by a
	// later booking; retried cancellations land here and that is fine.
	if _, err := r.db.ExecContext(ctx, query, doctorID, slotDate, slotTime, appointmentID); err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	return nil
}

func (r *doctorRepository) BookedSlots(ctx context.Context, doctorID uuid.UUID) (model.BookedSlots, error) {
	query := `
		SELECT slot_date, slot_time
		FROM doctor_slots
		WHERE doctor_id = $1
		ORDER BY slot_date, slot_time
	`
	rows, err := r.db.QueryxContext(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked slots: %w", err)
	}
	defer rows.Close()

	booked := make(model.BookedSlots)
	for rows.Next() {
		var date, timeLabel string
		if err := rows.Scan(&date, &timeLabel); err != nil {
			return nil, fmt.Errorf("failed to scan booked slot: %w", err)
		}
		booked[date] = append(booked[date], timeLabel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booked slots: %w", err)
	}
	return booked, nil
}
