package model

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	SlotDate  string    `db:"slot_date" json:"slot_date"`
	SlotTime  string    `db:"slot_time" json:"slot_time"`

	// Snapshots are owned copies captured at booking time, stored as
	// jsonb. Historical records must not change when profiles do.
	PatientSnapshot PatientSnapshot `db:"patient_snapshot" json:"patient_data"`
	DoctorSnapshot  DoctorSnapshot  `db:"doctor_snapshot" json:"doctor_data"`

	// Amount is copied from the doctor's fees at booking time and is
	// immutable thereafter.
	Amount int64 `db:"amount" json:"amount"`

	Cancelled   bool `db:"cancelled" json:"cancelled"`
	Paid        bool `db:"paid" json:"paid"`
	IsCompleted bool `db:"is_completed" json:"is_completed"`

	// Gateway correlation fields, populated only after successful
	// signature verification.
	OrderID   *string `db:"order_id" json:"order_id,omitempty"`
	PaymentID *string `db:"payment_id" json:"payment_id,omitempty"`
	Signature *string `db:"signature" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type BookAppointmentRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
	SlotDate string    `json:"slot_date" binding:"required,slotdate"`
	SlotTime string    `json:"slot_time" binding:"required,max=32"`
}

type CreatePaymentOrderRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" binding:"required"`
}

type VerifyPaymentRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" binding:"required"`
	OrderID       string    `json:"razorpay_order_id" binding:"required"`
	PaymentID     string    `json:"razorpay_payment_id" binding:"required"`
	Signature     string    `json:"razorpay_signature" binding:"required"`
}

// slotDatePattern matches the D_M_YYYY ledger key format, e.g. "10_6_2025".
var slotDatePattern = regexp.MustCompile(`^\d{1,2}_\d{1,2}_\d{4}$`)

func ValidSlotDate(s string) bool {
	return slotDatePattern.MatchString(s)
}
