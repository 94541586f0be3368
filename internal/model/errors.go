package model

import "errors"

// Domain error kinds. Services return these (possibly wrapped); handlers map
// them to HTTP statuses at the boundary.
var (
	ErrInvalidInput        = errors.New("missing or malformed input")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorUnavailable   = errors.New("doctor is not available")
	ErrSlotTaken           = errors.New("slot is already booked")
	ErrUnauthorized        = errors.New("not allowed to act on this appointment")
	ErrAlreadyCompleted    = errors.New("appointment is already completed")
	ErrAppointmentCancelled = errors.New("appointment is cancelled")
	ErrAlreadyPaid          = errors.New("appointment is already paid")
	ErrInvalidSignature     = errors.New("payment signature mismatch")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
)
