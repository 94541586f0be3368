package model

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	Image        string    `db:"image" json:"image"`
	DOB          string    `db:"dob" json:"dob"`
	Gender       string    `db:"gender" json:"gender"`
	AddressLine1 string    `db:"address_line1" json:"-"`
	AddressLine2 string    `db:"address_line2" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PatientSnapshot mirrors DoctorSnapshot: the patient display data frozen
// into an appointment at booking time.
type PatientSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
	Image string    `json:"image"`
	DOB   string    `json:"dob"`
}

func (p *Patient) Snapshot() PatientSnapshot {
	return PatientSnapshot{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
		Image: p.Image,
		DOB:   p.DOB,
	}
}
