package model

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2,omitempty"`
}

type Doctor struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Image      string    `db:"image" json:"image"`
	Speciality string    `db:"speciality" json:"speciality"`
	Degree     string    `db:"degree" json:"degree"`
	Experience string    `db:"experience" json:"experience"`
	About      string    `db:"about" json:"about"`
	// Fees is in the major currency unit (rupees for INR); the gateway
	// order amount is derived from it in paise.
	Fees         int64     `db:"fees" json:"fees"`
	Available    bool      `db:"available" json:"available"`
	AddressLine1 string    `db:"address_line1" json:"-"`
	AddressLine2 string    `db:"address_line2" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (d *Doctor) Address() Address {
	return Address{Line1: d.AddressLine1, Line2: d.AddressLine2}
}

// DoctorSnapshot is the display data frozen into an appointment at booking
// time. It is an owned copy: later profile edits never alter it.
type DoctorSnapshot struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Image      string    `json:"image"`
	Speciality string    `json:"speciality"`
	Address    Address   `json:"address"`
	Fees       int64     `json:"fees"`
}

func (d *Doctor) Snapshot() DoctorSnapshot {
	return DoctorSnapshot{
		ID:         d.ID,
		Name:       d.Name,
		Image:      d.Image,
		Speciality: d.Speciality,
		Address:    d.Address(),
		Fees:       d.Fees,
	}
}

// BookedSlots maps a slot date key (D_M_YYYY) to the time labels already
// reserved on that date. Within one date a time label appears at most once.
type BookedSlots map[string][]string
