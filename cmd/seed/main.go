package main

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/medibook/booking-api/internal/config"
	"github.com/medibook/booking-api/internal/repository/postgres"
)

// Seeds development doctors and patients. Seeded identities get a known
// password so local tokens can be minted against them.
const seedPassword = "medibook-dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	gofakeit.Seed(time.Now().UnixNano())

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash seed password")
	}

	if err := seedDoctors(db, 25, string(hash)); err != nil {
		log.Fatal().Err(err).Msg("failed to seed doctors")
	}
	if err := seedPatients(db, 200); err != nil {
		log.Fatal().Err(err).Msg("failed to seed patients")
	}

	log.Info().Msg("seed complete")
}

var specialities = []string{
	"General physician",
	"Gynecologist",
	"Dermatologist",
	"Pediatrician",
	"Neurologist",
	"Gastroenterologist",
}

func seedDoctors(db *sqlx.DB, count int, passwordHash string) error {
	log.Info().Int("count", count).Msg("seeding doctors")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := 0; i < count; i++ {
		name := "Dr. " + gofakeit.Name()
		_, err := tx.Exec(`
			INSERT INTO doctors (
				id, name, email, password_hash, image, speciality, degree,
				experience, about, fees, available,
				address_line1, address_line2, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, $11, $12, now(), now())
		`,
			uuid.New(),
			name,
			gofakeit.Email(),
			passwordHash,
			fmt.Sprintf("https://i.pravatar.cc/150?u=%d", i),
			specialities[gofakeit.Number(0, len(specialities)-1)],
			"MBBS",
			fmt.Sprintf("%d Years", gofakeit.Number(1, 20)),
			gofakeit.Sentence(12),
			int64(gofakeit.Number(300, 2000)),
			gofakeit.Street(),
			gofakeit.City(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func seedPatients(db *sqlx.DB, count int) error {
	log.Info().Int("count", count).Msg("seeding patients")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := 0; i < count; i++ {
		_, err := tx.Exec(`
			INSERT INTO patients (
				id, name, email, phone, image, dob, gender,
				address_line1, address_line2, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		`,
			uuid.New(),
			gofakeit.Name(),
			gofakeit.Email(),
			gofakeit.Phone(),
			fmt.Sprintf("https://i.pravatar.cc/150?u=p%d", i),
			gofakeit.Date().Format("2006-01-02"),
			gofakeit.Gender(),
			gofakeit.Street(),
			gofakeit.City(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
