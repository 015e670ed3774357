package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/9A-Ayush/Car-Repair-and-Service/internal/appointment"
	"github.com/9A-Ayush/Car-Repair-and-Service/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	userIDs, err := seedUsers(context.Background(), pool, 50)
	if err != nil {
		log.Fatalf("seed users: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, userIDs, 200); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d users", count)

	ids := make([]uuid.UUID, 0, count+1)

	adminID := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, name, email, phone, role, created_at, updated_at)
		VALUES ($1, 'Workshop Admin', 'admin@carservice.local', NULL, 'admin', now(), now())
		ON CONFLICT (email) DO NOTHING
	`, adminID)
	if err != nil {
		return nil, err
	}

	for i := 0; i < count; i++ {
		id := uuid.New()
		phone := gofakeit.Phone()
		_, err := pool.Exec(ctx, `
			INSERT INTO users (id, name, email, phone, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'user', now(), now())
			ON CONFLICT (email) DO NOTHING
		`, id, gofakeit.Name(), gofakeit.Email(), &phone)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, userIDs []uuid.UUID, count int) error {
	log.Printf("seeding %d appointments", count)

	statuses := []appointment.Status{
		appointment.StatusPending,
		appointment.StatusConfirmed,
		appointment.StatusInProgress,
		appointment.StatusCompleted,
		appointment.StatusCancelled,
	}
	times := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00"}

	for i := 0; i < count; i++ {
		var userID *uuid.UUID
		if len(userIDs) > 0 && gofakeit.Bool() {
			id := userIDs[gofakeit.Number(0, len(userIDs)-1)]
			userID = &id
		}

		status := statuses[gofakeit.Number(0, len(statuses)-1)]
		date := time.Now().UTC().AddDate(0, 0, gofakeit.Number(-30, 30))
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

		var seq int64
		if err := pool.QueryRow(ctx, `SELECT nextval('booking_ref_seq')`).Scan(&seq); err != nil {
			return err
		}

		var completedAt *time.Time
		if status == appointment.StatusCompleted {
			t := date.Add(18 * time.Hour)
			completedAt = &t
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO appointments (
				id, user_id, customer_name, customer_email, customer_phone, service,
				vehicle_make, vehicle_model, vehicle_year, vehicle_registration, vehicle_freeform,
				date, time_of_day, status, price, notes, completed_at, booking_ref,
				created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL, $11, $12, $13, NULL, '', $14, $15, now(), now())
			ON CONFLICT DO NOTHING
		`,
			uuid.New(), userID, gofakeit.Name(), gofakeit.Email(), gofakeit.Phone(),
			appointment.ServiceTypes[gofakeit.Number(0, len(appointment.ServiceTypes)-1)],
			gofakeit.CarMaker(), gofakeit.CarModel(),
			fmt.Sprintf("%d", gofakeit.Number(2005, 2025)),
			fmt.Sprintf("MH%02d%s%04d", gofakeit.Number(1, 48), strings.ToUpper(gofakeit.LetterN(2)), gofakeit.Number(0, 9999)),
			date, times[gofakeit.Number(0, len(times)-1)], status,
			completedAt, appointment.FormatBookingRef(time.Now(), seq),
		)
		if err != nil {
			return err
		}
	}

	return nil
}
