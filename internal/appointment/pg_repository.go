package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `
	id, user_id, customer_name, customer_email, customer_phone, service,
	vehicle_make, vehicle_model, vehicle_year, vehicle_registration, vehicle_freeform,
	date, time_of_day, status, price, notes, completed_at, booking_ref,
	created_at, updated_at`

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var userID *uuid.UUID
	var freeform *string
	var price *float64
	var completedAt *time.Time

	err := row.Scan(
		&a.ID,
		&userID,
		&a.CustomerName,
		&a.CustomerEmail,
		&a.CustomerPhone,
		&a.Service,
		&a.Vehicle.Make,
		&a.Vehicle.Model,
		&a.Vehicle.Year,
		&a.Vehicle.Registration,
		&freeform,
		&a.Date,
		&a.TimeOfDay,
		&a.Status,
		&price,
		&a.Notes,
		&completedAt,
		&a.BookingRef,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.UserID = userID
	if freeform != nil {
		a.Vehicle.Freeform = *freeform
	}
	a.Price = price
	a.CompletedAt = completedAt
	return &a, nil
}

func scanDetail(row pgx.Row) (*Detail, error) {
	var d Detail
	var userID *uuid.UUID
	var freeform *string
	var price *float64
	var completedAt *time.Time

	err := row.Scan(
		&d.ID,
		&userID,
		&d.CustomerName,
		&d.CustomerEmail,
		&d.CustomerPhone,
		&d.Service,
		&d.Vehicle.Make,
		&d.Vehicle.Model,
		&d.Vehicle.Year,
		&d.Vehicle.Registration,
		&freeform,
		&d.Date,
		&d.TimeOfDay,
		&d.Status,
		&price,
		&d.Notes,
		&completedAt,
		&d.BookingRef,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.OwnerName,
		&d.OwnerEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	d.UserID = userID
	if freeform != nil {
		d.Vehicle.Freeform = *freeform
	}
	d.Price = price
	d.CompletedAt = completedAt
	return &d, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Interface methods

func (r *PgRepository) NextBookingSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `SELECT nextval('booking_ref_seq')`).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *PgRepository) Insert(ctx context.Context, a *Appointment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (
			id, user_id, customer_name, customer_email, customer_phone, service,
			vehicle_make, vehicle_model, vehicle_year, vehicle_registration, vehicle_freeform,
			date, time_of_day, status, price, notes, booking_ref, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())
		RETURNING created_at, updated_at
	`,
		a.ID, a.UserID, a.CustomerName, a.CustomerEmail, a.CustomerPhone, a.Service,
		a.Vehicle.Make, a.Vehicle.Model, a.Vehicle.Year, a.Vehicle.Registration, nullable(a.Vehicle.Freeform),
		a.Date, a.TimeOfDay, a.Status, a.Price, a.Notes, a.BookingRef,
	)

	err := row.Scan(&a.CreatedAt, &a.UpdatedAt)

	// The partial unique index on (date, time_of_day) is the backstop
	// when the slot lock could not be taken.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_appointments_slot" {
		return ErrSlotTaken
	}
	return err
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetByBookingRef(ctx context.Context, ref string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE booking_ref = $1
	`, ref)
	return scanAppointment(row)
}

func (r *PgRepository) GetDetailByID(ctx context.Context, id uuid.UUID) (*Detail, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT a.id, a.user_id, a.customer_name, a.customer_email, a.customer_phone, a.service,
		       a.vehicle_make, a.vehicle_model, a.vehicle_year, a.vehicle_registration, a.vehicle_freeform,
		       a.date, a.time_of_day, a.status, a.price, a.notes, a.completed_at, a.booking_ref,
		       a.created_at, a.updated_at,
		       u.name, u.email
		FROM appointments a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`, id)
	return scanDetail(row)
}

func (r *PgRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		ORDER BY date DESC, time_of_day DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListAll(ctx context.Context) ([]Detail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.user_id, a.customer_name, a.customer_email, a.customer_phone, a.service,
		       a.vehicle_make, a.vehicle_model, a.vehicle_year, a.vehicle_registration, a.vehicle_freeform,
		       a.date, a.time_of_day, a.status, a.price, a.notes, a.completed_at, a.booking_ref,
		       a.created_at, a.updated_at,
		       u.name, u.email
		FROM appointments a
		LEFT JOIN users u ON u.id = a.user_id
		ORDER BY a.date DESC, a.time_of_day DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) Update(ctx context.Context, a *Appointment) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET service = $2,
		    vehicle_make = $3,
		    vehicle_model = $4,
		    vehicle_year = $5,
		    vehicle_registration = $6,
		    vehicle_freeform = $7,
		    date = $8,
		    time_of_day = $9,
		    status = $10,
		    price = $11,
		    notes = $12,
		    completed_at = $13,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`,
		a.ID, a.Service,
		a.Vehicle.Make, a.Vehicle.Model, a.Vehicle.Year, a.Vehicle.Registration, nullable(a.Vehicle.Freeform),
		a.Date, a.TimeOfDay, a.Status, a.Price, a.Notes, a.CompletedAt,
	)

	err := row.Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAppointmentNotFound
	}
	return err
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, completedAt *time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    completed_at = COALESCE($3, completed_at),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, status, completedAt)

	return scanAppointment(row)
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) SlotTaken(ctx context.Context, date time.Time, timeOfDay string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE date = $1 AND time_of_day = $2 AND status <> 'cancelled'
		)
	`, date, timeOfDay).Scan(&taken)
	if err != nil {
		return false, err
	}
	return taken, nil
}

func (r *PgRepository) TakenTimes(ctx context.Context, date time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT time_of_day
		FROM appointments
		WHERE date = $1 AND status <> 'cancelled'
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return times, nil
}

func (r *PgRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM appointments
		GROUP BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var s Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *PgRepository) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM appointments
		WHERE date >= $1 AND date < $2
	`, from, to).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
