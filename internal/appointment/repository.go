package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	// NextBookingSeq draws the next value from the booking reference
	// sequence. The sequence is the uniqueness source for references.
	NextBookingSeq(ctx context.Context) (int64, error)

	Insert(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetByBookingRef(ctx context.Context, ref string) (*Appointment, error)
	GetDetailByID(ctx context.Context, id uuid.UUID) (*Detail, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]Appointment, error)
	ListAll(ctx context.Context) ([]Detail, error)

	Update(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, completedAt *time.Time) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Slot availability
	SlotTaken(ctx context.Context, date time.Time, timeOfDay string) (bool, error)
	TakenTimes(ctx context.Context, date time.Time) ([]string, error)

	// Statistics
	CountByStatus(ctx context.Context) (map[Status]int, error)
	CountBetween(ctx context.Context, from, to time.Time) (int, error)
}
