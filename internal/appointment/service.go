package appointment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/9A-Ayush/Car-Repair-and-Service/internal/config"
	redisclient "github.com/9A-Ayush/Car-Repair-and-Service/internal/redis"
	"github.com/9A-Ayush/Car-Repair-and-Service/internal/user"
)

var (
	ErrSlotTaken               = errors.New("time slot is no longer available")
	ErrSlotBeingBooked         = errors.New("slot is currently being booked, please retry")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotAllowed              = errors.New("not authorized to modify this appointment")
)

// BookingEmail is the templated payload handed to the mail gateway.
type BookingEmail struct {
	Name       string
	Service    string
	Date       time.Time
	Time       string
	Vehicle    string
	BookingRef string
	Status     string
}

// Mailer is the outbound notification gateway. Every call is
// best-effort: failures are logged by the service and never propagate.
type Mailer interface {
	SendBookingEmail(ctx context.Context, to string, e BookingEmail) error
}

// Actor identifies the caller for ownership checks.
type Actor struct {
	ID   uuid.UUID
	Role user.Role
}

func (a Actor) isAdmin() bool {
	return a.Role == user.RoleAdmin
}

type CreateInput struct {
	UserID       *uuid.UUID
	CustomerName string
	Email        string
	Phone        string
	Service      string
	Date         string
	Time         string
	Vehicle      Vehicle
	Message      string
}

// UpdateInput carries the allow-listed mutable fields. Nil means leave
// the field untouched.
type UpdateInput struct {
	Service *string
	Date    *string
	Time    *string
	Vehicle *Vehicle
	Status  *Status
}

type Service struct {
	repo   Repository
	users  user.Repository
	locker redisclient.Locker
	mailer Mailer
	cfg    config.Config
	now    func() time.Time
}

func NewService(repo Repository, users user.Repository, locker redisclient.Locker, mailer Mailer, cfg config.Config) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		locker: locker,
		mailer: mailer,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Create books an appointment on the authenticated path. The slot is
// reserved under a per slot lock so that concurrent requests for the
// same date and time cannot both insert; the check and the insert run
// inside the same critical section.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	return s.book(ctx, in, strings.TrimSpace(in.CustomerName))
}

// CreateAnonymous books an appointment on the chatbot path. Only
// service, date and time are mandatory, the vehicle may be free text,
// and an owner is attached only when the supplied user id resolves.
func (s *Service) CreateAnonymous(ctx context.Context, in CreateInput) (*Appointment, error) {
	if err := validateAnonymous(in); err != nil {
		return nil, err
	}

	if in.UserID != nil {
		if _, err := s.users.GetByID(ctx, *in.UserID); err != nil {
			if !errors.Is(err, user.ErrUserNotFound) {
				log.Printf("lookup user %s for anonymous booking: %v", *in.UserID, err)
			}
			in.UserID = nil
		}
	} else if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" {
		// The chatbot often knows the customer's email but not their
		// account; attach the booking when the address resolves.
		if u, err := s.users.GetByEmail(ctx, email); err == nil {
			in.UserID = &u.ID
		} else if !errors.Is(err, user.ErrUserNotFound) {
			log.Printf("lookup user by email for anonymous booking: %v", err)
		}
	}

	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		name = "Anonymous"
	}
	return s.book(ctx, in, name)
}

func (s *Service) book(ctx context.Context, in CreateInput, customerName string) (*Appointment, error) {
	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	timeOfDay := canonicalTimeOfDay(in.Time)

	appt := &Appointment{
		ID:            uuid.New(),
		UserID:        in.UserID,
		CustomerName:  customerName,
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.Email)),
		CustomerPhone: normalizePhone(in.Phone),
		Service:       in.Service,
		Vehicle:       normalizeVehicle(in.Vehicle),
		Date:          date,
		TimeOfDay:     timeOfDay,
		Status:        StatusPending,
		Notes:         strings.TrimSpace(in.Message),
	}

	err = s.locker.WithSlotLock(ctx, date.Format("2006-01-02"), timeOfDay, func(lockCtx context.Context) error {
		taken, err := s.repo.SlotTaken(lockCtx, date, timeOfDay)
		if err != nil {
			return fmt.Errorf("check slot availability: %w", err)
		}
		if taken {
			return ErrSlotTaken
		}

		seq, err := s.repo.NextBookingSeq(lockCtx)
		if err != nil {
			return fmt.Errorf("next booking sequence: %w", err)
		}
		appt.BookingRef = FormatBookingRef(s.now(), seq)

		if err := s.repo.Insert(lockCtx, appt); err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	if appt.CustomerEmail != "" {
		s.notify(ctx, appt.CustomerEmail, BookingEmail{
			Name:       appt.CustomerName,
			Service:    appt.Service,
			Date:       appt.Date,
			Time:       appt.TimeOfDay,
			Vehicle:    appt.Vehicle.Display(),
			BookingRef: appt.BookingRef,
			Status:     string(appt.Status),
		})
	}

	return appt, nil
}

// UpdateStatus moves an appointment to a new status. Transitions
// outside the legal graph are rejected.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !CanTransition(appt.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, appt.Status, status)
	}

	var completedAt *time.Time
	if status == StatusCompleted {
		t := s.now()
		completedAt = &t
	}

	updated, err := s.repo.UpdateStatus(ctx, appt.ID, status, completedAt)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.notifyOwner(ctx, updated, string(status))

	return updated, nil
}

// Cancel is update-status with the target forced to cancelled. The
// caller must own the appointment or be an administrator.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, caller Actor) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if err := authorize(appt, caller); err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, id, StatusCancelled)
}

// Update applies the allow-listed fields after an ownership check.
func (s *Service) Update(ctx context.Context, id uuid.UUID, caller Actor, in UpdateInput) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if err := authorize(appt, caller); err != nil {
		return nil, err
	}

	if in.Service != nil {
		if !validService(*in.Service) {
			return nil, fmt.Errorf("%w: unknown service %q", ErrValidation, *in.Service)
		}
		appt.Service = *in.Service
	}
	if in.Date != nil {
		date, err := ParseDate(*in.Date)
		if err != nil {
			return nil, err
		}
		appt.Date = date
	}
	if in.Time != nil {
		if !ValidTimeOfDay(*in.Time) {
			return nil, fmt.Errorf("%w: time must be HH:MM", ErrValidation)
		}
		appt.TimeOfDay = canonicalTimeOfDay(*in.Time)
	}
	if in.Vehicle != nil {
		appt.Vehicle = normalizeVehicle(*in.Vehicle)
	}
	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
		}
		if !CanTransition(appt.Status, *in.Status) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, appt.Status, *in.Status)
		}
		appt.Status = *in.Status
		if appt.Status == StatusCompleted && appt.CompletedAt == nil {
			t := s.now()
			appt.CompletedAt = &t
		}
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	s.notifyOwner(ctx, appt, string(appt.Status))

	return appt, nil
}

// Delete removes the appointment entirely. Fields are snapshotted
// first so the cancellation email can still be composed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, caller Actor) error {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}
	if err := authorize(appt, caller); err != nil {
		return err
	}

	snapshot := *appt

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.notifyOwner(ctx, &snapshot, string(StatusCancelled))

	return nil
}

// Get retrieves a fully hydrated appointment by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	detail, err := s.repo.GetDetailByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return detail, nil
}

// GetByBookingRef looks an appointment up by its customer-facing
// reference, the unauthenticated status-check path.
func (s *Service) GetByBookingRef(ctx context.Context, ref string) (*Appointment, error) {
	appt, err := s.repo.GetByBookingRef(ctx, strings.ToUpper(strings.TrimSpace(ref)))
	if err != nil {
		return nil, fmt.Errorf("get appointment by ref: %w", err)
	}
	return appt, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Appointment, error) {
	appointments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by user: %w", err)
	}
	return appointments, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Detail, error) {
	appointments, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all appointments: %w", err)
	}
	return appointments, nil
}

// CheckAvailability reports whether a slot is free of non-cancelled
// appointments. Advisory outside the booking lock.
func (s *Service) CheckAvailability(ctx context.Context, dateStr, timeOfDay string) (bool, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return false, err
	}
	if !ValidTimeOfDay(timeOfDay) {
		return false, fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}

	taken, err := s.repo.SlotTaken(ctx, date, canonicalTimeOfDay(timeOfDay))
	if err != nil {
		return false, fmt.Errorf("check slot availability: %w", err)
	}
	return !taken, nil
}

// AvailableSlots returns the open times on the booking grid for a date.
func (s *Service) AvailableSlots(ctx context.Context, dateStr string) ([]string, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.TakenTimes(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list taken times: %w", err)
	}
	return openSlots(taken), nil
}

// Stats aggregates appointment counts by status plus the total and the
// count for the current calendar day (local midnight to midnight).
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.repo.CountBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}

	return &Stats{ByStatus: byStatus, Total: total, Today: today}, nil
}

func authorize(a *Appointment, caller Actor) error {
	if caller.isAdmin() {
		return nil
	}
	if a.UserID != nil && *a.UserID == caller.ID {
		return nil
	}
	return ErrNotAllowed
}

// notifyOwner emails the owning user about a lifecycle change, if the
// appointment has one and the address resolves.
func (s *Service) notifyOwner(ctx context.Context, a *Appointment, status string) {
	if a.UserID == nil {
		return
	}

	owner, err := s.users.GetByID(ctx, *a.UserID)
	if err != nil {
		log.Printf("resolve owner %s for notification: %v", *a.UserID, err)
		return
	}
	if owner.Email == "" {
		return
	}

	s.notify(ctx, owner.Email, BookingEmail{
		Name:       owner.Name,
		Service:    a.Service,
		Date:       a.Date,
		Time:       a.TimeOfDay,
		Vehicle:    a.Vehicle.Display(),
		BookingRef: a.BookingRef,
		Status:     status,
	})
}

// notify dispatches a booking email synchronously but time-bounded.
// Delivery failure is logged and never surfaced: booking success must
// not depend on the mail gateway.
func (s *Service) notify(ctx context.Context, to string, e BookingEmail) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	defer cancel()

	if err := s.mailer.SendBookingEmail(sendCtx, to, e); err != nil {
		log.Printf("failed to send booking email to %s (ref %s): %v", to, e.BookingRef, err)
	}
}
