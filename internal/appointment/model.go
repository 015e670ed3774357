package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the legal status graph. Cancellation is reachable from
// every non-terminal state; completed and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Services the workshop offers. Bookings outside this set are rejected.
var ServiceTypes = []string{
	"Regular Maintenance",
	"Engine Repair",
	"Brake Service",
	"Oil Change",
	"Tire Service",
	"AC Service",
	"Other",
}

const defaultVehicleMake = "Not Specified"

// Vehicle is a tagged variant: either the structured descriptor required
// on the authenticated booking path, or free text accepted from the
// chatbot path. Freeform being non-empty marks the loose variant.
type Vehicle struct {
	Make         string
	Model        string
	Year         string
	Registration string
	Freeform     string
}

func (v Vehicle) IsFreeform() bool {
	return v.Freeform != ""
}

// Display renders the vehicle for emails and admin listings.
func (v Vehicle) Display() string {
	if v.IsFreeform() {
		return v.Freeform
	}
	return fmt.Sprintf("%s %s (%s) - %s", v.Make, v.Model, v.Year, v.Registration)
}

type Appointment struct {
	ID            uuid.UUID
	UserID        *uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Service       string
	Vehicle       Vehicle
	Date          time.Time // calendar date, midnight UTC
	TimeOfDay     string    // HH:MM, stored separately from Date
	Status        Status
	Price         *float64
	Notes         string
	CompletedAt   *time.Time
	BookingRef    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Detail is an appointment with its owning user resolved for display.
// Owner fields are nil for anonymous bookings.
type Detail struct {
	Appointment
	OwnerName  *string
	OwnerEmail *string
}

type Stats struct {
	ByStatus map[Status]int
	Total    int
	Today    int
}
