package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/9A-Ayush/Car-Repair-and-Service/internal/appointment"
)

// VehicleDetails mirrors the structured wire shape of the vehicle
// descriptor. The chatbot path may instead send a bare string; see
// decodeVehicle.
type VehicleDetails struct {
	Make               string     `json:"make,omitempty"`
	Model              string     `json:"model"`
	Year               flexString `json:"year"`
	RegistrationNumber string     `json:"registrationNumber"`
}

// flexString accepts a JSON string or number. Booking forms send the
// vehicle year both ways.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// decodeVehicle normalizes the loosely typed vehicleDetails field into
// the tagged variant before the core ever sees it.
func decodeVehicle(raw json.RawMessage) (appointment.Vehicle, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return appointment.Vehicle{}, false
	}

	var vd VehicleDetails
	if err := json.Unmarshal(raw, &vd); err == nil {
		return appointment.Vehicle{
			Make:         vd.Make,
			Model:        vd.Model,
			Year:         string(vd.Year),
			Registration: vd.RegistrationNumber,
		}, true
	}

	var freeform string
	if err := json.Unmarshal(raw, &freeform); err == nil {
		return appointment.Vehicle{Freeform: freeform}, true
	}

	return appointment.Vehicle{}, false
}

type CreateAppointmentRequest struct {
	Service        string          `json:"service"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	VehicleDetails json.RawMessage `json:"vehicleDetails"`
	CustomerName   string          `json:"customerName"`
	Email          string          `json:"email"`
	PhoneNumber    string          `json:"phoneNumber"`
	Message        string          `json:"message"`
}

type ChatbotAppointmentRequest struct {
	CreateAppointmentRequest
	UserID string `json:"userId"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdateAppointmentRequest struct {
	Service        *string         `json:"service"`
	Date           *string         `json:"date"`
	Time           *string         `json:"time"`
	VehicleDetails json.RawMessage `json:"vehicleDetails"`
	Status         *string         `json:"status"`
}

type AppointmentResponse struct {
	ID             uuid.UUID  `json:"id"`
	UserID         *uuid.UUID `json:"userId,omitempty"`
	CustomerName   string     `json:"customerName"`
	CustomerEmail  string     `json:"customerEmail,omitempty"`
	CustomerPhone  string     `json:"customerPhone,omitempty"`
	Service        string     `json:"service"`
	VehicleDetails any        `json:"vehicleDetails"`
	Date           string     `json:"date"`
	Time           string     `json:"time"`
	Status         string     `json:"status"`
	Price          *float64   `json:"price,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	BookingRef     string     `json:"bookingRef"`
	CreatedAt      time.Time  `json:"createdAt"`
	OwnerName      *string    `json:"ownerName,omitempty"`
	OwnerEmail     *string    `json:"ownerEmail,omitempty"`
}

type StatsResponse struct {
	ByStatus map[string]int `json:"byStatus"`
	Total    int            `json:"total"`
	Today    int            `json:"today"`
}

type SlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

func toResponse(a *appointment.Appointment) AppointmentResponse {
	var vehicle any
	if a.Vehicle.IsFreeform() {
		vehicle = a.Vehicle.Freeform
	} else {
		vehicle = VehicleDetails{
			Make:               a.Vehicle.Make,
			Model:              a.Vehicle.Model,
			Year:               flexString(a.Vehicle.Year),
			RegistrationNumber: a.Vehicle.Registration,
		}
	}

	return AppointmentResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		CustomerName:   a.CustomerName,
		CustomerEmail:  a.CustomerEmail,
		CustomerPhone:  a.CustomerPhone,
		Service:        a.Service,
		VehicleDetails: vehicle,
		Date:           a.Date.Format("2006-01-02"),
		Time:           a.TimeOfDay,
		Status:         string(a.Status),
		Price:          a.Price,
		Notes:          a.Notes,
		CompletedAt:    a.CompletedAt,
		BookingRef:     a.BookingRef,
		CreatedAt:      a.CreatedAt,
	}
}

func toDetailResponse(d *appointment.Detail) AppointmentResponse {
	resp := toResponse(&d.Appointment)
	resp.OwnerName = d.OwnerName
	resp.OwnerEmail = d.OwnerEmail
	return resp
}
