package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/9A-Ayush/Car-Repair-and-Service/internal/appointment"
	"github.com/9A-Ayush/Car-Repair-and-Service/internal/user"
)

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}

		vehicle, ok := decodeVehicle(req.VehicleDetails)
		if !ok {
			writeError(w, http.StatusBadRequest, "Service, date, time and vehicle details are required")
			return
		}

		in := appointment.CreateInput{
			CustomerName: req.CustomerName,
			Email:        req.Email,
			Phone:        req.PhoneNumber,
			Service:      req.Service,
			Date:         req.Date,
			Time:         req.Time,
			Vehicle:      vehicle,
			Message:      req.Message,
		}
		if actor, authed := GetActor(r.Context()); authed {
			id := actor.ID
			in.UserID = &id
		}

		appt, err := svc.Create(r.Context(), in)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeSuccess(w, http.StatusCreated, "Appointment booked successfully", toResponse(appt))
	}
}

func chatbotAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatbotAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}

		// The chatbot sends the vehicle as an object or a bare string;
		// either is accepted here.
		vehicle, _ := decodeVehicle(req.VehicleDetails)

		in := appointment.CreateInput{
			CustomerName: req.CustomerName,
			Email:        req.Email,
			Phone:        req.PhoneNumber,
			Service:      req.Service,
			Date:         req.Date,
			Time:         req.Time,
			Vehicle:      vehicle,
			Message:      req.Message,
		}

		if req.UserID != "" && req.UserID != "anonymous" {
			if id, err := uuid.Parse(req.UserID); err == nil {
				in.UserID = &id
			}
		} else if actor, authed := GetActor(r.Context()); authed {
			id := actor.ID
			in.UserID = &id
		}

		appt, err := svc.CreateAnonymous(r.Context(), in)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeSuccess(w, http.StatusCreated, "Appointment created successfully", toResponse(appt))
	}
}

func listUserAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActor(r.Context())

		appointments, err := svc.ListByUser(r.Context(), actor.ID)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		resp := make([]AppointmentResponse, 0, len(appointments))
		for i := range appointments {
			resp = append(resp, toResponse(&appointments[i]))
		}

		writeSuccess(w, http.StatusOK, "Appointments retrieved successfully", resp)
	}
}

func listAllAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := svc.ListAll(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}

		resp := make([]AppointmentResponse, 0, len(details))
		for i := range details {
			resp = append(resp, toDetailResponse(&details[i]))
		}

		writeSuccess(w, http.StatusOK, "All appointments retrieved successfully", resp)
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be a valid UUID")
			return
		}

		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "Appointment retrieved successfully", toDetailResponse(detail))
	}
}

func getByBookingRefHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := svc.GetByBookingRef(r.Context(), chi.URLParam(r, "ref"))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		// Unauthenticated lookup: expose only what the customer already
		// knows plus the current status.
		resp := toResponse(appt)
		resp.CustomerEmail = ""
		resp.CustomerPhone = ""
		resp.UserID = nil

		writeSuccess(w, http.StatusOK, "Appointment retrieved successfully", resp)
	}
}

func updateStatusHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be a valid UUID")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}

		appt, err := svc.UpdateStatus(r.Context(), id, appointment.Status(req.Status))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "Appointment status updated successfully", toResponse(appt))
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be a valid UUID")
			return
		}

		actor, _ := GetActor(r.Context())

		appt, err := svc.Cancel(r.Context(), id, actor)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "Appointment cancelled successfully", toResponse(appt))
	}
}

func updateAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be a valid UUID")
			return
		}

		var req UpdateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}

		in := appointment.UpdateInput{
			Service: req.Service,
			Date:    req.Date,
			Time:    req.Time,
		}
		if len(req.VehicleDetails) > 0 {
			vehicle, ok := decodeVehicle(req.VehicleDetails)
			if !ok {
				writeError(w, http.StatusBadRequest, "vehicle details must be an object or a string")
				return
			}
			in.Vehicle = &vehicle
		}
		if req.Status != nil {
			status := appointment.Status(*req.Status)
			in.Status = &status
		}

		actor, _ := GetActor(r.Context())

		appt, err := svc.Update(r.Context(), id, actor, in)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "Appointment updated successfully", toResponse(appt))
	}
}

func deleteAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be a valid UUID")
			return
		}

		actor, _ := GetActor(r.Context())

		if err := svc.Delete(r.Context(), id, actor); err != nil {
			handleServiceError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, "Appointment deleted successfully", nil)
	}
}

func statsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}

		byStatus := make(map[string]int, len(stats.ByStatus))
		for status, n := range stats.ByStatus {
			byStatus[string(status)] = n
		}

		writeSuccess(w, http.StatusOK, "Appointment statistics retrieved successfully", StatsResponse{
			ByStatus: byStatus,
			Total:    stats.Total,
			Today:    stats.Today,
		})
	}
}

func availableSlotsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "date query parameter is required")
			return
		}

		slots, err := svc.AvailableSlots(r.Context(), date)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if slots == nil {
			slots = []string{}
		}

		writeSuccess(w, http.StatusOK, "Available time slots retrieved successfully", SlotsResponse{
			Date:  date,
			Slots: slots,
		})
	}
}

// handleServiceError maps domain errors to status codes. Unknown errors
// surface as a generic 500 with detail withheld from the response.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "Appointment not found")
	case errors.Is(err, user.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, appointment.ErrNotAllowed):
		writeError(w, http.StatusForbidden, "Not authorized to modify this appointment")
	case errors.Is(err, appointment.ErrSlotTaken):
		writeError(w, http.StatusConflict, "This time slot is no longer available. Please select another time.")
	case errors.Is(err, appointment.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "This slot is currently being booked, please retry shortly")
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
	}
}
