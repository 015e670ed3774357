package appointment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation error")

var (
	timeRe  = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?\d{10,15}$`)
)

func ValidTimeOfDay(s string) bool {
	return timeRe.MatchString(s)
}

// canonicalTimeOfDay zero-pads a single digit hour. The validator
// accepts both "9:00" and "09:00"; slot comparison, lock keys and the
// unique index all work on the stored string, so the two spellings must
// collapse to one before anything persists.
func canonicalTimeOfDay(s string) string {
	if len(s) == len("9:00") {
		return "0" + s
	}
	return s
}

func validService(s string) bool {
	for _, svc := range ServiceTypes {
		if svc == s {
			return true
		}
	}
	return false
}

// ParseDate accepts a plain calendar date or an RFC 3339 timestamp and
// truncates to midnight UTC, since date and time of day are stored and
// compared separately.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// normalizePhone strips separators the way the booking form allows them.
func normalizePhone(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(s))
}

// normalizeVehicle trims all structured fields, uppercases the
// registration and falls back to the default make.
func normalizeVehicle(v Vehicle) Vehicle {
	if v.IsFreeform() {
		return Vehicle{Freeform: strings.TrimSpace(v.Freeform)}
	}
	vehicleMake := strings.TrimSpace(v.Make)
	if vehicleMake == "" {
		vehicleMake = defaultVehicleMake
	}
	return Vehicle{
		Make:         vehicleMake,
		Model:        strings.TrimSpace(v.Model),
		Year:         strings.TrimSpace(v.Year),
		Registration: strings.ToUpper(strings.TrimSpace(v.Registration)),
	}
}

func validationError(fields ...string) error {
	return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(fields, ", "))
}

// validateCreate checks the authenticated booking path: everything is
// mandatory and the vehicle must be structured.
func validateCreate(in CreateInput) error {
	var missing []string
	if strings.TrimSpace(in.Service) == "" {
		missing = append(missing, "service")
	}
	if strings.TrimSpace(in.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(in.Time) == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return validationError(missing...)
	}

	if in.Vehicle.IsFreeform() {
		return fmt.Errorf("%w: vehicle details must be structured", ErrValidation)
	}
	var vmissing []string
	if strings.TrimSpace(in.Vehicle.Model) == "" {
		vmissing = append(vmissing, "vehicle model")
	}
	if strings.TrimSpace(in.Vehicle.Year) == "" {
		vmissing = append(vmissing, "vehicle year")
	}
	if strings.TrimSpace(in.Vehicle.Registration) == "" {
		vmissing = append(vmissing, "registration number")
	}
	if len(vmissing) > 0 {
		return validationError(vmissing...)
	}

	var cmissing []string
	if strings.TrimSpace(in.CustomerName) == "" {
		cmissing = append(cmissing, "customer name")
	}
	if strings.TrimSpace(in.Email) == "" {
		cmissing = append(cmissing, "email")
	}
	if strings.TrimSpace(in.Phone) == "" {
		cmissing = append(cmissing, "phone number")
	}
	if len(cmissing) > 0 {
		return validationError(cmissing...)
	}

	return validateCommon(in)
}

// validateAnonymous checks the relaxed chatbot booking path: only
// service, date and time are mandatory.
func validateAnonymous(in CreateInput) error {
	var missing []string
	if strings.TrimSpace(in.Service) == "" {
		missing = append(missing, "service")
	}
	if strings.TrimSpace(in.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(in.Time) == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return validationError(missing...)
	}

	return validateCommon(in)
}

func validateCommon(in CreateInput) error {
	if !validService(in.Service) {
		return fmt.Errorf("%w: unknown service %q", ErrValidation, in.Service)
	}
	if !ValidTimeOfDay(in.Time) {
		return fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}
	if email := strings.TrimSpace(in.Email); email != "" && !emailRe.MatchString(email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if phone := normalizePhone(in.Phone); phone != "" && !phoneRe.MatchString(phone) {
		return fmt.Errorf("%w: invalid phone number", ErrValidation)
	}
	return nil
}
