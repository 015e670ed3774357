package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9A-Ayush/Car-Repair-and-Service/internal/appointment"
)

func sampleEmail() appointment.BookingEmail {
	return appointment.BookingEmail{
		Name:       "Jane Doe",
		Service:    "Oil Change",
		Date:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Time:       "09:00",
		Vehicle:    "Not Specified Civic (2020) - AB12CD3456",
		BookingRef: "APT2025060001",
		Status:     "pending",
	}
}

func TestSendBookingEmail_DisabledWithoutHost(t *testing.T) {
	m := NewSMTPMailer("", "587", "")

	err := m.SendBookingEmail(context.Background(), "jane@example.com", sampleEmail())
	require.NoError(t, err)
}

func TestSendBookingEmail_RespectsCancelledContext(t *testing.T) {
	m := NewSMTPMailer("smtp.invalid", "587", "no-reply@carservice.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendBookingEmail(ctx, "jane@example.com", sampleEmail())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBookingBody(t *testing.T) {
	body := bookingBody(sampleEmail())

	assert.Contains(t, body, "Hello Jane Doe,")
	assert.Contains(t, body, "Service: Oil Change")
	assert.Contains(t, body, "Date: Sunday, June 1, 2025")
	assert.Contains(t, body, "Time: 09:00")
	assert.Contains(t, body, "Booking Reference: APT2025060001")
	assert.Contains(t, body, "Status: pending")
}

func TestBookingBody_FallbackName(t *testing.T) {
	e := sampleEmail()
	e.Name = ""
	e.BookingRef = ""

	body := bookingBody(e)

	assert.Contains(t, body, "Hello Valued Customer,")
	assert.NotContains(t, body, "Booking Reference:")
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("Car Service Center <no-reply@carservice.com>", "jane@example.com", "Your Service Appointment Confirmation", "body\r\n")

	assert.Contains(t, msg, "From: Car Service Center <no-reply@carservice.com>\r\n")
	assert.Contains(t, msg, "To: jane@example.com\r\n")
	assert.Contains(t, msg, "Subject: Your Service Appointment Confirmation\r\n")
	assert.Contains(t, msg, "\r\n\r\nbody")
}
