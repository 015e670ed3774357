package notification

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"

	"github.com/9A-Ayush/Car-Repair-and-Service/internal/appointment"
)

// SMTPMailer sends booking emails through a plain SMTP relay. An empty
// host disables delivery entirely, which keeps local development quiet.
type SMTPMailer struct {
	addr string
	from string
}

func NewSMTPMailer(host, port, from string) *SMTPMailer {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "Car Service Center <no-reply@carservice.com>"
	}

	addr := ""
	if host != "" {
		addr = net.JoinHostPort(host, port)
	}

	return &SMTPMailer{addr: addr, from: from}
}

func (m *SMTPMailer) SendBookingEmail(ctx context.Context, to string, e appointment.BookingEmail) error {
	if m.addr == "" {
		log.Printf("email disabled, skipping booking email to %s (ref %s)", to, e.BookingRef)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(m.from, to, "Your Service Appointment Confirmation", bookingBody(e))

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send booking email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func bookingBody(e appointment.BookingEmail) string {
	name := e.Name
	if name == "" {
		name = "Valued Customer"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", name)
	b.WriteString("Your appointment has been updated. Here are the details:\r\n\r\n")
	fmt.Fprintf(&b, "Service: %s\r\n", e.Service)
	fmt.Fprintf(&b, "Date: %s\r\n", e.Date.Format("Monday, January 2, 2006"))
	fmt.Fprintf(&b, "Time: %s\r\n", e.Time)
	fmt.Fprintf(&b, "Vehicle: %s\r\n", e.Vehicle)
	if e.BookingRef != "" {
		fmt.Fprintf(&b, "Booking Reference: %s\r\n", e.BookingRef)
	}
	fmt.Fprintf(&b, "Status: %s\r\n\r\n", e.Status)
	b.WriteString("If you need to make any changes to your appointment, please contact us at least 24 hours in advance.\r\n\r\n")
	b.WriteString("Thank you for choosing our service!\r\n")
	return b.String()
}

func buildMessage(from, to, subject, body string) string {
	// Minimal RFC 5322 message; enough for Mailpit and most SMTP relays.
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		subject,
		body,
	)
}
