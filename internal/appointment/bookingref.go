package appointment

import (
	"fmt"
	"time"
)

// FormatBookingRef builds a customer-facing booking reference:
// APT + year + month + a zero padded sequence value. The sequence is
// drawn from Postgres, so the reference commits in the same write as
// the appointment row and two bookings can never share one. References
// only need to be unique and shareable, not unpredictable. The padding
// widens past four digits once the sequence outgrows it.
func FormatBookingRef(t time.Time, seq int64) string {
	return fmt.Sprintf("APT%04d%02d%04d", t.Year(), int(t.Month()), seq)
}
