package appointment

// allTimeSlots is the bookable grid the workshop operates on: hourly
// from opening to last intake.
var allTimeSlots = []string{
	"09:00", "10:00", "11:00", "12:00",
	"13:00", "14:00", "15:00", "16:00", "17:00",
}

// openSlots filters the grid down to times not already held by a
// non-cancelled appointment.
func openSlots(taken []string) []string {
	busy := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		busy[t] = struct{}{}
	}

	var open []string
	for _, t := range allTimeSlots {
		if _, ok := busy[t]; !ok {
			open = append(open, t)
		}
	}
	return open
}
