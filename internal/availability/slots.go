package availability

// Grid describes the working-hours slot grid shown on the calendar.
type Grid struct {
	StartHour       int
	EndHour         int
	IntervalMinutes int
}

// DefaultGrid spans 08:00 to 20:00 in 30 minute steps.
var DefaultGrid = Grid{StartHour: 8, EndHour: 20, IntervalMinutes: 30}

// Slots returns the slot boundaries of the grid.
func (g Grid) Slots() []Clock {
	return generateClocks(g.StartHour, g.EndHour, g.IntervalMinutes)
}

// GenerateSlots returns every slot boundary from startHour:00 up to, but
// excluding, endHour:00 stepping by intervalMinutes. Invalid bounds yield nil.
func GenerateSlots(startHour, endHour, intervalMinutes int) []string {
	clocks := generateClocks(startHour, endHour, intervalMinutes)
	if clocks == nil {
		return nil
	}
	out := make([]string, len(clocks))
	for i, c := range clocks {
		out[i] = c.String()
	}
	return out
}

func generateClocks(startHour, endHour, intervalMinutes int) []Clock {
	if intervalMinutes <= 0 || startHour < 0 || endHour > 24 || startHour >= endHour {
		return nil
	}
	first, last := startHour*60, endHour*60
	out := make([]Clock, 0, (last-first+intervalMinutes-1)/intervalMinutes)
	for m := first; m < last; m += intervalMinutes {
		out = append(out, Clock(m))
	}
	return out
}

// FloorToInterval rounds c down to a multiple of intervalMinutes, never to the
// nearest one: 10:44 on a 30 minute grid is 10:30.
func FloorToInterval(c Clock, intervalMinutes int) Clock {
	if intervalMinutes <= 0 {
		return c
	}
	return c - c%Clock(intervalMinutes)
}
