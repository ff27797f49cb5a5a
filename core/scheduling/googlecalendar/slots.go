package googlecalendar

import (
	"time"

	"github.com/koscakluka/helpline-core/core/scheduling"
)

// firstFreeSlot walks weekday hours from now to the horizon and returns the
// first slot at the top of an hour that does not overlap a busy window.
// Weekends and the lunch hour are skipped, and slots in the past are never
// offered. All arithmetic is in UTC.
func firstFreeSlot(now time.Time, busy []scheduling.Window, hours WorkingHours) (*scheduling.Slot, error) {
	now = now.UTC()

	for dayOffset := 0; dayOffset < hours.HorizonDays; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		if weekday := day.Weekday(); weekday == time.Saturday || weekday == time.Sunday {
			continue
		}

		for hour := hours.StartHour; hour < hours.EndHour; hour++ {
			if hour == hours.LunchHour {
				continue
			}

			start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
			if start.Before(now) {
				continue
			}
			window := scheduling.Window{
				Start: start,
				End:   start.Add(time.Duration(hours.SlotMinutes) * time.Minute),
			}

			conflict := false
			for _, busyWindow := range busy {
				if window.Overlaps(busyWindow) {
					conflict = true
					break
				}
			}
			if conflict {
				continue
			}

			return &scheduling.Slot{
				Window: window,
				Day:    start.Format("Monday"),
				Date:   start.Format("January 02, 2006"),
				Time:   start.Format("3:04 PM") + " UTC",
			}, nil
		}
	}

	return nil, scheduling.ErrNoSlot
}
