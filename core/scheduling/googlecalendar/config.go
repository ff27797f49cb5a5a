package googlecalendar

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorkingHours describes when technician slots may be offered. All hours are
// UTC, end-exclusive. The lunch hour is held free and never offered.
type WorkingHours struct {
	StartHour   int `yaml:"start_hour"`
	EndHour     int `yaml:"end_hour"`
	LunchHour   int `yaml:"lunch_hour"`
	SlotMinutes int `yaml:"slot_minutes"`
	HorizonDays int `yaml:"horizon_days"`
}

// DefaultWorkingHours is the 9-to-5 weekday policy with lunch at 13:00 UTC,
// offering 30-minute slots up to 7 days out.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{
		StartHour:   9,
		EndHour:     17,
		LunchHour:   13,
		SlotMinutes: 30,
		HorizonDays: 7,
	}
}

// LoadWorkingHours reads a working-hours policy from a YAML file. Omitted
// fields keep their defaults.
func LoadWorkingHours(path string) (WorkingHours, error) {
	hours := DefaultWorkingHours()

	data, err := os.ReadFile(path)
	if err != nil {
		return hours, fmt.Errorf("failed to read working hours config: %w", err)
	}
	if err := yaml.Unmarshal(data, &hours); err != nil {
		return hours, fmt.Errorf("failed to parse working hours config: %w", err)
	}
	if err := hours.validate(); err != nil {
		return hours, err
	}
	return hours, nil
}

func (h WorkingHours) validate() error {
	if h.StartHour < 0 || h.EndHour > 24 || h.StartHour >= h.EndHour {
		return fmt.Errorf("invalid working hours %d-%d", h.StartHour, h.EndHour)
	}
	if h.SlotMinutes <= 0 || h.SlotMinutes > 60 {
		return fmt.Errorf("invalid slot length %d minutes", h.SlotMinutes)
	}
	if h.HorizonDays <= 0 {
		return fmt.Errorf("invalid horizon %d days", h.HorizonDays)
	}
	return nil
}
