package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MinutesPerDay is the number of minutes addressable by a schedule window.
const MinutesPerDay = 24 * 60

// WeekdaySet stores ISO weekdays (1 = Monday .. 7 = Sunday) inside a JSON
// column.
type WeekdaySet []int

// Value implements driver.Valuer so WeekdaySet can be stored as JSON.
func (s WeekdaySet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return []byte("[]"), nil
	}

	data, err := json.Marshal([]int(s))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Scan implements sql.Scanner to hydrate the WeekdaySet from the database.
func (s *WeekdaySet) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return s.unmarshal(v)
	case string:
		return s.unmarshal([]byte(v))
	default:
		return fmt.Errorf("domain.WeekdaySet: unsupported type %T", value)
	}
}

func (s *WeekdaySet) unmarshal(data []byte) error {
	if len(data) == 0 {
		*s = nil
		return nil
	}

	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return fmt.Errorf("domain.WeekdaySet: decode JSON: %w", err)
	}
	*s = days
	return nil
}

// Contains reports whether the ISO weekday is part of the set.
func (s WeekdaySet) Contains(weekday int) bool {
	for _, day := range s {
		if day == weekday {
			return true
		}
	}
	return false
}

// ISOWeekday maps a time.Time to the 1..7 Monday-first weekday numbering
// schedules are stored with.
func ISOWeekday(t time.Time) int {
	weekday := int(t.Weekday())
	if weekday == 0 {
		return 7
	}
	return weekday
}

// MinuteOfDay returns the minute offset since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Schedule is a recurring weekday + time-of-day window during which the
// referenced block lists and direct items are enforced. ListIDs and
// DirectItemIDs are weak references; a referenced entity may have been
// deleted since the schedule was created.
type Schedule struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string     `gorm:"size:255" json:"name"`
	StartMinute   int        `gorm:"not null" json:"start_minute"`
	EndMinute     int        `gorm:"not null" json:"end_minute"`
	Weekdays      WeekdaySet `gorm:"type:jsonb" json:"weekdays"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	ListIDs       IDList     `gorm:"type:jsonb" json:"list_ids"`
	DirectItemIDs IDList     `gorm:"type:jsonb" json:"direct_item_ids"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Validate rejects windows outside the addressable minute range.
func (s Schedule) Validate() error {
	if s.StartMinute < 0 || s.StartMinute >= MinutesPerDay {
		return fmt.Errorf("domain: schedule start minute %d out of range", s.StartMinute)
	}
	if s.EndMinute < 0 || s.EndMinute >= MinutesPerDay {
		return fmt.Errorf("domain: schedule end minute %d out of range", s.EndMinute)
	}
	for _, day := range s.Weekdays {
		if day < 1 || day > 7 {
			return fmt.Errorf("domain: schedule weekday %d out of range", day)
		}
	}
	return nil
}

// ContainsMinute reports whether the minute of day falls inside the window.
// A window whose end precedes its start wraps past midnight; a zero-width
// window never matches.
func (s Schedule) ContainsMinute(minute int) bool {
	switch {
	case s.StartMinute == s.EndMinute:
		return false
	case s.EndMinute > s.StartMinute:
		return minute >= s.StartMinute && minute < s.EndMinute
	default:
		return minute >= s.StartMinute || minute < s.EndMinute
	}
}

// ActiveAt reports whether the schedule is in effect at the given instant.
// An empty weekday set is never active.
func (s Schedule) ActiveAt(t time.Time) bool {
	if !s.IsActive || len(s.Weekdays) == 0 {
		return false
	}
	if !s.Weekdays.Contains(ISOWeekday(t)) {
		return false
	}
	return s.ContainsMinute(MinuteOfDay(t))
}
