package model

import (
	"fmt"
	"time"
)

// Slots divide a day into fixed 30-minute units indexed from midnight:
// slot 0 is 00:00–00:30, slot 1 is 00:30–01:00, ..., slot 47 is 23:30–24:00.
const (
	SlotMinutes = 30 // length of one slot
	SlotsPerDay = 48 // number of slots in a day
)

// SlotOf converts a clock reading to the slot index containing it.
func SlotOf(t time.Time) int {
	min := 0
	if t.Minute() >= 30 {
		min = 1
	}
	return t.Hour()*2 + min
}

// SlotTime returns the wall-clock start of a slot as (hour, minute).
func SlotTime(slot int) (hour, min int) {
	return slot / 2, (slot % 2) * SlotMinutes
}

// SlotStart anchors a slot on a calendar day in the given location.
func SlotStart(date Date, slot int, loc *time.Location) time.Time {
	hour, min := SlotTime(slot)
	return date.At(hour, min, loc)
}

// SlotEnd is the exclusive end of a slot range: the start of endSlot+1.
func SlotEnd(date Date, endSlot int, loc *time.Location) time.Time {
	return SlotStart(date, endSlot+1, loc)
}

// FormatSlot renders a slot's start time as HH:MM for user-facing messages.
func FormatSlot(slot int) string {
	hour, min := SlotTime(slot)
	return fmt.Sprintf("%02d:%02d", hour, min)
}

// ValidSlot reports whether the index falls inside the day.
func ValidSlot(slot int) bool { return slot >= 0 && slot < SlotsPerDay }
