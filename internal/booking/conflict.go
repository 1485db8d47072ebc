// Package booking holds the pure slot arithmetic for room reservations:
// composing a slot window from wall-clock input and detecting overlaps
// between half-open intervals.
package booking

import (
	"fmt"
	"time"
)

// SlotDuration is the fixed length of every reservation.
const SlotDuration = time.Hour

// SlotTimes lists the start times a booking may begin at, matching the
// picker offered by the portal UI.
var SlotTimes = []string{
	"08:00", "08:30", "09:00", "09:30", "10:00", "10:30",
	"11:00", "11:30", "12:00", "12:30", "13:00", "13:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
	"17:00", "17:30", "18:00",
}

// Slot is a reserved half-open interval [Start, End) on a room.
type Slot struct {
	BookingID string
	RoomID    string
	Start     time.Time
	End       time.Time
}

// ValidSlotTime reports whether value is one of the allowed start times.
func ValidSlotTime(value string) bool {
	for _, t := range SlotTimes {
		if t == value {
			return true
		}
	}
	return false
}

// ComposeSlot builds the slot window from a date ("2006-01-02") and start
// time ("15:04") interpreted in loc. End is always start plus SlotDuration.
func ComposeSlot(date, startTime string, loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.Local
	}
	start, err = time.ParseInLocation("2006-01-02 15:04", date+" "+startTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("compose slot from %q %q: %w", date, startTime, err)
	}
	return start, start.Add(SlotDuration), nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// FindConflict returns the first existing slot on the same room that
// overlaps the candidate window, or nil when the slot is free.
func FindConflict(existing []Slot, roomID string, start, end time.Time) *Slot {
	for i := range existing {
		slot := existing[i]
		if slot.RoomID != roomID {
			continue
		}
		if Overlaps(slot.Start, slot.End, start, end) {
			return &existing[i]
		}
	}
	return nil
}
