package booking

import (
	"time"

	"radbook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries (one ends exactly where the
// other starts) do not overlap. Comparison is done on UTC instants, so mixed
// zone representations of the same moment compare equal.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.UTC().Before(bEnd.UTC()) && bStart.UTC().Before(aEnd.UTC())
}

// findSlotWindow returns the snapshot background event for the given slot on
// the given equipment, or nil when no such open window was published.
func findSlotWindow(slots []models.CalendarEvent, slotID, equipment primitive.ObjectID) *models.CalendarEvent {
	id := slotID.Hex()
	for i := range slots {
		ev := &slots[i]
		if ev.ID == id && ev.ResourceID == equipment {
			return ev
		}
	}
	return nil
}

// firstConflict returns the first blocking event on the given equipment that
// overlaps [start, end), or nil when the interval is free. Background events
// never block and are not present in the snapshot.
func firstConflict(blocking []models.CalendarEvent, equipment primitive.ObjectID, start, end time.Time) *models.CalendarEvent {
	for i := range blocking {
		ev := &blocking[i]
		if ev.ResourceID != equipment {
			continue
		}
		if Overlaps(start, end, ev.Start, ev.End) {
			return ev
		}
	}
	return nil
}
