package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Availability event sources. A failed source is reported in
// Availability.SourceErrors under its name.
const (
	SourceSlots        = "slots"
	SourceAppointments = "appointments"
	SourceDrafts       = "appointments_drafts"
)

// CalendarEvent is one renderable event in the availability calendar.
// Background events are open slots and never block; the rest occupy their
// equipment for the interval.
type CalendarEvent struct {
	ID         string             `json:"id"`
	ResourceID primitive.ObjectID `json:"resourceId"`
	Title      string             `json:"title,omitempty"`
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	Background bool               `json:"background,omitempty"`
}

// CalendarResource is one schedulable equipment column. The title carries the
// procedure duration on that equipment, e.g. "Resonator A | 30 min.".
type CalendarResource struct {
	ID    primitive.ObjectID `json:"id"`
	Title string             `json:"title"`
}

// Availability is the merged view of the three event sources for one imaging
// context and date range. A failure in one source leaves the others intact.
type Availability struct {
	BackgroundEvents []CalendarEvent    `json:"backgroundEvents"`
	BlockingEvents   []CalendarEvent    `json:"blockingEvents"`
	Resources        []CalendarResource `json:"resources"`
	SourceErrors     map[string]string  `json:"sourceErrors,omitempty"`
}
