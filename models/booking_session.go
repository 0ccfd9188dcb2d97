package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Selection phases of a booking session. A session holds at most one accepted
// tentative selection; a second proposal is rejected until the first is
// cleared.
const (
	SelectionIdle     = "idle"
	SelectionProposed = "proposed"
	SelectionAccepted = "accepted"
)

// TentativeSelection is the in-memory candidate interval awaiting overlap
// validation. It is never persisted unless promoted into a draft.
type TentativeSelection struct {
	Equipment primitive.ObjectID `json:"equipment"`
	SlotID    primitive.ObjectID `json:"slotId"`
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	Duration  int                `json:"duration"` // minutes
}

// BookingSession carries the state of one patient booking flow between steps.
// It is the single owner of the current imaging context, procedure, selection
// and draft handle, and lives in Redis for the duration of the flow.
type BookingSession struct {
	SessionID string             `json:"sessionId"`
	PatientID primitive.ObjectID `json:"patientId"`
	Imaging   ImagingContext     `json:"imaging"`
	Procedure Procedure          `json:"procedure"`

	// Snapshots taken at the last availability refresh. A candidate must
	// land inside one of the Slots windows and clear of every Blocking
	// event; the backing store enforces the true non-overlap invariant on
	// write.
	Slots    []CalendarEvent `json:"slots,omitempty"`
	Blocking []CalendarEvent `json:"blocking,omitempty"`

	SelectionPhase string              `json:"selectionPhase"`
	Tentative      *TentativeSelection `json:"tentative,omitempty"`

	DraftID primitive.ObjectID `json:"draftId,omitempty"`

	// RescheduleID is set when the flow reschedules an existing appointment.
	// The referenced appointment is excluded from conflicts and no draft is
	// created; confirmation updates it in place.
	RescheduleID *primitive.ObjectID `json:"rescheduleId,omitempty"`

	Contact       string         `json:"contact,omitempty"`
	PrivateHealth *PrivateHealth `json:"privateHealth,omitempty"`
}

// IsReschedule reports whether this session reschedules an existing
// appointment instead of creating a new one.
func (s *BookingSession) IsReschedule() bool {
	return s.RescheduleID != nil && !s.RescheduleID.IsZero()
}
