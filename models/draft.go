package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppointmentDraft is the transient reservation that exists between slot
// selection and final confirmation. It blocks its equipment interval like a
// confirmed appointment and is deleted exactly once: discarded or promoted.
type AppointmentDraft struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Imaging       ImagingContext     `bson:"imaging" json:"imaging"`
	Start         time.Time          `bson:"start" json:"start"`
	End           time.Time          `bson:"end" json:"end"`
	FkPatient     primitive.ObjectID `bson:"fk_patient" json:"fk_patient"`
	FkCoordinator primitive.ObjectID `bson:"fk_coordinator" json:"fk_coordinator"`
	Slot          SlotRef            `bson:"slot" json:"slot"`
	FkProcedure   primitive.ObjectID `bson:"fk_procedure" json:"fk_procedure"`
	Urgency       bool               `bson:"urgency" json:"urgency"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
