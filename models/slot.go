package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EquipmentRef is the denormalized equipment reference embedded in a slot.
type EquipmentRef struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	Name string             `bson:"name" json:"name"`
}

// Slot is a published open time window on one piece of imaging equipment.
// Slots are created by scheduling staff tooling and are read-only here;
// they never block other events.
type Slot struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Domain    ImagingContext     `bson:"domain" json:"domain"`
	Equipment EquipmentRef       `bson:"equipment" json:"equipment"`
	Start     time.Time          `bson:"start" json:"start"`
	End       time.Time          `bson:"end" json:"end"`
	Urgency   bool               `bson:"urgency" json:"urgency"`
}

// SlotRef is the slot/equipment reference embedded in appointments and drafts.
type SlotRef struct {
	FkSlot    primitive.ObjectID `bson:"fk_slot" json:"fk_slot"`
	Equipment primitive.ObjectID `bson:"equipment" json:"equipment"`
}
