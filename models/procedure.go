package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ProcedureEquipment maps a procedure to one eligible equipment item with the
// fixed duration (minutes) the procedure takes on it. The duration determines
// the candidate end time when a patient clicks an open slot.
type ProcedureEquipment struct {
	FkEquipment primitive.ObjectID `bson:"fk_equipment" json:"fk_equipment"`
	Duration    int                `bson:"duration" json:"duration"`
}

// Procedure is an imaging procedure the patient can book.
type Procedure struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name           string               `bson:"name" json:"name"`
	FkModality     primitive.ObjectID   `bson:"fk_modality" json:"fk_modality"`
	Equipments     []ProcedureEquipment `bson:"equipments" json:"equipments"`
	ReportingDelay int                  `bson:"reporting_delay" json:"reporting_delay"` // days
	Status         bool                 `bson:"status" json:"status"`
}

// EquipmentDuration returns the mapped duration for the given equipment and
// whether the equipment is eligible for this procedure.
func (p *Procedure) EquipmentDuration(equipment primitive.ObjectID) (int, bool) {
	for _, eq := range p.Equipments {
		if eq.FkEquipment == equipment {
			return eq.Duration, true
		}
	}
	return 0, false
}
