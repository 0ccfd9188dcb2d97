package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scheduling workflow stages of a confirmed appointment.
const (
	FlowStateScheduled  = "A01"
	FlowStateCheckedIn  = "A02"
	FlowStateInProgress = "A03"
	FlowStateCompleted  = "A04"
	FlowStateReported   = "A05"
)

// FlowStateLabel maps a flow state code to its display label.
func FlowStateLabel(flowState string) string {
	switch flowState {
	case FlowStateCheckedIn:
		return "Checked In"
	case FlowStateInProgress:
		return "In Progress"
	case FlowStateCompleted:
		return "Completed"
	case FlowStateReported:
		return "Reported"
	default:
		return "Scheduled"
	}
}

// ReferringInfo holds the referring organization of an appointment.
type ReferringInfo struct {
	Organization primitive.ObjectID `bson:"organization" json:"organization"`
}

// ContrastInfo records whether the study uses contrast.
type ContrastInfo struct {
	UseContrast bool `bson:"use_contrast" json:"use_contrast"`
}

// ImplantsInfo is the implant questionnaire of the health intake.
type ImplantsInfo struct {
	CochlearImplant bool   `bson:"cochlear_implant" json:"cochlear_implant"`
	CardiacStent    bool   `bson:"cardiac_stent" json:"cardiac_stent"`
	MetalProstheses bool   `bson:"metal_prostheses" json:"metal_prostheses"`
	MetalShards     bool   `bson:"metal_shards" json:"metal_shards"`
	Pacemaker       bool   `bson:"pacemaker" json:"pacemaker"`
	Other           string `bson:"other" json:"other"`
}

// Covid19Info is the COVID-19 block of the health intake.
type Covid19Info struct {
	HadCovid   bool   `bson:"had_covid" json:"had_covid"`
	Vaccinated bool   `bson:"vaccinated" json:"vaccinated"`
	Details    string `bson:"details" json:"details"`
}

// PrivateHealth is the patient health intake captured on confirmation.
type PrivateHealth struct {
	Height float64 `bson:"height" json:"height" binding:"required,min=30,max=250"`
	Weight float64 `bson:"weight" json:"weight" binding:"required,min=1,max=500"`

	Diabetes             bool `bson:"diabetes" json:"diabetes"`
	Hypertension         bool `bson:"hypertension" json:"hypertension"`
	EPOC                 bool `bson:"epoc" json:"epoc"`
	Smoking              bool `bson:"smoking" json:"smoking"`
	Malnutrition         bool `bson:"malnutrition" json:"malnutrition"`
	Obesity              bool `bson:"obesity" json:"obesity"`
	HIV                  bool `bson:"hiv" json:"hiv"`
	RenalInsufficiency   bool `bson:"renal_insufficiency" json:"renal_insufficiency"`
	HeartFailure         bool `bson:"heart_failure" json:"heart_failure"`
	IschemicHeartDisease bool `bson:"ischemic_heart_disease" json:"ischemic_heart_disease"`
	Valvulopathy         bool `bson:"valvulopathy" json:"valvulopathy"`
	Arrhythmia           bool `bson:"arrhythmia" json:"arrhythmia"`
	Cancer               bool `bson:"cancer" json:"cancer"`
	Dementia             bool `bson:"dementia" json:"dementia"`
	Claustrophobia       bool `bson:"claustrophobia" json:"claustrophobia"`
	Asthma               bool `bson:"asthma" json:"asthma"`
	Hyperthyroidism      bool `bson:"hyperthyroidism" json:"hyperthyroidism"`
	Hypothyroidism       bool `bson:"hypothyroidism" json:"hypothyroidism"`
	Pregnancy            bool `bson:"pregnancy" json:"pregnancy"`

	Medication string `bson:"medication" json:"medication"`
	Allergies  string `bson:"allergies" json:"allergies"`
	Other      string `bson:"other" json:"other"`

	Implants ImplantsInfo `bson:"implants" json:"implants"`
	Covid19  Covid19Info  `bson:"covid19" json:"covid19"`
}

// Appointment is a durable booking. Cancellation is a soft delete
// (status=false), never a removal of the record.
type Appointment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Imaging       ImagingContext     `bson:"imaging" json:"imaging"`
	FkPatient     primitive.ObjectID `bson:"fk_patient" json:"fk_patient"`
	Start         time.Time          `bson:"start" json:"start"`
	End           time.Time          `bson:"end" json:"end"`
	FlowState     string             `bson:"flow_state" json:"flow_state"`
	Status        bool               `bson:"status" json:"status"`
	Slot          SlotRef            `bson:"slot" json:"slot"`
	FkProcedure   primitive.ObjectID `bson:"fk_procedure" json:"fk_procedure"`
	ProcedureName string             `bson:"procedure_name,omitempty" json:"procedure_name,omitempty"`
	Urgency       bool               `bson:"urgency" json:"urgency"`
	Outpatient    bool               `bson:"outpatient" json:"outpatient"`

	Referring ReferringInfo  `bson:"referring" json:"referring"`
	Reporting ImagingContext `bson:"reporting" json:"reporting"`
	Contrast  ContrastInfo   `bson:"contrast" json:"contrast"`

	Contact       string        `bson:"contact" json:"contact"`
	PrivateHealth PrivateHealth `bson:"private_health" json:"private_health"`

	// Latest date the study report should be ready: start plus the
	// procedure's reporting delay.
	ReportBefore time.Time `bson:"report_before" json:"report_before"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
