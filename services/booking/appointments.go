package booking

import (
	"context"
	"time"

	"radbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListPatientAppointments returns the patient's appointments, newest first,
// each decorated with its flow state label.
func (s *DefaultBookingSessionService) ListPatientAppointments(patientID primitive.ObjectID) ([]AppointmentView, error) {
	appts, err := s.Repo.FindAppointmentsByPatient(patientID)
	if err != nil {
		return nil, &PersistenceError{Op: "list appointments", Err: err}
	}

	views := make([]AppointmentView, 0, len(appts))
	for _, appt := range appts {
		views = append(views, AppointmentView{
			Appointment:    appt,
			FlowStateLabel: models.FlowStateLabel(appt.FlowState),
		})
	}
	return views, nil
}

// CancelAppointment soft-cancels a future scheduled appointment. The record
// stays in the collection with status=false; it simply stops blocking its
// equipment interval.
func (s *DefaultBookingSessionService) CancelAppointment(ctx context.Context, patientID, appointmentID primitive.ObjectID) error {
	appt, err := s.Repo.GetAppointmentByID(appointmentID)
	if err != nil {
		return &PersistenceError{Op: "load appointment", Err: err}
	}
	if appt.FkPatient != patientID {
		return NewValidationError("appointment", "appointment does not belong to the patient")
	}
	if !appt.Status {
		return NewValidationError("appointment", "appointment is already cancelled")
	}
	if appt.FlowState != models.FlowStateScheduled {
		return NewValidationError("appointment", "only scheduled appointments can be cancelled")
	}
	if !appt.Start.After(time.Now()) {
		return NewValidationError("appointment", "appointment has already started")
	}

	if err := s.Repo.UpdateAppointmentFields(ctx, appointmentID, bson.M{"status": false}); err != nil {
		return &PersistenceError{Op: "cancel appointment", Err: err}
	}

	appt.Status = false
	s.notify(ctx, models.NotifyCancelled, appt)
	return nil
}
