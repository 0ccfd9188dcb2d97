package booking

import (
	"context"

	"radbook/models"
	"radbook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// confirmReschedule applies the session's tentative selection to the bound
// appointment with a field-level update. The identity of the appointment and
// its history are untouched; only the interval, slot reference and refreshed
// intake fields change.
func (s *DefaultBookingSessionService) confirmReschedule(ctx context.Context, session *models.BookingSession, req ConfirmRequest) (*models.Appointment, error) {
	reportBefore := session.Tentative.Start.AddDate(0, 0, session.Procedure.ReportingDelay)

	fields := bson.M{
		"start": session.Tentative.Start,
		"end":   session.Tentative.End,
		"slot": models.SlotRef{
			FkSlot:    session.Tentative.SlotID,
			Equipment: session.Tentative.Equipment,
		},
		"report_before":  reportBefore,
		"contact":        req.Contact,
		"private_health": req.PrivateHealth,
	}

	if err := s.Repo.UpdateAppointmentFields(ctx, *session.RescheduleID, fields); err != nil {
		return nil, &PersistenceError{Op: "reschedule appointment", Err: err}
	}

	appt, err := s.Repo.GetAppointmentByID(*session.RescheduleID)
	if err != nil {
		return nil, &PersistenceError{Op: "reload rescheduled appointment", Err: err}
	}

	s.notify(ctx, models.NotifyRescheduled, appt)

	if err := s.EndSession(ctx, session.SessionID); err != nil {
		utils.GetLogger().Warn("failed to end session after reschedule",
			zap.String("sessionId", session.SessionID), zap.Error(err))
	}
	return appt, nil
}
