package booking

import (
	"context"
	"errors"
	"time"

	schedulerRepo "radbook/database/repository/scheduler"
	"radbook/models"
	"radbook/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateDraft persists the session's tentative selection as an appointment
// draft. From this point the interval blocks its equipment for everyone else
// until the draft is promoted, discarded or swept.
func (s *DefaultBookingSessionService) CreateDraft(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	session, err := loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Tentative == nil {
		return nil, NewValidationError("selection", "no tentative selection to reserve")
	}
	if session.IsReschedule() {
		return nil, NewValidationError("selection", "a reschedule updates the appointment in place; no draft is created")
	}
	if !session.DraftID.IsZero() {
		return session, nil
	}

	draft := models.AppointmentDraft{
		Imaging:   session.Imaging,
		Start:     session.Tentative.Start,
		End:       session.Tentative.End,
		FkPatient: session.PatientID,
		Slot: models.SlotRef{
			FkSlot:    session.Tentative.SlotID,
			Equipment: session.Tentative.Equipment,
		},
		FkProcedure: session.Procedure.ID,
		CreatedAt:   time.Now().UTC(),
	}

	draftID, err := s.Repo.InsertDraft(ctx, &draft)
	if errors.Is(err, schedulerRepo.ErrIntervalTaken) {
		// A concurrent session reserved the interval after this session's
		// snapshot was taken. The client refreshes and picks again.
		return nil, &ConflictError{
			Equipment:        session.Tentative.Equipment,
			RequiredDuration: session.Tentative.Duration,
		}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "create draft", Err: err}
	}

	session.DraftID = draftID
	session.SelectionPhase = models.SelectionAccepted
	if err := saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DiscardDraft deletes the session's draft and returns the session to the
// idle selection phase. Discarding is idempotent: a double-submit or an
// already-swept draft is not an error.
func (s *DefaultBookingSessionService) DiscardDraft(ctx context.Context, sessionID string) error {
	session, err := loadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if !session.DraftID.IsZero() {
		if err := s.Repo.DeleteDraft(ctx, session.DraftID); err != nil {
			return &PersistenceError{Op: "discard draft", Err: err}
		}
	}

	session.DraftID = primitive.NilObjectID
	session.Tentative = nil
	session.SelectionPhase = models.SelectionIdle
	return saveSession(ctx, session)
}

// ConfirmBooking finalizes the flow. A regular session promotes its draft
// into a full appointment; a reschedule session updates the bound appointment
// in place. Either way a notification is fired and the session ends.
func (s *DefaultBookingSessionService) ConfirmBooking(ctx context.Context, sessionID string, req ConfirmRequest) (*models.Appointment, error) {
	session, err := loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Tentative == nil {
		return nil, NewValidationError("selection", "no tentative selection to confirm")
	}

	if session.IsReschedule() {
		return s.confirmReschedule(ctx, session, req)
	}

	if session.DraftID.IsZero() {
		return nil, NewValidationError("draft", "no draft to promote; reserve the selection first")
	}

	appt := buildAppointment(session, req)
	insertedID, err := s.Repo.PromoteDraft(ctx, session.DraftID, appt)
	if errors.Is(err, schedulerRepo.ErrIntervalTaken) {
		return nil, &ConflictError{
			Equipment:        session.Tentative.Equipment,
			RequiredDuration: session.Tentative.Duration,
		}
	}
	if err != nil {
		// The draft still holds the interval; the patient can retry or
		// discard. Nothing is half-booked.
		return nil, &PersistenceError{Op: "promote draft", Err: err}
	}
	appt.ID = insertedID

	s.notify(ctx, models.NotifyBooked, appt)

	if err := s.EndSession(ctx, sessionID); err != nil {
		utils.GetLogger().Warn("failed to end session after confirmation",
			zap.String("sessionId", sessionID), zap.Error(err))
	}
	return appt, nil
}

// buildAppointment assembles the durable appointment document from the
// session state and the confirmation step data.
func buildAppointment(session *models.BookingSession, req ConfirmRequest) *models.Appointment {
	start := session.Tentative.Start
	reportBefore := start.AddDate(0, 0, session.Procedure.ReportingDelay)

	// Self-referral unless an external referring organization was given.
	referring := req.Referring
	if referring.IsZero() {
		referring = session.Imaging.Organization
	}

	return &models.Appointment{
		Imaging:   session.Imaging,
		FkPatient: session.PatientID,
		Start:     start,
		End:       session.Tentative.End,
		FlowState: models.FlowStateScheduled,
		Status:    true,
		Slot: models.SlotRef{
			FkSlot:    session.Tentative.SlotID,
			Equipment: session.Tentative.Equipment,
		},
		FkProcedure:   session.Procedure.ID,
		ProcedureName: session.Procedure.Name,
		Outpatient:    req.Outpatient,
		Referring:     models.ReferringInfo{Organization: referring},
		Reporting:     session.Imaging,
		Contrast:      models.ContrastInfo{UseContrast: req.UseContrast},
		Contact:       req.Contact,
		PrivateHealth: req.PrivateHealth,
		ReportBefore:  reportBefore,
		CreatedAt:     time.Now().UTC(),
	}
}

// notify resolves the branch name for the notification location and fires
// the side-channel event. Best-effort only.
func (s *DefaultBookingSessionService) notify(ctx context.Context, notifyType string, appt *models.Appointment) {
	location := ""
	if branch, err := s.Refs.GetBranchByID(ctx, appt.Imaging.Branch); err == nil {
		location = branch.Name
	}
	s.Notification.NotifyAppointment(ctx, notifyType, appt, location)
}
