package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"radbook/config"
	"radbook/models"
	"radbook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sessionTTL() time.Duration {
	return time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
}

// StartSession creates a new booking session for the patient, resolves the
// procedure, and stores the session in Redis. When rescheduleID is set, the
// session is bound to that appointment: it must belong to the patient, still
// be scheduled and lie in the future.
func (s *DefaultBookingSessionService) StartSession(
	ctx context.Context,
	patientID primitive.ObjectID,
	imaging models.ImagingContext,
	procedureID primitive.ObjectID,
	rescheduleID *primitive.ObjectID,
) (*models.BookingSession, error) {
	procedure, err := s.Refs.GetProcedureByID(ctx, procedureID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve procedure: %w", err)
	}
	if !procedure.Status {
		return nil, NewValidationError("procedure", "procedure is not bookable")
	}

	session := models.BookingSession{
		SessionID:      uuid.New().String(),
		PatientID:      patientID,
		Imaging:        imaging,
		Procedure:      *procedure,
		SelectionPhase: models.SelectionIdle,
	}

	if rescheduleID != nil && !rescheduleID.IsZero() {
		appt, err := s.Repo.GetAppointmentByID(*rescheduleID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve appointment to reschedule: %w", err)
		}
		if appt.FkPatient != patientID {
			return nil, NewValidationError("reschedule", "appointment does not belong to the patient")
		}
		if !appt.Status || appt.FlowState != models.FlowStateScheduled {
			return nil, NewValidationError("reschedule", "only scheduled appointments can be rescheduled")
		}
		if !appt.Start.After(time.Now()) {
			return nil, NewValidationError("reschedule", "appointment has already started")
		}
		session.RescheduleID = rescheduleID
		session.Contact = appt.Contact
		session.PrivateHealth = &appt.PrivateHealth
	}

	if err := saveSession(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession loads a booking session from Redis.
func (s *DefaultBookingSessionService) GetSession(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	return loadSession(ctx, sessionID)
}

// RefreshAvailability rebuilds the calendar view for the session's imaging
// context and date range, and stores the open slots and blocking events as
// the session's validation snapshots. A rescheduled appointment is excluded
// so it never conflicts with itself.
func (s *DefaultBookingSessionService) RefreshAvailability(ctx context.Context, sessionID string, from, to time.Time) (*models.Availability, error) {
	session, err := loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	availability, err := s.BuildAvailability(ctx, session.Imaging, session.Procedure, from, to, session.RescheduleID)
	if err != nil {
		return nil, err
	}

	session.Slots = availability.BackgroundEvents
	session.Blocking = availability.BlockingEvents
	if err := saveSession(ctx, session); err != nil {
		return nil, err
	}
	return availability, nil
}

// EndSession discards the session state. The draft, if any, is left to the
// explicit discard or the sweep; ending a session is not a cancellation.
func (s *DefaultBookingSessionService) EndSession(ctx context.Context, sessionID string) error {
	cacheClient := utils.GetSessionCacheClient()
	if err := cacheClient.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to end booking session: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func loadSession(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	cacheClient := utils.GetSessionCacheClient()
	data, err := cacheClient.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	var session models.BookingSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to parse booking session: %w", err)
	}
	return &session, nil
}

func saveSession(ctx context.Context, session *models.BookingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	cacheClient := utils.GetSessionCacheClient()
	if err := cacheClient.Set(ctx, sessionKey(session.SessionID), data, sessionTTL()).Err(); err != nil {
		return fmt.Errorf("failed to store booking session: %w", err)
	}
	return nil
}
