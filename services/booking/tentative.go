package booking

import (
	"context"
	"time"

	"radbook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProposeCandidate validates a clicked slot as a tentative selection. The
// candidate interval starts at the clicked time, snapped to the minute, and
// runs for the procedure's duration on that equipment. The proposal is
// rejected when the session already holds a tentative selection, when the
// equipment cannot run the procedure, when the interval does not lie inside
// the referenced open slot, or when it overlaps a blocking event in the
// session's availability snapshot.
func (s *DefaultBookingSessionService) ProposeCandidate(
	ctx context.Context,
	sessionID string,
	equipment, slotID primitive.ObjectID,
	start time.Time,
) (*models.TentativeSelection, error) {
	session, err := loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Tentative != nil {
		return nil, ErrTentativeExists
	}

	duration, ok := session.Procedure.EquipmentDuration(equipment)
	if !ok {
		return nil, NewValidationError("equipment", "procedure cannot run on the selected equipment")
	}

	start = start.UTC().Truncate(time.Minute)
	if !start.After(time.Now().UTC()) {
		return nil, NewValidationError("start", "selection must lie in the future")
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	window := findSlotWindow(session.Slots, slotID, equipment)
	if window == nil {
		return nil, NewValidationError("slot", "slot is not in the current availability")
	}
	if start.Before(window.Start.UTC()) || end.After(window.End.UTC()) {
		return nil, NewValidationError("start", "selection must lie inside the open slot")
	}

	if conflict := firstConflict(session.Blocking, equipment, start, end); conflict != nil {
		return nil, &ConflictError{Equipment: equipment, RequiredDuration: duration}
	}

	session.Tentative = &models.TentativeSelection{
		Equipment: equipment,
		SlotID:    slotID,
		Start:     start,
		End:       end,
		Duration:  duration,
	}
	session.SelectionPhase = models.SelectionProposed

	if err := saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session.Tentative, nil
}

// ClearTentative drops the current tentative selection so a new one can be
// proposed. Clearing an empty selection is a no-op.
func (s *DefaultBookingSessionService) ClearTentative(ctx context.Context, sessionID string) error {
	session, err := loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Tentative == nil {
		return nil
	}
	session.Tentative = nil
	session.SelectionPhase = models.SelectionIdle
	return saveSession(ctx, session)
}
