package booking

import (
	"context"
	"testing"
	"time"

	"radbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func startedSession(t *testing.T, svc *DefaultBookingSessionService, refs *fakeReferencesRepo) (*models.BookingSession, primitive.ObjectID) {
	t.Helper()
	procedure, equipment := seedProcedure(refs)
	session, err := svc.StartSession(context.Background(), primitive.NewObjectID(), testImaging(), procedure.ID, nil)
	require.NoError(t, err)
	return session, equipment
}

// publishSlot registers an open slot window on the equipment and refreshes
// the session so its snapshots include it.
func publishSlot(t *testing.T, svc *DefaultBookingSessionService, repo *fakeSchedulerRepo, session *models.BookingSession, equipment primitive.ObjectID, from, to time.Time) primitive.ObjectID {
	t.Helper()
	slotID := primitive.NewObjectID()
	repo.slots = append(repo.slots, models.Slot{
		ID:        slotID,
		Equipment: models.EquipmentRef{ID: equipment, Name: "Resonator A"},
		Start:     from,
		End:       to,
	})
	_, err := svc.RefreshAvailability(context.Background(), session.SessionID, from.Add(-time.Hour), to.Add(time.Hour))
	require.NoError(t, err)
	return slotID
}

func TestProposeCandidateAcceptsFreeInterval(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	session, equipment := startedSession(t, svc, refs)

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
	slotID := publishSlot(t, svc, repo, session, equipment, start.Add(-time.Hour), start.Add(3*time.Hour))

	tentative, err := svc.ProposeCandidate(context.Background(), session.SessionID, equipment, slotID, start)
	require.NoError(t, err)

	assert.Equal(t, start, tentative.Start)
	assert.Equal(t, start.Add(30*time.Minute), tentative.End)
	assert.Equal(t, 30, tentative.Duration)

	reloaded, err := svc.GetSession(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SelectionProposed, reloaded.SelectionPhase)
	require.NotNil(t, reloaded.Tentative)
}

func TestProposeCandidateSnapsToMinute(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	session, equipment := startedSession(t, svc, refs)

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
	slotID := publishSlot(t, svc, repo, session, equipment, start.Add(-time.Hour), start.Add(3*time.Hour))

	tentative, err := svc.ProposeCandidate(context.Background(), session.SessionID, equipment, slotID, start.Add(42*time.Second))
	require.NoError(t, err)

	assert.Equal(t, start, tentative.Start)
	assert.Equal(t, start.Add(30*time.Minute), tentative.End)
}

func TestProposeCandidateRejectsSecondSelection(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	session, equipment := startedSession(t, svc, refs)

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
	slotID := publishSlot(t, svc, repo, session, equipment, start.Add(-time.Hour), start.Add(4*time.Hour))

	_, err := svc.ProposeCandidate(context.Background(), session.SessionID, equipment, slotID, start)
	require.NoError(t, err)

	_, err = svc.ProposeCandidate(context.Background(), session.SessionID, equipment, slotID, start.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrTentativeExists)

	// After clearing, a new proposal goes through.
	require.NoError(t, svc.ClearTentative(context.Background(), session.SessionID))
	_, err = svc.ProposeCandidate(context.Background(), session.SessionID, equipment, slotID, start.Add(2*time.Hour))
	assert.NoError(t, err)
}

func TestProposeCandidateRejectsConflict(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	session, equipment := startedSession(t, svc, refs)

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
	repo.appointments = append(repo.appointments, models.Appointment{
		ID:        primitive.NewObjectID(),
		Start:     start.Add(15 * time.Minute),
		End:       start.Add(45 * time.Minute),
		FlowState: models.FlowStateScheduled,
		Status:    true,
		Slot:      models.SlotRef{Equipment: equipment},
	})
	slotID := publishSlot(t, svc, repo, session, equipment, start.Add(-time.Hour), start.Add(3*time.Hour))

	_, err := svc.ProposeCandidate(context.Background(), session.SessionID, equipment, slotID, start)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, equipment, conflict.Equipment)
	assert.Equal(t, 30, conflict.RequiredDuration)
}

func TestProposeCandidateAcceptsAdjacentInterval(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	session, equipment := startedSession(t, svc, refs)

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
	// Existing booking ends exactly where the candidate starts.
	repo.appointments = append(repo.appointments, models.Appointment{
		ID:        primitive.NewObjectID(),
		Start:     start.Add(-30 * time.Minute),
		End:       start,
		FlowState: models.FlowStateScheduled,
		Status:    true,
		Slot:      models.SlotRef{Equipment: equipment},
	})
	slotID := publishSlot(t, svc, repo, session, equipment, start.Add(-2*time.Hour), start.Add(3*time.Hour))

	_, err := svc.ProposeCandidate(context.Background(), session.SessionID, equipment, slotID, start)
	assert.NoError(t, err)
}

func TestProposeCandidateIgnoresOtherEquipment(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	session, equipment := startedSession(t, svc, refs)

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
	// Same interval, different equipment: not a conflict.
	repo.appointments = append(repo.appointments, models.Appointment{
		ID:        primitive.NewObjectID(),
		Start:     start,
		End:       start.Add(30 * time.Minute),
		FlowState: models.FlowStateScheduled,
		Status:    true,
		Slot:      models.SlotRef{Equipment: primitive.NewObjectID()},
	})
	slotID := publishSlot(t, svc, repo, session, equipment, start.Add(-time.Hour), start.Add(3*time.Hour))

	_, err := svc.ProposeCandidate(context.Background(), session.SessionID, equipment, slotID, start)
	assert.NoError(t, err)
}

func TestProposeCandidateRequiresPublishedSlot(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	session, equipment := startedSession(t, svc, refs)

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
	slotID := publishSlot(t, svc, repo, session, equipment, start, start.Add(time.Hour))

	// A slot id that was never published cannot be selected.
	_, err := svc.ProposeCandidate(context.Background(), session.SessionID, equipment, primitive.NewObjectID(), start)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	// A candidate running past the end of its slot window is rejected too.
	_, err = svc.ProposeCandidate(context.Background(), session.SessionID, equipment, slotID, start.Add(45*time.Minute))
	require.ErrorAs(t, err, &valErr)

	// Inside the window the same slot id is fine.
	_, err = svc.ProposeCandidate(context.Background(), session.SessionID, equipment, slotID, start.Add(30*time.Minute))
	assert.NoError(t, err)
}

func TestProposeCandidateRejectsIneligibleEquipment(t *testing.T) {
	svc, _, refs, _ := newTestService(t)
	session, _ := startedSession(t, svc, refs)

	start := time.Now().UTC().Add(24 * time.Hour)
	_, err := svc.ProposeCandidate(context.Background(), session.SessionID, primitive.NewObjectID(), primitive.NewObjectID(), start)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestProposeCandidateUnknownSession(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.ProposeCandidate(context.Background(), "no-such-session", primitive.NewObjectID(), primitive.NewObjectID(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestClearTentativeIsIdempotent(t *testing.T) {
	svc, _, refs, _ := newTestService(t)
	session, _ := startedSession(t, svc, refs)

	assert.NoError(t, svc.ClearTentative(context.Background(), session.SessionID))
	assert.NoError(t, svc.ClearTentative(context.Background(), session.SessionID))
}
