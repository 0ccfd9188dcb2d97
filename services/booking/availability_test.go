package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"radbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildAvailabilityMergesSources(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	procedure, equipment := seedProcedure(refs)
	imaging := testImaging()

	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	repo.slots = []models.Slot{{
		ID:        primitive.NewObjectID(),
		Equipment: models.EquipmentRef{ID: equipment, Name: "Resonator A"},
		Start:     day.Add(8 * time.Hour),
		End:       day.Add(12 * time.Hour),
	}}
	repo.appointments = []models.Appointment{{
		ID:        primitive.NewObjectID(),
		Start:     day.Add(9 * time.Hour),
		End:       day.Add(9*time.Hour + 30*time.Minute),
		FlowState: models.FlowStateScheduled,
		Status:    true,
		Slot:      models.SlotRef{Equipment: equipment},
	}}
	draftID := primitive.NewObjectID()
	repo.drafts[draftID] = models.AppointmentDraft{
		ID:    draftID,
		Start: day.Add(10 * time.Hour),
		End:   day.Add(10*time.Hour + 30*time.Minute),
		Slot:  models.SlotRef{Equipment: equipment},
	}

	availability, err := svc.BuildAvailability(context.Background(), imaging, procedure, day, day.Add(24*time.Hour), nil)
	require.NoError(t, err)

	require.Len(t, availability.Resources, 1)
	assert.Equal(t, "Resonator A | 30 min.", availability.Resources[0].Title)

	require.Len(t, availability.BackgroundEvents, 1)
	assert.True(t, availability.BackgroundEvents[0].Background)

	require.Len(t, availability.BlockingEvents, 2)
	assert.Equal(t, "Occupied", availability.BlockingEvents[0].Title)
	assert.Equal(t, "Reserved", availability.BlockingEvents[1].Title)
	assert.Empty(t, availability.SourceErrors)
}

func TestBuildAvailabilityExcludesUrgentSlots(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	procedure, equipment := seedProcedure(refs)

	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	repo.slots = []models.Slot{
		{
			ID:        primitive.NewObjectID(),
			Equipment: models.EquipmentRef{ID: equipment, Name: "Resonator A"},
			Start:     day.Add(8 * time.Hour),
			End:       day.Add(10 * time.Hour),
			Urgency:   true,
		},
		{
			ID:        primitive.NewObjectID(),
			Equipment: models.EquipmentRef{ID: equipment, Name: "Resonator A"},
			Start:     day.Add(10 * time.Hour),
			End:       day.Add(12 * time.Hour),
		},
	}

	availability, err := svc.BuildAvailability(context.Background(), testImaging(), procedure, day, day.Add(24*time.Hour), nil)
	require.NoError(t, err)

	// Urgent windows are held back for staff; only the regular slot is offered.
	require.Len(t, availability.BackgroundEvents, 1)
	assert.Equal(t, day.Add(10*time.Hour), availability.BackgroundEvents[0].Start)
}

func TestBuildAvailabilitySkipsIneligibleEquipment(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	procedure, _ := seedProcedure(refs)

	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	repo.slots = []models.Slot{{
		ID:        primitive.NewObjectID(),
		Equipment: models.EquipmentRef{ID: primitive.NewObjectID(), Name: "CT Scanner"},
		Start:     day.Add(8 * time.Hour),
		End:       day.Add(12 * time.Hour),
	}}

	availability, err := svc.BuildAvailability(context.Background(), testImaging(), procedure, day, day.Add(24*time.Hour), nil)
	require.NoError(t, err)

	assert.Empty(t, availability.Resources)
	assert.Empty(t, availability.BackgroundEvents)
}

func TestBuildAvailabilityPartialSourceFailure(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	procedure, equipment := seedProcedure(refs)

	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	repo.slots = []models.Slot{{
		ID:        primitive.NewObjectID(),
		Equipment: models.EquipmentRef{ID: equipment, Name: "Resonator A"},
		Start:     day.Add(8 * time.Hour),
		End:       day.Add(12 * time.Hour),
	}}
	repo.draftsErr = errors.New("draft source down")

	availability, err := svc.BuildAvailability(context.Background(), testImaging(), procedure, day, day.Add(24*time.Hour), nil)
	require.NoError(t, err)

	// The surviving sources still contribute.
	assert.Len(t, availability.BackgroundEvents, 1)
	require.Contains(t, availability.SourceErrors, models.SourceDrafts)
	assert.Contains(t, availability.SourceErrors[models.SourceDrafts], "draft source down")
	assert.NotContains(t, availability.SourceErrors, models.SourceSlots)
}

func TestBuildAvailabilityExcludesRescheduledAppointment(t *testing.T) {
	svc, repo, refs, _ := newTestService(t)
	procedure, equipment := seedProcedure(refs)

	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	excluded := primitive.NewObjectID()
	repo.appointments = []models.Appointment{
		{
			ID:        excluded,
			Start:     day.Add(9 * time.Hour),
			End:       day.Add(10 * time.Hour),
			FlowState: models.FlowStateScheduled,
			Status:    true,
			Slot:      models.SlotRef{Equipment: equipment},
		},
		{
			ID:        primitive.NewObjectID(),
			Start:     day.Add(11 * time.Hour),
			End:       day.Add(12 * time.Hour),
			FlowState: models.FlowStateScheduled,
			Status:    true,
			Slot:      models.SlotRef{Equipment: equipment},
		},
	}

	availability, err := svc.BuildAvailability(context.Background(), testImaging(), procedure, day, day.Add(24*time.Hour), &excluded)
	require.NoError(t, err)

	require.Len(t, availability.BlockingEvents, 1)
	assert.NotEqual(t, excluded.Hex(), availability.BlockingEvents[0].ID)
}

func TestBuildAvailabilityRejectsInvertedRange(t *testing.T) {
	svc, _, refs, _ := newTestService(t)
	procedure, _ := seedProcedure(refs)

	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	_, err := svc.BuildAvailability(context.Background(), testImaging(), procedure, day.Add(24*time.Hour), day, nil)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}
