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

func TestListPatientAppointmentsDecoratesFlowState(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	patientID := primitive.NewObjectID()

	appt := seedScheduledAppointment(repo, patientID, time.Now().UTC().Add(24*time.Hour))
	repo.appointments[0].FlowState = models.FlowStateReported

	views, err := svc.ListPatientAppointments(patientID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, appt.ID, views[0].ID)
	assert.Equal(t, "Reported", views[0].FlowStateLabel)
}

func TestCancelAppointmentSoftDeletes(t *testing.T) {
	svc, repo, refs, notifier := newTestService(t)
	patientID := primitive.NewObjectID()
	appt := seedScheduledAppointment(repo, patientID, time.Now().UTC().Add(24*time.Hour))
	refs.branches[appt.Imaging.Branch] = models.Branch{ID: appt.Imaging.Branch, Name: "Central Imaging"}

	require.NoError(t, svc.CancelAppointment(context.Background(), patientID, appt.ID))

	// Record kept, just inactive.
	require.Len(t, repo.appointments, 1)
	assert.False(t, repo.appointments[0].Status)
	assert.Equal(t, []string{models.NotifyCancelled}, notifier.sent())
}

func TestCancelAppointmentGuards(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	patientID := primitive.NewObjectID()

	t.Run("foreign appointment", func(t *testing.T) {
		appt := seedScheduledAppointment(repo, primitive.NewObjectID(), time.Now().UTC().Add(24*time.Hour))
		err := svc.CancelAppointment(context.Background(), patientID, appt.ID)
		var valErr *ValidationError
		assert.ErrorAs(t, err, &valErr)
	})

	t.Run("already started", func(t *testing.T) {
		appt := seedScheduledAppointment(repo, patientID, time.Now().UTC().Add(-time.Hour))
		err := svc.CancelAppointment(context.Background(), patientID, appt.ID)
		var valErr *ValidationError
		assert.ErrorAs(t, err, &valErr)
	})

	t.Run("already completed", func(t *testing.T) {
		appt := seedScheduledAppointment(repo, patientID, time.Now().UTC().Add(24*time.Hour))
		repo.appointments[len(repo.appointments)-1].FlowState = models.FlowStateCompleted
		err := svc.CancelAppointment(context.Background(), patientID, appt.ID)
		var valErr *ValidationError
		assert.ErrorAs(t, err, &valErr)
	})

	t.Run("already cancelled", func(t *testing.T) {
		appt := seedScheduledAppointment(repo, patientID, time.Now().UTC().Add(24*time.Hour))
		repo.appointments[len(repo.appointments)-1].Status = false
		err := svc.CancelAppointment(context.Background(), patientID, appt.ID)
		var valErr *ValidationError
		assert.ErrorAs(t, err, &valErr)
	})
}
