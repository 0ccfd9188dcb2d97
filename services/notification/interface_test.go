package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"radbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testAppointment() *models.Appointment {
	return &models.Appointment{
		ID:            primitive.NewObjectID(),
		FkPatient:     primitive.NewObjectID(),
		Start:         time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC),
		End:           time.Date(2026, 9, 14, 11, 0, 0, 0, time.UTC),
		ProcedureName: "Brain MRI",
	}
}

func TestNotifyAppointmentPostsPayload(t *testing.T) {
	var received models.NotificationPayload
	var path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := &HTTPNotificationService{BaseURL: server.URL, Client: server.Client()}
	appt := testAppointment()

	svc.NotifyAppointment(context.Background(), models.NotifyBooked, appt, "Central Imaging")

	assert.Equal(t, "/api/notify", path)
	assert.Equal(t, appt.FkPatient.Hex(), received.PatientID)
	assert.Equal(t, models.NotifyBooked, received.Type)
	assert.Equal(t, appt.ID.Hex(), received.AppointmentID)
	assert.Equal(t, "Brain MRI", received.Data.Procedure)
	assert.Equal(t, "2026-09-14", received.Data.Date)
	assert.Equal(t, "10:30", received.Data.Time)
	assert.Equal(t, "Central Imaging", received.Data.Location)
}

func TestNotifyAppointmentSwallowsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := &HTTPNotificationService{BaseURL: server.URL, Client: server.Client()}

	// Must not panic or block; delivery is best-effort.
	svc.NotifyAppointment(context.Background(), models.NotifyCancelled, testAppointment(), "")
}

func TestNotifyAppointmentUnreachableEndpoint(t *testing.T) {
	svc := &HTTPNotificationService{
		BaseURL: "http://127.0.0.1:1",
		Client:  &http.Client{Timeout: 200 * time.Millisecond},
	}
	svc.NotifyAppointment(context.Background(), models.NotifyReminder, testAppointment(), "")
}
