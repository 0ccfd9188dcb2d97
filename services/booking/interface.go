package booking

import (
	"context"
	"time"

	referencesRepo "radbook/database/repository/references"
	schedulerRepo "radbook/database/repository/scheduler"
	"radbook/models"
	"radbook/services/notification"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingSessionService manages the stateful patient booking flow: session
// lifecycle, availability, tentative selection, draft lifecycle, confirmation
// and reschedule.
type BookingSessionService interface {
	StartSession(ctx context.Context, patientID primitive.ObjectID, imaging models.ImagingContext, procedureID primitive.ObjectID, rescheduleID *primitive.ObjectID) (*models.BookingSession, error)
	GetSession(ctx context.Context, sessionID string) (*models.BookingSession, error)
	RefreshAvailability(ctx context.Context, sessionID string, from, to time.Time) (*models.Availability, error)
	ProposeCandidate(ctx context.Context, sessionID string, equipment, slotID primitive.ObjectID, start time.Time) (*models.TentativeSelection, error)
	ClearTentative(ctx context.Context, sessionID string) error
	CreateDraft(ctx context.Context, sessionID string) (*models.BookingSession, error)
	DiscardDraft(ctx context.Context, sessionID string) error
	ConfirmBooking(ctx context.Context, sessionID string, req ConfirmRequest) (*models.Appointment, error)
	EndSession(ctx context.Context, sessionID string) error

	ListPatientAppointments(patientID primitive.ObjectID) ([]AppointmentView, error)
	CancelAppointment(ctx context.Context, patientID, appointmentID primitive.ObjectID) error
}

// ConfirmRequest carries the final confirmation step data.
type ConfirmRequest struct {
	Contact       string               `json:"contact" binding:"required"`
	Outpatient    bool                 `json:"outpatient"`
	UseContrast   bool                 `json:"use_contrast"`
	Referring     primitive.ObjectID   `json:"referring_organization"`
	PrivateHealth models.PrivateHealth `json:"private_health" binding:"required"`
}

// AppointmentView is an appointment decorated with its flow state label for
// listing endpoints.
type AppointmentView struct {
	models.Appointment
	FlowStateLabel string `json:"flow_state_label"`
}

// DefaultBookingSessionService implements BookingSessionService.
type DefaultBookingSessionService struct {
	Repo         schedulerRepo.SchedulerRepository
	Refs         referencesRepo.ReferencesRepository
	Notification notification.NotificationService
}
