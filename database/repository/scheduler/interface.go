package schedulerRepo

import (
	"context"
	"errors"
	"time"

	"radbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrIntervalTaken is returned by InsertDraft and PromoteDraft when the
// equipment interval is already held by an active appointment or another
// draft. The store enforces this on every write; client-side snapshots
// can be stale.
var ErrIntervalTaken = errors.New("equipment interval already reserved")

// SchedulerRepository defines data-access methods for slots, appointments and
// appointment drafts.
type SchedulerRepository interface {
	// Availability sources.
	FindOpenSlots(ctx context.Context, imaging models.ImagingContext, from, to time.Time) ([]models.Slot, error)
	FindScheduledAppointments(ctx context.Context, imaging models.ImagingContext, from, to time.Time, exclude *primitive.ObjectID) ([]models.Appointment, error)
	FindDrafts(ctx context.Context, imaging models.ImagingContext, from, to time.Time) ([]models.AppointmentDraft, error)

	// Appointments.
	GetAppointmentByID(id primitive.ObjectID) (*models.Appointment, error)
	FindAppointmentsByPatient(patientID primitive.ObjectID) ([]models.Appointment, error)
	FindAppointmentsStartingBetween(from, to time.Time) ([]models.Appointment, error)
	UpdateAppointmentFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error

	// Drafts.
	InsertDraft(ctx context.Context, draft *models.AppointmentDraft) (primitive.ObjectID, error)
	DeleteDraft(ctx context.Context, id primitive.ObjectID) error
	PromoteDraft(ctx context.Context, draftID primitive.ObjectID, appt *models.Appointment) (primitive.ObjectID, error)

	// Sweep maintenance.
	DeleteExpiredDrafts(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOrphanedDrafts(ctx context.Context, grace time.Duration) (int64, error)
}
