package schedulerRepo

import (
	"context"
	"fmt"
	"time"

	"radbook/config"
	"radbook/database"
	"radbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSchedulerRepo implements SchedulerRepository using MongoDB.
type MongoSchedulerRepo struct {
	slotColl  *mongo.Collection
	apptColl  *mongo.Collection
	draftColl *mongo.Collection
}

// NewMongoSchedulerRepo constructs a new instance of MongoSchedulerRepo.
func NewMongoSchedulerRepo() SchedulerRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoSchedulerRepo{
		slotColl:  db.Collection("slots"),
		apptColl:  db.Collection("appointments"),
		draftColl: db.Collection("appointments_drafts"),
	}
}

func imagingFilter(prefix string, imaging models.ImagingContext) bson.M {
	return bson.M{
		prefix + ".organization": imaging.Organization,
		prefix + ".branch":       imaging.Branch,
		prefix + ".service":      imaging.Service,
	}
}

// FindOpenSlots retrieves published open slots for the imaging context whose
// start falls inside [from, to). Urgent slots are held back for staff
// scheduling and never offered to patients.
func (repo *MongoSchedulerRepo) FindOpenSlots(ctx context.Context, imaging models.ImagingContext, from, to time.Time) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := imagingFilter("domain", imaging)
	filter["start"] = bson.M{"$gte": from, "$lt": to}
	filter["urgency"] = false

	opts := options.Find().SetSort(bson.M{"start": 1})
	cursor, err := repo.slotColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding slots: %w", err)
	}
	return slots, nil
}

// FindScheduledAppointments retrieves active scheduled appointments for the
// imaging context whose start falls inside [from, to). When exclude is set,
// that appointment is omitted so a reschedule does not conflict with itself.
func (repo *MongoSchedulerRepo) FindScheduledAppointments(ctx context.Context, imaging models.ImagingContext, from, to time.Time, exclude *primitive.ObjectID) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := imagingFilter("imaging", imaging)
	filter["start"] = bson.M{"$gte": from, "$lt": to}
	filter["flow_state"] = models.FlowStateScheduled
	filter["status"] = true
	if exclude != nil {
		filter["_id"] = bson.M{"$ne": *exclude}
	}

	cursor, err := repo.apptColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

// FindDrafts retrieves appointment drafts for the imaging context whose start
// falls inside [from, to).
func (repo *MongoSchedulerRepo) FindDrafts(ctx context.Context, imaging models.ImagingContext, from, to time.Time) ([]models.AppointmentDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := imagingFilter("imaging", imaging)
	filter["start"] = bson.M{"$gte": from, "$lt": to}

	cursor, err := repo.draftColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching drafts: %w", err)
	}
	defer cursor.Close(ctx)

	var drafts []models.AppointmentDraft
	if err := cursor.All(ctx, &drafts); err != nil {
		return nil, fmt.Errorf("error decoding drafts: %w", err)
	}
	return drafts, nil
}

// GetAppointmentByID retrieves an appointment document by ID.
func (repo *MongoSchedulerRepo) GetAppointmentByID(id primitive.ObjectID) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var appt models.Appointment
	if err := repo.apptColl.FindOne(ctx, bson.M{"_id": id}).Decode(&appt); err != nil {
		return nil, fmt.Errorf("error fetching appointment with id %s: %w", id.Hex(), err)
	}
	return &appt, nil
}

// FindAppointmentsByPatient retrieves all appointments for a patient, newest
// start first. Soft-cancelled records are included so history stays visible.
func (repo *MongoSchedulerRepo) FindAppointmentsByPatient(patientID primitive.ObjectID) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"start": -1})
	cursor, err := repo.apptColl.Find(ctx, bson.M{"fk_patient": patientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching patient appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding patient appointments: %w", err)
	}
	return appts, nil
}

// FindAppointmentsStartingBetween retrieves active scheduled appointments
// starting inside [from, to), across all imaging contexts.
func (repo *MongoSchedulerRepo) FindAppointmentsStartingBetween(from, to time.Time) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{
		"start":      bson.M{"$gte": from, "$lt": to},
		"flow_state": models.FlowStateScheduled,
		"status":     true,
	}
	cursor, err := repo.apptColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching upcoming appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding upcoming appointments: %w", err)
	}
	return appts, nil
}

// UpdateAppointmentFields applies a field-level $set to an appointment.
func (repo *MongoSchedulerRepo) UpdateAppointmentFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.apptColl.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("error updating appointment %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("appointment with id %s not found", id.Hex())
	}
	return nil
}

// countIntervalHolders counts active appointments and drafts occupying any
// part of [start, end) on the equipment. excludeDraft omits one draft so a
// promotion does not conflict with the draft it consumes.
func (repo *MongoSchedulerRepo) countIntervalHolders(ctx context.Context, equipment primitive.ObjectID, start, end time.Time, excludeDraft *primitive.ObjectID) (int64, error) {
	apptFilter := bson.M{
		"slot.equipment": equipment,
		"flow_state":     models.FlowStateScheduled,
		"status":         true,
		"start":          bson.M{"$lt": end},
		"end":            bson.M{"$gt": start},
	}
	count, err := repo.apptColl.CountDocuments(ctx, apptFilter)
	if err != nil {
		return 0, fmt.Errorf("error counting appointments on interval: %w", err)
	}

	draftFilter := bson.M{
		"slot.equipment": equipment,
		"start":          bson.M{"$lt": end},
		"end":            bson.M{"$gt": start},
	}
	if excludeDraft != nil {
		draftFilter["_id"] = bson.M{"$ne": *excludeDraft}
	}
	draftCount, err := repo.draftColl.CountDocuments(ctx, draftFilter)
	if err != nil {
		return 0, fmt.Errorf("error counting drafts on interval: %w", err)
	}
	return count + draftCount, nil
}

// InsertDraft inserts a new appointment draft and returns its generated id.
// The interval is re-checked against appointments and competing drafts on
// the way in; two sessions working from snapshots taken before each other's
// reservation cannot both land.
func (repo *MongoSchedulerRepo) InsertDraft(ctx context.Context, draft *models.AppointmentDraft) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	holders, err := repo.countIntervalHolders(ctx, draft.Slot.Equipment, draft.Start, draft.End, nil)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if holders > 0 {
		return primitive.NilObjectID, ErrIntervalTaken
	}

	res, err := repo.draftColl.InsertOne(ctx, draft)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("error creating draft: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// DeleteDraft removes a draft. Deleting an already-deleted draft is not an
// error; discard must stay idempotent under double-submits.
func (repo *MongoSchedulerRepo) DeleteDraft(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.draftColl.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("error deleting draft %s: %w", id.Hex(), err)
	}
	return nil
}

// DeleteExpiredDrafts removes drafts created before the cutoff and returns
// how many were swept.
func (repo *MongoSchedulerRepo) DeleteExpiredDrafts(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := repo.draftColl.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("error sweeping expired drafts: %w", err)
	}
	return res.DeletedCount, nil
}

// DeleteOrphanedDrafts removes drafts that were already promoted into an
// appointment but whose delete step failed. A draft is orphaned when an
// active appointment exists for the same patient, slot and start time. Only
// drafts older than the grace window are considered, so an in-flight
// promotion is never raced.
func (repo *MongoSchedulerRepo) DeleteOrphanedDrafts(ctx context.Context, grace time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{"created_at": bson.M{"$lt": time.Now().UTC().Add(-grace)}}
	cursor, err := repo.draftColl.Find(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("error fetching drafts for reconciliation: %w", err)
	}
	defer cursor.Close(ctx)

	var drafts []models.AppointmentDraft
	if err := cursor.All(ctx, &drafts); err != nil {
		return 0, fmt.Errorf("error decoding drafts for reconciliation: %w", err)
	}

	var removed int64
	for _, draft := range drafts {
		apptFilter := bson.M{
			"fk_patient":   draft.FkPatient,
			"slot.fk_slot": draft.Slot.FkSlot,
			"start":        draft.Start,
			"status":       true,
		}
		count, err := repo.apptColl.CountDocuments(ctx, apptFilter)
		if err != nil {
			return removed, fmt.Errorf("error checking draft %s for promotion: %w", draft.ID.Hex(), err)
		}
		if count == 0 {
			continue
		}
		res, err := repo.draftColl.DeleteOne(ctx, bson.M{"_id": draft.ID})
		if err != nil {
			return removed, fmt.Errorf("error deleting orphaned draft %s: %w", draft.ID.Hex(), err)
		}
		removed += res.DeletedCount
	}
	return removed, nil
}
