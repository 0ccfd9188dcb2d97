package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	schedulerRepo "radbook/database/repository/scheduler"
	"radbook/models"
	"radbook/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeSchedulerRepo is an in-memory SchedulerRepository for service tests.
type fakeSchedulerRepo struct {
	mu sync.Mutex

	slots        []models.Slot
	appointments []models.Appointment
	drafts       map[primitive.ObjectID]models.AppointmentDraft

	slotsErr  error
	apptsErr  error
	draftsErr error

	insertDraftErr  error
	promoteErr      error
	deleteDraftErr  error
	updateFieldsErr error
}

func newFakeSchedulerRepo() *fakeSchedulerRepo {
	return &fakeSchedulerRepo{drafts: map[primitive.ObjectID]models.AppointmentDraft{}}
}

func (f *fakeSchedulerRepo) FindOpenSlots(ctx context.Context, imaging models.ImagingContext, from, to time.Time) ([]models.Slot, error) {
	if f.slotsErr != nil {
		return nil, f.slotsErr
	}
	return f.slots, nil
}

func (f *fakeSchedulerRepo) FindScheduledAppointments(ctx context.Context, imaging models.ImagingContext, from, to time.Time, exclude *primitive.ObjectID) ([]models.Appointment, error) {
	if f.apptsErr != nil {
		return nil, f.apptsErr
	}
	var out []models.Appointment
	for _, a := range f.appointments {
		if exclude != nil && a.ID == *exclude {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeSchedulerRepo) FindDrafts(ctx context.Context, imaging models.ImagingContext, from, to time.Time) ([]models.AppointmentDraft, error) {
	if f.draftsErr != nil {
		return nil, f.draftsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AppointmentDraft
	for _, d := range f.drafts {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeSchedulerRepo) GetAppointmentByID(id primitive.ObjectID) (*models.Appointment, error) {
	for i := range f.appointments {
		if f.appointments[i].ID == id {
			a := f.appointments[i]
			return &a, nil
		}
	}
	return nil, errors.New("appointment not found")
}

func (f *fakeSchedulerRepo) FindAppointmentsByPatient(patientID primitive.ObjectID) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appointments {
		if a.FkPatient == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSchedulerRepo) FindAppointmentsStartingBetween(from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appointments {
		if !a.Start.Before(from) && a.Start.Before(to) && a.Status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSchedulerRepo) UpdateAppointmentFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	if f.updateFieldsErr != nil {
		return f.updateFieldsErr
	}
	for i := range f.appointments {
		if f.appointments[i].ID == id {
			if status, ok := fields["status"].(bool); ok {
				f.appointments[i].Status = status
			}
			if start, ok := fields["start"].(time.Time); ok {
				f.appointments[i].Start = start
			}
			if end, ok := fields["end"].(time.Time); ok {
				f.appointments[i].End = end
			}
			if slot, ok := fields["slot"].(models.SlotRef); ok {
				f.appointments[i].Slot = slot
			}
			return nil
		}
	}
	return errors.New("appointment not found")
}

// holdsInterval mirrors the store-side write check: active appointments and
// drafts on the equipment block the interval. Callers hold the mutex.
func (f *fakeSchedulerRepo) holdsInterval(equipment primitive.ObjectID, start, end time.Time, excludeDraft primitive.ObjectID) bool {
	for _, a := range f.appointments {
		if a.Slot.Equipment == equipment && a.Status && a.FlowState == models.FlowStateScheduled && Overlaps(start, end, a.Start, a.End) {
			return true
		}
	}
	for id, d := range f.drafts {
		if id == excludeDraft {
			continue
		}
		if d.Slot.Equipment == equipment && Overlaps(start, end, d.Start, d.End) {
			return true
		}
	}
	return false
}

func (f *fakeSchedulerRepo) InsertDraft(ctx context.Context, draft *models.AppointmentDraft) (primitive.ObjectID, error) {
	if f.insertDraftErr != nil {
		return primitive.NilObjectID, f.insertDraftErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.holdsInterval(draft.Slot.Equipment, draft.Start, draft.End, primitive.NilObjectID) {
		return primitive.NilObjectID, schedulerRepo.ErrIntervalTaken
	}
	id := primitive.NewObjectID()
	draft.ID = id
	f.drafts[id] = *draft
	return id, nil
}

func (f *fakeSchedulerRepo) DeleteDraft(ctx context.Context, id primitive.ObjectID) error {
	if f.deleteDraftErr != nil {
		return f.deleteDraftErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.drafts, id)
	return nil
}

func (f *fakeSchedulerRepo) PromoteDraft(ctx context.Context, draftID primitive.ObjectID, appt *models.Appointment) (primitive.ObjectID, error) {
	if f.promoteErr != nil {
		return primitive.NilObjectID, f.promoteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.drafts[draftID]; !ok {
		return primitive.NilObjectID, errors.New("draft not found")
	}
	if f.holdsInterval(appt.Slot.Equipment, appt.Start, appt.End, draftID) {
		return primitive.NilObjectID, schedulerRepo.ErrIntervalTaken
	}
	id := primitive.NewObjectID()
	appt.ID = id
	f.appointments = append(f.appointments, *appt)
	delete(f.drafts, draftID)
	return id, nil
}

func (f *fakeSchedulerRepo) DeleteExpiredDrafts(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, d := range f.drafts {
		if d.CreatedAt.Before(cutoff) {
			delete(f.drafts, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeSchedulerRepo) DeleteOrphanedDrafts(ctx context.Context, grace time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, d := range f.drafts {
		for _, a := range f.appointments {
			if a.FkPatient == d.FkPatient && a.Slot.FkSlot == d.Slot.FkSlot && a.Start.Equal(d.Start) && a.Status {
				delete(f.drafts, id)
				n++
				break
			}
		}
	}
	return n, nil
}

// fakeReferencesRepo serves the procedures and branches seeded into it.
type fakeReferencesRepo struct {
	procedures map[primitive.ObjectID]models.Procedure
	branches   map[primitive.ObjectID]models.Branch
}

func newFakeReferencesRepo() *fakeReferencesRepo {
	return &fakeReferencesRepo{
		procedures: map[primitive.ObjectID]models.Procedure{},
		branches:   map[primitive.ObjectID]models.Branch{},
	}
}

func (f *fakeReferencesRepo) FindOrganizations(ctx context.Context) ([]models.Organization, error) {
	return nil, nil
}

func (f *fakeReferencesRepo) FindBranches(ctx context.Context, organization primitive.ObjectID) ([]models.Branch, error) {
	return nil, nil
}

func (f *fakeReferencesRepo) FindServices(ctx context.Context, branch primitive.ObjectID) ([]models.Service, error) {
	return nil, nil
}

func (f *fakeReferencesRepo) FindProcedures(ctx context.Context, service primitive.ObjectID) ([]models.Procedure, error) {
	return nil, nil
}

func (f *fakeReferencesRepo) GetProcedureByID(ctx context.Context, id primitive.ObjectID) (*models.Procedure, error) {
	p, ok := f.procedures[id]
	if !ok {
		return nil, errors.New("procedure not found")
	}
	return &p, nil
}

func (f *fakeReferencesRepo) GetBranchByID(ctx context.Context, id primitive.ObjectID) (*models.Branch, error) {
	b, ok := f.branches[id]
	if !ok {
		return nil, errors.New("branch not found")
	}
	return &b, nil
}

// recordingNotifier captures side-channel events instead of posting them.
type recordingNotifier struct {
	mu    sync.Mutex
	types []string
}

func (r *recordingNotifier) NotifyAppointment(ctx context.Context, notifyType string, appt *models.Appointment, location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, notifyType)
}

func (r *recordingNotifier) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

// newTestService wires the service against miniredis and in-memory fakes.
func newTestService(t *testing.T) (*DefaultBookingSessionService, *fakeSchedulerRepo, *fakeReferencesRepo, *recordingNotifier) {
	t.Helper()

	mr := miniredis.RunT(t)
	utils.SessionCacheClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { utils.SessionCacheClient = nil })

	repo := newFakeSchedulerRepo()
	refs := newFakeReferencesRepo()
	notifier := &recordingNotifier{}

	svc := &DefaultBookingSessionService{
		Repo:         repo,
		Refs:         refs,
		Notification: notifier,
	}
	return svc, repo, refs, notifier
}

// seedProcedure registers a bookable procedure that runs on the returned
// equipment for 30 minutes.
func seedProcedure(refs *fakeReferencesRepo) (models.Procedure, primitive.ObjectID) {
	equipment := primitive.NewObjectID()
	procedure := models.Procedure{
		ID:   primitive.NewObjectID(),
		Name: "Brain MRI",
		Equipments: []models.ProcedureEquipment{
			{FkEquipment: equipment, Duration: 30},
		},
		ReportingDelay: 5,
		Status:         true,
	}
	refs.procedures[procedure.ID] = procedure
	return procedure, equipment
}

func testImaging() models.ImagingContext {
	return models.ImagingContext{
		Organization: primitive.NewObjectID(),
		Branch:       primitive.NewObjectID(),
		Service:      primitive.NewObjectID(),
	}
}
