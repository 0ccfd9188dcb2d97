package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"radbook/models"
	"radbook/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BuildAvailability fetches the three event sources for one imaging context
// and date range concurrently and merges them into a calendar view. A failed
// source contributes nothing and is reported under its name in SourceErrors;
// the remaining sources stay intact. When exclude is set, that appointment is
// left out of the blocking events.
func (s *DefaultBookingSessionService) BuildAvailability(
	ctx context.Context,
	imaging models.ImagingContext,
	procedure models.Procedure,
	from, to time.Time,
	exclude *primitive.ObjectID,
) (*models.Availability, error) {
	logger := utils.GetLogger()

	if !from.Before(to) {
		return nil, NewValidationError("range", "from must precede to")
	}

	var (
		slots  []models.Slot
		appts  []models.Appointment
		drafts []models.AppointmentDraft

		mu   sync.Mutex
		errs = make(map[string]string)
		wg   sync.WaitGroup
	)

	record := func(source string, err error) {
		mu.Lock()
		errs[source] = err.Error()
		mu.Unlock()
		logger.Error("availability source failed",
			zap.String("source", source), zap.Error(err))
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		res, err := s.Repo.FindOpenSlots(ctx, imaging, from, to)
		if err != nil {
			record(models.SourceSlots, err)
			return
		}
		slots = res
	}()
	go func() {
		defer wg.Done()
		res, err := s.Repo.FindScheduledAppointments(ctx, imaging, from, to, exclude)
		if err != nil {
			record(models.SourceAppointments, err)
			return
		}
		appts = res
	}()
	go func() {
		defer wg.Done()
		res, err := s.Repo.FindDrafts(ctx, imaging, from, to)
		if err != nil {
			record(models.SourceDrafts, err)
			return
		}
		drafts = res
	}()
	wg.Wait()

	availability := &models.Availability{}
	if len(errs) > 0 {
		availability.SourceErrors = errs
	}

	// Resources come from the slot publications, restricted to equipment the
	// procedure can run on. The title carries the procedure duration there.
	seen := map[primitive.ObjectID]bool{}
	for _, slot := range slots {
		// Urgent slots are reserved for staff scheduling.
		if slot.Urgency {
			continue
		}
		duration, ok := procedure.EquipmentDuration(slot.Equipment.ID)
		if !ok {
			continue
		}
		if !seen[slot.Equipment.ID] {
			seen[slot.Equipment.ID] = true
			availability.Resources = append(availability.Resources, models.CalendarResource{
				ID:    slot.Equipment.ID,
				Title: fmt.Sprintf("%s | %d min.", slot.Equipment.Name, duration),
			})
		}
		availability.BackgroundEvents = append(availability.BackgroundEvents, models.CalendarEvent{
			ID:         slot.ID.Hex(),
			ResourceID: slot.Equipment.ID,
			Start:      slot.Start,
			End:        slot.End,
			Background: true,
		})
	}

	for _, appt := range appts {
		availability.BlockingEvents = append(availability.BlockingEvents, models.CalendarEvent{
			ID:         appt.ID.Hex(),
			ResourceID: appt.Slot.Equipment,
			Title:      "Occupied",
			Start:      appt.Start,
			End:        appt.End,
		})
	}
	for _, draft := range drafts {
		availability.BlockingEvents = append(availability.BlockingEvents, models.CalendarEvent{
			ID:         draft.ID.Hex(),
			ResourceID: draft.Slot.Equipment,
			Title:      "Reserved",
			Start:      draft.Start,
			End:        draft.End,
		})
	}

	sort.Slice(availability.Resources, func(i, j int) bool {
		return availability.Resources[i].Title < availability.Resources[j].Title
	})
	sort.Slice(availability.BlockingEvents, func(i, j int) bool {
		return availability.BlockingEvents[i].Start.Before(availability.BlockingEvents[j].Start)
	})

	return availability, nil
}
