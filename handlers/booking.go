package handlers

import (
	"errors"
	"net/http"
	"time"

	"radbook/models"
	"radbook/services/booking"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingService is injected at startup.
var BookingService booking.BookingSessionService

// patientIDFromContext reads the authenticated patient id set by the auth
// middleware.
func patientIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	raw, ok := c.Get("patientID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication"})
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw.(string))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid patient id in token"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondBookingError maps service errors onto HTTP statuses.
func respondBookingError(c *gin.Context, err error) {
	var valErr *booking.ValidationError
	var conflictErr *booking.ConflictError

	switch {
	case errors.Is(err, booking.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrTentativeExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":            conflictErr.Error(),
			"equipment":        conflictErr.Equipment.Hex(),
			"requiredDuration": conflictErr.RequiredDuration,
		})
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// StartBookingSession creates a new booking session for the authenticated
// patient. An optional rescheduleId binds the session to an existing
// appointment.
func StartBookingSession(c *gin.Context) {
	patientID, ok := patientIDFromContext(c)
	if !ok {
		return
	}

	var input struct {
		Imaging      models.ImagingContext `json:"imaging" binding:"required"`
		ProcedureID  primitive.ObjectID    `json:"procedureId" binding:"required"`
		RescheduleID *primitive.ObjectID   `json:"rescheduleId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session, err := BookingService.StartSession(c.Request.Context(), patientID, input.Imaging, input.ProcedureID, input.RescheduleID)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetBookingSession returns the current session state.
func GetBookingSession(c *gin.Context) {
	session, err := BookingService.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetAvailability rebuilds the calendar view for a date range and refreshes
// the session's validation snapshot.
func GetAvailability(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp", "details": err.Error()})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp", "details": err.Error()})
		return
	}

	availability, err := BookingService.RefreshAvailability(c.Request.Context(), c.Param("sessionID"), from, to)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// ProposeSelection validates a clicked slot as the session's tentative
// selection.
func ProposeSelection(c *gin.Context) {
	var input struct {
		Equipment primitive.ObjectID `json:"equipment" binding:"required"`
		SlotID    primitive.ObjectID `json:"slotId" binding:"required"`
		Start     time.Time          `json:"start" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	tentative, err := BookingService.ProposeCandidate(c.Request.Context(), c.Param("sessionID"), input.Equipment, input.SlotID, input.Start)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, tentative)
}

// ClearSelection drops the tentative selection.
func ClearSelection(c *gin.Context) {
	if err := BookingService.ClearTentative(c.Request.Context(), c.Param("sessionID")); err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// CreateDraft reserves the tentative selection as an appointment draft.
func CreateDraft(c *gin.Context) {
	session, err := BookingService.CreateDraft(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draftId": session.DraftID.Hex()})
}

// DiscardDraft deletes the session's draft. Safe to call twice.
func DiscardDraft(c *gin.Context) {
	if err := BookingService.DiscardDraft(c.Request.Context(), c.Param("sessionID")); err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "discarded"})
}

// ConfirmBooking finalizes the booking or the reschedule.
func ConfirmBooking(c *gin.Context) {
	var req booking.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	appt, err := BookingService.ConfirmBooking(c.Request.Context(), c.Param("sessionID"), req)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// EndBookingSession discards the session state.
func EndBookingSession(c *gin.Context) {
	if err := BookingService.EndSession(c.Request.Context(), c.Param("sessionID")); err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ended"})
}
