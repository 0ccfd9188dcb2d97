package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListMyAppointments returns the authenticated patient's appointments,
// newest first, including soft-cancelled history.
func ListMyAppointments(c *gin.Context) {
	patientID, ok := patientIDFromContext(c)
	if !ok {
		return
	}

	appts, err := BookingService.ListPatientAppointments(patientID)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appts)
}

// CancelAppointment soft-cancels a future scheduled appointment of the
// authenticated patient.
func CancelAppointment(c *gin.Context) {
	patientID, ok := patientIDFromContext(c)
	if !ok {
		return
	}

	appointmentID, err := primitive.ObjectIDFromHex(c.Param("appointmentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	if err := BookingService.CancelAppointment(c.Request.Context(), patientID, appointmentID); err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
