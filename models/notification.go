package models

// Notification types emitted over the side-channel.
const (
	NotifyBooked      = "appointment_booked"
	NotifyRescheduled = "appointment_rescheduled"
	NotifyCancelled   = "appointment_cancelled"
	NotifyReminder    = "appointment_reminder"
)

// NotificationData carries the human-readable appointment details of a
// notification.
type NotificationData struct {
	Procedure string `json:"procedure"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Location  string `json:"location"`
}

// NotificationPayload is the body posted to the external notification
// service. Delivery is fire-and-forget; failures are logged and never block
// the booking flow.
type NotificationPayload struct {
	PatientID     string           `json:"patientId"`
	Type          string           `json:"type"`
	AppointmentID string           `json:"appointmentId"`
	Data          NotificationData `json:"data"`
}
