package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"radbook/config"
	"radbook/models"
	"radbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService posts booking events to the external notification
// side-channel. Delivery is best-effort: every method returns after the
// attempt and the booking flow never blocks on it.
type NotificationService interface {
	NotifyAppointment(ctx context.Context, notifyType string, appt *models.Appointment, location string)
}

// NotificationError wraps a failed delivery attempt.
type NotificationError struct {
	Type string
	Err  error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification %s failed: %v", e.Type, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// HTTPNotificationService implements NotificationService over the HTTP
// notification endpoint.
type HTTPNotificationService struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPNotificationService builds the production notification client.
func NewHTTPNotificationService() *HTTPNotificationService {
	return &HTTPNotificationService{
		BaseURL: config.AppConfig.NotifyServiceURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// NotifyAppointment fires an appointment notification. Failures are logged
// and swallowed.
func (s *HTTPNotificationService) NotifyAppointment(ctx context.Context, notifyType string, appt *models.Appointment, location string) {
	payload := models.NotificationPayload{
		PatientID:     appt.FkPatient.Hex(),
		Type:          notifyType,
		AppointmentID: appt.ID.Hex(),
		Data: models.NotificationData{
			Procedure: appt.ProcedureName,
			Date:      appt.Start.Format("2006-01-02"),
			Time:      appt.Start.Format("15:04"),
			Location:  location,
		},
	}
	if err := s.post(ctx, payload); err != nil {
		logger := utils.GetLogger()
		logger.Warn("notification delivery failed",
			zap.String("type", notifyType),
			zap.String("appointmentId", appt.ID.Hex()),
			zap.Error(&NotificationError{Type: notifyType, Err: err}))
	}
}

func (s *HTTPNotificationService) post(ctx context.Context, payload models.NotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/api/notify", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Idempotency key so the notifier can deduplicate retried deliveries.
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}
	return nil
}
