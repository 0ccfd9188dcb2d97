package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"radbook/models"
	"radbook/services/booking"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is one server-sent chunk of a streamed chat answer.
type Event struct {
	Type string `json:"type"` // token, tool_call, tool_result, complete, error
	Data any    `json:"data,omitempty"`
}

// AgentService answers booking questions over a streamed chat. Tool calls
// against the booking service are surfaced as events so the client can show
// what the agent looked up.
type AgentService interface {
	StreamChat(ctx context.Context, patientID primitive.ObjectID, message string, emit func(Event) error) error
	ClearConversation(ctx context.Context, patientID primitive.ObjectID) error
}

// DefaultAgentService implements AgentService on top of Gemini and the
// booking service.
type DefaultAgentService struct {
	CtxStore *RedisContextStore
	Gemini   *GeminiClient
	BookSvc  booking.BookingSessionService
}

const systemPreamble = `You are a booking assistant for a medical imaging center.
Answer briefly and only about imaging appointments, procedures and scheduling.
Use the LOOKUP sections below when they are present; do not invent appointments.`

// StreamChat loads the conversation, runs any lookups the message asks for,
// streams the model answer as token events, and stores the updated
// conversation. The final complete event echoes the tool calls made.
func (s *DefaultAgentService) StreamChat(ctx context.Context, patientID primitive.ObjectID, message string, emit func(Event) error) error {
	pid := patientID.Hex()

	agentCtx, err := s.CtxStore.Get(ctx, pid)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}

	toolCalls, lookups := s.runTools(ctx, patientID, message, emit)

	prompt := buildPrompt(agentCtx, message, lookups)

	answer, err := s.Gemini.StreamContent(ctx, prompt, func(token string) error {
		return emit(Event{Type: "token", Data: token})
	})
	if err != nil {
		_ = emit(Event{Type: "error", Data: err.Error()})
		return err
	}

	now := time.Now().UTC()
	agentCtx.Messages = append(agentCtx.Messages,
		models.ChatMessage{Role: "user", Content: message, Timestamp: now},
		models.ChatMessage{Role: "assistant", Content: answer, Timestamp: now},
	)
	if err := s.CtxStore.Set(ctx, pid, agentCtx); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}

	return emit(completeEvent(answer, toolCalls))
}

// completeEvent closes a streamed answer with the assembled content and the
// tool calls that fed it.
func completeEvent(content string, toolCalls []models.AgentToolCall) Event {
	return Event{Type: "complete", Data: map[string]any{
		"content":   content,
		"toolCalls": toolCalls,
	}}
}

// ClearConversation drops the stored chat history for a patient.
func (s *DefaultAgentService) ClearConversation(ctx context.Context, patientID primitive.ObjectID) error {
	return s.CtxStore.Clear(ctx, patientID.Hex())
}

// runTools inspects the message for lookups the agent can satisfy from the
// booking service. Each lookup is surfaced as a tool_call / tool_result event
// pair; a failed lookup becomes an empty result, never a broken stream.
func (s *DefaultAgentService) runTools(ctx context.Context, patientID primitive.ObjectID, message string, emit func(Event) error) ([]models.AgentToolCall, []string) {
	var calls []models.AgentToolCall
	var lookups []string

	lower := strings.ToLower(message)
	if strings.Contains(lower, "appointment") || strings.Contains(lower, "booking") || strings.Contains(lower, "scheduled") {
		call := models.AgentToolCall{Name: "list_my_appointments"}
		_ = emit(Event{Type: "tool_call", Data: call})

		appts, err := s.BookSvc.ListPatientAppointments(patientID)
		if err != nil {
			call.Result = "lookup failed"
		} else {
			call.Result = summarizeAppointments(appts)
		}
		_ = emit(Event{Type: "tool_result", Data: call})

		calls = append(calls, call)
		lookups = append(lookups, "LOOKUP my appointments:\n"+call.Result)
	}

	return calls, lookups
}

func summarizeAppointments(appts []booking.AppointmentView) string {
	if len(appts) == 0 {
		return "no appointments on record"
	}
	var sb strings.Builder
	for _, a := range appts {
		status := a.FlowStateLabel
		if !a.Status {
			status = "Cancelled"
		}
		fmt.Fprintf(&sb, "- %s on %s at %s (%s)\n",
			a.ProcedureName,
			a.Start.Format("2006-01-02"),
			a.Start.Format("15:04"),
			status)
	}
	return sb.String()
}

func buildPrompt(agentCtx *models.AgentContext, message string, lookups []string) string {
	var sb strings.Builder
	sb.WriteString(systemPreamble)
	sb.WriteString("\n\n")

	// Only the recent turns are replayed to keep the prompt bounded.
	history := agentCtx.Messages
	if len(history) > 10 {
		history = history[len(history)-10:]
	}
	for _, msg := range history {
		fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Content)
	}

	for _, lookup := range lookups {
		sb.WriteString("\n")
		sb.WriteString(lookup)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nuser: %s\nassistant:", message)
	return sb.String()
}
