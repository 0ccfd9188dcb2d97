package models

import "time"

// ChatMessage is one turn of a booking-agent conversation.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AgentContext is the per-patient conversation state kept in Redis between
// chat requests.
type AgentContext struct {
	Messages []ChatMessage `json:"messages,omitempty"`
}

// AgentToolCall records one tool invocation made while answering a chat
// message, echoed back in the final "complete" event.
type AgentToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result"`
}
