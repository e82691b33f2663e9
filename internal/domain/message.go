package domain

import "time"

// Role constants for conversation messages.
const (
	RoleUser       = "user"
	RoleAgent      = "agent"
	RoleToolResult = "tool-result"
)

// ToolCall is a pending tool invocation requested by the agent.
type ToolCall struct {
	Name  string `json:"name"`
	Input string `json:"input"` // JSON string
}

// Message is a single turn of dialogue. Messages are immutable once appended
// to a conversation; ToolCalls is present only on agent messages that are
// still awaiting tool execution.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// PendingToolCalls reports whether this is an agent message that still
// carries unresolved tool calls.
func (m Message) PendingToolCalls() bool {
	return m.Role == RoleAgent && len(m.ToolCalls) > 0
}
