package domain

// ConversationState is the unit of orchestration: the full message history
// plus the fields derived from it. It is created on first contact with a new
// conversation id and persisted at the end of every turn.
type ConversationState struct {
	Messages    []Message   `json:"messages"`
	Intent      Intent      `json:"intent"`
	Preferences Preferences `json:"preferences"`
}

// NewConversationState returns the default state for a fresh conversation.
func NewConversationState() *ConversationState {
	return &ConversationState{Intent: IntentUnknown}
}

// Clone returns a deep copy. The session runner mutates only the copy during
// a turn so a failed turn never leaks partial updates into the stored state.
func (s *ConversationState) Clone() *ConversationState {
	c := &ConversationState{
		Intent:      s.Intent,
		Preferences: s.Preferences,
		Messages:    make([]Message, len(s.Messages)),
	}
	copy(c.Messages, s.Messages)
	for i, m := range c.Messages {
		if len(m.ToolCalls) > 0 {
			calls := make([]ToolCall, len(m.ToolCalls))
			copy(calls, m.ToolCalls)
			c.Messages[i].ToolCalls = calls
		}
	}
	return c
}

// LastMessage returns the most recent message, or a zero Message when the
// history is empty.
func (s *ConversationState) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Window returns the last n messages in order. Recency windows are how the
// stages bound their prompt context.
func (s *ConversationState) Window(n int) []Message {
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}
