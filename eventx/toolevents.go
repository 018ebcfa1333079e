package eventx

import "time"

const (
	// DefaultSource is the source stamped on events this module emits
	DefaultSource = "watools"

	// TypeToolInvoked is published after every tool call
	TypeToolInvoked = "tool.invoked"
)

// ToolInvoked is the audit record of one tool call. Arguments are not
// included; they may carry message content.
type ToolInvoked struct {
	Tool      string        `json:"tool"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	ErrorCode string        `json:"error_code,omitempty"`
	MessageID string        `json:"message_id,omitempty"`
	Recipient string        `json:"recipient,omitempty"`
	Provider  string        `json:"provider"`
	Duration  time.Duration `json:"duration_ns"`
}

func NewToolInvoked(data ToolInvoked, opts ...Option) TypedEvent[ToolInvoked] {
	return NewEvent(TypeToolInvoked, data, opts...)
}
