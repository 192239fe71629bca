package parts

import (
	"encoding/json"

	"github.com/iyunix/go-visionai/internal/domain"
)

// EventType names one incremental part-event on the generation stream.
type EventType string

const (
	EventStart               EventType = "start"
	EventTextStart           EventType = "text-start"
	EventTextDelta           EventType = "text-delta"
	EventTextEnd             EventType = "text-end"
	EventReasoningStart      EventType = "reasoning-start"
	EventReasoningDelta      EventType = "reasoning-delta"
	EventReasoningEnd        EventType = "reasoning-end"
	EventSource              EventType = "source"
	EventToolInputStart      EventType = "tool-input-start"
	EventToolInputDelta      EventType = "tool-input-delta"
	EventToolInputAvailable  EventType = "tool-input-available"
	EventToolOutputAvailable EventType = "tool-output-available"
	EventToolOutputError     EventType = "tool-output-error"
	EventFinish              EventType = "finish"
	EventError               EventType = "error"
)

type FinishReason string

const (
	FinishStop FinishReason = "stop"
	// FinishTruncated marks a generation that hit the step ceiling while tools were still being requested.
	FinishTruncated FinishReason = "truncated"
)

// Event is the wire record streamed to clients and fed to the Assembler.
type Event struct {
	Type           EventType       `json:"type"`
	ID             string          `json:"id,omitempty"`
	Delta          string          `json:"delta,omitempty"`
	ToolCallID     string          `json:"toolCallId,omitempty"`
	ToolName       string          `json:"toolName,omitempty"`
	Input          json.RawMessage `json:"input,omitempty"`
	InputTextDelta string          `json:"inputTextDelta,omitempty"`
	Output         json.RawMessage `json:"output,omitempty"`
	ErrorText      string          `json:"errorText,omitempty"`
	Source         *domain.Source  `json:"source,omitempty"`
	FinishReason   FinishReason    `json:"finishReason,omitempty"`
	Steps          int             `json:"steps,omitempty"`
}

// IsReasoning reports whether the event belongs to a reasoning span.
func (e Event) IsReasoning() bool {
	return e.Type == EventReasoningStart || e.Type == EventReasoningDelta || e.Type == EventReasoningEnd
}
