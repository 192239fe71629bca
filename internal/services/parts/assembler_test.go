package parts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-visionai/internal/domain"
)

func applyAll(t *testing.T, a *Assembler, events ...Event) {
	t.Helper()
	for _, ev := range events {
		require.NoError(t, a.Apply(ev), "event %s", ev.Type)
	}
}

func TestAssemblerBuildsPartsInEmissionOrder(t *testing.T) {
	a := NewAssembler()
	applyAll(t, a,
		Event{Type: EventStart},
		Event{Type: EventReasoningStart, ID: "r1"},
		Event{Type: EventReasoningDelta, ID: "r1", Delta: "need fresh "},
		Event{Type: EventReasoningDelta, ID: "r1", Delta: "data"},
		Event{Type: EventReasoningEnd, ID: "r1"},
		Event{Type: EventTextStart, ID: "t1"},
		Event{Type: EventTextDelta, ID: "t1", Delta: "Let me "},
		Event{Type: EventTextDelta, ID: "t1", Delta: "check."},
		Event{Type: EventTextEnd, ID: "t1"},
		Event{Type: EventToolInputStart, ToolCallID: "c1", ToolName: "webSearch"},
		Event{Type: EventToolInputAvailable, ToolCallID: "c1", ToolName: "webSearch", Input: json.RawMessage(`{"query":"weather in Tokyo"}`)},
		Event{Type: EventToolOutputAvailable, ToolCallID: "c1", Output: json.RawMessage(`{"results":[]}`)},
		Event{Type: EventSource, Source: &domain.Source{URL: "https://weather.example", Title: "Weather"}},
		Event{Type: EventSource, Source: &domain.Source{URL: "https://weather.example", Title: "dup"}},
		Event{Type: EventSource, Source: &domain.Source{Title: "no url"}},
		Event{Type: EventTextDelta, Delta: "<title>Tokyo Weather</title>Sunny."},
		Event{Type: EventFinish, FinishReason: FinishStop},
	)

	got := a.Finalize()
	require.Len(t, got, 5)
	assert.Equal(t, domain.ReasoningPart{Text: "need fresh data"}, got[0])
	assert.Equal(t, domain.TextPart{Text: "Let me check."}, got[1])
	assert.Equal(t, domain.ToolPart{
		ToolName:   "webSearch",
		ToolCallID: "c1",
		State:      domain.ToolStateOutputAvailable,
		Input:      json.RawMessage(`{"query":"weather in Tokyo"}`),
		Output:     json.RawMessage(`{"results":[]}`),
	}, got[2])
	assert.Equal(t, domain.SourcesPart{Sources: []domain.Source{{URL: "https://weather.example", Title: "Weather"}}}, got[3])
	assert.Equal(t, domain.TextPart{Text: "<title>Tokyo Weather</title>Sunny."}, got[4])
	assert.Equal(t, FinishStop, a.FinishReason())
}

func TestAssemblerKeysToolsByCallID(t *testing.T) {
	a := NewAssembler()
	applyAll(t, a,
		Event{Type: EventToolInputAvailable, ToolCallID: "a", ToolName: "webSearch", Input: json.RawMessage(`{"query":"a"}`)},
		Event{Type: EventToolInputAvailable, ToolCallID: "b", ToolName: "generateImage", Input: json.RawMessage(`{"prompt":"b"}`)},
		// completion order differs from request order
		Event{Type: EventToolOutputError, ToolCallID: "b", ErrorText: "upload failed"},
		Event{Type: EventToolOutputAvailable, ToolCallID: "a", Output: json.RawMessage(`{"results":[]}`)},
	)

	got := a.Parts()
	require.Len(t, got, 2)
	first := got[0].(domain.ToolPart)
	second := got[1].(domain.ToolPart)
	assert.Equal(t, "a", first.ToolCallID)
	assert.Equal(t, domain.ToolStateOutputAvailable, first.State)
	assert.Equal(t, "b", second.ToolCallID)
	assert.Equal(t, domain.ToolStateOutputError, second.State)
	assert.Equal(t, "upload failed", second.ErrorText)
	for _, p := range got {
		assert.NoError(t, p.(domain.ToolPart).Validate())
	}
}

func TestAssemblerRejectsStateRegression(t *testing.T) {
	a := NewAssembler()
	applyAll(t, a,
		Event{Type: EventToolInputStart, ToolCallID: "c1", ToolName: "webSearch"},
		Event{Type: EventToolInputAvailable, ToolCallID: "c1", Input: json.RawMessage(`{"query":"q"}`)},
		Event{Type: EventToolOutputAvailable, ToolCallID: "c1", Output: json.RawMessage(`{"results":[]}`)},
	)

	err := a.Apply(Event{Type: EventToolInputDelta, ToolCallID: "c1", InputTextDelta: "x"})
	assert.ErrorIs(t, err, ErrToolSettled)

	err = a.Apply(Event{Type: EventToolOutputError, ToolCallID: "c1", ErrorText: "late"})
	assert.ErrorIs(t, err, ErrToolSettled)

	tool := a.Parts()[0].(domain.ToolPart)
	assert.Equal(t, domain.ToolStateOutputAvailable, tool.State)
	assert.Equal(t, "c1", tool.ToolCallID)
	assert.Empty(t, tool.ErrorText)

	applyAll(t, a, Event{Type: EventToolInputAvailable, ToolCallID: "c2", ToolName: "webSearch", Input: json.RawMessage(`{}`)})
	err = a.Apply(Event{Type: EventToolInputDelta, ToolCallID: "c2", InputTextDelta: "x"})
	assert.ErrorIs(t, err, ErrStateRegression)
	assert.Equal(t, domain.ToolStateInputAvailable, a.Parts()[1].(domain.ToolPart).State)
}

func TestAssemblerKeepsFirstOutputOfSettledTool(t *testing.T) {
	a := NewAssembler()
	applyAll(t, a,
		Event{Type: EventToolInputAvailable, ToolCallID: "call_0", ToolName: "echo", Input: json.RawMessage(`{"n":1}`)},
		Event{Type: EventToolOutputAvailable, ToolCallID: "call_0", Output: json.RawMessage(`{"got":1}`)},
	)

	err := a.Apply(Event{Type: EventToolOutputAvailable, ToolCallID: "call_0", Output: json.RawMessage(`{"got":2}`)})
	assert.ErrorIs(t, err, ErrToolSettled)
	err = a.Apply(Event{Type: EventToolInputAvailable, ToolCallID: "call_0", Input: json.RawMessage(`{"n":2}`)})
	assert.ErrorIs(t, err, ErrToolSettled)

	require.Len(t, a.Parts(), 1)
	tool := a.Parts()[0].(domain.ToolPart)
	assert.JSONEq(t, `{"n":1}`, string(tool.Input))
	assert.JSONEq(t, `{"got":1}`, string(tool.Output))

	// a settled error is final too
	b := NewAssembler()
	applyAll(t, b, Event{Type: EventToolOutputError, ToolCallID: "c2", ToolName: "echo", ErrorText: "boom"})
	assert.ErrorIs(t, b.Apply(Event{Type: EventToolOutputAvailable, ToolCallID: "c2", Output: json.RawMessage(`{}`)}), ErrToolSettled)
	assert.Equal(t, "boom", b.Parts()[0].(domain.ToolPart).ErrorText)
}

func TestAssemblerErrors(t *testing.T) {
	a := NewAssembler()
	assert.ErrorIs(t, a.Apply(Event{Type: "bogus"}), ErrUnknownEvent)
	assert.ErrorIs(t, a.Apply(Event{Type: EventToolInputStart}), ErrMissingToolCall)

	require.NoError(t, a.Apply(Event{Type: EventError, ErrorText: "model unreachable"}))
	assert.Equal(t, "model unreachable", a.Err())
}

func TestAssemblerLiveSnapshotKeepsStreamingFlag(t *testing.T) {
	a := NewAssembler()
	applyAll(t, a, Event{Type: EventReasoningDelta, Delta: "thinking"})

	assert.True(t, a.Parts()[0].(domain.ReasoningPart).IsStreaming)
	assert.False(t, a.Finalize()[0].(domain.ReasoningPart).IsStreaming)
}
