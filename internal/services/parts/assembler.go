package parts

import (
	"errors"
	"fmt"

	"github.com/iyunix/go-visionai/internal/domain"
)

var (
	ErrStateRegression = errors.New("tool state regression")
	ErrToolSettled     = errors.New("tool call already settled")
	ErrUnknownEvent    = errors.New("unknown event type")
	ErrMissingToolCall = errors.New("tool event without toolCallId")
)

const defaultToolError = "Unknown error occurred"

// Assembler reduces a part-event stream into the ordered part sequence of one
// assistant message. Tool parts are addressed by toolCallId, never by position.
type Assembler struct {
	parts         domain.Parts
	openText      int
	openReasoning int
	sourcesAt     int
	seenSources   map[string]bool
	tools         map[string]int
	finish        FinishReason
	errText       string
}

func NewAssembler() *Assembler {
	return &Assembler{
		openText:      -1,
		openReasoning: -1,
		sourcesAt:     -1,
		seenSources:   make(map[string]bool),
		tools:         make(map[string]int),
	}
}

// Apply folds one event into the message. Events that would move a tool part
// backwards are rejected with ErrStateRegression, and any event for a part that
// already has an output or error is rejected with ErrToolSettled. Either way the
// part is left unchanged.
func (a *Assembler) Apply(ev Event) error {
	switch ev.Type {
	case EventStart:
		return nil

	case EventTextStart:
		a.closeReasoning()
		a.openText = a.append(domain.TextPart{})
	case EventTextDelta:
		if a.openText < 0 {
			a.closeReasoning()
			a.openText = a.append(domain.TextPart{})
		}
		t := a.parts[a.openText].(domain.TextPart)
		t.Text += ev.Delta
		a.parts[a.openText] = t
	case EventTextEnd:
		a.openText = -1

	case EventReasoningStart:
		a.openText = -1
		a.openReasoning = a.append(domain.ReasoningPart{IsStreaming: true})
	case EventReasoningDelta:
		if a.openReasoning < 0 {
			a.openText = -1
			a.openReasoning = a.append(domain.ReasoningPart{IsStreaming: true})
		}
		r := a.parts[a.openReasoning].(domain.ReasoningPart)
		r.Text += ev.Delta
		a.parts[a.openReasoning] = r
	case EventReasoningEnd:
		a.closeReasoning()

	case EventSource:
		a.addSource(ev.Source)

	case EventToolInputStart, EventToolInputDelta:
		return a.advance(ev, domain.ToolStateInputStreaming)
	case EventToolInputAvailable:
		return a.advance(ev, domain.ToolStateInputAvailable)
	case EventToolOutputAvailable:
		return a.advance(ev, domain.ToolStateOutputAvailable)
	case EventToolOutputError:
		return a.advance(ev, domain.ToolStateOutputError)

	case EventFinish:
		a.closeAll()
		a.finish = ev.FinishReason
		if a.finish == "" {
			a.finish = FinishStop
		}
	case EventError:
		a.closeAll()
		a.errText = ev.ErrorText

	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}

func (a *Assembler) append(p domain.Part) int {
	a.parts = append(a.parts, p)
	return len(a.parts) - 1
}

func (a *Assembler) closeReasoning() {
	if a.openReasoning < 0 {
		return
	}
	r := a.parts[a.openReasoning].(domain.ReasoningPart)
	r.IsStreaming = false
	a.parts[a.openReasoning] = r
	a.openReasoning = -1
}

func (a *Assembler) closeAll() {
	a.openText = -1
	a.closeReasoning()
}

func (a *Assembler) addSource(src *domain.Source) {
	if src == nil || src.URL == "" || a.seenSources[src.URL] {
		return
	}
	a.seenSources[src.URL] = true
	if a.sourcesAt < 0 {
		a.closeAll()
		a.sourcesAt = a.append(domain.SourcesPart{})
	}
	sp := a.parts[a.sourcesAt].(domain.SourcesPart)
	sp.Sources = append(sp.Sources, *src)
	a.parts[a.sourcesAt] = sp
}

func (a *Assembler) advance(ev Event, next domain.ToolState) error {
	if ev.ToolCallID == "" {
		return ErrMissingToolCall
	}

	idx, ok := a.tools[ev.ToolCallID]
	if !ok {
		a.closeAll()
		idx = a.append(domain.ToolPart{
			ToolName:   ev.ToolName,
			ToolCallID: ev.ToolCallID,
			State:      domain.ToolStateInputStreaming,
		})
		a.tools[ev.ToolCallID] = idx
	}

	tool := a.parts[idx].(domain.ToolPart)
	if tool.State.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrToolSettled, ev.ToolCallID, tool.State)
	}
	if !tool.State.CanAdvanceTo(next) {
		return fmt.Errorf("%w: %s %s -> %s", ErrStateRegression, ev.ToolCallID, tool.State, next)
	}
	if tool.ToolName == "" {
		tool.ToolName = ev.ToolName
	}

	tool.State = next
	switch next {
	case domain.ToolStateInputAvailable:
		if len(ev.Input) > 0 {
			tool.Input = ev.Input
		}
	case domain.ToolStateOutputAvailable:
		tool.Output = ev.Output
		tool.ErrorText = ""
	case domain.ToolStateOutputError:
		tool.Output = nil
		tool.ErrorText = ev.ErrorText
		if tool.ErrorText == "" {
			tool.ErrorText = defaultToolError
		}
	}
	a.parts[idx] = tool
	return nil
}

// Parts returns a snapshot of the message as it currently stands, streaming flags included.
func (a *Assembler) Parts() domain.Parts {
	out := make(domain.Parts, len(a.parts))
	copy(out, a.parts)
	return out
}

// Finalize closes any open span and returns the persistable part sequence.
func (a *Assembler) Finalize() domain.Parts {
	a.closeAll()
	return a.Parts().Settled()
}

// FinishReason is empty until a finish event has been applied.
func (a *Assembler) FinishReason() FinishReason { return a.finish }

// Err returns the error text of an applied error event.
func (a *Assembler) Err() string { return a.errText }
