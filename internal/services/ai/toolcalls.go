// File: internal/services/ai/toolcalls.go
package ai

import (
    "strings"

    "github.com/google/uuid"
    openai "github.com/sashabaranov/go-openai"
)

// ToolCallUpdate describes what one streamed chunk changed about a tool call.
// Started is set on the first chunk that carries the tool name.
type ToolCallUpdate struct {
    ID        string
    Name      string
    ArgsDelta string
    Started   bool
}

type toolCallState struct {
    rawID   string
    id      string
    name    string
    args    strings.Builder
    started bool
}

// ToolCallBuffer reassembles tool calls that arrive split across stream chunks.
// Chunks are grouped by index; providers that omit the index continue the
// most recent call unless the chunk carries a new id.
type ToolCallBuffer struct {
    byIndex  map[int]*toolCallState
    order    []int
    last     int
    reserved map[string]bool
}

func NewToolCallBuffer() *ToolCallBuffer {
    return &ToolCallBuffer{byIndex: make(map[int]*toolCallState), last: -1, reserved: make(map[string]bool)}
}

// Reserve marks ids that earlier steps already used. A call arriving with a
// reserved id is given a fresh one, so ids stay unique across a whole turn.
func (b *ToolCallBuffer) Reserve(ids ...string) {
    for _, id := range ids {
        b.reserved[id] = true
    }
}

func (b *ToolCallBuffer) Add(calls []openai.ToolCall) []ToolCallUpdate {
    var updates []ToolCallUpdate
    for _, call := range calls {
        idx := b.indexFor(call)
        state, ok := b.byIndex[idx]
        if !ok {
            raw := strings.TrimSpace(call.ID)
            state = &toolCallState{rawID: raw, id: raw}
            if state.id == "" || b.reserved[state.id] {
                state.id = "call_" + uuid.NewString()
            }
            b.byIndex[idx] = state
            b.order = append(b.order, idx)
        }
        b.last = idx

        if call.Function.Name != "" {
            state.name = call.Function.Name
        }
        update := ToolCallUpdate{ID: state.id, Name: state.name}
        if !state.started && state.name != "" {
            state.started = true
            update.Started = true
        }
        if call.Function.Arguments != "" {
            state.args.WriteString(call.Function.Arguments)
            update.ArgsDelta = call.Function.Arguments
        }
        if update.Started || (state.started && update.ArgsDelta != "") {
            updates = append(updates, update)
        }
    }
    return updates
}

func (b *ToolCallBuffer) indexFor(call openai.ToolCall) int {
    if call.Index != nil {
        return *call.Index
    }
    if id := strings.TrimSpace(call.ID); id != "" {
        for _, idx := range b.order {
            if b.byIndex[idx].rawID == id {
                return idx
            }
        }
        return len(b.order)
    }
    if b.last >= 0 {
        return b.last
    }
    return 0
}

// Len reports how many distinct calls have been seen.
func (b *ToolCallBuffer) Len() int { return len(b.order) }

// Calls returns the completed calls in arrival order. Nameless fragments are
// dropped and repeated ids keep only their first occurrence.
func (b *ToolCallBuffer) Calls() []openai.ToolCall {
    seen := make(map[string]bool, len(b.order))
    out := make([]openai.ToolCall, 0, len(b.order))
    for _, idx := range b.order {
        state := b.byIndex[idx]
        if state.name == "" || seen[state.id] {
            continue
        }
        seen[state.id] = true
        args := state.args.String()
        if strings.TrimSpace(args) == "" {
            args = "{}"
        }
        out = append(out, openai.ToolCall{
            ID:   state.id,
            Type: openai.ToolTypeFunction,
            Function: openai.FunctionCall{
                Name:      state.name,
                Arguments: args,
            },
        })
    }
    return out
}
