// File: internal/services/chat/orchestrator.go
package chat

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "strings"
    "sync"

    openai "github.com/sashabaranov/go-openai"
    "golang.org/x/sync/errgroup"

    "github.com/iyunix/go-visionai/internal/domain"
    "github.com/iyunix/go-visionai/internal/services/ai"
    "github.com/iyunix/go-visionai/internal/services/parts"
    "github.com/iyunix/go-visionai/internal/services/tools"
)

const eventBuffer = 64

// ToolRunner is the part of the tool registry the orchestrator depends on.
type ToolRunner interface {
    Definitions() []openai.Tool
    Run(ctx context.Context, name string, args json.RawMessage) tools.Outcome
}

// Orchestrator runs the bounded model/tool loop for one turn and streams part events.
type Orchestrator struct {
    config *Config
    model  ai.ModelClient
    tools  ToolRunner
    logger Logger
}

func NewOrchestrator(config *Config, model ai.ModelClient, runner ToolRunner, logger Logger) *Orchestrator {
    return &Orchestrator{
        config: config,
        model:  model,
        tools:  runner,
        logger: logger,
    }
}

// Generate starts the turn. The event channel closes after the final event; the
// error channel yields at most one value and then closes. OnFinish runs only on success.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (<-chan parts.Event, <-chan error) {
    events := make(chan parts.Event, eventBuffer)
    errc := make(chan error, 1)

    go func() {
        defer close(errc)
        defer close(events)

        run := &turn{
            o:       o,
            events:  events,
            ctx:     ctx,
            asm:     parts.NewAssembler(),
            sources: NewSourceExtractor(o.config, o.logger),
        }
        result, err := run.execute(req.History)
        if err != nil {
            o.logger.Error("generation aborted", "error", err, "steps", run.steps)
            run.tryEmit(parts.Event{Type: parts.EventError, ErrorText: UserMessage(err)})
            errc <- err
            return
        }

        o.logger.Info("generation finished", "finish_reason", result.FinishReason, "steps", result.Steps)
        if req.OnFinish != nil {
            req.OnFinish(result)
        }
    }()

    return events, errc
}

// turn is the state of one Generate call.
type turn struct {
    o       *Orchestrator
    ctx     context.Context
    events  chan<- parts.Event
    mu      sync.Mutex
    asm     *parts.Assembler
    sources *SourceExtractor
    steps   int
    spans   int
}

// emit applies ev to the assembler and forwards it, under one lock so both see the same order.
func (t *turn) emit(ev parts.Event) error {
    t.mu.Lock()
    defer t.mu.Unlock()

    if err := t.ctx.Err(); err != nil {
        return err
    }
    if err := t.asm.Apply(ev); err != nil {
        // a regression means a duplicate or late event; drop it
        t.o.logger.Warn("dropping event", "type", ev.Type, "tool_call_id", ev.ToolCallID, "error", err)
        return nil
    }
    select {
    case t.events <- ev:
        return nil
    case <-t.ctx.Done():
        return t.ctx.Err()
    }
}

func (t *turn) tryEmit(ev parts.Event) {
    t.mu.Lock()
    defer t.mu.Unlock()
    _ = t.asm.Apply(ev)
    select {
    case t.events <- ev:
    default:
    }
}

func (t *turn) nextID(prefix string) string {
    t.spans++
    return fmt.Sprintf("%s-%d", prefix, t.spans)
}

func (t *turn) execute(history []domain.Message) (Result, error) {
    if len(history) == 0 {
        return Result{}, NewValidationError("generate", "no messages to answer")
    }
    msgs := buildMessages(history)

    if err := t.emit(parts.Event{Type: parts.EventStart}); err != nil {
        return Result{}, err
    }

    reason := parts.FinishTruncated
    for step := 0; step < t.o.config.MaxSteps; step++ {
        t.steps = step + 1
        t.o.logger.Debug("agent step", "step", step, "messages", len(msgs))

        text, calls, err := t.streamStep(msgs)
        if err != nil {
            return Result{}, err
        }
        if len(calls) == 0 {
            reason = parts.FinishStop
            break
        }

        results, err := t.runTools(calls)
        if err != nil {
            return Result{}, err
        }
        msgs = append(msgs, openai.ChatCompletionMessage{
            Role:      openai.ChatMessageRoleAssistant,
            Content:   text,
            ToolCalls: calls,
        })
        msgs = append(msgs, results...)
    }

    if err := t.emit(parts.Event{Type: parts.EventFinish, FinishReason: reason, Steps: t.steps}); err != nil {
        return Result{}, err
    }

    t.mu.Lock()
    final := t.asm.Finalize()
    t.mu.Unlock()
    return Result{
        Text:         final.Text(),
        Parts:        final,
        FinishReason: reason,
        Steps:        t.steps,
    }, nil
}

// streamStep streams one model call, forwarding text, reasoning and tool-call
// deltas, and returns the step's text and completed tool calls.
func (t *turn) streamStep(msgs []openai.ChatCompletionMessage) (string, []openai.ToolCall, error) {
    stream, err := t.o.model.StreamChat(t.ctx, openai.ChatCompletionRequest{
        Model:       t.o.model.Model(),
        Messages:    msgs,
        Tools:       t.o.tools.Definitions(),
        ToolChoice:  "auto",
        Temperature: t.o.config.Temperature,
        MaxTokens:   t.o.config.MaxOutputTokens,
        Stream:      true,
    })
    if err != nil {
        return "", nil, wrapModelError(err)
    }
    defer stream.Close()

    var text strings.Builder
    var textID, reasoningID string
    buf := ai.NewToolCallBuffer()
    buf.Reserve(usedCallIDs(msgs)...)

    closeText := func() error {
        if textID == "" {
            return nil
        }
        id := textID
        textID = ""
        return t.emit(parts.Event{Type: parts.EventTextEnd, ID: id})
    }
    closeReasoning := func() error {
        if reasoningID == "" {
            return nil
        }
        id := reasoningID
        reasoningID = ""
        return t.emit(parts.Event{Type: parts.EventReasoningEnd, ID: id})
    }

    for {
        chunk, err := stream.Recv()
        if errors.Is(err, io.EOF) {
            break
        }
        if err != nil {
            return "", nil, wrapModelError(err)
        }

        for _, choice := range chunk.Choices {
            delta := choice.Delta

            if delta.ReasoningContent != "" {
                if err := closeText(); err != nil {
                    return "", nil, err
                }
                if reasoningID == "" {
                    reasoningID = t.nextID("reasoning")
                    if err := t.emit(parts.Event{Type: parts.EventReasoningStart, ID: reasoningID}); err != nil {
                        return "", nil, err
                    }
                }
                if err := t.emit(parts.Event{Type: parts.EventReasoningDelta, ID: reasoningID, Delta: delta.ReasoningContent}); err != nil {
                    return "", nil, err
                }
            }

            if delta.Content != "" {
                if err := closeReasoning(); err != nil {
                    return "", nil, err
                }
                if textID == "" {
                    textID = t.nextID("text")
                    if err := t.emit(parts.Event{Type: parts.EventTextStart, ID: textID}); err != nil {
                        return "", nil, err
                    }
                }
                text.WriteString(delta.Content)
                if err := t.emit(parts.Event{Type: parts.EventTextDelta, ID: textID, Delta: delta.Content}); err != nil {
                    return "", nil, err
                }
            }

            for _, up := range buf.Add(delta.ToolCalls) {
                if up.Started {
                    if err := closeText(); err != nil {
                        return "", nil, err
                    }
                    if err := closeReasoning(); err != nil {
                        return "", nil, err
                    }
                    if err := t.emit(parts.Event{Type: parts.EventToolInputStart, ToolCallID: up.ID, ToolName: up.Name}); err != nil {
                        return "", nil, err
                    }
                }
                if up.ArgsDelta != "" {
                    if err := t.emit(parts.Event{Type: parts.EventToolInputDelta, ToolCallID: up.ID, ToolName: up.Name, InputTextDelta: up.ArgsDelta}); err != nil {
                        return "", nil, err
                    }
                }
            }
        }
    }

    if err := closeText(); err != nil {
        return "", nil, err
    }
    if err := closeReasoning(); err != nil {
        return "", nil, err
    }

    calls := buf.Calls()
    for _, call := range calls {
        ev := parts.Event{
            Type:       parts.EventToolInputAvailable,
            ToolCallID: call.ID,
            ToolName:   call.Function.Name,
            Input:      inputJSON(call.Function.Arguments),
        }
        if err := t.emit(ev); err != nil {
            return "", nil, err
        }
    }
    return text.String(), calls, nil
}

// usedCallIDs lists the tool call ids already present in the conversation,
// replayed history and earlier steps of this turn alike.
func usedCallIDs(msgs []openai.ChatCompletionMessage) []string {
    var ids []string
    for _, m := range msgs {
        for _, call := range m.ToolCalls {
            ids = append(ids, call.ID)
        }
    }
    return ids
}

// runTools executes every call concurrently and waits for all of them. Results
// are emitted as they complete; tool messages keep the call order.
func (t *turn) runTools(calls []openai.ToolCall) ([]openai.ChatCompletionMessage, error) {
    results := make([]openai.ChatCompletionMessage, len(calls))
    g, gctx := errgroup.WithContext(t.ctx)

    for i, call := range calls {
        g.Go(func() error {
            name := call.Function.Name
            out := t.o.tools.Run(gctx, name, inputJSON(call.Function.Arguments))
            if out.Err != nil {
                t.o.logger.Error("tool failed", "tool", name, "tool_call_id", call.ID, "error", out.Err)
                return out.Err
            }

            if out.ErrorText != "" {
                t.o.logger.Warn("tool returned an error", "tool", name, "tool_call_id", call.ID, "error", out.ErrorText)
                results[i] = toolResultMessage(call.ID, name, nil, out.ErrorText)
                return t.emit(parts.Event{Type: parts.EventToolOutputError, ToolCallID: call.ID, ToolName: name, ErrorText: out.ErrorText})
            }

            results[i] = toolResultMessage(call.ID, name, out.Output, "")
            if err := t.emit(parts.Event{Type: parts.EventToolOutputAvailable, ToolCallID: call.ID, ToolName: name, Output: out.Output}); err != nil {
                return err
            }
            return t.emitSources(out.Sources)
        })
    }

    if err := g.Wait(); err != nil {
        var cfgErr *tools.ConfigError
        if errors.As(err, &cfgErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
            return nil, err
        }
        return nil, NewToolError("run_tools", "tool execution failed", err)
    }
    return results, nil
}

func (t *turn) emitSources(in []domain.Source) error {
    t.mu.Lock()
    found := t.sources.ExtractSources(in)
    t.mu.Unlock()

    for i := range found {
        src := found[i]
        if err := t.emit(parts.Event{Type: parts.EventSource, Source: &src}); err != nil {
            return err
        }
    }
    return nil
}

// inputJSON keeps valid argument JSON as is and wraps anything else as a JSON string,
// which then fails input validation as a tool error instead of breaking the stream.
func inputJSON(args string) json.RawMessage {
    if strings.TrimSpace(args) == "" {
        return json.RawMessage("{}")
    }
    if json.Valid([]byte(args)) {
        return json.RawMessage(args)
    }
    b, _ := json.Marshal(args)
    return b
}

func wrapModelError(err error) error {
    var aiErr *ai.AIError
    if errors.As(err, &aiErr) {
        return err
    }
    return ai.NewProviderError("streaming", "stream receive error", err)
}
