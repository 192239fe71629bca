// File: internal/services/tools/registry.go
package tools

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "sort"
    "sync"

    openai "github.com/sashabaranov/go-openai"

    "github.com/iyunix/go-visionai/internal/domain"
    "github.com/iyunix/go-visionai/internal/services/media"
)

const defaultErrorText = "Unknown error occurred"

// Tool is one capability the model may call by name.
type Tool interface {
    Name() string
    Description() string
    // Parameters is the JSON schema of the arguments object.
    Parameters() map[string]interface{}
    Execute(ctx context.Context, args json.RawMessage) (interface{}, error)
}

// SourceProvider is implemented by outputs that carry citable pages.
type SourceProvider interface {
    Sources() []domain.Source
}

// Outcome is the settled result of one call. Exactly one of Output, ErrorText
// and Err is set: a result, a soft failure, or a hard error.
type Outcome struct {
    Output    json.RawMessage
    ErrorText string
    Sources   []domain.Source
    Err       error
}

// Registry is fixed after startup; lookups are safe for concurrent use.
type Registry struct {
    mu    sync.RWMutex
    tools map[string]Tool
}

func NewRegistry(tools ...Tool) (*Registry, error) {
    r := &Registry{tools: make(map[string]Tool, len(tools))}
    for _, t := range tools {
        if err := r.Register(t); err != nil {
            return nil, err
        }
    }
    return r, nil
}

func (r *Registry) Register(t Tool) error {
    r.mu.Lock()
    defer r.mu.Unlock()

    name := t.Name()
    if name == "" {
        return errors.New("tool name is required")
    }
    if _, exists := r.tools[name]; exists {
        return fmt.Errorf("tool %q already registered", name)
    }
    r.tools[name] = t
    return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    t, ok := r.tools[name]
    return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
    r.mu.RLock()
    defer r.mu.RUnlock()
    names := make([]string, 0, len(r.tools))
    for name := range r.tools {
        names = append(names, name)
    }
    sort.Strings(names)
    return names
}

// Definitions renders the registry as the function list sent to the model.
func (r *Registry) Definitions() []openai.Tool {
    names := r.Names()
    defs := make([]openai.Tool, 0, len(names))
    for _, name := range names {
        t, _ := r.Get(name)
        defs = append(defs, openai.Tool{
            Type: openai.ToolTypeFunction,
            Function: &openai.FunctionDefinition{
                Name:        t.Name(),
                Description: t.Description(),
                Parameters:  t.Parameters(),
            },
        })
    }
    return defs
}

// Run executes one call and classifies its result.
func (r *Registry) Run(ctx context.Context, name string, args json.RawMessage) (out Outcome) {
    t, ok := r.Get(name)
    if !ok {
        return Outcome{ErrorText: fmt.Sprintf("Model tried to call unavailable tool '%s'", name)}
    }

    defer func() {
        if rec := recover(); rec != nil {
            out = Outcome{Err: &ToolError{Type: ErrTypeExecution, Tool: name, Message: fmt.Sprintf("panic: %v", rec)}}
        }
    }()

    result, err := t.Execute(ctx, args)
    if err != nil {
        if IsHard(err) {
            return Outcome{Err: err}
        }
        return Outcome{ErrorText: err.Error()}
    }

    if failure, ok := result.(*Failure); ok {
        text := failure.Error
        if text == "" {
            text = defaultErrorText
        }
        return Outcome{ErrorText: text}
    }

    raw, err := json.Marshal(result)
    if err != nil {
        return Outcome{Err: &ToolError{Type: ErrTypeExecution, Tool: name, Message: "output is not serializable", Cause: err}}
    }
    out = Outcome{Output: raw}
    if sp, ok := result.(SourceProvider); ok {
        out.Sources = sp.Sources()
    }
    return out
}

// NewDefaultRegistry wires the four built-in tools.
func NewDefaultRegistry(web WebClient, images ImageGenerator, speech SpeechSynthesizer, up media.Uploader) *Registry {
    r, err := NewRegistry(
        NewWebSearchTool(web),
        NewExtractWebURLTool(web),
        NewGenerateImageTool(images, up),
        NewTextToSpeechTool(speech, up),
    )
    if err != nil {
        // names are constants; a clash is a programming error
        panic(err)
    }
    return r
}
