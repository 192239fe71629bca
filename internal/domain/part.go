// File: internal/domain/part.go
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	PartTypeText       = "text"
	PartTypeReasoning  = "reasoning"
	PartTypeSources    = "sources"
	PartTypeFile       = "file"
	PartTypeAttachment = "attachment"

	// ToolPartPrefix precedes the tool name in the type of a tool-invocation part.
	ToolPartPrefix = "tool-"
)

// Part is one typed segment of a message. The set of implementations is closed:
// TextPart, ReasoningPart, SourcesPart, FilePart, ToolPart and UnknownPart.
type Part interface {
	PartType() string
	isPart()
}

type TextPart struct {
	Text string `json:"text"`
}

type ReasoningPart struct {
	Text string `json:"text"`
	// IsStreaming is presentation-only and never persisted as true.
	IsStreaming bool `json:"isStreaming,omitempty"`
}

// Source is a single citation record.
type Source struct {
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type SourcesPart struct {
	Sources []Source `json:"sources"`
}

// FilePart references externally hosted media. Kind is either "file" or "attachment".
type FilePart struct {
	Kind      string `json:"-"`
	ID        string `json:"id,omitempty"`
	URL       string `json:"url"`
	MediaType string `json:"mediaType,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// IsImage reports whether the referenced media is an image.
func (f FilePart) IsImage() bool {
	return strings.HasPrefix(f.MediaType, "image/")
}

type ToolState string

const (
	ToolStateInputStreaming  ToolState = "input-streaming"
	ToolStateInputAvailable  ToolState = "input-available"
	ToolStateOutputAvailable ToolState = "output-available"
	ToolStateOutputError     ToolState = "output-error"
)

func (s ToolState) rank() int {
	switch s {
	case ToolStateInputStreaming:
		return 0
	case ToolStateInputAvailable:
		return 1
	case ToolStateOutputAvailable, ToolStateOutputError:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is one of the known tool states.
func (s ToolState) Valid() bool { return s.rank() >= 0 }

// Terminal reports whether the invocation has produced an output or an error.
func (s ToolState) Terminal() bool { return s.rank() == 2 }

// CanAdvanceTo reports whether moving from s to next keeps the lifecycle monotonic.
// Repeating a non-terminal state is allowed so streaming input can be updated
// in place. A terminal state accepts nothing further.
func (s ToolState) CanAdvanceTo(next ToolState) bool {
	if !next.Valid() || s.Terminal() {
		return false
	}
	if next == s {
		return true
	}
	return next.rank() > s.rank()
}

// ToolPart records one tool invocation through its lifecycle.
type ToolPart struct {
	ToolName   string          `json:"-"`
	ToolCallID string          `json:"toolCallId"`
	State      ToolState       `json:"state"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	ErrorText  string          `json:"errorText,omitempty"`
}

var ErrInvalidToolPart = errors.New("invalid tool part")

// Validate checks that a terminal part carries exactly one of output and errorText.
func (t ToolPart) Validate() error {
	if t.ToolCallID == "" {
		return fmt.Errorf("%w: missing toolCallId", ErrInvalidToolPart)
	}
	if !t.State.Valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidToolPart, t.State)
	}
	hasOutput := len(t.Output) > 0
	hasError := t.ErrorText != ""
	switch t.State {
	case ToolStateOutputAvailable:
		if !hasOutput || hasError {
			return fmt.Errorf("%w: output-available needs an output and no error", ErrInvalidToolPart)
		}
	case ToolStateOutputError:
		if hasOutput || !hasError {
			return fmt.Errorf("%w: output-error needs an error and no output", ErrInvalidToolPart)
		}
	default:
		if hasOutput || hasError {
			return fmt.Errorf("%w: %s cannot carry a result", ErrInvalidToolPart, t.State)
		}
	}
	return nil
}

// UnknownPart keeps the raw JSON of a part whose type is not recognized.
type UnknownPart struct {
	Type string
	Raw  json.RawMessage
}

func (TextPart) PartType() string      { return PartTypeText }
func (ReasoningPart) PartType() string { return PartTypeReasoning }
func (SourcesPart) PartType() string   { return PartTypeSources }
func (p UnknownPart) PartType() string { return p.Type }
func (t ToolPart) PartType() string    { return ToolPartPrefix + t.ToolName }

func (f FilePart) PartType() string {
	if f.Kind == PartTypeAttachment {
		return PartTypeAttachment
	}
	return PartTypeFile
}

func (TextPart) isPart()      {}
func (ReasoningPart) isPart() {}
func (SourcesPart) isPart()   {}
func (FilePart) isPart()      {}
func (ToolPart) isPart()      {}
func (UnknownPart) isPart()   {}

// Parts is an ordered part sequence; order is emission order.
type Parts []Part

// Text concatenates every text part, separated by newlines.
func (ps Parts) Text() string {
	var texts []string
	for _, p := range ps {
		if t, ok := p.(TextPart); ok && t.Text != "" {
			texts = append(texts, t.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// Settled returns a copy with every transient streaming flag cleared.
func (ps Parts) Settled() Parts {
	out := make(Parts, len(ps))
	for i, p := range ps {
		if r, ok := p.(ReasoningPart); ok {
			r.IsStreaming = false
			p = r
		}
		out[i] = p
	}
	return out
}

var ErrEmptyParts = errors.New("message must have at least one part")

// Validate checks that a message has parts and that every tool part is consistent.
func (ps Parts) Validate() error {
	if len(ps) == 0 {
		return ErrEmptyParts
	}
	for _, p := range ps {
		if t, ok := p.(ToolPart); ok {
			if err := t.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ps Parts) MarshalJSON() ([]byte, error) {
	if ps == nil {
		return []byte("[]"), nil
	}
	items := make([]json.RawMessage, 0, len(ps))
	for i, p := range ps {
		raw, err := marshalPart(p)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		items = append(items, raw)
	}
	return json.Marshal(items)
}

func marshalPart(p Part) ([]byte, error) {
	switch v := p.(type) {
	case TextPart:
		return json.Marshal(struct {
			Type string `json:"type"`
			TextPart
		}{PartTypeText, v})
	case ReasoningPart:
		return json.Marshal(struct {
			Type string `json:"type"`
			ReasoningPart
		}{PartTypeReasoning, v})
	case SourcesPart:
		if v.Sources == nil {
			v.Sources = []Source{}
		}
		return json.Marshal(struct {
			Type string `json:"type"`
			SourcesPart
		}{PartTypeSources, v})
	case FilePart:
		return json.Marshal(struct {
			Type string `json:"type"`
			FilePart
		}{v.PartType(), v})
	case ToolPart:
		if v.ToolName == "" {
			return nil, fmt.Errorf("%w: missing tool name", ErrInvalidToolPart)
		}
		return json.Marshal(struct {
			Type string `json:"type"`
			ToolPart
		}{v.PartType(), v})
	case UnknownPart:
		if len(v.Raw) == 0 {
			return json.Marshal(map[string]string{"type": v.Type})
		}
		return v.Raw, nil
	default:
		return nil, fmt.Errorf("unsupported part %T", p)
	}
}

func (ps *Parts) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*ps = nil
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(Parts, 0, len(items))
	for i, raw := range items {
		p, err := DecodePart(raw)
		if err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
		out = append(out, p)
	}
	*ps = out
	return nil
}

// DecodePart decodes one loosely shaped part record into the closed union.
// Unrecognized types decode to UnknownPart rather than failing.
func DecodePart(raw json.RawMessage) (Part, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch {
	case head.Type == PartTypeText:
		var p TextPart
		err := json.Unmarshal(raw, &p)
		return p, err
	case head.Type == PartTypeReasoning:
		var p ReasoningPart
		err := json.Unmarshal(raw, &p)
		return p, err
	case head.Type == PartTypeSources:
		return decodeSources(raw)
	case head.Type == PartTypeFile || head.Type == PartTypeAttachment:
		var p FilePart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		p.Kind = head.Type
		return p, nil
	case strings.HasPrefix(head.Type, ToolPartPrefix) && len(head.Type) > len(ToolPartPrefix):
		var p ToolPart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		p.ToolName = strings.TrimPrefix(head.Type, ToolPartPrefix)
		return normalizeToolPart(p), nil
	default:
		return UnknownPart{Type: head.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

// decodeSources accepts href/name aliases for url/title.
func decodeSources(raw json.RawMessage) (Part, error) {
	var loose struct {
		Sources []struct {
			URL         string `json:"url"`
			Href        string `json:"href"`
			Title       string `json:"title"`
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"sources"`
	}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, err
	}
	p := SourcesPart{Sources: make([]Source, 0, len(loose.Sources))}
	for _, s := range loose.Sources {
		src := Source{URL: s.URL, Title: s.Title, Description: s.Description}
		if src.URL == "" {
			src.URL = s.Href
		}
		if src.Title == "" {
			src.Title = s.Name
		}
		p.Sources = append(p.Sources, src)
	}
	return p, nil
}

// normalizeToolPart folds the legacy error encoding (output-available with
// output.success === false) into the explicit output-error state.
func normalizeToolPart(p ToolPart) ToolPart {
	if p.State != ToolStateOutputAvailable || len(p.Output) == 0 {
		return p
	}
	var legacy struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(p.Output, &legacy); err != nil || legacy.Success == nil || *legacy.Success {
		return p
	}
	p.State = ToolStateOutputError
	p.ErrorText = legacy.Error
	if p.ErrorText == "" {
		p.ErrorText = legacy.Message
	}
	if p.ErrorText == "" {
		p.ErrorText = "Unknown error occurred"
	}
	p.Output = nil
	return p
}
