package parts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/iyunix/go-visionai/internal/domain"
)

// Mode selects between rendering a message while it streams and replaying it from storage.
type Mode int

const (
	Replay Mode = iota
	Live
)

type BlockKind string

const (
	BlockText         BlockKind = "text"
	BlockReasoning    BlockKind = "reasoning"
	BlockSources      BlockKind = "sources"
	BlockToolProgress BlockKind = "tool-progress"
	BlockToolResult   BlockKind = "tool-result"
	BlockToolError    BlockKind = "tool-error"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

type Media struct {
	Kind     MediaKind `json:"kind"`
	URL      string    `json:"url"`
	Alt      string    `json:"alt,omitempty"`
	PublicID string    `json:"publicId,omitempty"`
}

// Citation is a clickable chip produced by search and extraction results.
type Citation struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
}

// Block is one renderable unit of a message.
type Block struct {
	Kind         BlockKind       `json:"kind"`
	Key          string          `json:"key"`
	Text         string          `json:"text,omitempty"`
	HTML         string          `json:"html,omitempty"`
	Expanded     bool            `json:"expanded,omitempty"`
	Sources      []domain.Source `json:"sources,omitempty"`
	ToolName     string          `json:"toolName,omitempty"`
	ToolCallID   string          `json:"toolCallId,omitempty"`
	Label        string          `json:"label,omitempty"`
	Citations    []Citation      `json:"citations,omitempty"`
	Media        *Media          `json:"media,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorTitle   string          `json:"errorTitle,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// View is the reconciled form of a message: attachments render as a strip
// above the blocks, never inline.
type View struct {
	Attachments []domain.FilePart `json:"attachments"`
	Blocks      []Block           `json:"blocks"`
}

// Reconciler is the single mapping from parts to blocks shared by the live
// stream and the history replay.
type Reconciler struct {
	md goldmark.Markdown
}

func NewReconciler() *Reconciler {
	return &Reconciler{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (r *Reconciler) Reconcile(ps domain.Parts, mode Mode) View {
	view := View{Attachments: []domain.FilePart{}, Blocks: []Block{}}

	for i, p := range ps {
		switch v := p.(type) {
		case domain.TextPart:
			text := StripTitle(v.Text)
			if text == "" {
				continue
			}
			view.Blocks = append(view.Blocks, Block{
				Kind: BlockText,
				Key:  fmt.Sprintf("text-%d", i),
				Text: text,
				HTML: r.render(text),
			})

		case domain.ReasoningPart:
			if strings.TrimSpace(v.Text) == "" {
				continue
			}
			view.Blocks = append(view.Blocks, Block{
				Kind:     BlockReasoning,
				Key:      fmt.Sprintf("reasoning-%d", i),
				Text:     v.Text,
				Expanded: mode == Live && v.IsStreaming,
			})

		case domain.SourcesPart:
			sources := dedupeSources(v.Sources)
			if len(sources) == 0 {
				continue
			}
			view.Blocks = append(view.Blocks, Block{
				Kind:    BlockSources,
				Key:     fmt.Sprintf("sources-%d", i),
				Sources: sources,
			})

		case domain.FilePart:
			view.Attachments = append(view.Attachments, v)

		case domain.ToolPart:
			if b, ok := reconcileTool(v); ok {
				view.Blocks = append(view.Blocks, b)
			}

		default:
			// unknown part types render as nothing
		}
	}
	return view
}

func (r *Reconciler) render(text string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func dedupeSources(in []domain.Source) []domain.Source {
	seen := make(map[string]bool, len(in))
	out := make([]domain.Source, 0, len(in))
	for _, s := range in {
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		if s.Title == "" {
			s.Title = s.URL
		}
		out = append(out, s)
	}
	return out
}

func reconcileTool(t domain.ToolPart) (Block, bool) {
	b := Block{
		Key:        t.ToolCallID,
		ToolName:   t.ToolName,
		ToolCallID: t.ToolCallID,
	}

	switch t.State {
	case domain.ToolStateInputStreaming, domain.ToolStateInputAvailable:
		b.Kind = BlockToolProgress
		b.Label = progressLabel(t)
		return b, true

	case domain.ToolStateOutputError:
		b.Kind = BlockToolError
		b.ErrorTitle = errorTitle(t.ToolName)
		b.ErrorMessage = t.ErrorText
		if b.ErrorMessage == "" {
			b.ErrorMessage = defaultToolError
		}
		return b, true

	case domain.ToolStateOutputAvailable:
		b.Kind = BlockToolResult
		return toolResult(t, b)
	}
	return Block{}, false
}

func progressLabel(t domain.ToolPart) string {
	switch t.ToolName {
	case "webSearch":
		var in struct {
			Query string `json:"query"`
		}
		_ = json.Unmarshal(t.Input, &in)
		if strings.TrimSpace(in.Query) != "" {
			return `Searching web for "` + in.Query + `"..`
		}
		return "Searching web.."
	case "extractWebUrl":
		var in struct {
			URLs []string `json:"urls"`
		}
		_ = json.Unmarshal(t.Input, &in)
		switch n := len(in.URLs); {
		case n == 1:
			return "Extracting content from 1 URL.."
		case n > 1:
			return fmt.Sprintf("Extracting content from %d URLs..", n)
		}
		return "Extracting content.."
	case "generateImage":
		return "Generating image.."
	case "textToSpeech":
		return "Generating speech..."
	default:
		return fmt.Sprintf("Running %s..", t.ToolName)
	}
}

func errorTitle(toolName string) string {
	switch toolName {
	case "generateImage":
		return "Image generation failed"
	case "textToSpeech":
		return "Speech generation failed"
	case "webSearch":
		return "Web search failed"
	case "extractWebUrl":
		return "Content extraction failed"
	default:
		return "Tool call failed"
	}
}

func toolResult(t domain.ToolPart, b Block) (Block, bool) {
	switch t.ToolName {
	case "webSearch", "extractWebUrl":
		var out struct {
			Results []struct {
				Title   string  `json:"title"`
				URL     string  `json:"url"`
				Content string  `json:"content"`
				Favicon *string `json:"favicon"`
			} `json:"results"`
		}
		if err := json.Unmarshal(t.Output, &out); err != nil {
			return Block{}, false
		}
		seen := make(map[string]bool)
		for _, res := range out.Results {
			if res.URL == "" || seen[res.URL] {
				continue
			}
			seen[res.URL] = true
			c := Citation{URL: res.URL, Title: res.Title, Description: res.Content}
			if c.Title == "" {
				c.Title = res.URL
			}
			if res.Favicon != nil {
				c.Favicon = *res.Favicon
			}
			b.Citations = append(b.Citations, c)
		}
		return b, len(b.Citations) > 0

	case "generateImage":
		var out struct {
			Image    string `json:"image"`
			PublicID string `json:"publicId"`
			Prompt   string `json:"prompt"`
		}
		if err := json.Unmarshal(t.Output, &out); err != nil || out.Image == "" {
			return Block{}, false
		}
		b.Media = &Media{Kind: MediaImage, URL: out.Image, Alt: out.Prompt, PublicID: out.PublicID}
		return b, true

	case "textToSpeech":
		var out struct {
			AudioURL string `json:"audioUrl"`
			PublicID string `json:"publicId"`
			Text     string `json:"text"`
		}
		if err := json.Unmarshal(t.Output, &out); err != nil || out.AudioURL == "" {
			return Block{}, false
		}
		b.Media = &Media{Kind: MediaAudio, URL: out.AudioURL, Alt: out.Text, PublicID: out.PublicID}
		return b, true

	default:
		b.Result = t.Output
		return b, len(t.Output) > 0
	}
}
