// File: internal/services/chat/convert.go
package chat

import (
    "encoding/json"
    "strings"

    openai "github.com/sashabaranov/go-openai"

    "github.com/iyunix/go-visionai/internal/domain"
)

// buildMessages turns stored history into model messages, system prompt first.
func buildMessages(history []domain.Message) []openai.ChatCompletionMessage {
    msgs := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt}}
    for i := range history {
        m := &history[i]
        switch m.Role {
        case domain.RoleAssistant:
            msgs = append(msgs, assistantMessages(m.PartList())...)
        default:
            if um, ok := userMessage(m.PartList()); ok {
                msgs = append(msgs, um)
            }
        }
    }
    return msgs
}

// userMessage sends images as image_url content; other attachments are named in text.
func userMessage(ps domain.Parts) (openai.ChatCompletionMessage, bool) {
    var text []string
    var images []string
    for _, p := range ps {
        switch v := p.(type) {
        case domain.TextPart:
            if strings.TrimSpace(v.Text) != "" {
                text = append(text, v.Text)
            }
        case domain.FilePart:
            if v.URL == "" {
                continue
            }
            if v.IsImage() {
                images = append(images, v.URL)
            } else {
                name := v.Filename
                if name == "" {
                    name = v.URL
                }
                text = append(text, "[Attached file: "+name+" ("+v.URL+")]")
            }
        }
    }

    joined := strings.Join(text, "\n")
    if len(images) == 0 {
        if joined == "" {
            return openai.ChatCompletionMessage{}, false
        }
        return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: joined}, true
    }

    var content []openai.ChatMessagePart
    if joined != "" {
        content = append(content, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: joined})
    }
    for _, url := range images {
        content = append(content, openai.ChatMessagePart{
            Type:     openai.ChatMessagePartTypeImageURL,
            ImageURL: &openai.ChatMessageImageURL{URL: url, Detail: openai.ImageURLDetailAuto},
        })
    }
    return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: content}, true
}

// assistantMessages replays one stored assistant turn as the step sequence that
// produced it: text, then tool calls with their results, then more text.
// Tool parts that never settled are left out.
func assistantMessages(ps domain.Parts) []openai.ChatCompletionMessage {
    var out []openai.ChatCompletionMessage
    var text []string
    var calls []openai.ToolCall
    var results []openai.ChatCompletionMessage

    flush := func() {
        content := strings.Join(text, "\n")
        if content == "" && len(calls) == 0 {
            return
        }
        out = append(out, openai.ChatCompletionMessage{
            Role:      openai.ChatMessageRoleAssistant,
            Content:   content,
            ToolCalls: calls,
        })
        out = append(out, results...)
        text, calls, results = nil, nil, nil
    }

    for _, p := range ps {
        switch v := p.(type) {
        case domain.TextPart:
            if len(calls) > 0 {
                flush()
            }
            if strings.TrimSpace(v.Text) != "" {
                text = append(text, v.Text)
            }
        case domain.ToolPart:
            if !v.State.Terminal() {
                continue
            }
            args := string(v.Input)
            if strings.TrimSpace(args) == "" {
                args = "{}"
            }
            calls = append(calls, openai.ToolCall{
                ID:       v.ToolCallID,
                Type:     openai.ToolTypeFunction,
                Function: openai.FunctionCall{Name: v.ToolName, Arguments: args},
            })
            results = append(results, toolResultMessage(v.ToolCallID, v.ToolName, v.Output, v.ErrorText))
        }
    }
    flush()
    return out
}

func toolResultMessage(callID, name string, output json.RawMessage, errorText string) openai.ChatCompletionMessage {
    content := string(output)
    if errorText != "" {
        b, _ := json.Marshal(map[string]interface{}{"success": false, "error": errorText})
        content = string(b)
    }
    if content == "" {
        content = "{}"
    }
    return openai.ChatCompletionMessage{
        Role:       openai.ChatMessageRoleTool,
        Content:    content,
        Name:       name,
        ToolCallID: callID,
    }
}
