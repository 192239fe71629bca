// File: internal/services/tools/web.go
package tools

import (
    "context"

    "github.com/iyunix/go-visionai/internal/domain"
    "github.com/iyunix/go-visionai/internal/services/providers"
)

const (
    WebSearchName     = "webSearch"
    ExtractWebURLName = "extractWebUrl"

    noContentExtracted = "No content extracted"
)

// WebClient is the subset of the Tavily client the web tools need.
type WebClient interface {
    Search(ctx context.Context, query string) (*providers.TavilySearchResponse, error)
    Extract(ctx context.Context, urls []string) (*providers.TavilyExtractResponse, error)
}

type searchInput struct {
    Query string `json:"query" validate:"required"`
}

type SearchResult struct {
    Title   string  `json:"title"`
    URL     string  `json:"url"`
    Content string  `json:"content"`
    Score   float64 `json:"score,omitempty"`
    Favicon *string `json:"favicon"`
}

type SearchOutput struct {
    Query        string         `json:"query"`
    Answer       string         `json:"answer,omitempty"`
    Results      []SearchResult `json:"results"`
    ResponseTime float64        `json:"responseTime"`
}

func (o *SearchOutput) Sources() []domain.Source {
    out := make([]domain.Source, 0, len(o.Results))
    for _, r := range o.Results {
        out = append(out, domain.Source{URL: r.URL, Title: r.Title, Description: r.Content})
    }
    return out
}

func NewWebSearchTool(client WebClient) Tool {
    return &typedTool[searchInput]{
        name:        WebSearchName,
        description: "Search the web for current information using Tavily.",
        parameters: map[string]interface{}{
            "type": "object",
            "properties": map[string]interface{}{
                "query": map[string]interface{}{
                    "type":        "string",
                    "description": "Search query for the web",
                },
            },
            "required": []string{"query"},
        },
        run: func(ctx context.Context, in searchInput) (interface{}, error) {
            resp, err := client.Search(ctx, in.Query)
            if err != nil {
                if providers.IsConfigError(err) {
                    return nil, &ConfigError{Tool: WebSearchName, Message: providers.Reason(err), Cause: err}
                }
                return &Failure{Error: providers.Reason(err), Message: "Web search failed"}, nil
            }

            out := &SearchOutput{
                Query:        resp.Query,
                Answer:       resp.Answer,
                Results:      make([]SearchResult, 0, len(resp.Results)),
                ResponseTime: resp.ResponseTime,
            }
            for _, r := range resp.Results {
                out.Results = append(out.Results, SearchResult{
                    Title:   r.Title,
                    URL:     r.URL,
                    Content: r.Content,
                    Score:   r.Score,
                    Favicon: r.Favicon,
                })
            }
            return out, nil
        },
    }
}

type extractInput struct {
    URLs []string `json:"urls" validate:"min=1,max=10,dive,url"`
}

type ExtractResult struct {
    URL             string  `json:"url"`
    Title           string  `json:"title"`
    Content         string  `json:"content"`
    Favicon         *string `json:"favicon"`
    ExtractedLength int     `json:"extractedLength"`
}

type ExtractOutput struct {
    Success            bool            `json:"success"`
    URLs               []string        `json:"urls"`
    Results            []ExtractResult `json:"results"`
    TotalSources       int             `json:"totalSources"`
    TotalContentLength int             `json:"totalContentLength"`
    ResponseTime       float64         `json:"response_time"`
}

func (o *ExtractOutput) Sources() []domain.Source {
    out := make([]domain.Source, 0, len(o.Results))
    for _, r := range o.Results {
        out = append(out, domain.Source{URL: r.URL, Title: r.Title})
    }
    return out
}

func NewExtractWebURLTool(client WebClient) Tool {
    return &typedTool[extractInput]{
        name: ExtractWebURLName,
        description: "Extract comprehensive, detailed content from one or more URLs for deep research, fact-checking, and validation. " +
            "Returns full page content including all text, structure, and context. Use this for: " +
            "(1) Deep research when user requests detailed/comprehensive information, " +
            "(2) When webSearch results are insufficient or lack detail, " +
            "(3) Fact-checking and validation from original sources, " +
            "(4) Extracting detailed data, statistics, or technical information, " +
            "(5) Cross-referencing multiple sources to verify claims. " +
            "Always extract from multiple authoritative sources when doing deep research or validation.",
        parameters: map[string]interface{}{
            "type": "object",
            "properties": map[string]interface{}{
                "urls": map[string]interface{}{
                    "type":     "array",
                    "minItems": 1,
                    "maxItems": 10,
                    "items": map[string]interface{}{
                        "type":        "string",
                        "format":      "uri",
                        "description": "Website URL to extract detailed content from",
                    },
                    "description": "Array of URLs to extract. For deep research, include 3-5 most relevant and authoritative sources. " +
                        "Prioritize primary sources, official websites, and reputable publications.",
                },
            },
            "required": []string{"urls"},
        },
        run: func(ctx context.Context, in extractInput) (interface{}, error) {
            resp, err := client.Extract(ctx, in.URLs)
            if err != nil {
                if providers.IsConfigError(err) {
                    return nil, &ConfigError{Tool: ExtractWebURLName, Message: providers.Reason(err), Cause: err}
                }
                return &Failure{Error: providers.Reason(err), Message: "Extract url content failed"}, nil
            }

            out := &ExtractOutput{
                Success:      true,
                URLs:         in.URLs,
                Results:      make([]ExtractResult, 0, len(resp.Results)),
                ResponseTime: resp.ResponseTime,
            }
            for _, r := range resp.Results {
                res := ExtractResult{
                    URL:             r.URL,
                    Title:           r.Title,
                    Content:         r.RawContent,
                    Favicon:         r.Favicon,
                    ExtractedLength: len(r.RawContent),
                }
                if res.Title == "" {
                    res.Title = r.URL
                }
                if res.Content == "" {
                    res.Content = r.Content
                }
                if res.Content == "" {
                    res.Content = noContentExtracted
                }
                out.Results = append(out.Results, res)
                out.TotalContentLength += res.ExtractedLength
            }
            out.TotalSources = len(out.Results)
            return out, nil
        },
    }
}
