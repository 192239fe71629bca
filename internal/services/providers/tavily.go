// File: internal/services/providers/tavily.go
package providers

import (
    "context"
    "encoding/json"
)

const tavilyMaxResults = 5

type TavilyResult struct {
    Title      string  `json:"title"`
    URL        string  `json:"url"`
    Content    string  `json:"content"`
    RawContent string  `json:"raw_content,omitempty"`
    Score      float64 `json:"score,omitempty"`
    Favicon    *string `json:"favicon"`
}

type TavilySearchResponse struct {
    Query        string         `json:"query"`
    Answer       string         `json:"answer,omitempty"`
    Results      []TavilyResult `json:"results"`
    ResponseTime float64        `json:"response_time"`
}

type TavilyFailedResult struct {
    URL   string `json:"url"`
    Error string `json:"error"`
}

type TavilyExtractResponse struct {
    Results       []TavilyResult       `json:"results"`
    FailedResults []TavilyFailedResult `json:"failed_results,omitempty"`
    ResponseTime  float64              `json:"response_time"`
}

// TavilyClient covers the search and extract endpoints.
type TavilyClient struct {
    http httpClient
}

func NewTavilyClient(config Config) *TavilyClient {
    return &TavilyClient{http: newHTTPClient("Tavily", withDefaults(config, TavilyBaseURL))}
}

func (c *TavilyClient) ConfigError() error {
    return c.http.config.Validate("TAVILY_API_KEY")
}

func (c *TavilyClient) Search(ctx context.Context, query string) (*TavilySearchResponse, error) {
    if err := c.ConfigError(); err != nil {
        return nil, err
    }

    payload := map[string]interface{}{
        "query":           query,
        "include_answer":  true,
        "include_favicon": true,
        "include_images":  false,
        "max_results":     tavilyMaxResults,
    }
    var out TavilySearchResponse
    if err := c.post(ctx, "/search", payload, &out); err != nil {
        return nil, err
    }
    if out.Results == nil {
        out.Results = []TavilyResult{}
    }
    return &out, nil
}

// Extract pulls the full page content of each url as markdown.
func (c *TavilyClient) Extract(ctx context.Context, urls []string) (*TavilyExtractResponse, error) {
    if err := c.ConfigError(); err != nil {
        return nil, err
    }

    payload := map[string]interface{}{
        "urls":            urls,
        "include_favicon": true,
        "include_images":  false,
        "format":          "markdown",
        "extract_depth":   "advanced",
    }
    var out TavilyExtractResponse
    if err := c.post(ctx, "/extract", payload, &out); err != nil {
        return nil, err
    }
    return &out, nil
}

func (c *TavilyClient) post(ctx context.Context, path string, payload, out interface{}) error {
    headers := map[string]string{"Authorization": "Bearer " + c.http.config.APIKey}
    data, err := c.http.sendJSON(ctx, c.http.config.BaseURL+path, payload, headers)
    if err != nil {
        return err
    }
    if err := json.Unmarshal(data, out); err != nil {
        return &ProviderError{Provider: c.http.name, Type: ErrTypeProvider, Message: "malformed response", Cause: err}
    }
    return nil
}
