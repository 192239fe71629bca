// File: internal/services/providers/http.go
package providers

import (
    "bytes"
    "context"
    "encoding/json"
    "io"
    "net/http"
)

// maxErrorBody bounds how much of a failed response is read into the error message.
const maxErrorBody = 4 << 10

type httpClient struct {
    name   string
    config Config
    client *http.Client
}

func newHTTPClient(name string, config Config) httpClient {
    return httpClient{
        name:   name,
        config: config,
        client: &http.Client{Timeout: config.Timeout},
    }
}

// sendRequest posts body and returns the raw response body of a 2xx reply.
func (c httpClient) sendRequest(ctx context.Context, url string, body io.Reader, headers map[string]string) ([]byte, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
    if err != nil {
        return nil, &ProviderError{Provider: c.name, Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
    }
    for k, v := range headers {
        req.Header.Set(k, v)
    }

    resp, err := c.client.Do(req)
    if err != nil {
        return nil, &ProviderError{Provider: c.name, Type: ErrTypeNetwork, Message: "request failed", Cause: err}
    }
    defer resp.Body.Close()

    return c.handleResponse(resp)
}

func (c httpClient) sendJSON(ctx context.Context, url string, payload interface{}, headers map[string]string) ([]byte, error) {
    body, err := json.Marshal(payload)
    if err != nil {
        return nil, &ProviderError{Provider: c.name, Type: ErrTypeValidation, Message: "invalid payload", Cause: err}
    }
    if headers == nil {
        headers = map[string]string{}
    }
    headers["Content-Type"] = "application/json"
    return c.sendRequest(ctx, url, bytes.NewReader(body), headers)
}

func (c httpClient) handleResponse(resp *http.Response) ([]byte, error) {
    if resp.StatusCode >= 200 && resp.StatusCode < 300 {
        data, err := io.ReadAll(resp.Body)
        if err != nil {
            return nil, &ProviderError{Provider: c.name, Type: ErrTypeNetwork, Message: "failed to read response", Cause: err}
        }
        return data, nil
    }

    responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

    if resp.StatusCode == http.StatusTooManyRequests {
        return nil, &ProviderError{
            Provider: c.name,
            Type:     ErrTypeRateLimit,
            Code:     resp.StatusCode,
            Message:  "rate limit exceeded",
        }
    }

    return nil, &ProviderError{
        Provider: c.name,
        Type:     ErrTypeProvider,
        Code:     resp.StatusCode,
        Message:  errorMessage(resp, responseBody),
    }
}

// errorMessage prefers the upstream's own error text and falls back to the status line.
func errorMessage(resp *http.Response, body []byte) string {
    var payload struct {
        Error   json.RawMessage `json:"error"`
        Message string          `json:"message"`
        ErrMsg  string          `json:"err_msg"`
        Detail  interface{}     `json:"detail"`
    }
    if json.Unmarshal(body, &payload) == nil {
        var nested struct {
            Message string `json:"message"`
        }
        var flat string
        switch {
        case json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "":
            return nested.Message
        case json.Unmarshal(payload.Error, &flat) == nil && flat != "":
            return flat
        case payload.Message != "":
            return payload.Message
        case payload.ErrMsg != "":
            return payload.ErrMsg
        }
        if d, ok := payload.Detail.(string); ok && d != "" {
            return d
        }
    }
    if text := http.StatusText(resp.StatusCode); text != "" {
        return "API error: " + text
    }
    return "API error: " + resp.Status
}
