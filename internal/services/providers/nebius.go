// File: internal/services/providers/nebius.go
package providers

import (
    "context"
    "encoding/base64"
    "encoding/json"
)

const (
    ImageModel         = "black-forest-labs/flux-schnell"
    imageInferenceStep = 4
)

type ImageRequest struct {
    Prompt         string
    Width          int
    Height         int
    NegativePrompt string
}

// NebiusClient generates images with the Flux Schnell model.
type NebiusClient struct {
    http httpClient
}

func NewNebiusClient(config Config) *NebiusClient {
    return &NebiusClient{http: newHTTPClient("Nebius", withDefaults(config, NebiusBaseURL))}
}

// ConfigError returns the missing-key error, or nil when the client can be used.
func (c *NebiusClient) ConfigError() error {
    return c.http.config.Validate("NEBIUS_API_KEY")
}

// GenerateImage returns the decoded PNG bytes of the first generated image.
func (c *NebiusClient) GenerateImage(ctx context.Context, r ImageRequest) ([]byte, error) {
    if err := c.ConfigError(); err != nil {
        return nil, err
    }

    payload := map[string]interface{}{
        "model":               ImageModel,
        "response_format":     "b64_json",
        "response_extension":  "png",
        "width":               r.Width,
        "height":              r.Height,
        "num_inference_steps": imageInferenceStep,
        "negative_prompt":     r.NegativePrompt,
        "seed":                -1,
        "loras":               nil,
        "prompt":              r.Prompt,
    }
    headers := map[string]string{"Authorization": "Bearer " + c.http.config.APIKey}
    data, err := c.http.sendJSON(ctx, c.http.config.BaseURL+"/images/generations", payload, headers)
    if err != nil {
        return nil, err
    }

    var resp struct {
        Data []struct {
            B64JSON string `json:"b64_json"`
        } `json:"data"`
    }
    if err := json.Unmarshal(data, &resp); err != nil {
        return nil, &ProviderError{Provider: c.http.name, Type: ErrTypeProvider, Message: "malformed response", Cause: err}
    }
    if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
        return nil, &ProviderError{Provider: c.http.name, Type: ErrTypeProvider, Message: "No image generated in response"}
    }

    img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
    if err != nil {
        return nil, &ProviderError{Provider: c.http.name, Type: ErrTypeProvider, Message: "invalid image encoding", Cause: err}
    }
    return img, nil
}
