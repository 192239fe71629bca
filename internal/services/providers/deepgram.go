// File: internal/services/providers/deepgram.go
package providers

import (
    "bytes"
    "context"
    "encoding/json"
    "strings"
)

const (
    SpeechModel     = "aura-2-thalia-en"
    TranscribeModel = "nova-3"
)

// DeepgramClient covers text-to-speech and transcription.
type DeepgramClient struct {
    http httpClient
}

func NewDeepgramClient(config Config) *DeepgramClient {
    return &DeepgramClient{http: newHTTPClient("Deepgram", withDefaults(config, DeepgramBaseURL))}
}

func (c *DeepgramClient) ConfigError() error {
    return c.http.config.Validate("DEEPGRAM_API_KEY")
}

func (c *DeepgramClient) authHeaders() map[string]string {
    return map[string]string{"Authorization": "Token " + c.http.config.APIKey}
}

// Speak returns MP3 audio for text.
func (c *DeepgramClient) Speak(ctx context.Context, text string) ([]byte, error) {
    if err := c.ConfigError(); err != nil {
        return nil, err
    }

    headers := c.authHeaders()
    headers["Accept"] = "audio/mpeg"
    url := c.http.config.BaseURL + "/speak?model=" + SpeechModel
    return c.http.sendJSON(ctx, url, map[string]string{"text": text}, headers)
}

// Transcribe returns the first transcript alternative of the first channel.
// An empty string means nothing was recognized.
func (c *DeepgramClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
    if err := c.ConfigError(); err != nil {
        return "", err
    }
    if mimeType == "" {
        mimeType = "audio/webm"
    }

    headers := c.authHeaders()
    headers["Content-Type"] = mimeType
    url := c.http.config.BaseURL + "/listen?model=" + TranscribeModel + "&language=en"
    data, err := c.http.sendRequest(ctx, url, bytes.NewReader(audio), headers)
    if err != nil {
        return "", err
    }

    var resp struct {
        Results struct {
            Channels []struct {
                Alternatives []struct {
                    Transcript string `json:"transcript"`
                } `json:"alternatives"`
            } `json:"channels"`
        } `json:"results"`
    }
    if err := json.Unmarshal(data, &resp); err != nil {
        return "", &ProviderError{Provider: c.http.name, Type: ErrTypeProvider, Message: "malformed response", Cause: err}
    }
    if len(resp.Results.Channels) == 0 || len(resp.Results.Channels[0].Alternatives) == 0 {
        return "", nil
    }
    return strings.TrimSpace(resp.Results.Channels[0].Alternatives[0].Transcript), nil
}
