package providers

import (
    "context"
    "encoding/base64"
    "encoding/json"
    "io"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestTavilySearchSendsExpectedPayload(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/search", r.URL.Path)
        assert.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))

        var body map[string]interface{}
        require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
        assert.Equal(t, "weather in Tokyo", body["query"])
        assert.Equal(t, true, body["include_answer"])
        assert.Equal(t, true, body["include_favicon"])
        assert.EqualValues(t, 5, body["max_results"])

        _, _ = w.Write([]byte(`{"query":"weather in Tokyo","answer":"Sunny","results":[{"title":"F","url":"https://w.dev","content":"22C","favicon":"https://w.dev/f.ico"}],"response_time":0.4}`))
    }))
    defer srv.Close()

    c := NewTavilyClient(Config{APIKey: "tvly-key", BaseURL: srv.URL})
    out, err := c.Search(context.Background(), "weather in Tokyo")
    require.NoError(t, err)
    assert.Equal(t, "Sunny", out.Answer)
    require.Len(t, out.Results, 1)
    require.NotNil(t, out.Results[0].Favicon)
    assert.Equal(t, "https://w.dev/f.ico", *out.Results[0].Favicon)
}

func TestTavilyExtractPayload(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/extract", r.URL.Path)
        var body map[string]interface{}
        require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
        assert.Equal(t, "advanced", body["extract_depth"])
        assert.Equal(t, "markdown", body["format"])
        _, _ = w.Write([]byte(`{"results":[{"url":"https://a.dev","raw_content":"# A"}],"response_time":1.2}`))
    }))
    defer srv.Close()

    c := NewTavilyClient(Config{APIKey: "k", BaseURL: srv.URL})
    out, err := c.Extract(context.Background(), []string{"https://a.dev"})
    require.NoError(t, err)
    require.Len(t, out.Results, 1)
    assert.Equal(t, "# A", out.Results[0].RawContent)
    assert.Equal(t, 1.2, out.ResponseTime)
}

func TestMissingKeyIsConfigError(t *testing.T) {
    _, err := NewTavilyClient(Config{}).Search(context.Background(), "q")
    require.Error(t, err)
    assert.True(t, IsConfigError(err))
    assert.Equal(t, "Missing TAVILY_API_KEY", Reason(err))

    _, err = NewNebiusClient(Config{}).GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
    assert.True(t, IsConfigError(err))

    _, err = NewDeepgramClient(Config{}).Speak(context.Background(), "hi")
    assert.True(t, IsConfigError(err))
}

func TestUpstreamErrorMessages(t *testing.T) {
    cases := []struct {
        status int
        body   string
        want   string
        typ    ErrorType
    }{
        {http.StatusBadRequest, `{"error":{"message":"prompt rejected"}}`, "prompt rejected", ErrTypeProvider},
        {http.StatusUnauthorized, `{"detail":{"error":"Unauthorized"}}`, "API error: Unauthorized", ErrTypeProvider},
        {http.StatusInternalServerError, `oops`, "API error: Internal Server Error", ErrTypeProvider},
        {http.StatusTooManyRequests, `{}`, "rate limit exceeded", ErrTypeRateLimit},
    }
    for _, tc := range cases {
        srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            w.WriteHeader(tc.status)
            _, _ = w.Write([]byte(tc.body))
        }))
        _, err := NewNebiusClient(Config{APIKey: "k", BaseURL: srv.URL}).GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
        srv.Close()

        var pe *ProviderError
        require.ErrorAs(t, err, &pe)
        assert.Equal(t, tc.typ, pe.Type)
        assert.Equal(t, tc.status, pe.Code)
        assert.Equal(t, tc.want, Reason(err))
        assert.False(t, IsConfigError(err))
    }
}

func TestNebiusDecodesImage(t *testing.T) {
    png := []byte{0x89, 'P', 'N', 'G'}
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/images/generations", r.URL.Path)
        var body map[string]interface{}
        require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
        assert.Equal(t, ImageModel, body["model"])
        assert.Equal(t, "b64_json", body["response_format"])
        assert.EqualValues(t, 4, body["num_inference_steps"])
        assert.EqualValues(t, -1, body["seed"])
        assert.EqualValues(t, 512, body["width"])
        _ = json.NewEncoder(w).Encode(map[string]interface{}{
            "data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(png)}},
        })
    }))
    defer srv.Close()

    img, err := NewNebiusClient(Config{APIKey: "k", BaseURL: srv.URL}).GenerateImage(context.Background(), ImageRequest{Prompt: "cube", Width: 512, Height: 512})
    require.NoError(t, err)
    assert.Equal(t, png, img)
}

func TestNebiusEmptyData(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        _, _ = w.Write([]byte(`{"data":[]}`))
    }))
    defer srv.Close()

    _, err := NewNebiusClient(Config{APIKey: "k", BaseURL: srv.URL}).GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
    assert.Equal(t, "No image generated in response", Reason(err))
}

func TestDeepgramSpeakAndTranscribe(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "Token dg", r.Header.Get("Authorization"))
        switch r.URL.Path {
        case "/speak":
            assert.Equal(t, SpeechModel, r.URL.Query().Get("model"))
            assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))
            _, _ = w.Write([]byte("ID3audio"))
        case "/listen":
            assert.Equal(t, TranscribeModel, r.URL.Query().Get("model"))
            assert.Equal(t, "en", r.URL.Query().Get("language"))
            assert.Equal(t, "audio/webm", r.Header.Get("Content-Type"))
            data, _ := io.ReadAll(r.Body)
            assert.Equal(t, []byte("webm"), data)
            _, _ = w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":" hello there "}]}]}}`))
        }
    }))
    defer srv.Close()

    c := NewDeepgramClient(Config{APIKey: "dg", BaseURL: srv.URL})
    audio, err := c.Speak(context.Background(), "hi")
    require.NoError(t, err)
    assert.Equal(t, []byte("ID3audio"), audio)

    text, err := c.Transcribe(context.Background(), []byte("webm"), "")
    require.NoError(t, err)
    assert.Equal(t, "hello there", text)
}
