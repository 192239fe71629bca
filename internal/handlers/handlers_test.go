package handlers

import (
    "bufio"
    "context"
    "encoding/json"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/glebarez/sqlite"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "gorm.io/gorm"
    "gorm.io/gorm/logger"

    "github.com/iyunix/go-visionai/internal/auth"
    "github.com/iyunix/go-visionai/internal/domain"
    "github.com/iyunix/go-visionai/internal/middleware"
    "github.com/iyunix/go-visionai/internal/repository/chat"
    "github.com/iyunix/go-visionai/internal/repository/message"
    "github.com/iyunix/go-visionai/internal/repository/project"
    "github.com/iyunix/go-visionai/internal/services"
    chatservice "github.com/iyunix/go-visionai/internal/services/chat"
    "github.com/iyunix/go-visionai/internal/services/chatcache"
    "github.com/iyunix/go-visionai/internal/services/media"
    "github.com/iyunix/go-visionai/internal/services/parts"
)

var testSecret = []byte("handler-secret")

type scriptedGenerator struct {
    events []parts.Event
    result chatservice.Result
}

func (g *scriptedGenerator) Generate(ctx context.Context, req chatservice.Request) (<-chan parts.Event, <-chan error) {
    events := make(chan parts.Event, len(g.events))
    errc := make(chan error, 1)
    go func() {
        defer close(errc)
        defer close(events)
        for _, ev := range g.events {
            events <- ev
        }
        if req.OnFinish != nil {
            req.OnFinish(g.result)
        }
    }()
    return events, errc
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
    return "transcribed " + string(audio), nil
}

type stubSigner struct{}

func (stubSigner) Sign(folder string) (*media.Signature, error) {
    if folder == "" {
        folder = media.DefaultFolder
    }
    return &media.Signature{Signature: "abc", CloudName: "demo", Timestamp: 1700000000, Folder: folder, APIKey: "key"}, nil
}

type testServer struct {
    handler http.Handler
    gen     *scriptedGenerator
}

func newTestServer(t *testing.T) *testServer {
    t.Helper()
    db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
    require.NoError(t, err)
    sqlDB, err := db.DB()
    require.NoError(t, err)
    sqlDB.SetMaxOpenConns(1)
    require.NoError(t, db.AutoMigrate(&domain.Project{}, &domain.Chat{}, &domain.Message{}))

    chatRepo := chat.NewChatRepository(db)
    projectRepo := project.NewProjectRepository(db)
    listings := chatcache.NewDefault()
    gen := &scriptedGenerator{}

    chatSvc, err := services.NewChatService(nil, chatRepo, message.NewMessageRepository(db), projectRepo, gen, listings, nil)
    require.NoError(t, err)

    rt := &Router{
        Chat:     NewChatHandler(chatSvc),
        Project:  NewProjectHandler(services.NewProjectService(projectRepo, chatRepo, listings, nil)),
        Generate: NewGenerateHandler(chatSvc),
        Media:    NewMediaHandler(services.NewMediaService(stubTranscriber{}, stubSigner{}, nil)),
        Health:   NewHealthHandler(nil),
        Auth:     middleware.NewJWTMiddleware(testSecret),
    }
    return &testServer{handler: rt.Build(), gen: gen}
}

func (s *testServer) do(t *testing.T, userID, method, path, body string) *httptest.ResponseRecorder {
    t.Helper()
    var rdr io.Reader
    if body != "" {
        rdr = strings.NewReader(body)
    }
    r := httptest.NewRequest(method, path, rdr)
    if userID != "" {
        token, err := auth.GenerateJWT(userID, testSecret, time.Hour)
        require.NoError(t, err)
        r.Header.Set("Authorization", "Bearer "+token)
    }
    w := httptest.NewRecorder()
    s.handler.ServeHTTP(w, r)
    return w
}

func (s *testServer) createChat(t *testing.T, userID string) string {
    t.Helper()
    w := s.do(t, userID, "POST", "/api/chats", "")
    require.Equal(t, http.StatusCreated, w.Code)
    var resp struct {
        ChatID string `json:"chatId"`
    }
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
    require.NotEmpty(t, resp.ChatID)
    return resp.ChatID
}

func TestHealthIsPublic(t *testing.T) {
    s := newTestServer(t)
    w := s.do(t, "", "GET", "/health", "")
    assert.Equal(t, http.StatusOK, w.Code)
    assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAPIRequiresAuth(t *testing.T) {
    s := newTestServer(t)
    w := s.do(t, "", "GET", "/api/chats", "")
    assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChatLifecycle(t *testing.T) {
    s := newTestServer(t)
    id := s.createChat(t, "u1")

    w := s.do(t, "u1", "GET", "/api/chats", "")
    require.Equal(t, http.StatusOK, w.Code)
    var list []domain.ChatSummary
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
    require.Len(t, list, 1)
    assert.Equal(t, domain.DefaultChatTitle, list[0].Title)

    w = s.do(t, "u1", "POST", "/api/chats/"+id+"/messages", `{}`)
    assert.Equal(t, http.StatusBadRequest, w.Code)
    assert.Contains(t, w.Body.String(), "Message text or parts are required")

    w = s.do(t, "u1", "POST", "/api/chats/"+id+"/messages", `{"message":"hello"}`)
    require.Equal(t, http.StatusCreated, w.Code)

    w = s.do(t, "u1", "GET", "/api/chats/"+id, "")
    require.Equal(t, http.StatusOK, w.Code)
    var got domain.Chat
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
    require.Len(t, got.Messages, 1)
    assert.Equal(t, "hello", got.Messages[0].PartList().Text())

    assert.Equal(t, http.StatusNotFound, s.do(t, "u2", "GET", "/api/chats/"+id, "").Code)
    assert.Equal(t, http.StatusNotFound, s.do(t, "u2", "DELETE", "/api/chats/"+id, "").Code)

    w = s.do(t, "u1", "PATCH", "/api/chats/"+id, `{"title":"Renamed"}`)
    require.Equal(t, http.StatusOK, w.Code)

    w = s.do(t, "u1", "GET", "/api/search?q=renam", "")
    require.Equal(t, http.StatusOK, w.Code)
    var results []domain.SearchResult
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
    require.Len(t, results, 1)
    assert.Equal(t, "/~/"+id, results[0].URL)

    assert.Equal(t, http.StatusNoContent, s.do(t, "u1", "DELETE", "/api/chats/"+id, "").Code)
    assert.Equal(t, http.StatusNotFound, s.do(t, "u1", "GET", "/api/chats/"+id, "").Code)
}

func TestSearchEmptyQueryReturnsEmptyArray(t *testing.T) {
    s := newTestServer(t)
    w := s.do(t, "u1", "GET", "/api/search?q=", "")
    require.Equal(t, http.StatusOK, w.Code)
    assert.JSONEq(t, `[]`, w.Body.String())
}

func TestProjectsAndMovingChats(t *testing.T) {
    s := newTestServer(t)
    id := s.createChat(t, "u1")

    assert.Equal(t, http.StatusBadRequest, s.do(t, "u1", "POST", "/api/projects", `{"title":"  "}`).Code)

    w := s.do(t, "u1", "POST", "/api/projects", `{"title":"Research"}`)
    require.Equal(t, http.StatusCreated, w.Code)
    var p domain.Project
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))

    assert.Equal(t, http.StatusNotFound, s.do(t, "u1", "PATCH", "/api/chats/"+id, `{"projectId":"missing"}`).Code)

    w = s.do(t, "u1", "PATCH", "/api/chats/"+id, `{"projectId":"`+p.ID+`"}`)
    require.Equal(t, http.StatusOK, w.Code)
    assert.Contains(t, w.Body.String(), `"isOnProject":true`)

    w = s.do(t, "u1", "GET", "/api/projects/"+p.ID+"/chats", "")
    require.Equal(t, http.StatusOK, w.Code)
    assert.Contains(t, w.Body.String(), id)
    assert.Equal(t, http.StatusNotFound, s.do(t, "u2", "GET", "/api/projects/"+p.ID+"/chats", "").Code)

    w = s.do(t, "u1", "PATCH", "/api/chats/"+id, `{"projectId":null}`)
    require.Equal(t, http.StatusOK, w.Code)
    assert.Contains(t, w.Body.String(), `"isOnProject":false`)
}

// readSSE returns the data payloads of an SSE body.
func readSSE(t *testing.T, body string) []string {
    t.Helper()
    var out []string
    sc := bufio.NewScanner(strings.NewReader(body))
    for sc.Scan() {
        if line := sc.Text(); strings.HasPrefix(line, "data: ") {
            out = append(out, strings.TrimPrefix(line, "data: "))
        }
    }
    return out
}

func TestGenerateStreamsAndPersists(t *testing.T) {
    s := newTestServer(t)
    id := s.createChat(t, "u1")

    s.gen.events = []parts.Event{
        {Type: parts.EventStart},
        {Type: parts.EventReasoningStart, ID: "r1"},
        {Type: parts.EventReasoningDelta, ID: "r1", Delta: "hmm"},
        {Type: parts.EventReasoningEnd, ID: "r1"},
        {Type: parts.EventTextDelta, ID: "t1", Delta: "<title>Hi</title>Hello"},
        {Type: parts.EventSource, Source: &domain.Source{URL: "https://a.dev"}},
        {Type: parts.EventFinish, FinishReason: parts.FinishStop, Steps: 1},
    }
    s.gen.result = chatservice.Result{
        Parts:        domain.Parts{domain.TextPart{Text: "<title>Hi</title>Hello"}},
        FinishReason: parts.FinishStop,
        Steps:        1,
    }

    body := `{"chatId":"` + id + `","sendReasoning":false,"messages":[{"role":"user","parts":[{"type":"text","text":"hey"}]}]}`
    w := s.do(t, "u1", "POST", "/api/generate", body)
    require.Equal(t, http.StatusOK, w.Code)
    assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

    data := readSSE(t, w.Body.String())
    require.NotEmpty(t, data)
    assert.Equal(t, "[DONE]", data[len(data)-1])
    assert.NotContains(t, w.Body.String(), "reasoning")
    assert.Contains(t, w.Body.String(), `"type":"source"`)
    assert.Contains(t, w.Body.String(), `"finishReason":"stop"`)

    w = s.do(t, "u1", "GET", "/api/chats/"+id, "")
    var got domain.Chat
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
    require.Len(t, got.Messages, 2)
    assert.Equal(t, "Hi", got.Title)

    w = s.do(t, "u1", "GET", "/api/chats/"+id+"/view?mode=replay", "")
    require.Equal(t, http.StatusOK, w.Code)
    var views []services.MessageView
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
    require.Len(t, views, 2)
    assert.Equal(t, "Hello", views[1].View.Blocks[0].Text)
}

func TestGenerateRejectsBadInput(t *testing.T) {
    s := newTestServer(t)
    assert.Equal(t, http.StatusBadRequest, s.do(t, "u1", "POST", "/api/generate", `{"messages":[]}`).Code)
    assert.Equal(t, http.StatusBadRequest, s.do(t, "u1", "POST", "/api/generate", `not json`).Code)
    assert.Equal(t, http.StatusNotFound, s.do(t, "u1", "POST", "/api/generate",
        `{"chatId":"nope","messages":[{"role":"user","parts":[{"type":"text","text":"x"}]}]}`).Code)

    w := s.do(t, "u1", "POST", "/api/generate", `{"messages":[{"role":"user","parts":[]}]}`)
    assert.Equal(t, http.StatusBadRequest, w.Code)
    assert.Contains(t, w.Body.String(), "at least one part")

    id := s.createChat(t, "u1")
    w = s.do(t, "u1", "POST", "/api/generate", `{"chatId":"`+id+`","messages":[{"role":"user","parts":[]}]}`)
    assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddMessageRejectsInconsistentToolPart(t *testing.T) {
    s := newTestServer(t)
    id := s.createChat(t, "u1")

    w := s.do(t, "u1", "POST", "/api/chats/"+id+"/messages",
        `{"role":"assistant","parts":[{"type":"tool-webSearch","toolCallId":"c1","state":"output-available"}]}`)
    assert.Equal(t, http.StatusBadRequest, w.Code)
    assert.Contains(t, w.Body.String(), "invalid tool part")

    w = s.do(t, "u1", "GET", "/api/chats/"+id, "")
    var got domain.Chat
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
    assert.Empty(t, got.Messages)
}

func TestSearchRejectsOverlongQuery(t *testing.T) {
    s := newTestServer(t)
    w := s.do(t, "u1", "GET", "/api/search?q="+strings.Repeat("a", 101), "")
    assert.Equal(t, http.StatusBadRequest, w.Code)
    assert.Contains(t, w.Body.String(), "at most 100 characters")

    w = s.do(t, "u1", "GET", "/api/search?q="+strings.Repeat("a", 100), "")
    assert.Equal(t, http.StatusOK, w.Code)
}

func TestTranscribeAndSignature(t *testing.T) {
    s := newTestServer(t)

    w := s.do(t, "u1", "POST", "/api/transcribe", `{"audioData":"aGk="}`)
    require.Equal(t, http.StatusOK, w.Code)
    assert.JSONEq(t, `{"transcript":"transcribed hi"}`, w.Body.String())

    assert.Equal(t, http.StatusBadRequest, s.do(t, "u1", "POST", "/api/transcribe", `{}`).Code)

    w = s.do(t, "u1", "GET", "/api/cloudinary/signature", "")
    require.Equal(t, http.StatusOK, w.Code)
    assert.JSONEq(t, `{"data":{"signature":"abc","cloudName":"demo","timestamp":1700000000,"folder":"loop-social-platform","apiKey":"key"}}`, w.Body.String())
}

func TestLibraryEndpoint(t *testing.T) {
    s := newTestServer(t)
    id := s.createChat(t, "u1")
    w := s.do(t, "u1", "POST", "/api/chats/"+id+"/messages",
        `{"parts":[{"type":"file","url":"https://cdn/a.png","mediaType":"image/png"}]}`)
    require.Equal(t, http.StatusCreated, w.Code)

    w = s.do(t, "u1", "GET", "/api/library", "")
    require.Equal(t, http.StatusOK, w.Code)
    var items []services.LibraryItem
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
    require.Len(t, items, 1)
    assert.Equal(t, "https://cdn/a.png", items[0].URL)
}
