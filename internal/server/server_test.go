package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitegen/internal/catalog"
	"sitegen/internal/config"
	"sitegen/internal/models"
	"sitegen/internal/transport"
)

// fakeOpener scripts the transport layer for handler tests.
type fakeOpener struct {
	deltas []string
	err    error

	gotKey      string
	gotMessages []models.Message
	gotDeadline time.Time
}

func (f *fakeOpener) Stream(ctx context.Context, resolved catalog.Resolved, messages []models.Message) (transport.TokenStream, error) {
	f.gotKey = resolved.Key()
	f.gotMessages = messages
	if dl, ok := ctx.Deadline(); ok {
		f.gotDeadline = dl
	}
	if f.err != nil {
		return nil, f.err
	}
	return &scriptedStream{deltas: f.deltas}, nil
}

type scriptedStream struct {
	deltas []string
}

func (s *scriptedStream) Next(ctx context.Context) (string, error) {
	if len(s.deltas) == 0 {
		return "", io.EOF
	}
	delta := s.deltas[0]
	s.deltas = s.deltas[1:]
	return delta, nil
}

func (s *scriptedStream) Close() error { return nil }

func newTestServer(t *testing.T, opener StreamOpener) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.StaticDir = ""
	if opener == nil {
		opener = &fakeOpener{}
	}
	srv, err := New(cfg, opener)
	require.NoError(t, err)
	return srv
}

func postJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAskAI_MissingPrompt(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postJSON(t, srv, "/api/ask-ai", `{"html":"<p></p>"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["message"], "prompt")
}

func TestAskAI_InvalidMode(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postJSON(t, srv, "/api/ask-ai", `{"prompt":"x","mode":"backend"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "invalid mode")
}

func TestAskAI_UnknownModelKeyFailsBeforeStream(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postJSON(t, srv, "/api/ask-ai", `{"prompt":"x","modelKey":"nope/missing"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["message"], "unknown model")
}

func TestAskAI_NoCredentialFailsBeforeStream(t *testing.T) {
	opener := &fakeOpener{err: fmt.Errorf("%w for provider Groq (GROQ_API_KEY)", transport.ErrNoCredential)}
	srv := newTestServer(t, opener)

	rec := postJSON(t, srv, "/api/ask-ai", `{"prompt":"x"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "GROQ_API_KEY")
}

func TestAskAI_UpstreamRejectionIsBadGateway(t *testing.T) {
	opener := &fakeOpener{err: &transport.UpstreamError{Status: 429, Body: "rate limit"}}
	srv := newTestServer(t, opener)

	rec := postJSON(t, srv, "/api/ask-ai", `{"prompt":"x"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "rate limit")
}

func TestAskAI_StreamsEventsAndDefaultsModel(t *testing.T) {
	opener := &fakeOpener{deltas: []string{"<!DOCTYPE html>", "<html></html>"}}
	srv := newTestServer(t, opener)

	rec := postJSON(t, srv, "/api/ask-ai", `{"prompt":"a page"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	assert.Equal(t, models.DefaultModelKey, opener.gotKey)
	require.NotEmpty(t, opener.gotMessages)
	assert.Equal(t, models.RoleSystem, opener.gotMessages[0].Role)
	assert.Equal(t, "a page", opener.gotMessages[len(opener.gotMessages)-1].Content)

	frames := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	require.Len(t, frames, 3)
	assert.Equal(t, `data: {"content":"<!DOCTYPE html>","mode":"frontend"}`, frames[0])

	var terminal map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[2], "data: ")), &terminal))
	assert.Equal(t, true, terminal["done"])
	assert.Equal(t, "<!DOCTYPE html><html></html>", terminal["fullContent"])
}

func TestAskAI_DurationCapCoversUpstreamRequest(t *testing.T) {
	opener := &fakeOpener{deltas: []string{"x"}}
	cfg := config.Default()
	cfg.Server.StaticDir = ""
	cfg.Stream.MaxDuration = 250 * time.Millisecond
	srv, err := New(cfg, opener)
	require.NoError(t, err)

	rec := postJSON(t, srv, "/api/ask-ai", `{"prompt":"x"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	// The stream must be opened under the capped context so a stalled
	// provider read is bounded, not only the relay loop.
	require.False(t, opener.gotDeadline.IsZero())
	assert.WithinDuration(t, time.Now().Add(250*time.Millisecond), opener.gotDeadline, time.Second)
}

func TestAskAI_ErrorAfterHeadersStays200(t *testing.T) {
	// A stream that fails after its first delta.
	failing := &failAfterFirst{inner: &fakeOpener{deltas: []string{"partial"}}}
	srv := newTestServer(t, failing)

	rec := postJSON(t, srv, "/api/ask-ai", `{"prompt":"x"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	frames := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	require.Len(t, frames, 2)
	assert.Contains(t, frames[1], `"error"`)
}

type failAfterFirst struct {
	inner *fakeOpener
}

func (f *failAfterFirst) Stream(ctx context.Context, resolved catalog.Resolved, messages []models.Message) (transport.TokenStream, error) {
	ts, err := f.inner.Stream(ctx, resolved, messages)
	if err != nil {
		return nil, err
	}
	return &failingStream{inner: ts}, nil
}

type failingStream struct {
	inner transport.TokenStream
	sent  bool
}

func (s *failingStream) Next(ctx context.Context) (string, error) {
	if s.sent {
		return "", errors.New("upstream connection reset")
	}
	s.sent = true
	return s.inner.Next(ctx)
}

func (s *failingStream) Close() error { return s.inner.Close() }

func TestErrorHandler_RouterErrorsKeepTheirStatus(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ask-ai", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "Method Not Allowed", body["message"])
}

func TestModelsEndpoint(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "set")
	t.Setenv("OPENAI_API_KEY", "")

	srv := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK     bool                `json:"ok"`
		Models []catalog.ModelInfo `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	require.NotEmpty(t, body.Models)

	for _, m := range body.Models {
		switch m.Provider {
		case "groq":
			assert.True(t, m.Available, "groq model %s", m.Key)
		case "openai":
			assert.False(t, m.Available, "openai model %s", m.Key)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "set")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("KIMI_API_KEY", "")

	srv := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, []any{"Groq"}, body["availableProviders"])
	assert.EqualValues(t, 10, body["availableModels"])
}

func TestParseFilesEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postJSON(t, srv, "/api/parse-files", `{"content":"`+"```"+`html:index.html\n<p>hi</p>\n`+"```"+`"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		OK    bool `json:"ok"`
		Files []struct {
			Language string `json:"language"`
			Filename string `json:"filename"`
			Content  string `json:"content"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Files, 1)
	assert.Equal(t, "index.html", body.Files[0].Filename)
}

func TestParseFilesEndpoint_NoFilesIsOK(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postJSON(t, srv, "/api/parse-files", `{"content":"no code here"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, []any{}, body["files"])
}

func TestParseFilesEndpoint_MissingContent(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postJSON(t, srv, "/api/parse-files", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFetchDesignEndpoint(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<!DOCTYPE html><html><body>target</body></html>")
	}))
	defer page.Close()

	srv := newTestServer(t, nil)
	rec := postJSON(t, srv, "/api/fetch-design", fmt.Sprintf(`{"url":%q}`, page.URL))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["html"], "target")
}

func TestFetchDesignEndpoint_BadURL(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postJSON(t, srv, "/api/fetch-design", `{"url":"ftp://example.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDeployStubs(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postJSON(t, srv, "/api/auto-deploy", `{"projectName":"demo","html":"<p></p>"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "deployed", body["status"])
	assert.NotEmpty(t, body["saveId"])

	rec = postJSON(t, srv, "/api/push-to-hf", `{"projectName":"demo"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.NotEmpty(t, body["spaceId"])

	rec = postJSON(t, srv, "/api/auto-deploy", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedRequestBody(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postJSON(t, srv, "/api/ask-ai", `{"prompt": "x"} {"second": true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, srv, "/api/ask-ai", ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "required")
}
