package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"sitegen/internal/catalog"
	"sitegen/internal/models"
)

const (
	contentTypeJSON = "application/json"
	userAgent       = "sitegen/0.1"

	// Upstream SSE lines carry one JSON frame each; 1 MiB of headroom
	// covers even unusually large single deltas.
	maxFrameBytes = 1 << 20

	doneSentinel = "[DONE]"
)

type chatPayload struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openGeneric issues an OpenAI-compatible streaming chat-completions
// request against the resolved provider's base endpoint.
func (r *ClientRegistry) openGeneric(ctx context.Context, resolved catalog.Resolved, messages []models.Message) (TokenStream, error) {
	apiKey := os.Getenv(resolved.Provider.EnvKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w for provider %s (%s)", ErrNoCredential, resolved.Provider.Name, resolved.Provider.EnvKey)
	}

	wireMessages := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		wireMessages = append(wireMessages, wireMessage{Role: m.Role, Content: m.Content})
	}

	payload := chatPayload{
		Model:       resolved.Model.ID,
		Messages:    wireMessages,
		Stream:      true,
		Temperature: r.gen.Temperature,
		MaxTokens:   r.gen.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	url := strings.TrimRight(resolved.Provider.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s chat request failed: %w", resolved.Provider.ID, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, upstreamError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxFrameBytes)

	return &genericStream{body: resp.Body, scanner: scanner}, nil
}

func upstreamError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return &UpstreamError{Status: resp.StatusCode, Body: "failed to read error body: " + err.Error()}
	}

	// Prefer the structured error message when the provider sends one.
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() && msg.String() != "" {
		return &UpstreamError{Status: resp.StatusCode, Body: msg.String()}
	}
	return &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// genericStream reads text/event-stream lines from the provider and
// extracts the first choice's delta content from each data frame.
// Malformed frames are skipped; a single corrupt frame must not abort
// the stream. The [DONE] sentinel is consumed, never forwarded.
type genericStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func (s *genericStream) Next(ctx context.Context) (string, error) {
	for s.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == doneSentinel {
			continue
		}
		if !gjson.Valid(data) {
			continue
		}
		if delta := gjson.Get(data, "choices.0.delta.content").String(); delta != "" {
			return delta, nil
		}
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("read upstream stream: %w", err)
	}
	return "", io.EOF
}

func (s *genericStream) Close() error {
	return s.body.Close()
}
