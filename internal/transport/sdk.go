package transport

import (
	"context"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"sitegen/internal/catalog"
	"sitegen/internal/config"
	"sitegen/internal/models"
)

// sdkProviderID names the one provider served through the native SDK.
// Groq speaks the OpenAI chat-completions dialect, so the OpenAI client
// pointed at Groq's base URL is its native streaming path.
const sdkProviderID = "groq"

type sdkClient struct {
	client openai.Client
}

func newSDKClient(apiKey, baseURL string) *sdkClient {
	return &sdkClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
	}
}

func (c *sdkClient) stream(ctx context.Context, resolved catalog.Resolved, messages []models.Message, gen config.GenerationConfig) (TokenStream, error) {
	params := openai.ChatCompletionNewParams{
		Model:               resolved.Model.ID,
		Messages:            convertMessages(messages),
		Temperature:         openai.Float(gen.Temperature),
		MaxCompletionTokens: openai.Int(int64(gen.MaxTokens)),
	}

	// Additive, category-driven request fields.
	var opts []option.RequestOption
	switch resolved.Model.Category {
	case catalog.CategoryCompound:
		opts = append(opts, option.WithJSONSet("tools", []map[string]string{
			{"type": "browser_search"},
			{"type": "code_interpreter"},
		}))
	case catalog.CategoryGPTOSS:
		opts = append(opts, option.WithJSONSet("reasoning_effort", "medium"))
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params, opts...)
	return &sdkStream{stream: stream}, nil
}

func convertMessages(messages []models.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case models.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// sdkStream adapts the SDK's pre-parsed chunk stream to TokenStream.
type sdkStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *sdkStream) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !s.stream.Next() {
			if err := s.stream.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}

		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *sdkStream) Close() error {
	return s.stream.Close()
}
