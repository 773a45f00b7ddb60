package translate

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkg/errors"
)

// GroqBaseURL is the OpenAI-compatible endpoint of the secondary provider.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// ChatRequest is one chat-style completion call: a system instruction, the
// user payload, and the sampling bounds for the pass making the call.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
}

// CompletionClient abstracts the external text-completion service so the
// pipeline can run against fakes in tests.
type CompletionClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// openaiClient serves any OpenAI-compatible endpoint; the secondary
// (Pass 2) provider differs only in base URL and credential.
type openaiClient struct {
	client openai.Client
}

// NewOpenAIClient builds a CompletionClient for the given API key. An empty
// baseURL targets the OpenAI platform itself.
func NewOpenAIClient(apiKey, baseURL string) CompletionClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &openaiClient{client: openai.NewClient(opts...)}
}

func (c *openaiClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(req.MaxTokens),
	})
	if err != nil {
		return "", errors.Wrap(err, "completion request failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
