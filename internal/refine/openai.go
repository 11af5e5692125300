package refine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// chatRefiner runs cleanup through an OpenAI-compatible chat completion API.
type chatRefiner struct {
	client *openai.Client
	config Config
	name   string
	logger *log.Logger
}

func newOpenAIRefiner(cfg Config) *chatRefiner {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &chatRefiner{
		client: openai.NewClient(cfg.APIKey),
		config: cfg,
		name:   "openai",
		logger: log.WithPrefix("refine"),
	}
}

func newGroqRefiner(cfg Config) *chatRefiner {
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = groqBaseURL
	return &chatRefiner{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		name:   "groq",
		logger: log.WithPrefix("refine"),
	}
}

func (r *chatRefiner) Refine(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	req := openai.ChatCompletionRequest{
		Model: r.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(r.config)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.3, // low temperature for consistent cleanup
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", r.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion: no response choices", r.name)
	}

	result := resp.Choices[0].Message.Content
	r.logger.Debug("refined final result", "provider", r.name, "took", time.Since(start), "in", text, "out", result)
	return result, nil
}
