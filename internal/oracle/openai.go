package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIOracle implements the Oracle interface for OpenAI models
type OpenAIOracle struct {
	client *openai.Client
	config Config
}

// NewOpenAIOracle creates a new OpenAI oracle
func NewOpenAIOracle(config Config) (*OpenAIOracle, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIOracle{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (o *OpenAIOracle) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (o *OpenAIOracle) IsAvailable(ctx context.Context) bool {
	_, err := o.client.ListModels(ctx)
	return err == nil
}

// Classify answers a classification prompt with a free-text reply
func (o *OpenAIOracle) Classify(ctx context.Context, req ClassifyRequest) (string, error) {
	reply, err := o.complete(ctx, req.System, req.Prompt, req.Model, req.Temperature, 0)
	if err != nil {
		return "", err
	}
	return reply, nil
}

// Suggest generates up to req.Max short alternative suggestions
func (o *OpenAIOracle) Suggest(ctx context.Context, req SuggestRequest) ([]string, error) {
	// Some variety is wanted for alternatives, unlike classification
	reply, err := o.complete(ctx, req.System, req.Prompt, req.Model, 0.3, o.maxTokens())
	if err != nil {
		return nil, err
	}
	return ParseList(reply, req.Max), nil
}

func (o *OpenAIOracle) complete(ctx context.Context, system, prompt, model string, temperature float32, maxTokens int) (string, error) {
	if model == "" {
		model = o.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := time.Duration(o.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	}
	if maxTokens > 0 {
		chatReq.MaxTokens = maxTokens
	}

	resp, err := o.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		if ctxWithTimeout.Err() != nil {
			return "", fmt.Errorf("OpenAI API timeout: %w", ctxWithTimeout.Err())
		}
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (o *OpenAIOracle) maxTokens() int {
	if o.config.MaxTokens > 0 {
		return o.config.MaxTokens
	}
	return 500
}
