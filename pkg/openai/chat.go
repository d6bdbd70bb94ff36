package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var ErrEmptyResponse = errors.New("no response from ChatGPT")

const systemPrompt = "You are a skincare assistant. Answer in plain text, at most six short sentences, " +
	"and never give a medical diagnosis."

// IChatGPT generates free text for a prompt. It has the same shape as the
// Gemini client so either can back personalized advice.
type IChatGPT interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type chatGPTService struct {
	client *openai.Client
	model  string
}

// NewChatGPT reads OPENAI_API_KEY, OPENAI_CHAT_MODEL and the optional
// OPENAI_BASE_URL.
func NewChatGPT() (IChatGPT, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	model := os.Getenv("OPENAI_CHAT_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}

	return &chatGPTService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (c *chatGPTService) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is required")
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0.4,
			MaxTokens:   300,
		},
	)
	if err != nil {
		return "", fmt.Errorf("ChatGPT API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
