package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// Completer sends one prompt to a language model and returns its text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ChatCompletionCreator is the part of the OpenAI client the categorizer uses.
type ChatCompletionCreator interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAICompleter asks an OpenAI chat model for a JSON answer.
type OpenAICompleter struct {
	client ChatCompletionCreator
	model  string
}

var _ Completer = (*OpenAICompleter)(nil)

func NewOpenAICompleter(client ChatCompletionCreator, model string) *OpenAICompleter {
	return &OpenAICompleter{client: client, model: model}
}

// NewOpenAICompleterFromKey builds the client from an API key.
func NewOpenAICompleterFromKey(apiKey, model string) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}
	return NewOpenAICompleter(openai.NewClient(apiKey), model), nil
}

func (c *OpenAICompleter) Name() string { return "openai" }

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("openai completer is not initialized with a client")
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// GeminiCompleter asks a Gemini generative model for a JSON answer.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

var _ Completer = (*GeminiCompleter)(nil)

func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

func (c *GeminiCompleter) Name() string { return "gemini" }

func (c *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("gemini completer is not initialized")
	}
	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", errors.New("no text returned from Gemini")
	}
	return text, nil
}

// Close releases the Gemini client.
func (c *GeminiCompleter) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
