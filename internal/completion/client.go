// Package completion wraps the chat-completion API used for prompt parsing
// and for generating activity names and descriptions.
package completion

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smallnumbers0/create-activity/internal/domain"
	"github.com/smallnumbers0/create-activity/internal/observability"
)

// ChatClient captures the subset of the go-openai client the wrapper needs,
// so tests can inject a stub.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ErrEmptyCompletion indicates the API answered without usable content.
var ErrEmptyCompletion = errors.New("completion response contained no content")

// Client issues chat completions against a configured model.
type Client struct {
	chat   ChatClient
	model  string
	logger *log.Logger
}

// New builds a Client around an existing ChatClient.
func New(chat ChatClient, model string, logger *log.Logger) (*Client, error) {
	if chat == nil {
		return nil, errors.New("chat client is required")
	}
	if model == "" {
		return nil, errors.New("model is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{chat: chat, model: model, logger: logger}, nil
}

// NewFromAPIKey constructs a Client backed by the default HTTP transport.
// baseURL may be empty to use the provider default.
func NewFromAPIKey(apiKey, baseURL, model string, timeout time.Duration, logger *log.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return New(openai.NewClientWithConfig(cfg), model, logger)
}

// Options tunes a single completion call.
type Options struct {
	MaxTokens   int
	Temperature float32
	JSONMode    bool
}

// Complete sends a system+user message pair and returns the first choice's
// content. An empty choice list or empty content is an error.
func (c *Client) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if opts.JSONMode {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	started := time.Now()
	response, err := c.chat.CreateChatCompletion(ctx, request)
	observability.ObserveCompletionCall(time.Since(started), err)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// GenerateActivityName asks the model for a short activity name. Generation
// never fails the caller: any error yields the deterministic fallback.
func (c *Client) GenerateActivityName(ctx context.Context, sport domain.SportType, durationMinutes float64, distanceKM *float64, activityCtx domain.Context) string {
	user := fmt.Sprintf("Create a catchy name for this workout:\n\n%s\n\nGive me just the name, no extra text or quotes.",
		buildActivityContext(sport, durationMinutes, distanceKM, activityCtx))

	name, err := c.Complete(ctx, nameSystemPrompt, user, Options{MaxTokens: 50, Temperature: 1.0})
	if err != nil {
		c.logger.Printf("activity name generation failed, using fallback: %v", err)
		return FallbackName(sport)
	}
	return strings.Trim(name, `"'`)
}

// GenerateActivityDescription asks the model for a styled description, with
// the same never-fail contract as name generation.
func (c *Client) GenerateActivityDescription(ctx context.Context, sport domain.SportType, durationMinutes float64, distanceKM *float64, style domain.DescriptionStyle, activityCtx domain.Context) string {
	system := fmt.Sprintf(descriptionSystemPrompt, styleInstruction(style))
	user := fmt.Sprintf("Create a %s description for this workout:\n\n%s\n\nWrite just the description, no extra text.",
		style, buildActivityContext(sport, durationMinutes, distanceKM, activityCtx))

	description, err := c.Complete(ctx, system, user, Options{MaxTokens: 200, Temperature: 0.8})
	if err != nil {
		c.logger.Printf("activity description generation failed, using fallback: %v", err)
		return FallbackDescription(sport, durationMinutes)
	}
	return strings.Trim(description, `"'`)
}
